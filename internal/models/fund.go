package models

// AssetClass is the canonical macro asset class of a fund. Store documents
// carry these labels under several historical spellings ("Equity", "Stock",
// "Renta Variable"); the normalize package owns the synonym tables that map
// them onto this closed set.
type AssetClass string

const (
	AssetClassEquity         AssetClass = "RV"
	AssetClassFixedIncome    AssetClass = "RF"
	AssetClassMoneyMarket    AssetClass = "Monetario"
	AssetClassMixed          AssetClass = "Mixto"
	AssetClassAbsoluteReturn AssetClass = "RetornoAbsoluto"
)

// Region is the canonical primary-region code of a fund.
type Region string

const (
	RegionUSA      Region = "usa"
	RegionEurope   Region = "europe"
	RegionEmerging Region = "emerging"
	RegionJapan    Region = "japan"
	RegionAsia     Region = "asia"
	RegionGlobal   Region = "global"
)

// NormalizedFund is the canonical, read-only view derived from a raw fund
// document. Every percentage-like field is a signed decimal fraction
// (0.085 = 8.5%), never a raw percent. A nil pointer means "insufficient
// data", which consumers must not collapse to zero.
type NormalizedFund struct {
	ISIN string `json:"isin"`
	Name string `json:"name"`

	AssetClass    *AssetClass `json:"asset_class"`
	PrimaryRegion *Region     `json:"primary_region"`
	Category      string      `json:"category,omitempty"` // fine-grained store category label

	Volatility  *float64 `json:"volatility"`
	CAGR3Y      *float64 `json:"cagr_3y"`
	Sharpe      *float64 `json:"sharpe"`
	Alpha       *float64 `json:"alpha"`
	Beta        *float64 `json:"beta"`
	MaxDrawdown *float64 `json:"max_drawdown"` // always <= 0 when present

	TER           *float64 `json:"ter"`
	ManagementFee *float64 `json:"management_fee"`

	Rating *int `json:"rating"` // 0-5
	SRRI   *int `json:"srri"`   // 0-7

	PerformanceVerified bool `json:"performance_verified"`
	HistoryVerified     bool `json:"history_verified"`
}

// HasClass reports whether the fund resolved to the given asset class.
func (f *NormalizedFund) HasClass(class AssetClass) bool {
	return f.AssetClass != nil && *f.AssetClass == class
}

// HasRegion reports whether the fund resolved to the given primary region.
func (f *NormalizedFund) HasRegion(region Region) bool {
	return f.PrimaryRegion != nil && *f.PrimaryRegion == region
}
