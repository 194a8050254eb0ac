package normalize

import "encoding/json"

// The store holds two document generations side by side: a legacy flat
// shape, and a v3 shape that splits fields across nested derived (computed
// metrics), ms (data-provider import) and manual (hand-curated overrides)
// blocks. rawDocument can unmarshal either generation; a migrated-in-place
// document may even carry both.
type rawDocument struct {
	ISIN string `json:"isin"`
	Name string `json:"name"`

	// Legacy flat generation.
	Category        string             `json:"category"`
	Type            string             `json:"type"`
	Region          string             `json:"region"`
	Regions         map[string]float64 `json:"regions"`
	Volatility      *float64           `json:"volatility"`
	CAGR3Y          *float64           `json:"cagr_3y"`
	Sharpe          *float64           `json:"sharpe"`
	Alpha           *float64           `json:"alpha"`
	Beta            *float64           `json:"beta"`
	MaxDrawdown     *float64           `json:"max_drawdown"`
	TER             *float64           `json:"ter"`
	ManagementFee   *float64           `json:"management_fee"`
	Rating          *float64           `json:"rating"`
	SRRI            *float64           `json:"srri"`
	Verified        bool               `json:"verified"`

	// v3 generation.
	Derived *derivedBlock `json:"derived"`
	MS      *msBlock      `json:"ms"`
	Manual  *manualBlock  `json:"manual"`
}

type derivedBlock struct {
	Volatility   *float64 `json:"volatility"`
	CAGR3Y       *float64 `json:"cagr_3y"`
	Sharpe       *float64 `json:"sharpe"`
	Alpha        *float64 `json:"alpha"`
	Beta         *float64 `json:"beta"`
	MaxDrawdown  *float64 `json:"max_drawdown"`
	DataVerified bool     `json:"data_verified"`
}

type msBlock struct {
	Category        string             `json:"category"`
	AssetClass      string             `json:"asset_class"`
	Region          string             `json:"region"`
	RegionBreakdown map[string]float64 `json:"region_breakdown"`
	Rating          *float64           `json:"rating"`
	SRRI            *float64           `json:"srri"`
	TER             *float64           `json:"ter"`
}

type manualBlock struct {
	AssetClass      string   `json:"asset_class"`
	Region          string   `json:"region"`
	ManagementFee   *float64 `json:"management_fee"`
	HistoryVerified bool     `json:"history_verified"`
}

// rawFields is the single canonical pre-normalization view: one value per
// field, still raw-scaled, nil where no generation supplied it.
type rawFields struct {
	isin, name, category string
	assetClassLabel      string
	regionLabel          string
	regionBreakdown      map[string]float64

	volatility, cagr3y, sharpe, alpha, beta *float64
	maxDrawdown, ter, managementFee         *float64
	rating, srri                            *float64

	performanceVerified bool
	historyVerified     bool
}

// adapt merges both document generations into one rawFields view. The v3
// blocks take precedence over legacy flat fields wherever both are present;
// within v3, manual overrides ms. Total: a document that fails to parse
// yields an empty view, never an error.
func adapt(doc []byte) rawFields {
	var raw rawDocument
	if err := json.Unmarshal(doc, &raw); err != nil {
		return rawFields{}
	}

	f := rawFields{
		isin:            raw.ISIN,
		name:            raw.Name,
		category:        raw.Category,
		assetClassLabel: raw.Type,
		regionLabel:     raw.Region,
		regionBreakdown: raw.Regions,
		volatility:      raw.Volatility,
		cagr3y:          raw.CAGR3Y,
		sharpe:          raw.Sharpe,
		alpha:           raw.Alpha,
		beta:            raw.Beta,
		maxDrawdown:     raw.MaxDrawdown,
		ter:             raw.TER,
		managementFee:   raw.ManagementFee,
		rating:          raw.Rating,
		srri:            raw.SRRI,
	}
	f.performanceVerified = raw.Verified
	f.historyVerified = raw.Verified

	if d := raw.Derived; d != nil {
		overlayFloat(&f.volatility, d.Volatility)
		overlayFloat(&f.cagr3y, d.CAGR3Y)
		overlayFloat(&f.sharpe, d.Sharpe)
		overlayFloat(&f.alpha, d.Alpha)
		overlayFloat(&f.beta, d.Beta)
		overlayFloat(&f.maxDrawdown, d.MaxDrawdown)
		if d.DataVerified {
			f.performanceVerified = true
		}
	}
	if ms := raw.MS; ms != nil {
		overlayString(&f.category, ms.Category)
		overlayString(&f.assetClassLabel, ms.AssetClass)
		overlayString(&f.regionLabel, ms.Region)
		if len(ms.RegionBreakdown) > 0 {
			f.regionBreakdown = ms.RegionBreakdown
		}
		overlayFloat(&f.rating, ms.Rating)
		overlayFloat(&f.srri, ms.SRRI)
		overlayFloat(&f.ter, ms.TER)
	}
	if m := raw.Manual; m != nil {
		overlayString(&f.assetClassLabel, m.AssetClass)
		overlayString(&f.regionLabel, m.Region)
		overlayFloat(&f.managementFee, m.ManagementFee)
		if m.HistoryVerified {
			f.historyVerified = true
		}
	}

	return f
}

func overlayFloat(dst **float64, src *float64) {
	if src != nil {
		*dst = src
	}
}

func overlayString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}
