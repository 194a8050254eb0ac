package models

// Bucket is one of the fixed macro allocation buckets used for tactical
// rebalancing. The set is closed; classification always lands somewhere,
// with BucketCash as the terminal fallback.
type Bucket string

const (
	BucketEquityUSA      Bucket = "rv_usa"
	BucketEquityEurope   Bucket = "rv_eu"
	BucketEquityEmerging Bucket = "rv_em"
	BucketBondGov        Bucket = "rf_gov"
	BucketBondCorp       Bucket = "rf_corp"
	BucketBondHighYield  Bucket = "rf_hy"
	BucketCommodities    Bucket = "commodities"
	BucketCash           Bucket = "cash"
)

// AllBuckets lists every bucket in display order.
var AllBuckets = []Bucket{
	BucketEquityUSA,
	BucketEquityEurope,
	BucketEquityEmerging,
	BucketBondGov,
	BucketBondCorp,
	BucketBondHighYield,
	BucketCommodities,
	BucketCash,
}

// PortfolioItem is a normalized fund held at a portfolio-relative weight.
// Weight is a percentage of the whole portfolio (0-100), not of its asset
// class. Locked marks holdings the user pinned against optimizer swaps.
type PortfolioItem struct {
	Fund   NormalizedFund `json:"fund"`
	Weight float64        `json:"weight"`
	Locked bool           `json:"locked,omitempty"`
}

// BucketWeights maps each bucket to a percentage weight.
type BucketWeights map[Bucket]float64

// Total returns the sum of all bucket weights.
func (w BucketWeights) Total() float64 {
	var total float64
	for _, pct := range w {
		total += pct
	}
	return total
}

// CandidateResult pairs a discovered fund with its simulated marginal effect
// on the portfolio. Impact is projected Sharpe minus the baseline Sharpe of
// the unmodified portfolio.
type CandidateResult struct {
	Fund             NormalizedFund `json:"fund"`
	IndividualSharpe *float64       `json:"individual_sharpe"`
	ProjectedSharpe  float64        `json:"projected_sharpe"`
	Impact           float64        `json:"impact"`
}
