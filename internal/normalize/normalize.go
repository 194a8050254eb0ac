// Package normalize converts raw fund documents, in either store schema
// generation, into the canonical NormalizedFund representation. It owns the
// decimal-percentage resolution rule and the label synonym tables that
// absorb years of schema drift.
package normalize

import (
	"math"
	"sort"

	"github.com/msanjurjo/fundlens/internal/models"
)

// decimalThreshold separates values that are already decimal fractions
// from values expressed as percents. A fund with 150% volatility or cost
// does not exist in this universe, while 1.4% expressed as 1.4 does, so
// |v| > 1.5 can only mean "percent".
const decimalThreshold = 1.5

// AsDecimalPct resolves a percentage-like raw value of ambiguous scale to a
// decimal fraction: |v| > 1.5 is treated as a percent and divided by 100,
// anything else is taken as already decimal. Not idempotent across a
// multiply-back round trip; apply exactly once per raw value.
func AsDecimalPct(v float64) float64 {
	if math.Abs(v) > decimalThreshold {
		return v / 100
	}
	return v
}

// MaxDrawdownToDecimal resolves a raw max-drawdown value to a decimal
// fraction and forces the sign negative regardless of how the source
// recorded it: 14, -14, 0.14 and -0.14 all become -0.14.
func MaxDrawdownToDecimal(v float64) float64 {
	return -math.Abs(AsDecimalPct(v))
}

// Normalize converts a raw fund document into its canonical view. Pure and
// total: unresolvable or out-of-bounds fields come back nil ("insufficient
// data"), never zero and never an error.
func Normalize(doc []byte) *models.NormalizedFund {
	raw := adapt(doc)

	fund := &models.NormalizedFund{
		ISIN:                raw.isin,
		Name:                raw.name,
		Category:            raw.category,
		PerformanceVerified: raw.performanceVerified,
		HistoryVerified:     raw.historyVerified,
	}

	if class, ok := CanonicalAssetClass(raw.assetClassLabel); ok {
		fund.AssetClass = &class
	}
	fund.PrimaryRegion = resolveRegion(raw.regionLabel, raw.regionBreakdown)

	fund.Volatility = nonNegative(decimal(raw.volatility))
	fund.CAGR3Y = decimal(raw.cagr3y)
	fund.Sharpe = raw.sharpe
	fund.Alpha = decimal(raw.alpha)
	fund.Beta = raw.beta
	fund.TER = nonNegative(decimal(raw.ter))
	fund.ManagementFee = nonNegative(decimal(raw.managementFee))

	if raw.maxDrawdown != nil {
		dd := MaxDrawdownToDecimal(*raw.maxDrawdown)
		fund.MaxDrawdown = &dd
	}

	fund.Rating = boundedInt(raw.rating, 0, 5)
	fund.SRRI = boundedInt(raw.srri, 0, 7)

	return fund
}

// resolveRegion takes the explicit region label when one resolves, else
// infers the region from the highest-weighted entry of the breakdown map,
// else leaves the region unresolved. Breakdown labels are visited in sorted
// order so equal weights resolve the same way on every run.
func resolveRegion(label string, breakdown map[string]float64) *models.Region {
	if r, ok := CanonicalRegion(label); ok {
		return &r
	}

	labels := make([]string, 0, len(breakdown))
	for rawLabel := range breakdown {
		labels = append(labels, rawLabel)
	}
	sort.Strings(labels)

	var best *models.Region
	bestWeight := 0.0
	for _, rawLabel := range labels {
		r, ok := CanonicalRegion(rawLabel)
		if !ok {
			continue
		}
		if weight := breakdown[rawLabel]; best == nil || weight > bestWeight {
			region := r
			best = &region
			bestWeight = weight
		}
	}
	return best
}

func decimal(v *float64) *float64 {
	if v == nil {
		return nil
	}
	d := AsDecimalPct(*v)
	return &d
}

func nonNegative(v *float64) *float64 {
	if v == nil || *v < 0 {
		return nil
	}
	return v
}

// boundedInt rounds a raw value to an int and validates it against the
// inclusive [min, max] range. Out-of-bounds input becomes unknown rather
// than being clamped into a wrong-but-plausible value.
func boundedInt(v *float64, min, max int) *int {
	if v == nil {
		return nil
	}
	n := int(math.Round(*v))
	if n < min || n > max {
		return nil
	}
	return &n
}
