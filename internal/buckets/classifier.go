// Package buckets maps portfolio holdings onto the fixed macro allocation
// buckets and rescales portfolios toward per-bucket target weights.
package buckets

import (
	"strings"

	"github.com/msanjurjo/fundlens/internal/models"
)

// Confidence distinguishes a rule-matched classification from one that fell
// through to a policy default.
type Confidence string

const (
	ConfidenceMatched   Confidence = "matched"
	ConfidenceDefaulted Confidence = "defaulted"
)

// Policy holds the fallback buckets applied when a fund carries too little
// metadata to sub-classify. The stock defaults (unregioned equity goes to
// USA, unmarked fixed income to corporate) are business assumptions, not
// verified truths, which is why they are injectable rather than baked in.
type Policy struct {
	DefaultEquityBucket      models.Bucket
	DefaultFixedIncomeBucket models.Bucket
}

// DefaultPolicy returns the historical default policy.
func DefaultPolicy() Policy {
	return Policy{
		DefaultEquityBucket:      models.BucketEquityUSA,
		DefaultFixedIncomeBucket: models.BucketBondCorp,
	}
}

var commodityKeywords = []string{
	"gold", "oro", "silver", "commodit", "materias primas", "precious metal",
}

var govBondKeywords = []string{
	"gov", "government", "treasury", "soberan", "bund", "gilt",
}

var highYieldKeywords = []string{
	"high yield", "high-yield", "alto rendimiento",
}

// Classify maps a holding to exactly one allocation bucket. Best-effort
// heuristic over noisy labels: an ordered rule chain where the first match
// wins, and every item lands somewhere (cash is the terminal fallback).
func Classify(item models.PortfolioItem, policy Policy) (models.Bucket, Confidence) {
	name := strings.ToLower(item.Fund.Name)

	if containsAny(name, commodityKeywords) {
		return models.BucketCommodities, ConfidenceMatched
	}

	if item.Fund.HasClass(models.AssetClassEquity) {
		return classifyEquity(item.Fund, policy)
	}

	if item.Fund.HasClass(models.AssetClassFixedIncome) {
		return classifyFixedIncome(name, policy)
	}

	// Monetario, Mixto, RetornoAbsoluto and unclassified funds all settle
	// into cash for rebalancing purposes.
	if item.Fund.AssetClass != nil {
		return models.BucketCash, ConfidenceMatched
	}
	return models.BucketCash, ConfidenceDefaulted
}

func classifyEquity(fund models.NormalizedFund, policy Policy) (models.Bucket, Confidence) {
	if fund.PrimaryRegion != nil {
		switch *fund.PrimaryRegion {
		case models.RegionUSA:
			return models.BucketEquityUSA, ConfidenceMatched
		case models.RegionEurope:
			return models.BucketEquityEurope, ConfidenceMatched
		case models.RegionEmerging:
			return models.BucketEquityEmerging, ConfidenceMatched
		}
	}
	return policy.DefaultEquityBucket, ConfidenceDefaulted
}

func classifyFixedIncome(name string, policy Policy) (models.Bucket, Confidence) {
	if containsAny(name, govBondKeywords) {
		return models.BucketBondGov, ConfidenceMatched
	}
	if containsAny(name, highYieldKeywords) {
		return models.BucketBondHighYield, ConfidenceMatched
	}
	return policy.DefaultFixedIncomeBucket, ConfidenceDefaulted
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
