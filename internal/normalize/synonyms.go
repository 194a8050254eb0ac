package normalize

import (
	"strings"

	"github.com/msanjurjo/fundlens/internal/models"
)

// The fund store has accumulated several generations of classification
// labels. These tables are the single place that knows "RV", "Equity" and
// "Renta Variable" are the same thing; both normalization and candidate
// discovery resolve labels through them.

var classSynonyms = map[models.AssetClass][]string{
	models.AssetClassEquity:         {"RV", "Equity", "Stock", "Renta Variable", "Acciones"},
	models.AssetClassFixedIncome:    {"RF", "Fixed Income", "Bond", "Bonds", "Renta Fija"},
	models.AssetClassMoneyMarket:    {"Monetario", "Money Market", "Cash", "Liquidez"},
	models.AssetClassMixed:          {"Mixto", "Mixed", "Allocation", "Multi-Asset"},
	models.AssetClassAbsoluteReturn: {"RetornoAbsoluto", "Retorno Absoluto", "Absolute Return", "Alternative"},
}

var regionSynonyms = map[models.Region][]string{
	models.RegionUSA:      {"usa", "us", "united states", "north america", "norteamerica"},
	models.RegionEurope:   {"europe", "eu", "eurozone", "europa"},
	models.RegionEmerging: {"emerging", "em", "emergentes", "global emerging markets"},
	models.RegionJapan:    {"japan", "japon"},
	models.RegionAsia:     {"asia", "asia ex-japan", "asia pacific"},
	models.RegionGlobal:   {"global", "world", "mundial"},
}

var classByLabel = buildLabelIndex(classSynonyms)
var regionByLabel = buildLabelIndex(regionSynonyms)

func buildLabelIndex[K comparable](synonyms map[K][]string) map[string]K {
	idx := make(map[string]K)
	for canonical, labels := range synonyms {
		for _, l := range labels {
			idx[strings.ToLower(strings.TrimSpace(l))] = canonical
		}
	}
	return idx
}

// CanonicalAssetClass resolves a raw store label to its canonical asset
// class. Unrecognized labels report ok=false.
func CanonicalAssetClass(label string) (models.AssetClass, bool) {
	c, ok := classByLabel[strings.ToLower(strings.TrimSpace(label))]
	return c, ok
}

// ClassSynonyms returns every store label known for an asset class.
// The returned slice must not be mutated.
func ClassSynonyms(class models.AssetClass) []string {
	return classSynonyms[class]
}

// CanonicalRegion resolves a raw store label to its canonical region code.
func CanonicalRegion(label string) (models.Region, bool) {
	r, ok := regionByLabel[strings.ToLower(strings.TrimSpace(label))]
	return r, ok
}

// RegionSynonyms returns every store label known for a region.
// The returned slice must not be mutated.
func RegionSynonyms(region models.Region) []string {
	return regionSynonyms[region]
}
