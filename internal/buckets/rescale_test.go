package buckets

import (
	"errors"
	"math"
	"testing"

	"github.com/msanjurjo/fundlens/internal/models"
)

func equityItem(isin string, weight float64, region models.Region) models.PortfolioItem {
	return models.PortfolioItem{
		Fund: models.NormalizedFund{
			ISIN:          isin,
			Name:          "Equity " + isin,
			AssetClass:    classPtr(models.AssetClassEquity),
			PrimaryRegion: regionPtr(region),
		},
		Weight: weight,
	}
}

func corpBondItem(isin string, weight float64) models.PortfolioItem {
	return models.PortfolioItem{
		Fund: models.NormalizedFund{
			ISIN:       isin,
			Name:       "Credit " + isin,
			AssetClass: classPtr(models.AssetClassFixedIncome),
		},
		Weight: weight,
	}
}

func TestRescaleTwoBuckets(t *testing.T) {
	// 60/40 rv_usa/rf_corp rescaled to 50/50.
	portfolio := []models.PortfolioItem{
		equityItem("US0000000001", 60, models.RegionUSA),
		corpBondItem("US0000000002", 40),
	}
	targets := models.BucketWeights{
		models.BucketEquityUSA: 50,
		models.BucketBondCorp:  50,
	}

	rescaled, err := Rescale(portfolio, targets, DefaultPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rescaled[0].Weight != 50 || rescaled[1].Weight != 50 {
		t.Errorf("expected 50/50, got %.2f/%.2f", rescaled[0].Weight, rescaled[1].Weight)
	}
	// The input must be untouched.
	if portfolio[0].Weight != 60 || portfolio[1].Weight != 40 {
		t.Error("input portfolio was mutated")
	}
}

func TestRescalePreservesIntraBucketProportions(t *testing.T) {
	portfolio := []models.PortfolioItem{
		equityItem("US0000000001", 30, models.RegionUSA),
		equityItem("US0000000002", 10, models.RegionUSA),
		corpBondItem("US0000000003", 60),
	}
	targets := models.BucketWeights{
		models.BucketEquityUSA: 80,
		models.BucketBondCorp:  20,
	}

	rescaled, err := Rescale(portfolio, targets, DefaultPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 3:1 ratio between the two equity holdings must survive exactly.
	ratio := rescaled[0].Weight / rescaled[1].Weight
	if math.Abs(ratio-3.0) > 1e-9 {
		t.Errorf("intra-bucket ratio changed: got %.6f, want 3.0", ratio)
	}

	// Per-bucket sums must hit the targets within 0.01.
	realized := CurrentWeights(rescaled, DefaultPolicy())
	if math.Abs(realized[models.BucketEquityUSA]-80) > 0.01 {
		t.Errorf("rv_usa sum %.4f, want 80", realized[models.BucketEquityUSA])
	}
	if math.Abs(realized[models.BucketBondCorp]-20) > 0.01 {
		t.Errorf("rf_corp sum %.4f, want 20", realized[models.BucketBondCorp])
	}

	var total float64
	for _, item := range rescaled {
		total += item.Weight
	}
	if math.Abs(total-100) > 0.01 {
		t.Errorf("total weight %.4f, want 100", total)
	}
}

func TestRescaleInfeasibleEmptyBucket(t *testing.T) {
	// Commodities holds nothing; a 100% commodities target cannot be met.
	portfolio := []models.PortfolioItem{
		equityItem("US0000000001", 60, models.RegionUSA),
		corpBondItem("US0000000002", 40),
	}
	targets := models.BucketWeights{
		models.BucketEquityUSA:   0,
		models.BucketBondCorp:    0,
		models.BucketCommodities: 100,
	}

	_, err := Rescale(portfolio, targets, DefaultPolicy())
	var infeasible *InfeasibleError
	if !errors.As(err, &infeasible) {
		t.Fatalf("expected InfeasibleError, got %v", err)
	}
	if len(infeasible.Buckets) != 1 || infeasible.Buckets[0] != models.BucketCommodities {
		t.Errorf("expected commodities named as infeasible, got %v", infeasible.Buckets)
	}
	if portfolio[0].Weight != 60 || portfolio[1].Weight != 40 {
		t.Error("portfolio must be left unmodified on infeasible rebalance")
	}
}

func TestRescaleReportsEveryInfeasibleBucket(t *testing.T) {
	portfolio := []models.PortfolioItem{
		equityItem("US0000000001", 100, models.RegionUSA),
	}
	targets := models.BucketWeights{
		models.BucketEquityUSA:   60,
		models.BucketBondGov:     20,
		models.BucketCommodities: 20,
	}

	_, err := Rescale(portfolio, targets, DefaultPolicy())
	var infeasible *InfeasibleError
	if !errors.As(err, &infeasible) {
		t.Fatalf("expected InfeasibleError, got %v", err)
	}
	if len(infeasible.Buckets) != 2 {
		t.Fatalf("expected both empty buckets reported, got %v", infeasible.Buckets)
	}
}

func TestRescaleTargetSumValidation(t *testing.T) {
	portfolio := []models.PortfolioItem{
		equityItem("US0000000001", 100, models.RegionUSA),
	}

	_, err := Rescale(portfolio, models.BucketWeights{models.BucketEquityUSA: 80}, DefaultPolicy())
	if !errors.Is(err, ErrTargetSum) {
		t.Fatalf("expected ErrTargetSum for sum 80, got %v", err)
	}

	// Within the +/- 1 tolerance is fine.
	if _, err := Rescale(portfolio, models.BucketWeights{models.BucketEquityUSA: 100.5}, DefaultPolicy()); err != nil {
		t.Fatalf("expected 100.5 to be accepted, got %v", err)
	}
}

func TestRescaleRejectsUnknownBucket(t *testing.T) {
	portfolio := []models.PortfolioItem{
		equityItem("US0000000001", 100, models.RegionUSA),
	}
	targets := models.BucketWeights{
		models.BucketEquityUSA:  80,
		models.Bucket("crypto"): 20,
	}

	_, err := Rescale(portfolio, targets, DefaultPolicy())
	if !errors.Is(err, ErrUnknownBucket) {
		t.Fatalf("expected ErrUnknownBucket, got %v", err)
	}
}

func TestCurrentWeightsEnumeratesAllBuckets(t *testing.T) {
	weights := CurrentWeights([]models.PortfolioItem{
		equityItem("US0000000001", 100, models.RegionUSA),
	}, DefaultPolicy())

	if len(weights) != len(models.AllBuckets) {
		t.Fatalf("expected %d buckets, got %d", len(models.AllBuckets), len(weights))
	}
	if weights[models.BucketCommodities] != 0 {
		t.Errorf("empty bucket must report zero, got %.2f", weights[models.BucketCommodities])
	}
}

func TestRescaleZeroTargetEmptiesBucket(t *testing.T) {
	portfolio := []models.PortfolioItem{
		equityItem("US0000000001", 60, models.RegionUSA),
		corpBondItem("US0000000002", 40),
	}
	targets := models.BucketWeights{
		models.BucketEquityUSA: 100,
		models.BucketBondCorp:  0,
	}

	rescaled, err := Rescale(portfolio, targets, DefaultPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rescaled[1].Weight != 0 {
		t.Errorf("expected rf_corp holding scaled to zero, got %.2f", rescaled[1].Weight)
	}
	if math.Abs(rescaled[0].Weight-100) > 0.01 {
		t.Errorf("expected rv_usa holding at 100, got %.2f", rescaled[0].Weight)
	}
}
