package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/msanjurjo/fundlens/internal/cache"
	"github.com/msanjurjo/fundlens/internal/models"
	"github.com/msanjurjo/fundlens/internal/quant"
)

// fakeBacktester scripts backtest responses per candidate ISIN (the
// candidate is always the last position of a hypothetical portfolio).
type fakeBacktester struct {
	sharpes  map[string]float64
	failures map[string]bool
	calls    int
	requests []quant.BacktestRequest
}

func (f *fakeBacktester) Backtest(_ context.Context, req quant.BacktestRequest) (*quant.BacktestResponse, error) {
	f.calls++
	f.requests = append(f.requests, req)

	last := req.Portfolio[len(req.Portfolio)-1].ISIN
	if f.failures[last] {
		return nil, errors.New("simulation blew up")
	}
	sharpe, ok := f.sharpes[last]
	if !ok {
		sharpe = 1.0
	}
	return &quant.BacktestResponse{Metrics: quant.BacktestMetrics{Sharpe: sharpe}}, nil
}

func testPortfolio() []models.PortfolioItem {
	return []models.PortfolioItem{
		{Fund: models.NormalizedFund{ISIN: "US0000000001", Name: "Held A"}, Weight: 60},
		{Fund: models.NormalizedFund{ISIN: "US0000000002", Name: "Held B"}, Weight: 40},
	}
}

func candidate(isin string) models.NormalizedFund {
	return models.NormalizedFund{ISIN: isin, Name: "Candidate " + isin}
}

func newTestRanking(bt Backtester) *RankingService {
	return NewRankingService(bt, cache.NewMemoryCache(time.Minute, time.Minute))
}

func TestRankSortsByImpactDescending(t *testing.T) {
	bt := &fakeBacktester{sharpes: map[string]float64{
		"LU0000000001": 1.10,
		"LU0000000002": 1.40,
		"LU0000000003": 0.90,
	}}
	svc := newTestRanking(bt)

	results, err := svc.Rank(context.Background(), testPortfolio(),
		[]models.NormalizedFund{candidate("LU0000000001"), candidate("LU0000000002"), candidate("LU0000000003")},
		1.0, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	wantOrder := []string{"LU0000000002", "LU0000000001", "LU0000000003"}
	for i, want := range wantOrder {
		if results[i].Fund.ISIN != want {
			t.Errorf("position %d: expected %s, got %s", i, want, results[i].Fund.ISIN)
		}
	}
	if math.Abs(results[0].Impact-0.40) > 1e-9 {
		t.Errorf("expected impact 0.40, got %.4f", results[0].Impact)
	}
	if math.Abs(results[2].Impact-(-0.10)) > 1e-9 {
		t.Errorf("expected impact -0.10, got %.4f", results[2].Impact)
	}
}

func TestRankSkipsFailedCandidateAndContinues(t *testing.T) {
	bt := &fakeBacktester{
		sharpes:  map[string]float64{"LU0000000001": 1.2, "LU0000000003": 1.1},
		failures: map[string]bool{"LU0000000002": true},
	}
	svc := newTestRanking(bt)

	var progress [][2]int
	results, err := svc.Rank(context.Background(), testPortfolio(),
		[]models.NormalizedFund{candidate("LU0000000001"), candidate("LU0000000002"), candidate("LU0000000003")},
		1.0, "", func(processed, total int) {
			progress = append(progress, [2]int{processed, total})
		})
	if err != nil {
		t.Fatalf("a failed candidate must not abort the batch: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results after one failure, got %d", len(results))
	}
	for _, r := range results {
		if r.Fund.ISIN == "LU0000000002" {
			t.Error("failed candidate must be dropped from results")
		}
	}

	// Progress is reported after every candidate, failures included.
	if len(progress) != 3 {
		t.Fatalf("expected 3 progress reports, got %d", len(progress))
	}
	if progress[2] != [2]int{3, 3} {
		t.Errorf("expected final progress 3/3, got %v", progress[2])
	}
}

func TestRankSkipsAlreadyHeldCandidates(t *testing.T) {
	bt := &fakeBacktester{}
	svc := newTestRanking(bt)

	results, err := svc.Rank(context.Background(), testPortfolio(),
		[]models.NormalizedFund{candidate("US0000000001")}, // already held
		1.0, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("held candidate must not be ranked, got %d results", len(results))
	}
	if bt.calls != 0 {
		t.Errorf("held candidate must not be backtested, got %d calls", bt.calls)
	}
}

func TestRankHypotheticalWeights(t *testing.T) {
	bt := &fakeBacktester{}
	svc := newTestRanking(bt)

	_, err := svc.Rank(context.Background(), testPortfolio(),
		[]models.NormalizedFund{candidate("LU0000000001")}, 1.0, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bt.requests) != 1 {
		t.Fatalf("expected 1 backtest, got %d", len(bt.requests))
	}

	req := bt.requests[0]
	if req.Period != quant.Period3Y {
		t.Errorf("expected default period 3y, got %q", req.Period)
	}
	if len(req.Portfolio) != 3 {
		t.Fatalf("expected 3 positions, got %d", len(req.Portfolio))
	}
	// 60% and 40% shrink by (1 - 0.05); the candidate probes at 0.05.
	if math.Abs(req.Portfolio[0].Weight-0.57) > 1e-9 {
		t.Errorf("expected first weight 0.57, got %.4f", req.Portfolio[0].Weight)
	}
	if math.Abs(req.Portfolio[1].Weight-0.38) > 1e-9 {
		t.Errorf("expected second weight 0.38, got %.4f", req.Portfolio[1].Weight)
	}
	if math.Abs(req.Portfolio[2].Weight-0.05) > 1e-9 {
		t.Errorf("expected probe weight 0.05, got %.4f", req.Portfolio[2].Weight)
	}

	var total float64
	for _, p := range req.Portfolio {
		total += p.Weight
	}
	if math.Abs(total-1.0) > 1e-9 {
		t.Errorf("hypothetical weights must sum to 1.0, got %.6f", total)
	}
}

func TestRankAbandonsOnCancellation(t *testing.T) {
	bt := &fakeBacktester{}
	svc := newTestRanking(bt)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Rank(ctx, testPortfolio(),
		[]models.NormalizedFund{candidate("LU0000000001")}, 1.0, "", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if bt.calls != 0 {
		t.Errorf("canceled run must not issue backtests, got %d", bt.calls)
	}
}

func TestBaselineIsCachedPerComposition(t *testing.T) {
	bt := &fakeBacktester{sharpes: map[string]float64{"US0000000002": 1.3}}
	svc := newTestRanking(bt)

	first, err := svc.Baseline(context.Background(), testPortfolio(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Baseline(context.Background(), testPortfolio(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("cached baseline differs: %.4f vs %.4f", first, second)
	}
	if bt.calls != 1 {
		t.Errorf("expected a single backtest for repeated baselines, got %d", bt.calls)
	}

	// A different period is a different cache key.
	if _, err := svc.Baseline(context.Background(), testPortfolio(), quant.Period5Y); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bt.calls != 2 {
		t.Errorf("expected a fresh backtest for a new period, got %d calls", bt.calls)
	}
}
