package services

import (
	"context"
	"errors"
	"testing"

	"github.com/msanjurjo/fundlens/internal/models"
	"github.com/msanjurjo/fundlens/internal/quant"
)

type fakeOptimizer struct {
	resp *quant.OptimizeResponse
	err  error
	last quant.OptimizeRequest
}

func (f *fakeOptimizer) Optimize(_ context.Context, req quant.OptimizeRequest) (*quant.OptimizeResponse, error) {
	f.last = req
	return f.resp, f.err
}

func TestProposeAllocationOptimal(t *testing.T) {
	opt := &fakeOptimizer{resp: &quant.OptimizeResponse{
		Status:  quant.StatusOptimal,
		Weights: map[string]float64{"US0000000001": 0.7, "US0000000002": 0.3},
	}}
	svc := NewOptimizerService(opt)

	items := testPortfolio()
	items[1].Locked = true

	resp, err := svc.ProposeAllocation(context.Background(), &models.OptimizeProposalRequest{
		Items:       items,
		RiskLevel:   4,
		ExtraAssets: []string{"LU0000000009"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != quant.StatusOptimal {
		t.Errorf("expected optimal status, got %q", resp.Status)
	}
	if len(resp.Suggestions) != 0 {
		t.Errorf("optimal outcome must carry no suggestions, got %v", resp.Suggestions)
	}
	if opt.last.RiskLevel != 4 {
		t.Errorf("risk level not forwarded, got %d", opt.last.RiskLevel)
	}
	wantAssets := []string{"US0000000001", "US0000000002", "LU0000000009"}
	if len(opt.last.Assets) != len(wantAssets) {
		t.Fatalf("expected universe %v, got %v", wantAssets, opt.last.Assets)
	}
	for i, isin := range wantAssets {
		if opt.last.Assets[i] != isin {
			t.Errorf("asset %d: expected %s, got %s", i, isin, opt.last.Assets[i])
		}
	}
	if len(opt.last.LockedAssets) != 1 || opt.last.LockedAssets[0] != "US0000000002" {
		t.Errorf("locked holdings not forwarded, got %v", opt.last.LockedAssets)
	}
}

func TestProposeAllocationInfeasibleEquityFloor(t *testing.T) {
	opt := &fakeOptimizer{resp: &quant.OptimizeResponse{Status: quant.StatusInfeasibleEquityFloor}}
	svc := NewOptimizerService(opt)

	ctx, wc := NewWarningContext(context.Background())
	resp, err := svc.ProposeAllocation(ctx, &models.OptimizeProposalRequest{Items: testPortfolio()})
	if err != nil {
		t.Fatalf("an infeasible outcome is recoverable, not an error: %v", err)
	}
	if len(resp.Suggestions) == 0 {
		t.Fatal("expected an actionable suggestion for the equity floor")
	}

	warnings := wc.GetWarnings()
	if len(warnings) != 1 || warnings[0].Code != models.WarnOptimizerEquityFloor {
		t.Errorf("expected a single equity-floor warning, got %v", warnings)
	}
}

func TestProposeAllocationFallbackNoHistory(t *testing.T) {
	opt := &fakeOptimizer{resp: &quant.OptimizeResponse{
		Status:   quant.StatusFallbackNoHistory,
		Warnings: []string{"LU0000000001 has 14 months of history"},
	}}
	svc := NewOptimizerService(opt)

	ctx, wc := NewWarningContext(context.Background())
	resp, err := svc.ProposeAllocation(ctx, &models.OptimizeProposalRequest{Items: testPortfolio()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Solver-side warnings ride along after the local suggestion.
	if len(resp.Suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %v", resp.Suggestions)
	}

	warnings := wc.GetWarnings()
	if len(warnings) != 1 || warnings[0].Code != models.WarnOptimizerNoHistory {
		t.Errorf("expected a single no-history warning, got %v", warnings)
	}
}

func TestProposeAllocationTransportError(t *testing.T) {
	opt := &fakeOptimizer{err: errors.New("connection refused")}
	svc := NewOptimizerService(opt)

	if _, err := svc.ProposeAllocation(context.Background(), &models.OptimizeProposalRequest{}); err == nil {
		t.Fatal("expected an error when the solver is unreachable")
	}
}
