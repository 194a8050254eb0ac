package services

import (
	"context"
	"fmt"
	"time"

	"github.com/msanjurjo/fundlens/internal/models"
	"github.com/msanjurjo/fundlens/internal/quant"
)

// Optimizer is the slice of the quant client the proposal flow consumes.
type Optimizer interface {
	Optimize(ctx context.Context, req quant.OptimizeRequest) (*quant.OptimizeResponse, error)
}

// OptimizerService proxies allocation requests to the remote solver and
// translates its degraded statuses into actionable suggestions. Infeasible
// outcomes are recoverable: the user retries with a relaxed constraint or a
// wider universe, so they never surface as errors.
type OptimizerService struct {
	optimizer Optimizer
}

// NewOptimizerService creates a new OptimizerService.
func NewOptimizerService(optimizer Optimizer) *OptimizerService {
	return &OptimizerService{optimizer: optimizer}
}

// ProposeAllocation requests an optimal allocation over the portfolio plus
// any extra assets. Locked holdings are forwarded so the solver keeps their
// current allocation.
func (s *OptimizerService) ProposeAllocation(ctx context.Context, req *models.OptimizeProposalRequest) (*models.OptimizeProposalResponse, error) {
	defer TrackTime("ProposeAllocation", time.Now())

	assets := make([]string, 0, len(req.Items)+len(req.ExtraAssets))
	var locked []string
	for _, item := range req.Items {
		assets = append(assets, item.Fund.ISIN)
		if item.Locked {
			locked = append(locked, item.Fund.ISIN)
		}
	}
	assets = append(assets, req.ExtraAssets...)

	resp, err := s.optimizer.Optimize(ctx, quant.OptimizeRequest{
		Assets:       assets,
		RiskLevel:    req.RiskLevel,
		LockedAssets: locked,
	})
	if err != nil {
		return nil, fmt.Errorf("optimizer request failed: %w", err)
	}

	out := &models.OptimizeProposalResponse{
		Status:  resp.Status,
		Weights: resp.Weights,
	}

	switch resp.Status {
	case quant.StatusInfeasibleEquityFloor:
		out.Suggestions = append(out.Suggestions,
			"the equity floor cannot be met with this universe; add equity funds or lower the risk level")
		AddWarning(ctx, models.Warning{
			Code:    models.WarnOptimizerEquityFloor,
			Message: "optimizer could not satisfy the equity floor",
		})
	case quant.StatusFallbackNoHistory:
		out.Suggestions = append(out.Suggestions,
			"some funds lack enough history for optimization; the proposal used a fallback allocation")
		AddWarning(ctx, models.Warning{
			Code:    models.WarnOptimizerNoHistory,
			Message: "optimizer fell back due to missing fund history",
		})
	}

	out.Suggestions = append(out.Suggestions, resp.Warnings...)

	return out, nil
}
