package services

import (
	"time"

	"github.com/msanjurjo/fundlens/internal/buckets"
	"github.com/msanjurjo/fundlens/internal/models"
)

// RebalanceService wraps bucket classification and proportional rescaling
// behind one injected classifier policy.
type RebalanceService struct {
	policy buckets.Policy
}

// NewRebalanceService creates a new RebalanceService.
func NewRebalanceService(policy buckets.Policy) *RebalanceService {
	return &RebalanceService{policy: policy}
}

// CurrentBuckets returns the per-bucket weight sums of a portfolio.
func (s *RebalanceService) CurrentBuckets(items []models.PortfolioItem) models.BucketWeights {
	return buckets.CurrentWeights(items, s.policy)
}

// Rescale proportionally rescales the portfolio toward the target bucket
// weights. Infeasible targets surface as *buckets.InfeasibleError with the
// original portfolio untouched.
func (s *RebalanceService) Rescale(items []models.PortfolioItem, targets models.BucketWeights) ([]models.PortfolioItem, error) {
	defer TrackTime("Rescale", time.Now())
	return buckets.Rescale(items, targets, s.policy)
}
