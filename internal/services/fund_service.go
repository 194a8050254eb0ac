package services

import (
	"context"
	"fmt"
	"time"

	"github.com/msanjurjo/fundlens/internal/cache"
	"github.com/msanjurjo/fundlens/internal/models"
	"github.com/msanjurjo/fundlens/internal/normalize"
	"github.com/msanjurjo/fundlens/internal/repository"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// FundStore is the slice of the fund repository the services consume.
type FundStore interface {
	GetByISIN(ctx context.Context, isin string) ([]byte, error)
	Search(ctx context.Context, q repository.FundQuery) ([]repository.FundDocument, error)
	SearchByClasses(ctx context.Context, classes []string, limit int) ([]repository.FundDocument, error)
	SearchByName(ctx context.Context, fragment string, limit int) ([]repository.FundDocument, error)
}

// FundService resolves ISINs to normalized funds: fetch the raw document,
// run it through the schema adapter and normalization, cache the result.
// The normalized view is recomputed whenever the raw document is re-fetched,
// never patched in place.
type FundService struct {
	store FundStore
	cache *cache.MemoryCache
	group singleflight.Group
}

// NewFundService creates a new FundService.
func NewFundService(store FundStore, memCache *cache.MemoryCache) *FundService {
	return &FundService{
		store: store,
		cache: memCache,
	}
}

// GetFund returns the normalized view of one fund. Concurrent requests for
// the same ISIN are collapsed into a single store round trip.
func (s *FundService) GetFund(ctx context.Context, isin string) (*models.NormalizedFund, error) {
	defer TrackTime("GetFund", time.Now())

	if fund, ok := s.cache.GetFund(isin); ok {
		return fund, nil
	}

	v, err, _ := s.group.Do(isin, func() (any, error) {
		doc, err := s.store.GetByISIN(ctx, isin)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch fund %s: %w", isin, err)
		}
		fund := normalize.Normalize(doc)
		if fund.Volatility == nil && fund.Sharpe == nil && fund.CAGR3Y == nil {
			log.Warnf("fund %s normalized without performance data", isin)
			AddWarning(ctx, models.Warning{
				Code:    models.WarnFundDataIncomplete,
				Message: fmt.Sprintf("fund %s has no resolvable performance fields", isin),
			})
		}
		s.cache.SetFund(isin, fund)
		return fund, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.NormalizedFund), nil
}

// Refresh drops the cached view so the next read re-fetches the document.
func (s *FundService) Refresh(isin string) {
	s.cache.InvalidateFund(isin)
}
