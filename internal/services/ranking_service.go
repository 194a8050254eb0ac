package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/msanjurjo/fundlens/internal/cache"
	"github.com/msanjurjo/fundlens/internal/models"
	"github.com/msanjurjo/fundlens/internal/quant"
	log "github.com/sirupsen/logrus"
)

// DefaultProbeWeight is the fixed probe allocation a candidate receives in
// a hypothetical portfolio: 5% of the whole, with every existing holding
// shrunk proportionally to make room.
const DefaultProbeWeight = 0.05

// Backtester is the slice of the quant client the ranker consumes.
type Backtester interface {
	Backtest(ctx context.Context, req quant.BacktestRequest) (*quant.BacktestResponse, error)
}

// ProgressFunc reports ranking progress as processed/total after every
// candidate, successful or not.
type ProgressFunc func(processed, total int)

// RankingService evaluates the simulated marginal effect of adding each
// candidate to a portfolio. Candidates are processed strictly sequentially,
// one backtest in flight at a time: latency is traded away deliberately to
// avoid piling concurrent simulations onto the remote service.
type RankingService struct {
	backtester  Backtester
	cache       *cache.MemoryCache
	probeWeight float64
}

// NewRankingService creates a new RankingService.
func NewRankingService(backtester Backtester, memCache *cache.MemoryCache) *RankingService {
	return &RankingService{
		backtester:  backtester,
		cache:       memCache,
		probeWeight: DefaultProbeWeight,
	}
}

// Baseline backtests the current portfolio and returns its Sharpe ratio.
// Metrics are cached per portfolio composition and period.
func (s *RankingService) Baseline(ctx context.Context, portfolio []models.PortfolioItem, period string) (float64, error) {
	defer TrackTime("Baseline", time.Now())

	period = normalizePeriod(period)
	key := baselineKey(portfolio, period)
	if metrics, ok := s.cache.GetBacktest(key); ok {
		return metrics.Sharpe, nil
	}

	resp, err := s.backtester.Backtest(ctx, quant.BacktestRequest{
		Portfolio: toPositions(portfolio),
		Period:    period,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to backtest current portfolio: %w", err)
	}

	s.cache.SetBacktest(key, resp.Metrics)
	return resp.Metrics.Sharpe, nil
}

// Rank backtests one hypothetical portfolio per candidate and orders the
// results by impact (projected Sharpe minus baseline), best first. A failed
// backtest drops that candidate with a warning and the batch continues; a
// canceled context abandons the remaining iterations and returns the
// context error so stale results are never applied.
func (s *RankingService) Rank(ctx context.Context, portfolio []models.PortfolioItem, candidates []models.NormalizedFund, baselineSharpe float64, period string, onProgress ProgressFunc) ([]models.CandidateResult, error) {
	defer TrackTime("Rank", time.Now())

	period = normalizePeriod(period)
	held := make(map[string]struct{}, len(portfolio))
	for _, item := range portfolio {
		held[item.Fund.ISIN] = struct{}{}
	}

	total := len(candidates)
	var results []models.CandidateResult

	for i, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if _, ok := held[candidate.ISIN]; ok {
			reportProgress(onProgress, i+1, total)
			continue
		}

		resp, err := s.backtester.Backtest(ctx, quant.BacktestRequest{
			Portfolio: s.hypothetical(portfolio, candidate),
			Period:    period,
		})
		if err != nil {
			log.Warnf("ranking: backtest failed for candidate %s, skipping: %v", candidate.ISIN, err)
			reportProgress(onProgress, i+1, total)
			continue
		}

		results = append(results, models.CandidateResult{
			Fund:             candidate,
			IndividualSharpe: candidate.Sharpe,
			ProjectedSharpe:  resp.Metrics.Sharpe,
			Impact:           resp.Metrics.Sharpe - baselineSharpe,
		})
		reportProgress(onProgress, i+1, total)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Impact > results[j].Impact
	})
	return results, nil
}

// hypothetical shrinks every existing weight by (1 - probeWeight) and adds
// the candidate at probeWeight, expressed as decimal fractions.
func (s *RankingService) hypothetical(portfolio []models.PortfolioItem, candidate models.NormalizedFund) []quant.BacktestPosition {
	positions := make([]quant.BacktestPosition, 0, len(portfolio)+1)
	for _, item := range portfolio {
		positions = append(positions, quant.BacktestPosition{
			ISIN:   item.Fund.ISIN,
			Weight: item.Weight / 100 * (1 - s.probeWeight),
		})
	}
	return append(positions, quant.BacktestPosition{
		ISIN:   candidate.ISIN,
		Weight: s.probeWeight,
	})
}

// normalizePeriod falls back to the 3-year window, the dashboard default.
func normalizePeriod(period string) string {
	switch period {
	case quant.Period1Y, quant.Period3Y, quant.Period5Y:
		return period
	}
	return quant.Period3Y
}

func reportProgress(onProgress ProgressFunc, processed, total int) {
	if onProgress != nil {
		onProgress(processed, total)
	}
}

func toPositions(portfolio []models.PortfolioItem) []quant.BacktestPosition {
	positions := make([]quant.BacktestPosition, 0, len(portfolio))
	for _, item := range portfolio {
		positions = append(positions, quant.BacktestPosition{
			ISIN:   item.Fund.ISIN,
			Weight: item.Weight / 100,
		})
	}
	return positions
}

func baselineKey(portfolio []models.PortfolioItem, period string) string {
	parts := make([]string, 0, len(portfolio)+1)
	for _, item := range portfolio {
		parts = append(parts, fmt.Sprintf("%s:%.4f", item.Fund.ISIN, item.Weight))
	}
	sort.Strings(parts)
	return period + "|" + strings.Join(parts, ",")
}
