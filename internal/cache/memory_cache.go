package cache

import (
	"sync"
	"time"

	"github.com/msanjurjo/fundlens/internal/models"
	"github.com/msanjurjo/fundlens/internal/quant"
)

// MemoryCache provides an in-memory L1 cache for normalized funds and
// backtest metrics. Normalized funds are derived views: they stay valid
// until the raw document is re-fetched, so the TTL only bounds staleness
// against store updates.
type MemoryCache struct {
	funds       map[string]fundEntry
	backtests   map[string]backtestEntry
	fundMu      sync.RWMutex
	backtestMu  sync.RWMutex
	fundTTL     time.Duration
	backtestTTL time.Duration
}

type fundEntry struct {
	fund      *models.NormalizedFund
	fetchedAt time.Time
}

type backtestEntry struct {
	metrics   quant.BacktestMetrics
	fetchedAt time.Time
}

// NewMemoryCache creates a new in-memory cache.
func NewMemoryCache(fundTTL, backtestTTL time.Duration) *MemoryCache {
	return &MemoryCache{
		funds:       make(map[string]fundEntry),
		backtests:   make(map[string]backtestEntry),
		fundTTL:     fundTTL,
		backtestTTL: backtestTTL,
	}
}

// GetFund retrieves a cached normalized fund if present and fresh.
func (c *MemoryCache) GetFund(isin string) (*models.NormalizedFund, bool) {
	c.fundMu.RLock()
	defer c.fundMu.RUnlock()

	entry, exists := c.funds[isin]
	if !exists || time.Since(entry.fetchedAt) > c.fundTTL {
		return nil, false
	}
	return entry.fund, true
}

// SetFund stores a normalized fund.
func (c *MemoryCache) SetFund(isin string, fund *models.NormalizedFund) {
	c.fundMu.Lock()
	defer c.fundMu.Unlock()
	c.funds[isin] = fundEntry{fund: fund, fetchedAt: time.Now()}
}

// InvalidateFund drops a fund so the next read re-fetches and re-normalizes.
func (c *MemoryCache) InvalidateFund(isin string) {
	c.fundMu.Lock()
	defer c.fundMu.Unlock()
	delete(c.funds, isin)
}

// GetBacktest retrieves cached backtest metrics for a request key.
func (c *MemoryCache) GetBacktest(key string) (quant.BacktestMetrics, bool) {
	c.backtestMu.RLock()
	defer c.backtestMu.RUnlock()

	entry, exists := c.backtests[key]
	if !exists || time.Since(entry.fetchedAt) > c.backtestTTL {
		return quant.BacktestMetrics{}, false
	}
	return entry.metrics, true
}

// SetBacktest stores backtest metrics for a request key.
func (c *MemoryCache) SetBacktest(key string, metrics quant.BacktestMetrics) {
	c.backtestMu.Lock()
	defer c.backtestMu.Unlock()
	c.backtests[key] = backtestEntry{metrics: metrics, fetchedAt: time.Now()}
}
