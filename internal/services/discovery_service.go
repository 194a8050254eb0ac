package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/msanjurjo/fundlens/internal/models"
	"github.com/msanjurjo/fundlens/internal/normalize"
	"github.com/msanjurjo/fundlens/internal/repository"
	log "github.com/sirupsen/logrus"
)

// DefaultCandidateCount bounds the candidate set when the caller does not
// ask for a specific size.
const DefaultCandidateCount = 10

// ultraShortMarkers identify the monetary-adjacent slice of fixed income:
// funds labeled RF whose name or category marks them as ultra-short.
var ultraShortMarkers = []string{
	"ultra short", "ultra-short", "ultrashort", "corto plazo",
}

// emergingMarkers catch emerging-market funds the store never tagged by region.
var emergingMarkers = []string{"emerging", "emergente"}

// DiscoveryFilters narrows a discovery run. Region "" means "match the
// target's region"; "all" disables region filtering entirely.
type DiscoveryFilters struct {
	Region string
}

// DiscoveryService searches the fund universe for substitutes of one held
// fund. Schema drift means the same asset class and region appear in the
// store under several labels, so each search expands into synonym variants;
// the store cannot OR two unrelated membership filters, so exact-region
// searches issue one query per region variant.
type DiscoveryService struct {
	store FundStore
	rng   *rand.Rand
}

// NewDiscoveryService creates a new DiscoveryService.
func NewDiscoveryService(store FundStore) *DiscoveryService {
	return &DiscoveryService{
		store: store,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// queryStrategy is one step in the degrading query chain: tried in order,
// first success wins, uniform failure predicate (any error degrades to the
// next strategy).
type queryStrategy struct {
	name string
	run  func(ctx context.Context) ([]repository.FundDocument, error)
}

// Discover returns a bounded set of substitute candidates for the target
// fund. The result never contains the target itself, an excluded ISIN, or
// a duplicate. An empty result is a valid outcome ("no alternatives
// found"), not an error: every query failure degrades to a coarser query
// before giving up.
func (s *DiscoveryService) Discover(ctx context.Context, target *models.NormalizedFund, exclude map[string]struct{}, filters DiscoveryFilters, desiredCount int) ([]models.NormalizedFund, error) {
	defer TrackTime("Discover", time.Now())

	if desiredCount <= 0 {
		desiredCount = DefaultCandidateCount
	}
	if target.AssetClass == nil {
		log.Warnf("discovery: target %s has no resolved asset class, nothing to search", target.ISIN)
		return nil, nil
	}

	classes := normalize.ClassSynonyms(*target.AssetClass)
	skipRegion := *target.AssetClass == models.AssetClassMoneyMarket ||
		filters.Region == "all" ||
		target.PrimaryRegion == nil

	docs := s.runStrategyChain(ctx, s.buildStrategies(classes, target, skipRegion))

	seen := map[string]struct{}{target.ISIN: {}}
	for isin := range exclude {
		seen[isin] = struct{}{}
	}

	var candidates []models.NormalizedFund
	collect := func(batch []repository.FundDocument) {
		for _, d := range batch {
			if _, dup := seen[d.ISIN]; dup {
				continue
			}
			seen[d.ISIN] = struct{}{}
			candidates = append(candidates, *normalize.Normalize(d.Doc))
		}
	}
	collect(docs)

	// Monetary funds overlap with ultra-short fixed income; pull that slice
	// of RF in as well. Failure is non-fatal, the primary set stands.
	if *target.AssetClass == models.AssetClassMoneyMarket {
		rf, err := s.store.SearchByClasses(ctx, normalize.ClassSynonyms(models.AssetClassFixedIncome), repository.MaxPageSize)
		if err != nil {
			log.Warnf("discovery: ultra-short cross-check failed: %v", err)
		} else {
			collect(filterDocs(rf, ultraShortMarkers))
		}
	}

	// Emerging-market funds are chronically under-tagged; a broad name
	// search catches documents the region filter missed.
	if !skipRegion && *target.PrimaryRegion == models.RegionEmerging {
		for _, marker := range emergingMarkers {
			broad, err := s.store.SearchByName(ctx, marker, repository.MaxPageSize)
			if err != nil {
				log.Warnf("discovery: emerging-market name query %q failed: %v", marker, err)
				continue
			}
			collect(filterDocsByClass(broad, *target.AssetClass))
		}
	}

	ranked := s.rankCandidates(candidates, target.Category)
	if len(ranked) > desiredCount {
		ranked = ranked[:desiredCount]
	}
	return ranked, nil
}

// buildStrategies assembles the ordered fallback chain: the composite
// class+region search (one query per region synonym), then a class-only
// search ordered by performance, then the coarse unordered class search.
func (s *DiscoveryService) buildStrategies(classes []string, target *models.NormalizedFund, skipRegion bool) []queryStrategy {
	var strategies []queryStrategy

	if !skipRegion {
		regionVariants := normalize.RegionSynonyms(*target.PrimaryRegion)
		strategies = append(strategies, queryStrategy{
			name: "class+region",
			run: func(ctx context.Context) ([]repository.FundDocument, error) {
				var merged []repository.FundDocument
				for _, region := range regionVariants {
					docs, err := s.store.Search(ctx, repository.FundQuery{
						Classes:            classes,
						Region:             region,
						OrderByPerformance: true,
						Limit:              repository.MaxPageSize,
					})
					if err != nil {
						return nil, fmt.Errorf("region variant %q: %w", region, err)
					}
					merged = append(merged, docs...)
				}
				return merged, nil
			},
		})
	}

	strategies = append(strategies, queryStrategy{
		name: "class-only",
		run: func(ctx context.Context) ([]repository.FundDocument, error) {
			return s.store.Search(ctx, repository.FundQuery{
				Classes:            classes,
				OrderByPerformance: true,
				Limit:              repository.MaxPageSize,
			})
		},
	})

	strategies = append(strategies, queryStrategy{
		name: "coarse",
		run: func(ctx context.Context) ([]repository.FundDocument, error) {
			return s.store.SearchByClasses(ctx, classes, repository.MaxPageSize)
		},
	})

	return strategies
}

// runStrategyChain tries each strategy in order and returns the first
// non-empty success. Exhausting the chain yields an empty set; the caller
// reports "no alternatives found" instead of surfacing a query error.
func (s *DiscoveryService) runStrategyChain(ctx context.Context, strategies []queryStrategy) []repository.FundDocument {
	for i, strat := range strategies {
		docs, err := strat.run(ctx)
		if err != nil {
			log.Warnf("discovery: %s query failed, degrading: %v", strat.name, err)
			if i+1 < len(strategies) {
				AddWarning(ctx, models.Warning{
					Code:    models.WarnDiscoveryDegraded,
					Message: fmt.Sprintf("%s search unavailable, using %s results", strat.name, strategies[i+1].name),
				})
			}
			continue
		}
		if len(docs) > 0 {
			return docs
		}
	}
	return nil
}

// rankCandidates prefers funds in the target's fine-grained category, then
// shuffles within each tier so repeated searches show some variety.
func (s *DiscoveryService) rankCandidates(candidates []models.NormalizedFund, targetCategory string) []models.NormalizedFund {
	var sameCategory, others []models.NormalizedFund
	for _, c := range candidates {
		if targetCategory != "" && strings.EqualFold(c.Category, targetCategory) {
			sameCategory = append(sameCategory, c)
		} else {
			others = append(others, c)
		}
	}
	s.shuffle(sameCategory)
	s.shuffle(others)
	return append(sameCategory, others...)
}

func (s *DiscoveryService) shuffle(funds []models.NormalizedFund) {
	s.rng.Shuffle(len(funds), func(i, j int) {
		funds[i], funds[j] = funds[j], funds[i]
	})
}

func filterDocsByClass(docs []repository.FundDocument, class models.AssetClass) []repository.FundDocument {
	var kept []repository.FundDocument
	for _, d := range docs {
		if normalize.Normalize(d.Doc).HasClass(class) {
			kept = append(kept, d)
		}
	}
	return kept
}

func filterDocs(docs []repository.FundDocument, markers []string) []repository.FundDocument {
	var kept []repository.FundDocument
	for _, d := range docs {
		fund := normalize.Normalize(d.Doc)
		haystack := strings.ToLower(fund.Name + " " + fund.Category)
		for _, m := range markers {
			if strings.Contains(haystack, m) {
				kept = append(kept, d)
				break
			}
		}
	}
	return kept
}
