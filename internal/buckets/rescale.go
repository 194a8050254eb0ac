package buckets

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/msanjurjo/fundlens/internal/models"
)

// ErrTargetSum is returned when bucket targets do not sum to 100 (+/- 1).
var ErrTargetSum = errors.New("bucket targets must sum to 100")

// ErrUnknownBucket is returned when a target names a bucket outside the
// closed set.
var ErrUnknownBucket = errors.New("unknown bucket in targets")

// targetSumTolerance absorbs UI rounding on target sliders.
const targetSumTolerance = 1.0

// emptyBucketEpsilon is the weight below which a bucket counts as empty.
const emptyBucketEpsilon = 0.01

var knownBuckets = func() map[models.Bucket]bool {
	m := make(map[models.Bucket]bool, len(models.AllBuckets))
	for _, b := range models.AllBuckets {
		m[b] = true
	}
	return m
}()

// InfeasibleError reports buckets that carry a positive target but hold no
// current weight: a proportional rescale cannot grow a bucket from nothing.
type InfeasibleError struct {
	Buckets []models.Bucket
}

func (e *InfeasibleError) Error() string {
	names := make([]string, len(e.Buckets))
	for i, b := range e.Buckets {
		names[i] = string(b)
	}
	return fmt.Sprintf("cannot rescale into empty buckets: %s", strings.Join(names, ", "))
}

// CurrentWeights classifies every item and sums weights per bucket. Every
// bucket appears in the result, empty ones at zero.
func CurrentWeights(items []models.PortfolioItem, policy Policy) models.BucketWeights {
	current := make(models.BucketWeights, len(models.AllBuckets))
	for _, bucket := range models.AllBuckets {
		current[bucket] = 0
	}
	for _, item := range items {
		bucket, _ := Classify(item, policy)
		current[bucket] += item.Weight
	}
	return current
}

// Rescale proportionally scales every item so that realized per-bucket
// totals match the targets. Within a bucket the relative proportions
// between members are preserved exactly; holdings are never added or
// removed. The input slice is not modified. Buckets with a positive target
// but no current weight make the request infeasible, reported all at once
// via InfeasibleError with the input left untouched.
func Rescale(items []models.PortfolioItem, targets models.BucketWeights, policy Policy) ([]models.PortfolioItem, error) {
	for bucket := range targets {
		if !knownBuckets[bucket] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownBucket, bucket)
		}
	}
	if sum := targets.Total(); math.Abs(sum-100) > targetSumTolerance {
		return nil, fmt.Errorf("%w: got %.2f", ErrTargetSum, sum)
	}

	current := CurrentWeights(items, policy)

	var infeasible []models.Bucket
	for bucket, target := range targets {
		if target > 0 && current[bucket] < emptyBucketEpsilon {
			infeasible = append(infeasible, bucket)
		}
	}
	if len(infeasible) > 0 {
		sort.Slice(infeasible, func(i, j int) bool { return infeasible[i] < infeasible[j] })
		return nil, &InfeasibleError{Buckets: infeasible}
	}

	rescaled := make([]models.PortfolioItem, len(items))
	for i, item := range items {
		bucket, _ := Classify(item, policy)
		rescaled[i] = item
		if current[bucket] < emptyBucketEpsilon {
			// Empty bucket with zero (or absent) target: nothing to scale.
			continue
		}
		factor := targets[bucket] / current[bucket]
		rescaled[i].Weight = item.Weight * factor
	}

	return rescaled, nil
}
