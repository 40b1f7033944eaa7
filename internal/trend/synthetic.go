package trend

import (
	"math/rand"

	"github.com/andresuchdata/atim/backend-go/internal/domain"
)

// DefaultSyntheticCount is how many keywords get a synthetic trend.
const DefaultSyntheticCount = 5

const (
	syntheticStrengthMin = 40.0
	syntheticStrengthMax = 80.0
	syntheticVelocityMin = -10.0
	syntheticVelocityMax = 15.0
	syntheticPeakRatio   = 1.2
)

// SyntheticTrends fabricates one result per keyword for the first n keywords
// so a run without provider data can still produce recommendations. Every
// result is flagged Synthetic.
func SyntheticTrends(keywords []string, n int, rng *rand.Rand) []domain.TrendResult {
	if n <= 0 {
		n = DefaultSyntheticCount
	}
	if len(keywords) > n {
		keywords = keywords[:n]
	}
	r := newLockedRand(rng)

	results := make([]domain.TrendResult, 0, len(keywords))
	for _, kw := range keywords {
		strength := r.uniform(syntheticStrengthMin, syntheticStrengthMax)
		velocity := r.uniform(syntheticVelocityMin, syntheticVelocityMax)
		results = append(results, domain.TrendResult{
			Keyword:      kw,
			Velocity:     velocity,
			Strength:     strength,
			Status:       Classify(velocity, strength),
			Confidence:   Confidence(velocity, strength),
			CurrentValue: strength,
			PeakValue:    strength * syntheticPeakRatio,
			Synthetic:    true,
		})
	}
	return results
}

// SyntheticList wraps SyntheticTrends in a ranked, unfiltered TrendList.
func SyntheticList(keywords []string, n int, rng *rand.Rand) domain.TrendList {
	results := SyntheticTrends(keywords, n, rng)
	sortByConfidence(results)
	return domain.TrendList{Results: results, Synthetic: true}
}
