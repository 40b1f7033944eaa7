package trend

import (
	"math"

	"github.com/andresuchdata/atim/backend-go/internal/domain"
)

// Scoring thresholds and weights.
const (
	RisingVelocity    = 5.0
	DecliningVelocity = -5.0
	PeakingStrength   = 70.0

	// VelocityWindow is how many trailing observations feed the velocity.
	VelocityWindow = 4

	VelocityWeight = 0.6
	StrengthWeight = 0.4
)

// Velocity is the mean first difference over the last VelocityWindow points.
func Velocity(series []float64) float64 {
	if len(series) < 2 {
		return 0
	}
	window := series
	if len(window) > VelocityWindow {
		window = window[len(window)-VelocityWindow:]
	}

	var sum float64
	for i := 1; i < len(window); i++ {
		sum += window[i] - window[i-1]
	}
	return sum / float64(len(window)-1)
}

// Strength is the arithmetic mean of the whole series.
func Strength(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	var sum float64
	for _, v := range series {
		sum += v
	}
	return sum / float64(len(series))
}

// Classify maps velocity and strength to a status. Rising and Declining
// take precedence over Peaking; all comparisons are strict.
func Classify(velocity, strength float64) domain.TrendStatus {
	switch {
	case velocity > RisingVelocity:
		return domain.TrendRising
	case velocity < DecliningVelocity:
		return domain.TrendDeclining
	case strength > PeakingStrength:
		return domain.TrendPeaking
	default:
		return domain.TrendStable
	}
}

// Confidence weighs the absolute velocity against the strength.
func Confidence(velocity, strength float64) float64 {
	return VelocityWeight*math.Abs(velocity) + StrengthWeight*strength
}

// Score builds the TrendResult for one keyword's series. An empty series
// yields zeros throughout.
func Score(keyword string, series []float64) domain.TrendResult {
	result := domain.TrendResult{Keyword: keyword, Status: domain.TrendStable}
	if len(series) == 0 {
		return result
	}

	v := Velocity(series)
	s := Strength(series)

	peak := series[0]
	for _, x := range series[1:] {
		if x > peak {
			peak = x
		}
	}

	result.Velocity = v
	result.Strength = s
	result.Status = Classify(v, s)
	result.Confidence = Confidence(v, s)
	result.CurrentValue = series[len(series)-1]
	result.PeakValue = peak
	return result
}
