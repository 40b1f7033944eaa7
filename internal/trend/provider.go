package trend

import (
	"context"

	"github.com/andresuchdata/atim/backend-go/internal/domain"
)

// Provider fetches interest-over-time for a keyword on a 0-100 scale,
// oldest first. Implementations return domain.ErrNoData when the keyword
// has no series, a *domain.RateLimitError when throttled, and any other
// error for failures that should skip the keyword.
type Provider interface {
	Name() string
	InterestOverTime(ctx context.Context, keyword, geo, timeframe string) ([]float64, error)
}

// SeriesCache stores provider responses by key. Misses and cache failures
// both report false.
type SeriesCache interface {
	GetSeries(ctx context.Context, key string) ([]float64, bool)
	SetSeries(ctx context.Context, key string, series []float64)
}

// NoopProvider has no credentials and never returns data.
type NoopProvider struct{}

func (NoopProvider) Name() string { return "noop" }

func (NoopProvider) InterestOverTime(context.Context, string, string, string) ([]float64, error) {
	return nil, domain.ErrNoData
}

type noopSeriesCache struct{}

func (noopSeriesCache) GetSeries(context.Context, string) ([]float64, bool) { return nil, false }
func (noopSeriesCache) SetSeries(context.Context, string, []float64)        {}

// SeriesKey identifies a cached series.
func SeriesKey(keyword, geo, timeframe string) string {
	return geo + ":" + timeframe + ":" + keyword
}
