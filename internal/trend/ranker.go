package trend

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"time"

	"github.com/andresuchdata/atim/backend-go/internal/domain"
	"github.com/andresuchdata/atim/backend-go/internal/metrics"
	"github.com/rs/zerolog/log"
)

// KeywordSeries is a fetched series waiting to be scored.
type KeywordSeries struct {
	Keyword string
	Values  []float64
}

// Ranker fetches, scores and ranks trend keywords. Provider calls are
// strictly sequential.
type Ranker struct {
	provider  Provider
	cache     SeriesCache
	throttle  *Throttle
	retry     RetryPolicy
	geo       string
	timeframe string
	rng       *lockedRand
}

// Option configures a Ranker.
type Option func(*Ranker)

// WithCache serves series from c before calling the provider.
func WithCache(c SeriesCache) Option {
	return func(r *Ranker) {
		if c != nil {
			r.cache = c
		}
	}
}

// WithThrottle replaces the default 3-6s throttle.
func WithThrottle(t *Throttle) Option {
	return func(r *Ranker) {
		if t != nil {
			r.throttle = t
		}
	}
}

// WithRetryPolicy replaces DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(r *Ranker) {
		if p.Attempts < 1 {
			p.Attempts = 1
		}
		r.retry = p
	}
}

// WithRegion sets the geography and time window sent to the provider.
func WithRegion(geo, timeframe string) Option {
	return func(r *Ranker) {
		r.geo = geo
		r.timeframe = timeframe
	}
}

// WithRand seeds backoff jitter.
func WithRand(rng *rand.Rand) Option {
	return func(r *Ranker) {
		r.rng = newLockedRand(rng)
	}
}

// NewRanker creates a ranker around provider.
func NewRanker(provider Provider, opts ...Option) *Ranker {
	if provider == nil {
		provider = NoopProvider{}
	}
	r := &Ranker{
		provider:  provider,
		cache:     noopSeriesCache{},
		throttle:  NewThrottle(3*time.Second, 6*time.Second, nil),
		retry:     DefaultRetryPolicy,
		geo:       "US",
		timeframe: "today 3-m",
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rng == nil {
		r.rng = newLockedRand(nil)
	}
	return r
}

// ProviderName reports which provider backs the ranker.
func (r *Ranker) ProviderName() string {
	return r.provider.Name()
}

// Rank scores the first maxKeywords keywords and returns them sorted by
// confidence. A keyword that fails to fetch is skipped. Besides the
// context's error, Rank only fails with a ValidationError when maxKeywords
// is not positive.
//
// An empty Results means no keyword produced data at all. When every
// result falls below minConfidence the full sorted list is returned with
// Filtered set to false.
func (r *Ranker) Rank(ctx context.Context, keywords []string, maxKeywords int, minConfidence float64) (domain.TrendList, error) {
	if maxKeywords <= 0 {
		return domain.TrendList{}, &domain.ValidationError{Field: "max_keywords", Message: "must be at least 1"}
	}
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}

	log.Info().
		Str("provider", r.provider.Name()).
		Int("keywords", len(keywords)).
		Msg("trend: fetching interest over time")

	run := &fetchRun{}
	fetched := make([]KeywordSeries, 0, len(keywords))
	for _, kw := range keywords {
		if err := ctx.Err(); err != nil {
			return domain.TrendList{}, err
		}

		series, err := r.fetch(ctx, run, kw)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return domain.TrendList{}, ctxErr
			}
			if errors.Is(err, domain.ErrNoData) {
				metrics.RecordTrendFetch(metrics.FetchNoData)
				log.Debug().Str("keyword", kw).Msg("trend: no data, skipping")
				continue
			}
			if _, ok := domain.IsRateLimit(err); ok {
				metrics.RecordTrendFetch(metrics.FetchRateLimit)
			} else {
				metrics.RecordTrendFetch(metrics.FetchError)
			}
			log.Warn().Err(err).Str("keyword", kw).Msg("trend: fetch failed, skipping")
			continue
		}
		if len(series) == 0 {
			metrics.RecordTrendFetch(metrics.FetchNoData)
			continue
		}

		fetched = append(fetched, KeywordSeries{Keyword: kw, Values: series})
	}

	list := ScoreAll(fetched, minConfidence)

	log.Info().
		Int("scored", len(fetched)).
		Int("returned", len(list.Results)).
		Bool("filtered", list.Filtered).
		Msg("trend: ranking complete")

	return list, nil
}

type fetchRun struct {
	calls int
}

func (r *Ranker) fetch(ctx context.Context, run *fetchRun, keyword string) ([]float64, error) {
	key := SeriesKey(keyword, r.geo, r.timeframe)
	if series, ok := r.cache.GetSeries(ctx, key); ok {
		metrics.RecordTrendFetch(metrics.FetchCacheHit)
		return series, nil
	}

	var lastErr error
	for attempt := 0; attempt < r.retry.Attempts; attempt++ {
		// jitter only between distinct keywords; retries already back off
		wait := r.throttle.Acquire
		if run.calls > 0 && attempt == 0 {
			wait = r.throttle.Wait
		}
		if err := wait(ctx); err != nil {
			return nil, err
		}
		run.calls++

		series, err := r.provider.InterestOverTime(ctx, keyword, r.geo, r.timeframe)
		if err == nil {
			metrics.RecordTrendFetch(metrics.FetchOK)
			if len(series) > 0 {
				r.cache.SetSeries(ctx, key, series)
			}
			return series, nil
		}

		rl, ok := domain.IsRateLimit(err)
		if !ok {
			return nil, err
		}
		lastErr = err
		if attempt == r.retry.Attempts-1 {
			break
		}

		delay := r.retry.backoff(attempt, rl.RetryAfter, r.rng)
		metrics.RecordRateLimitRetry(r.provider.Name())
		log.Warn().
			Str("keyword", keyword).
			Int("attempt", attempt+1).
			Dur("backoff", delay).
			Msg("trend: rate limited, backing off")

		if err := sleepCtx(ctx, delay); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// ScoreAll scores every series, sorts by confidence descending (ties keep
// input order) and applies the confidence floor with fallback.
func ScoreAll(series []KeywordSeries, minConfidence float64) domain.TrendList {
	scored := make([]domain.TrendResult, 0, len(series))
	for _, s := range series {
		scored = append(scored, Score(s.Keyword, s.Values))
	}
	return Filter(scored, minConfidence)
}

// Filter sorts results and keeps those at or above minConfidence. If that
// would leave nothing from a non-empty input, the whole sorted input is
// returned instead.
func Filter(results []domain.TrendResult, minConfidence float64) domain.TrendList {
	sorted := make([]domain.TrendResult, len(results))
	copy(sorted, results)
	sortByConfidence(sorted)

	kept := make([]domain.TrendResult, 0, len(sorted))
	for _, tr := range sorted {
		if tr.Confidence >= minConfidence {
			kept = append(kept, tr)
		}
	}

	if len(kept) == 0 && len(sorted) > 0 {
		log.Debug().
			Float64("min_confidence", minConfidence).
			Int("results", len(sorted)).
			Msg("trend: nothing above confidence floor, returning all results")
		return domain.TrendList{Results: sorted, Filtered: false}
	}
	return domain.TrendList{Results: kept, Filtered: true}
}

func sortByConfidence(results []domain.TrendResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})
}
