package trend

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/andresuchdata/atim/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResponse struct {
	series []float64
	err    error
}

type fakeProvider struct {
	mu        sync.Mutex
	responses map[string][]fakeResponse
	calls     []string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) InterestOverTime(_ context.Context, keyword, _, _ string) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, keyword)
	queue := f.responses[keyword]
	if len(queue) == 0 {
		return nil, domain.ErrNoData
	}
	next := queue[0]
	if len(queue) > 1 {
		f.responses[keyword] = queue[1:]
	}
	return next.series, next.err
}

type mapCache map[string][]float64

func (m mapCache) GetSeries(_ context.Context, key string) ([]float64, bool) {
	s, ok := m[key]
	return s, ok
}

func (m mapCache) SetSeries(_ context.Context, key string, series []float64) {
	m[key] = series
}

func newTestRanker(p Provider, opts ...Option) *Ranker {
	base := []Option{
		WithThrottle(NewThrottle(0, 0, nil)),
		WithRetryPolicy(RetryPolicy{Attempts: 3}),
		WithRand(rand.New(rand.NewSource(1))),
	}
	return NewRanker(p, append(base, opts...)...)
}

func ok(series ...float64) []fakeResponse {
	return []fakeResponse{{series: series}}
}

func keywordsOf(results []domain.TrendResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Keyword)
	}
	return out
}

func TestRankSortsByConfidence(t *testing.T) {
	p := &fakeProvider{responses: map[string][]fakeResponse{
		"a": ok(10, 20, 35, 50), // 19.5
		"b": ok(75),             // 30
		"c": ok(90, 90, 90),     // 36
	}}

	list, err := newTestRanker(p).Rank(context.Background(), []string{"a", "b", "c"}, 15, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"c", "b", "a"}, keywordsOf(list.Results))
	assert.True(t, list.Filtered)
	assert.False(t, list.Synthetic)
}

func TestRankIsStableOnTies(t *testing.T) {
	p := &fakeProvider{responses: map[string][]fakeResponse{
		"first":  ok(50),
		"second": ok(50),
		"third":  ok(50),
		"top":    ok(75),
	}}

	list, err := newTestRanker(p).Rank(context.Background(), []string{"first", "second", "top", "third"}, 15, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"top", "first", "second", "third"}, keywordsOf(list.Results))
}

func TestRankAppliesConfidenceFloor(t *testing.T) {
	p := &fakeProvider{responses: map[string][]fakeResponse{
		"low":  ok(50), // 20
		"high": ok(75), // 30
	}}

	list, err := newTestRanker(p).Rank(context.Background(), []string{"low", "high"}, 15, 25)
	require.NoError(t, err)
	assert.Equal(t, []string{"high"}, keywordsOf(list.Results))
	assert.True(t, list.Filtered)
}

func TestRankFallsBackToFullListWhenFloorEmptiesIt(t *testing.T) {
	p := &fakeProvider{responses: map[string][]fakeResponse{
		"low":  ok(50), // 20
		"high": ok(75), // 30
	}}

	list, err := newTestRanker(p).Rank(context.Background(), []string{"low", "high"}, 15, 99)
	require.NoError(t, err)
	require.Len(t, list.Results, 2)
	assert.Equal(t, []string{"high", "low"}, keywordsOf(list.Results))
	assert.InDelta(t, 30, list.Results[0].Confidence, 1e-9)
	assert.InDelta(t, 20, list.Results[1].Confidence, 1e-9)
	assert.False(t, list.Filtered)
}

func TestRankWithNoDataReturnsEmpty(t *testing.T) {
	list, err := newTestRanker(NoopProvider{}).Rank(context.Background(), []string{"a", "b"}, 15, 99)
	require.NoError(t, err)
	assert.True(t, list.Empty())
}

func TestRankTruncatesKeywords(t *testing.T) {
	p := &fakeProvider{responses: map[string][]fakeResponse{
		"a": ok(1), "b": ok(2), "c": ok(3),
	}}

	_, err := newTestRanker(p).Rank(context.Background(), []string{"a", "b", "c"}, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, p.calls)
}

func TestRankRejectsNonPositiveMaxKeywords(t *testing.T) {
	for _, limit := range []int{0, -3} {
		p := &fakeProvider{responses: map[string][]fakeResponse{"a": ok(1)}}

		_, err := newTestRanker(p).Rank(context.Background(), []string{"a"}, limit, 0)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "max_keywords", verr.Field)
		assert.Empty(t, p.calls)
	}
}

func TestRankRetriesRateLimits(t *testing.T) {
	limited := fakeResponse{err: &domain.RateLimitError{Provider: "fake"}}
	p := &fakeProvider{responses: map[string][]fakeResponse{
		"eventually": {limited, limited, {series: []float64{40, 60}}},
		"never":      {limited, limited, limited, {series: []float64{1}}},
		"broken":     {{err: errors.New("boom")}, {series: []float64{1}}},
	}}

	list, err := newTestRanker(p).Rank(context.Background(), []string{"eventually", "never", "broken"}, 15, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"eventually"}, keywordsOf(list.Results))
	assert.Equal(t, []string{
		"eventually", "eventually", "eventually",
		"never", "never", "never",
		"broken",
	}, p.calls)
}

func TestRankUsesCache(t *testing.T) {
	p := &fakeProvider{responses: map[string][]fakeResponse{"fresh": ok(10, 20)}}
	cache := mapCache{SeriesKey("cached", "US", "today 3-m"): {70, 80}}

	list, err := newTestRanker(p, WithCache(cache)).Rank(context.Background(), []string{"cached", "fresh"}, 15, 0)
	require.NoError(t, err)

	assert.Len(t, list.Results, 2)
	assert.Equal(t, []string{"fresh"}, p.calls)
	assert.Equal(t, []float64{10, 20}, cache[SeriesKey("fresh", "US", "today 3-m")])
}

func TestRankStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &fakeProvider{responses: map[string][]fakeResponse{"a": ok(1)}}
	_, err := newTestRanker(p).Rank(ctx, []string{"a"}, 15, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, p.calls)
}

func TestRetryPolicyBackoff(t *testing.T) {
	rng := newLockedRand(rand.New(rand.NewSource(7)))

	assert.Equal(t, 2*time.Second, DefaultRetryPolicy.backoff(0, 2*time.Second, rng))

	for attempt, base := range []time.Duration{5 * time.Second, 10 * time.Second} {
		d := DefaultRetryPolicy.backoff(attempt, 0, rng)
		assert.GreaterOrEqual(t, d, base+time.Second)
		assert.LessOrEqual(t, d, base+3*time.Second)
	}
}

func TestThrottleSpacesCalls(t *testing.T) {
	th := NewThrottle(20*time.Millisecond, 20*time.Millisecond, nil)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, th.Wait(ctx))
	}
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}

func TestSyntheticTrends(t *testing.T) {
	keywords := []string{"a", "b", "c", "d", "e", "f", "g"}
	results := SyntheticTrends(keywords, 5, rand.New(rand.NewSource(42)))

	require.Len(t, results, 5)
	for i, r := range results {
		assert.Equal(t, keywords[i], r.Keyword)
		assert.True(t, r.Synthetic)
		assert.GreaterOrEqual(t, r.Strength, 40.0)
		assert.Less(t, r.Strength, 80.0)
		assert.GreaterOrEqual(t, r.Velocity, -10.0)
		assert.Less(t, r.Velocity, 15.0)
		assert.Equal(t, Classify(r.Velocity, r.Strength), r.Status)
		assert.InDelta(t, Confidence(r.Velocity, r.Strength), r.Confidence, 1e-9)
		assert.Equal(t, r.Strength, r.CurrentValue)
		assert.InDelta(t, r.Strength*1.2, r.PeakValue, 1e-9)
	}

	list := SyntheticList(keywords[:2], 5, rand.New(rand.NewSource(42)))
	assert.True(t, list.Synthetic)
	require.Len(t, list.Results, 2)
	assert.GreaterOrEqual(t, list.Results[0].Confidence, list.Results[1].Confidence)
}
