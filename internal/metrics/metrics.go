package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "atim"

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Trend provider metrics
	TrendFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trend_fetches_total",
			Help:      "Trend series lookups by outcome",
		},
		[]string{"outcome"},
	)

	RateLimitRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_retries_total",
			Help:      "Retries caused by provider rate limiting",
		},
		[]string{"provider"},
	)

	// Recommendation metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Generated recommendations by source",
		},
		[]string{"source"},
	)

	// Analysis pipeline metrics
	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Duration of full analysis runs in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"outcome"},
	)

	LowStockItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "low_stock_items",
			Help:      "Items at or below reorder point in the last analysis",
		},
	)
)

// Trend fetch outcomes
const (
	FetchOK        = "ok"
	FetchCacheHit  = "cache_hit"
	FetchNoData    = "no_data"
	FetchRateLimit = "rate_limited"
	FetchError     = "error"
)

// RecordTrendFetch increments the trend fetch counter for outcome
func RecordTrendFetch(outcome string) {
	TrendFetchesTotal.WithLabelValues(outcome).Inc()
}

// RecordRateLimitRetry counts one backoff-and-retry against provider
func RecordRateLimitRetry(provider string) {
	RateLimitRetriesTotal.WithLabelValues(provider).Inc()
}

// RecordRecommendation counts a recommendation by its source label
func RecordRecommendation(source string) {
	RecommendationsTotal.WithLabelValues(source).Inc()
}

// TrackAnalysis returns a function that records the duration of an analysis run
func TrackAnalysis(start time.Time) func(outcome string) {
	return func(outcome string) {
		AnalysisDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}
}
