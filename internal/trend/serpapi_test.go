package trend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andresuchdata/atim/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const timelineBody = `{
  "interest_over_time": {
    "timeline_data": [
      {"date": "Jun 1, 2025", "values": [{"query": "ankle boots", "value": "10", "extracted_value": 10}]},
      {"date": "Jun 8, 2025", "values": [{"query": "ankle boots", "value": "20", "extracted_value": 20}]},
      {"date": "Jun 15, 2025", "values": [{"query": "ankle boots", "value": "35", "extracted_value": 35}]},
      {"date": "Jun 22, 2025", "values": [{"query": "ankle boots", "value": "50", "extracted_value": 50}]}
    ]
  }
}`

func TestSerpAPIInterestOverTime(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "google_trends", q.Get("engine"))
		assert.Equal(t, "TIMESERIES", q.Get("data_type"))
		assert.Equal(t, "ankle boots", q.Get("q"))
		assert.Equal(t, "US", q.Get("geo"))
		assert.Equal(t, "today 3-m", q.Get("date"))
		assert.Equal(t, "secret", q.Get("api_key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(timelineBody))
	}))
	defer srv.Close()

	p := NewSerpAPIProvider("secret", srv.URL, time.Second)
	series, err := p.InterestOverTime(context.Background(), "ankle boots", "US", "today 3-m")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 35, 50}, series)
}

func TestSerpAPIRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": "Your account has run out of searches."}`))
	}))
	defer srv.Close()

	_, err := NewSerpAPIProvider("k", srv.URL, time.Second).InterestOverTime(context.Background(), "loafers", "US", "")
	rl, ok := domain.IsRateLimit(err)
	require.True(t, ok)
	assert.Equal(t, 7*time.Second, rl.RetryAfter)
	assert.Equal(t, "serpapi", rl.Provider)
}

func TestSerpAPINoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": "Google Trends hasn't returned any results for this query."}`))
	}))
	defer srv.Close()

	_, err := NewSerpAPIProvider("k", srv.URL, time.Second).InterestOverTime(context.Background(), "zzz", "US", "")
	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestSerpAPIServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "upstream failure"}`))
	}))
	defer srv.Close()

	_, err := NewSerpAPIProvider("k", srv.URL, time.Second).InterestOverTime(context.Background(), "mules", "US", "")
	var pErr *domain.ProviderError
	require.True(t, errors.As(err, &pErr))
	assert.Equal(t, http.StatusInternalServerError, pErr.StatusCode)
	assert.Equal(t, "mules", pErr.Keyword)
	assert.Contains(t, pErr.Error(), "upstream failure")

	_, isRL := domain.IsRateLimit(err)
	assert.False(t, isRL)
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Duration(0), parseRetryAfter("", now))
	assert.Equal(t, 30*time.Second, parseRetryAfter("30", now))
	assert.Equal(t, time.Duration(0), parseRetryAfter("-3", now))
	assert.Equal(t, 90*time.Second, parseRetryAfter("Fri, 01 Aug 2025 12:01:30 GMT", now))
	assert.Equal(t, time.Duration(0), parseRetryAfter("soon", now))
}
