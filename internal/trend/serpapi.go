package trend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/atim/backend-go/internal/domain"
)

const serpAPIName = "serpapi"

// DefaultSerpAPIURL is the SerpAPI search endpoint.
const DefaultSerpAPIURL = "https://serpapi.com/search.json"

// SerpAPIProvider reads Google Trends interest over time through SerpAPI.
type SerpAPIProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewSerpAPIProvider creates a provider. An empty baseURL uses DefaultSerpAPIURL.
func NewSerpAPIProvider(apiKey, baseURL string, timeout time.Duration) *SerpAPIProvider {
	if baseURL == "" {
		baseURL = DefaultSerpAPIURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SerpAPIProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *SerpAPIProvider) Name() string { return serpAPIName }

type serpTimelineValue struct {
	Query          string  `json:"query"`
	ExtractedValue float64 `json:"extracted_value"`
}

type serpTimelinePoint struct {
	Date   string              `json:"date"`
	Values []serpTimelineValue `json:"values"`
}

type serpResponse struct {
	Error            string `json:"error"`
	InterestOverTime struct {
		TimelineData []serpTimelinePoint `json:"timeline_data"`
	} `json:"interest_over_time"`
}

// InterestOverTime implements Provider.
func (p *SerpAPIProvider) InterestOverTime(ctx context.Context, keyword, geo, timeframe string) ([]float64, error) {
	params := url.Values{}
	params.Set("engine", "google_trends")
	params.Set("data_type", "TIMESERIES")
	params.Set("q", keyword)
	if geo != "" {
		params.Set("geo", geo)
	}
	if timeframe != "" {
		params.Set("date", timeframe)
	}
	params.Set("api_key", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &domain.ProviderError{Provider: serpAPIName, Keyword: keyword, Err: err}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &domain.ProviderError{Provider: serpAPIName, Keyword: keyword, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, &domain.ProviderError{Provider: serpAPIName, Keyword: keyword, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &domain.RateLimitError{
			Provider:   serpAPIName,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
			Err:        fmt.Errorf("keyword %q: %s", keyword, strings.TrimSpace(string(body))),
		}
	}

	var payload serpResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		if resp.StatusCode >= 300 {
			return nil, &domain.ProviderError{Provider: serpAPIName, Keyword: keyword, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", http.StatusText(resp.StatusCode))}
		}
		return nil, &domain.ProviderError{Provider: serpAPIName, Keyword: keyword, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	if resp.StatusCode >= 300 {
		msg := payload.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &domain.ProviderError{Provider: serpAPIName, Keyword: keyword, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", msg)}
	}

	if payload.Error != "" {
		if isNoResults(payload.Error) {
			return nil, domain.ErrNoData
		}
		return nil, &domain.ProviderError{Provider: serpAPIName, Keyword: keyword, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", payload.Error)}
	}

	timeline := payload.InterestOverTime.TimelineData
	if len(timeline) == 0 {
		return nil, domain.ErrNoData
	}

	series := make([]float64, 0, len(timeline))
	for _, point := range timeline {
		if len(point.Values) == 0 {
			continue
		}
		series = append(series, pickValue(point.Values, keyword))
	}
	if len(series) == 0 {
		return nil, domain.ErrNoData
	}
	return series, nil
}

// pickValue returns the value for keyword, or the first value when the
// provider echoed a normalized query.
func pickValue(values []serpTimelineValue, keyword string) float64 {
	for _, v := range values {
		if strings.EqualFold(v.Query, keyword) {
			return v.ExtractedValue
		}
	}
	return values[0].ExtractedValue
}

func isNoResults(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "hasn't returned any results") || strings.Contains(m, "no results")
}

// parseRetryAfter accepts both delta-seconds and HTTP-date forms.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
