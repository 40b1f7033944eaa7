package recommend

import (
	"context"
	"time"

	"github.com/andresuchdata/atim/backend-go/internal/domain"
	"github.com/andresuchdata/atim/backend-go/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Recommender asks the LLM for recommendations and falls back to RuleBased
// when the model is missing, keeps failing, or returns nothing.
type Recommender struct {
	llm          LLM
	attempts     int
	initialDelay time.Duration
	sleep        func(ctx context.Context, d time.Duration) error
	now          func() time.Time
}

// Option configures a Recommender.
type Option func(*Recommender)

// WithRetry sets the attempt count and the first backoff delay, which doubles per retry.
func WithRetry(attempts int, initialDelay time.Duration) Option {
	return func(r *Recommender) {
		if attempts > 0 {
			r.attempts = attempts
		}
		if initialDelay >= 0 {
			r.initialDelay = initialDelay
		}
	}
}

// WithClock overrides time.Now for the GeneratedAt stamp.
func WithClock(now func() time.Time) Option {
	return func(r *Recommender) { r.now = now }
}

// NewRecommender creates a recommender. A nil llm always uses the rule-based generator.
func NewRecommender(llm LLM, opts ...Option) *Recommender {
	r := &Recommender{
		llm:          llm,
		attempts:     3,
		initialDelay: time.Second,
		sleep:        sleepCtx,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recommend always returns a recommendation; Source tells which generator produced it.
func (r *Recommender) Recommend(ctx context.Context, req Request) domain.Recommendation {
	rec := domain.Recommendation{
		TrendCount:  len(req.Trends),
		Season:      req.Season,
		GeneratedAt: r.now(),
	}

	if text, ok := r.generate(ctx, req); ok {
		rec.Text = CleanOutput(text)
		rec.Source = domain.RecommendationSourceLLM
	} else {
		rec.Text = RuleBased(req)
		rec.Source = domain.RecommendationSourceRuleBased
	}

	metrics.RecordRecommendation(rec.Source)
	return rec
}

func (r *Recommender) generate(ctx context.Context, req Request) (string, bool) {
	if r.llm == nil {
		return "", false
	}

	prompt := BuildPrompt(req)
	delay := r.initialDelay

	for attempt := 1; attempt <= r.attempts; attempt++ {
		text, err := r.llm.Generate(ctx, SystemInstruction, prompt)
		if err == nil {
			if CleanOutput(text) == "" {
				log.Warn().Msg("recommend: empty model output, using rule-based fallback")
				return "", false
			}
			return text, true
		}

		rl, retryable := domain.IsRateLimit(err)
		if !retryable {
			log.Warn().Err(err).Msg("recommend: model call failed, using rule-based fallback")
			return "", false
		}
		if attempt == r.attempts {
			log.Warn().Err(err).Int("attempts", attempt).Msg("recommend: rate limit retries exhausted, using rule-based fallback")
			return "", false
		}

		wait := delay
		if rl.RetryAfter > 0 {
			wait = rl.RetryAfter
		}
		metrics.RecordRateLimitRetry(rl.Provider)
		log.Warn().Int("attempt", attempt).Dur("backoff", wait).Msg("recommend: rate limited, retrying")

		if err := r.sleep(ctx, wait); err != nil {
			log.Warn().Err(err).Msg("recommend: cancelled while backing off, using rule-based fallback")
			return "", false
		}
		delay *= 2
	}
	return "", false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
