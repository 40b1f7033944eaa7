package trend

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttle spaces provider calls. The limiter guarantees at least minDelay
// between any two calls in the process; Wait adds a random extra delay so
// consecutive keywords are spaced uniformly within [minDelay, maxDelay].
type Throttle struct {
	limiter *rate.Limiter
	spread  time.Duration
	rng     *lockedRand
}

// NewThrottle creates a throttle. A non-positive minDelay disables the limiter.
func NewThrottle(minDelay, maxDelay time.Duration, rng *rand.Rand) *Throttle {
	limit := rate.Inf
	if minDelay > 0 {
		limit = rate.Every(minDelay)
	}
	spread := maxDelay - minDelay
	if spread < 0 {
		spread = 0
	}
	return &Throttle{
		limiter: rate.NewLimiter(limit, 1),
		spread:  spread,
		rng:     newLockedRand(rng),
	}
}

// Acquire waits only for the limiter.
func (t *Throttle) Acquire(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

// Wait waits for the limiter and then a random share of the spread.
func (t *Throttle) Wait(ctx context.Context) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	if t.spread <= 0 {
		return nil
	}
	return sleepCtx(ctx, time.Duration(t.rng.Float64()*float64(t.spread)))
}

// RetryPolicy is the per-keyword backoff for rate-limited fetches.
// Attempt n (zero-based) waits Base*2^n plus a jitter in [MinJitter, MaxJitter],
// unless the provider suggested a delay.
type RetryPolicy struct {
	Attempts  int
	Base      time.Duration
	MinJitter time.Duration
	MaxJitter time.Duration
}

// DefaultRetryPolicy is 3 attempts, 5s doubling, 1-3s jitter.
var DefaultRetryPolicy = RetryPolicy{
	Attempts:  3,
	Base:      5 * time.Second,
	MinJitter: time.Second,
	MaxJitter: 3 * time.Second,
}

func (p RetryPolicy) backoff(attempt int, retryAfter time.Duration, rng *lockedRand) time.Duration {
	if retryAfter > 0 {
		return retryAfter
	}
	d := p.Base << uint(attempt)
	if span := p.MaxJitter - p.MinJitter; span > 0 {
		d += p.MinJitter + time.Duration(rng.Float64()*float64(span))
	} else {
		d += p.MinJitter
	}
	return d
}

type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newLockedRand(rng *rand.Rand) *lockedRand {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &lockedRand{rng: rng}
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

func (r *lockedRand) uniform(lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
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
