package cache

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/jonwraymond/credcache/keyschema"
)

// RetryConfig controls how LoadCredential retries a failing loader.
type RetryConfig struct {
	// MaxAttempts is the maximum number of loader calls, including the first.
	// Default: 1 (no retry)
	MaxAttempts int

	// InitialDelay is the delay before the first retry.
	// Default: 100ms
	InitialDelay time.Duration

	// MaxDelay caps the delay between retries.
	// Default: 5s
	MaxDelay time.Duration

	// Multiplier grows the delay after each attempt.
	// Default: 2.0
	Multiplier float64

	// Jitter adds up to 25% random delay.
	Jitter bool

	// RetryIf reports whether err is worth another attempt.
	// Default: every error except context cancellation and deadline.
	RetryIf func(err error) bool
}

type retrier struct {
	config RetryConfig
}

func newRetrier(config RetryConfig) *retrier {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 100 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 5 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	if config.RetryIf == nil {
		config.RetryIf = func(err error) bool {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}
	}
	return &retrier{config: config}
}

// load calls loader until it succeeds, the error is not retryable, attempts
// run out or ctx ends.
func (r *retrier) load(ctx context.Context, loader LoaderFunc) (keyschema.CredentialEntity, int, error) {
	for attempt := 1; ; attempt++ {
		c, err := loader(ctx)
		if err == nil {
			return c, attempt, nil
		}
		if attempt >= r.config.MaxAttempts || !r.config.RetryIf(err) {
			return keyschema.CredentialEntity{}, attempt, err
		}

		timer := time.NewTimer(r.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return keyschema.CredentialEntity{}, attempt, ctx.Err()
		case <-timer.C:
		}
	}
}

func (r *retrier) delay(attempt int) time.Duration {
	d := time.Duration(float64(r.config.InitialDelay) * math.Pow(r.config.Multiplier, float64(attempt-1)))
	if d > r.config.MaxDelay {
		d = r.config.MaxDelay
	}
	if r.config.Jitter && d >= 4 {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		d += time.Duration(rand.Int64N(int64(d / 4)))
	}
	return d
}
