package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"
)

const (
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 500 * time.Millisecond
	defaultMaxBackoff     = 8 * time.Second
	defaultTimeout        = 30 * time.Second
)

// RetryConfig bounds the retry loop. Zero values select the defaults.
type RetryConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Timeout        time.Duration // per attempt
}

// Retrying retries transient failures of the wrapped client with
// exponential backoff and applies a deadline to every attempt.
type Retrying struct {
	next Client
	cfg  RetryConfig
}

// NewRetrying wraps next.
func NewRetrying(next Client, cfg RetryConfig) *Retrying {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = defaultInitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = defaultMaxBackoff
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Retrying{next: next, cfg: cfg}
}

func (r *Retrying) Complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := range r.cfg.MaxAttempts {
		text, err := r.attempt(ctx, prompt)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !IsRetryable(err) {
			return "", err
		}

		lastErr = err
		if attempt < r.cfg.MaxAttempts-1 {
			backoff := r.backoff(attempt)
			slog.Warn("completion attempt failed, retrying",
				"attempt", attempt+1,
				"backoff", backoff,
				"error", err,
			)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return "", fmt.Errorf("giving up after %d attempts: %w", r.cfg.MaxAttempts, lastErr)
}

func (r *Retrying) attempt(ctx context.Context, prompt string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	text, err := r.next.Complete(attemptCtx, prompt)
	if err == nil {
		return text, nil
	}
	// The attempt deadline fired but the caller's did not.
	if ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
		return "", &Error{Provider: "retry", Kind: ErrTimeout, Err: err}
	}
	return "", err
}

func (r *Retrying) backoff(attempt int) time.Duration {
	d := time.Duration(float64(r.cfg.InitialBackoff) * math.Pow(2, float64(attempt)))
	if d > r.cfg.MaxBackoff {
		d = r.cfg.MaxBackoff
	}
	return d
}
