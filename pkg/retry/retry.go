// Package retry brings up infrastructure connections (Redis, Typesense) with
// exponential backoff. Calls to the listing backend are never retried.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds retry configuration
type Config struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffFactor   float64
	MaxTotalTimeout time.Duration
}

// DefaultConfig returns the configuration used when dialing infrastructure
// at process start.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     5,
		InitialDelay:    200 * time.Millisecond,
		MaxDelay:        5 * time.Second,
		BackoffFactor:   2.0,
		MaxTotalTimeout: 30 * time.Second,
	}
}

// Connect calls dial until it succeeds, logging every failed attempt under
// the given component name.
func Connect(ctx context.Context, cfg Config, component string, dial func(ctx context.Context) error) error {
	if cfg.MaxTotalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.MaxTotalTimeout)
		defer cancel()
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return aborted(component, attempt-1, err, lastErr)
		}

		lastErr = dial(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		log.Warn().
			Err(lastErr).
			Str("component", component).
			Int("attempt", attempt).
			Dur("next_delay", delay).
			Msg("connection attempt failed")

		select {
		case <-ctx.Done():
			return aborted(component, attempt, ctx.Err(), lastErr)
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * cfg.BackoffFactor)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return fmt.Errorf("%s: max connection attempts (%d) exceeded: %w", component, cfg.MaxAttempts, lastErr)
}

func aborted(component string, attempts int, ctxErr, lastErr error) error {
	if lastErr != nil {
		return fmt.Errorf("%s: connect aborted after %d attempts: %w (last error: %v)", component, attempts, ctxErr, lastErr)
	}
	return fmt.Errorf("%s: connect aborted: %w", component, ctxErr)
}
