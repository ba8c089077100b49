// Package retry wraps outbound API calls with bounded exponential
// backoff. Only transient failures (throttling, server errors, dropped
// connections) are retried; everything else returns immediately.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"net"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Config controls the backoff schedule.
type Config struct {
	// Attempts is the total number of tries, including the first.
	Attempts int

	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration

	// MaxBackoff caps the delay between attempts.
	MaxBackoff time.Duration

	// Multiplier scales the delay after each attempt.
	Multiplier float64

	// Jitter randomizes each delay by ±this fraction.
	Jitter float64

	// Transient overrides the default transient-error check.
	Transient func(error) bool
}

// Default returns the schedule used for AI API calls: three attempts,
// half a second to start, doubling.
func Default() Config {
	return Config{
		Attempts:       3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     15 * time.Second,
		Multiplier:     2.0,
		Jitter:         0.25,
	}
}

func (c Config) withDefaults() Config {
	if c.Attempts <= 0 {
		c.Attempts = 3
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 500 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 15 * time.Second
	}
	if c.Multiplier <= 0 {
		c.Multiplier = 2.0
	}
	if c.Jitter < 0 {
		c.Jitter = 0
	}
	if c.Transient == nil {
		c.Transient = IsTransient
	}
	return c
}

// Do runs fn until it succeeds, a non-transient error occurs, the
// context is cancelled, or attempts run out. Each retry is logged at
// Warn with the operation name.
func Do[T any](ctx context.Context, cfg Config, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg = cfg.withDefaults()

	var zero T
	var lastErr error
	for attempt := 0; attempt < cfg.Attempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil || !cfg.Transient(err) || attempt >= cfg.Attempts-1 {
			break
		}

		zap.L().Warn("retrying after transient failure",
			zap.String("operation", op),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)

		timer := time.NewTimer(backoff(attempt, cfg))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}
	return zero, lastErr
}

func backoff(attempt int, cfg Config) time.Duration {
	delay := float64(cfg.InitialBackoff) * math.Pow(cfg.Multiplier, float64(attempt))
	delay = math.Min(delay, float64(cfg.MaxBackoff))
	if cfg.Jitter > 0 {
		delay += (rand.Float64()*2 - 1) * delay * cfg.Jitter
	}
	return time.Duration(math.Max(delay, 0))
}

// IsTransient reports whether err looks like a failure that a retry
// could clear: network timeouts, dropped connections, DNS blips.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// TransientStatus reports whether an HTTP status is worth retrying.
func TransientStatus(code int) bool {
	switch code {
	case 408, 429, 500, 502, 503, 504:
		return true
	}
	return false
}
