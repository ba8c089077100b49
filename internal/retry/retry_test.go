package retry

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	return Config{
		Attempts:       3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestDo_FirstAttemptSucceeds(t *testing.T) {
	calls := 0
	v, err := Do(context.Background(), fastConfig(), "op", func(context.Context) (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)
}

func TestDo_RecoversFromTransientFailure(t *testing.T) {
	calls := 0
	v, err := Do(context.Background(), fastConfig(), "op", func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", syscall.ECONNRESET
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastConfig(), "op", func(context.Context) (int, error) {
		calls++
		return 0, syscall.ECONNREFUSED
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_PermanentErrorFailsFast(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastConfig(), "op", func(context.Context) (int, error) {
		calls++
		return 0, errors.New("invalid request")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_CancelledContextStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Do(ctx, fastConfig(), "op", func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, syscall.ECONNRESET
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_CustomTransientCheck(t *testing.T) {
	cfg := fastConfig()
	cfg.Transient = func(err error) bool { return err.Error() == "retry me" }

	calls := 0
	_, err := Do(context.Background(), cfg, "op", func(context.Context) (int, error) {
		calls++
		return 0, errors.New("retry me")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(errors.New("bad request")))
	assert.True(t, IsTransient(syscall.ECONNRESET))
	assert.True(t, IsTransient(errors.New("read tcp: connection reset by peer")))
	assert.True(t, IsTransient(errors.New("dial tcp: i/o timeout")))
}

func TestTransientStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, TransientStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 400, 401, 403, 404, 422} {
		assert.False(t, TransientStatus(code), "status %d", code)
	}
}

func TestBackoff_CapsAtMax(t *testing.T) {
	cfg := fastConfig().withDefaults()
	cfg.Jitter = 0
	assert.Equal(t, time.Millisecond, backoff(0, cfg))
	assert.Equal(t, 2*time.Millisecond, backoff(1, cfg))
	assert.Equal(t, 5*time.Millisecond, backoff(10, cfg))
}
