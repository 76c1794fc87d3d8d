package ratelimit

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/httprate"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCounter(t *testing.T) (*RedisCounter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRedisCounter(client, "test", logger), mr
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	client, err := NewRedisClient(context.Background(), addr)
	require.NoError(t, err)
	require.NoError(t, client.Close())

	mr.Close()
	_, err = NewRedisClient(context.Background(), addr)
	require.Error(t, err)
}

func TestRedisCounterWindows(t *testing.T) {
	counter, mr := newCounter(t)
	counter.Config(5, time.Minute)

	now := time.Now().UTC().Truncate(time.Minute)
	prev := now.Add(-time.Minute)

	require.NoError(t, counter.Increment("user:dev@example.com", now))
	require.NoError(t, counter.Increment("user:dev@example.com", now))
	require.NoError(t, counter.IncrementBy("user:dev@example.com", prev, 3))

	curr, before, err := counter.Get("user:dev@example.com", now, prev)
	require.NoError(t, err)
	assert.Equal(t, 2, curr)
	assert.Equal(t, 3, before)

	key := counter.windowKey("user:dev@example.com", now)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 3*time.Minute, mr.TTL(key))
	assert.False(t, counter.Degraded())
}

func TestRedisCounterUnknownKeyIsZero(t *testing.T) {
	counter, _ := newCounter(t)
	counter.Config(5, time.Minute)

	now := time.Now().UTC().Truncate(time.Minute)
	curr, prev, err := counter.Get("ip:10.0.0.1", now, now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Zero(t, curr)
	assert.Zero(t, prev)
}

func TestRedisCounterFallsBackWhenStoreIsDown(t *testing.T) {
	counter, mr := newCounter(t)
	counter.Config(5, time.Minute)
	mr.Close()

	now := time.Now().UTC().Truncate(time.Minute)
	require.NoError(t, counter.Increment("ip:10.0.0.1", now))
	assert.True(t, counter.Degraded())

	_, _, err := counter.Get("ip:10.0.0.1", now, now.Add(-time.Minute))
	require.NoError(t, err)
}

func TestRedisCounterDrivesLimiter(t *testing.T) {
	counter, _ := newCounter(t)
	limiter := httprate.Limit(2, time.Minute,
		httprate.WithLimitCounter(counter),
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return r.Header.Get("X-Caller"), nil
		}),
	)
	handler := limiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(caller string) int {
		req := httptest.NewRequest(http.MethodPost, "/v1/getRoles", nil)
		req.Header.Set("X-Caller", caller)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusNoContent, send("a"))
	assert.Equal(t, http.StatusNoContent, send("a"))
	assert.Equal(t, http.StatusTooManyRequests, send("a"))
	assert.Equal(t, http.StatusNoContent, send("b"))
}
