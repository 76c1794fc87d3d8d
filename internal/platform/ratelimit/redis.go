package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-chi/httprate"
	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix    = "cepadmin:ratelimit"
	operationTimeout = 100 * time.Millisecond
)

// NewRedisClient creates a Redis client and checks that it answers.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("platform/ratelimit: ping: %w", err)
	}

	return client, nil
}

// RedisCounter is an httprate.LimitCounter shared by every replica through
// Redis. When Redis fails it degrades to a process-local counter.
type RedisCounter struct {
	client       redis.UniversalClient
	prefix       string
	windowLength time.Duration
	fallback     httprate.LimitCounter
	degraded     atomic.Bool
	logger       *slog.Logger
}

// NewRedisCounter builds a counter storing windows under prefix.
func NewRedisCounter(client redis.UniversalClient, prefix string, logger *slog.Logger) *RedisCounter {
	if prefix == "" {
		prefix = defaultPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCounter{client: client, prefix: prefix, logger: logger}
}

var _ httprate.LimitCounter = (*RedisCounter)(nil)

// Config is called by httprate once the limiter is built.
func (c *RedisCounter) Config(requestLimit int, windowLength time.Duration) {
	c.windowLength = windowLength
	c.fallback = httprate.NewLocalLimitCounter(windowLength)
	c.fallback.Config(requestLimit, windowLength)
}

// Increment adds one hit to the window.
func (c *RedisCounter) Increment(key string, currentWindow time.Time) error {
	return c.IncrementBy(key, currentWindow, 1)
}

// IncrementBy adds amount hits to the window.
func (c *RedisCounter) IncrementBy(key string, currentWindow time.Time, amount int) error {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	windowKey := c.windowKey(key, currentWindow)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.IncrBy(ctx, windowKey, int64(amount))
		pipe.Expire(ctx, windowKey, c.ttl())
		return nil
	})
	if err != nil {
		c.degrade(err)
		return c.fallback.IncrementBy(key, currentWindow, amount)
	}
	c.markHealthy()
	return nil
}

// Get returns the hit counts of the current and previous windows.
func (c *RedisCounter) Get(key string, currentWindow, previousWindow time.Time) (int, int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	var current, previous *redis.StringCmd
	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		current = pipe.Get(ctx, c.windowKey(key, currentWindow))
		previous = pipe.Get(ctx, c.windowKey(key, previousWindow))
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		c.degrade(err)
		return c.fallback.Get(key, currentWindow, previousWindow)
	}

	curr, err := count(current)
	if err != nil {
		return 0, 0, err
	}
	prev, err := count(previous)
	if err != nil {
		return 0, 0, err
	}
	return curr, prev, nil
}

// Degraded reports whether the last Redis call failed.
func (c *RedisCounter) Degraded() bool {
	return c.degraded.Load()
}

func (c *RedisCounter) windowKey(key string, window time.Time) string {
	return fmt.Sprintf("%s:%s:%d", c.prefix, key, window.Unix())
}

// ttl keeps the previous window readable while the current one is live.
func (c *RedisCounter) ttl() time.Duration {
	if c.windowLength <= 0 {
		return time.Minute * 3
	}
	return c.windowLength * 3
}

func (c *RedisCounter) degrade(err error) {
	if !c.degraded.Swap(true) {
		c.logger.Warn("rate limit store unavailable, using local counter", slog.Any("error", err))
	}
}

func (c *RedisCounter) markHealthy() {
	if c.degraded.Swap(false) {
		c.logger.Info("rate limit store recovered")
	}
}

func count(cmd *redis.StringCmd) (int, error) {
	n, err := cmd.Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("platform/ratelimit: read window: %w", err)
	}
	return n, nil
}
