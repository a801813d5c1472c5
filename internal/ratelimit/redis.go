package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Redis is a fixed-window limiter shared by every server instance.
// When Redis is unreachable requests are allowed.
type Redis struct {
	client  redis.UniversalClient
	prefix  string
	limit   int64
	window  time.Duration
	timeout time.Duration
}

// NewRedis allows up to limit requests per key per window.
func NewRedis(client redis.UniversalClient, prefix string, limit int, window time.Duration) *Redis {
	if prefix == "" {
		prefix = "werewolf:ratelimit"
	}
	return &Redis{
		client:  client,
		prefix:  prefix,
		limit:   int64(limit),
		window:  window,
		timeout: 500 * time.Millisecond,
	}
}

// Connect parses url, pings the server and returns a client.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (r *Redis) windowKey(key string, now time.Time) string {
	slot := now.UnixNano() / int64(r.window)
	return fmt.Sprintf("%s:%s:%d", r.prefix, key, slot)
}

func (r *Redis) Allow(key string) (allowed bool, retryAfterSec int) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	now := time.Now()
	k := r.windowKey(key, now)
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("redis rate limit unavailable; allowing")
		return true, 0
	}
	if incr.Val() <= r.limit {
		return true, 0
	}
	elapsed := time.Duration(now.UnixNano() % int64(r.window))
	return false, int(math.Max(1, math.Ceil((r.window - elapsed).Seconds())))
}
