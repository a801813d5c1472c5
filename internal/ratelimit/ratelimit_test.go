package ratelimit

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoop_AlwaysAllows(t *testing.T) {
	var lim Noop
	for i := 0; i < 100; i++ {
		allowed, retry := lim.Allow("any")
		if !allowed || retry != 0 {
			t.Errorf("Noop.Allow: want allowed=true retry=0, got allowed=%v retry=%d", allowed, retry)
		}
	}
}

func fixedClock(lim *TokenBucket) *time.Time {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	lim.nowFunc = func() time.Time { return now }
	return &now
}

func TestTokenBucket_AllowsBurst(t *testing.T) {
	lim := NewTokenBucket(60, 3)
	fixedClock(lim)
	for i := 0; i < 3; i++ {
		allowed, retry := lim.Allow("client1")
		if !allowed {
			t.Errorf("request %d: expected allowed", i+1)
		}
		if retry != 0 {
			t.Errorf("request %d: expected retry 0, got %d", i+1, retry)
		}
	}
}

func TestTokenBucket_RejectsOverBurstAndRefills(t *testing.T) {
	lim := NewTokenBucket(60, 2)
	now := fixedClock(lim)
	lim.Allow("client1")
	lim.Allow("client1")

	allowed, retryAfter := lim.Allow("client1")
	assert.False(t, allowed)
	assert.Equal(t, 1, retryAfter)

	*now = now.Add(time.Second)
	allowed, _ = lim.Allow("client1")
	assert.True(t, allowed, "one token refills per second at 60/min")
}

func TestTokenBucket_DifferentKeysIndependent(t *testing.T) {
	lim := NewTokenBucket(1, 1)
	fixedClock(lim)
	lim.Allow("a")
	allowedB, _ := lim.Allow("b")
	assert.True(t, allowedB, "different key should be allowed")
	allowedA, retry := lim.Allow("a")
	assert.False(t, allowedA, "same key over limit should be rejected")
	assert.InDelta(t, 60, retry, 1)
}

func TestTokenBucket_SweepsIdleKeys(t *testing.T) {
	lim := NewTokenBucket(60, 1)
	now := fixedClock(lim)
	lim.Allow("a")
	lim.Allow("b")
	require.Equal(t, 2, lim.Len())

	*now = now.Add(2 * idleTTL)
	lim.Allow("c")
	assert.Equal(t, 1, lim.Len())
}

func TestRedis_FixedWindow(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	client, err := Connect(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	lim := NewRedis(client, fmt.Sprintf("werewolf:test:%d", time.Now().UnixNano()), 2, time.Minute)
	ok, _ := lim.Allow("k")
	assert.True(t, ok)
	ok, _ = lim.Allow("k")
	assert.True(t, ok)
	ok, retry := lim.Allow("k")
	assert.False(t, ok)
	assert.Positive(t, retry)

	ok, _ = lim.Allow("other")
	assert.True(t, ok)
}

func TestRedis_FailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { client.Close() })

	lim := NewRedis(client, "", 1, time.Minute)
	for i := 0; i < 3; i++ {
		ok, retry := lim.Allow("k")
		assert.True(t, ok)
		assert.Zero(t, retry)
	}
}
