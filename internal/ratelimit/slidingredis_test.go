package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newLimiter(t *testing.T) (Limiter, *miniredis.Miniredis, *fakeClock) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	return Limiter{Client: client, Prefix: "rl:", Now: clock.now}, mr, clock
}

func TestLimiterSlidesWithOldestSubmission(t *testing.T) {
	limiter, _, clock := newLimiter(t)
	ctx := context.Background()
	start := clock.t

	allowed, remaining, reset, err := limiter.Allow(ctx, "leads:203.0.113.7", time.Minute, 2)
	require.NoError(t, err)
	require.True(t, allowed)
	require.Equal(t, 1, remaining)
	require.True(t, reset.Equal(start.Add(time.Minute)))

	clock.t = start.Add(20 * time.Second)
	allowed, remaining, _, err = limiter.Allow(ctx, "leads:203.0.113.7", time.Minute, 2)
	require.NoError(t, err)
	require.True(t, allowed)
	require.Zero(t, remaining)

	clock.t = start.Add(40 * time.Second)
	allowed, remaining, reset, err = limiter.Allow(ctx, "leads:203.0.113.7", time.Minute, 2)
	require.NoError(t, err)
	require.False(t, allowed)
	require.Zero(t, remaining)
	require.True(t, reset.Equal(start.Add(time.Minute)), "reset follows the oldest counted submission, got %s", reset)

	// the first submission has left the window
	clock.t = start.Add(61 * time.Second)
	allowed, remaining, _, err = limiter.Allow(ctx, "leads:203.0.113.7", time.Minute, 2)
	require.NoError(t, err)
	require.True(t, allowed)
	require.Zero(t, remaining)
}

func TestLimiterDoesNotRecordRejections(t *testing.T) {
	limiter, mr, _ := newLimiter(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _, _, err := limiter.Allow(ctx, "leads:198.51.100.4", time.Minute, 1)
		require.NoError(t, err)
	}
	members, err := mr.ZMembers("rl:leads:198.51.100.4")
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Positive(t, mr.TTL("rl:leads:198.51.100.4"))

	allowed, _, _, err := limiter.Allow(ctx, "leads:198.51.100.5", time.Minute, 1)
	require.NoError(t, err)
	require.True(t, allowed, "keys are counted separately")
}

func TestLimiterKeyExpiresWithWindow(t *testing.T) {
	limiter, mr, _ := newLimiter(t)
	ctx := context.Background()

	allowed, _, _, err := limiter.Allow(ctx, "k", 2*time.Second, 1)
	require.NoError(t, err)
	require.True(t, allowed)
	allowed, _, _, err = limiter.Allow(ctx, "k", 2*time.Second, 1)
	require.NoError(t, err)
	require.False(t, allowed)

	mr.FastForward(2 * time.Second)
	require.False(t, mr.Exists("rl:k"))
	allowed, _, _, err = limiter.Allow(ctx, "k", 2*time.Second, 1)
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestLimiterDisabledCasesAllow(t *testing.T) {
	ctx := context.Background()
	live, mr, _ := newLimiter(t)

	cases := []struct {
		name    string
		limiter Limiter
		window  time.Duration
		max     int
	}{
		{"nil client", Limiter{}, time.Minute, 1},
		{"zero max", live, time.Minute, 0},
		{"negative max", live, time.Minute, -3},
		{"zero window", live, 0, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for i := 0; i < 3; i++ {
				allowed, remaining, _, err := tc.limiter.Allow(ctx, "open", tc.window, tc.max)
				require.NoError(t, err)
				require.True(t, allowed)
				require.Equal(t, tc.max, remaining)
			}
		})
	}
	require.False(t, mr.Exists("rl:open"), "disabled limits never touch redis")
}

func TestLimiterReportsRedisFailure(t *testing.T) {
	limiter, mr, _ := newLimiter(t)
	mr.Close()

	allowed, _, _, err := limiter.Allow(context.Background(), "leads:x", time.Minute, 1)
	require.Error(t, err)
	require.False(t, allowed)
	require.Contains(t, err.Error(), "leads:x")
}
