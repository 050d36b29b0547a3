package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// admitScript trims the window, admits the submission only while under the limit and
// reports when the oldest counted submission leaves the window.
// Returns {admitted 0/1, remaining, reset unix ms}.
var admitScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local admitted = 0
if count < limit then
  redis.call('ZADD', key, now, ARGV[4])
  count = count + 1
  admitted = 1
end
redis.call('PEXPIRE', key, window)

local reset = now + window
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if #oldest >= 2 then
  reset = tonumber(oldest[2]) + window
end
return {admitted, limit - count, reset}
`)

// Limiter counts lead submissions per key in a Redis sorted set.
// Rejected submissions are not recorded, so a visitor hammering the form does not push out their own reset.
// A nil Client allows every request, which is how the site runs without Redis.
type Limiter struct {
	Client redis.Cmdable
	Prefix string
	// Now is a clock override for tests.
	Now func() time.Time
}

// Allow records one submission for key if it fits in the window.
func (l Limiter) Allow(ctx context.Context, key string, window time.Duration, max int) (bool, int, time.Time, error) {
	now := time.Now()
	if l.Now != nil {
		now = l.Now()
	}
	if l.Client == nil || max <= 0 || window <= 0 {
		return true, max, now.Add(window), nil
	}

	windowMS := window.Milliseconds()
	if windowMS < 1 {
		windowMS = 1
	}
	res, err := admitScript.Run(ctx, l.Client, []string{l.Prefix + key},
		now.UnixMilli(), windowMS, max, uuid.NewString()).Int64Slice()
	if err != nil {
		return false, 0, now.Add(window), fmt.Errorf("rate limit %s: %w", key, err)
	}
	if len(res) != 3 {
		return false, 0, now.Add(window), fmt.Errorf("rate limit %s: unexpected reply %v", key, res)
	}
	remaining := int(res[1])
	if remaining < 0 {
		remaining = 0
	}
	return res[0] == 1, remaining, time.UnixMilli(res[2]), nil
}
