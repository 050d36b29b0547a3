package ratelimit

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/anisjkb/deed/internal/common"
	"github.com/anisjkb/deed/internal/obs"
)

// Config describes how to derive a rate limit key and thresholds.
type Config struct {
	// Key returns the bucket for r. An empty key skips limiting.
	Key    func(*http.Request) string
	Window time.Duration
	Max    int
}

// ByClientIP keys requests on the client address, namespaced by scope.
func ByClientIP(scope string) func(*http.Request) string {
	return func(r *http.Request) string {
		ip := common.ClientIP(r)
		if ip == "" {
			return ""
		}
		return scope + ":" + ip
	}
}

// Allower decides whether one more event fits in the window for key.
type Allower interface {
	Allow(ctx context.Context, key string, window time.Duration, max int) (allowed bool, remaining int, reset time.Time, err error)
}

// Handler throttles lead submissions before they reach the form handlers.
type Handler struct {
	Limiter Allower
	Config  Config
	// OnError sees limiter failures. The request still goes through.
	OnError func(error)
	// Reject writes the 429 response. The default is a JSON error body.
	Reject func(w http.ResponseWriter, r *http.Request, retryAfter time.Duration)
}

// Middleware implements the http.Handler middleware interface.
func (h Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Config.Key == nil || h.Limiter == nil {
			next.ServeHTTP(w, r)
			return
		}
		key := h.Config.Key(r)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		allowed, remaining, resetAt, err := h.Limiter.Allow(r.Context(), key, h.Config.Window, h.Config.Max)
		if err != nil {
			// fail open: a Redis outage must not block lead capture
			if h.OnError != nil {
				h.OnError(err)
			}
			next.ServeHTTP(w, r)
			return
		}

		h.setHeaders(w.Header(), remaining, resetAt)
		if allowed {
			next.ServeHTTP(w, r)
			return
		}

		retryAfter := max(time.Until(resetAt), 0)
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
		obs.ObserveRateLimited()
		if h.Reject != nil {
			h.Reject(w, r, retryAfter)
			return
		}
		common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many submissions, try again later",
			map[string]int{"retry_after_seconds": int(math.Ceil(retryAfter.Seconds()))})
	})
}

func (h Handler) setHeaders(hdr http.Header, remaining int, resetAt time.Time) {
	hdr.Set("X-RateLimit-Limit", strconv.Itoa(max(h.Config.Max, 0)))
	hdr.Set("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))
	hdr.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
}
