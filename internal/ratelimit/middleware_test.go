package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestHandlerMiddlewareEnforcesLimit(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	handler := Handler{
		Limiter: Limiter{Client: client, Prefix: "ratelimit:"},
		Config: Config{
			Key:    func(*http.Request) string { return "static" },
			Window: time.Second,
			Max:    1,
		},
	}

	counted := handler.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rr1 := httptest.NewRecorder()
	counted.ServeHTTP(rr1, req.Clone(req.Context()))
	if rr1.Code != http.StatusOK {
		t.Fatalf("expected first request allowed, got %d", rr1.Code)
	}

	rr2 := httptest.NewRecorder()
	counted.ServeHTTP(rr2, req.Clone(req.Context()))
	if rr2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on second request, got %d", rr2.Code)
	}
	if ct := rr2.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected json rejection, got %q", ct)
	}
	if rr2.Header().Get("X-RateLimit-Limit") != "1" {
		t.Fatalf("unexpected limit header: %q", rr2.Header().Get("X-RateLimit-Limit"))
	}
}

func TestHandlerMiddlewareOnError(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	handler := Handler{
		Limiter: Limiter{Client: client, Prefix: "ratelimit:"},
		Config: Config{
			Key:    func(*http.Request) string { return "err" },
			Window: time.Second,
			Max:    1,
		},
	}

	called := false
	handler.OnError = func(error) { called = true }

	counted := handler.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rr := httptest.NewRecorder()
	counted.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected handler to proceed on error, got %d", rr.Code)
	}
	if !called {
		t.Fatal("expected OnError callback to be invoked")
	}
	_ = client.Close()
}

func TestHandlerWithoutRedisAllows(t *testing.T) {
	handler := Handler{
		Limiter: Limiter{},
		Config:  Config{Key: ByClientIP("leads"), Window: time.Minute, Max: 1},
	}
	counted := handler.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusSeeOther)
	}))
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		counted.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/meetings", nil))
		if rr.Code != http.StatusSeeOther {
			t.Fatalf("expected pass through without redis, got %d", rr.Code)
		}
	}
}

func TestByClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/feedback", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.4")
	if got := ByClientIP("leads")(req); got != "leads:198.51.100.4" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestHandlerWithMemoryLimiter(t *testing.T) {
	handler := Handler{
		Limiter: NewMemoryLimiter("mw"),
		Config:  Config{Key: ByClientIP("leads"), Window: time.Minute, Max: 2},
	}
	next := handler.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusSeeOther)
	}))
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		next.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/landowner", nil))
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusSeeOther || codes[1] != http.StatusSeeOther || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}
}

type stubAllower struct {
	calls int
	reset time.Time
}

func (s *stubAllower) Allow(context.Context, string, time.Duration, int) (bool, int, time.Time, error) {
	s.calls++
	return false, 0, s.reset, nil
}

func TestHandlerCustomReject(t *testing.T) {
	stub := &stubAllower{reset: time.Now().Add(90 * time.Second)}
	var got time.Duration
	handler := Handler{
		Limiter: stub,
		Config:  Config{Key: func(*http.Request) string { return "k" }, Window: time.Minute, Max: 1},
		Reject: func(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
			got = retryAfter
			w.WriteHeader(http.StatusTooManyRequests)
		},
	}
	rr := httptest.NewRecorder()
	handler.Middleware(http.NotFoundHandler()).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/meetings", nil))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", rr.Code)
	}
	if got <= 80*time.Second || got > 90*time.Second {
		t.Fatalf("unexpected retry after %s", got)
	}
	if ra := rr.Header().Get("Retry-After"); ra != "90" {
		t.Fatalf("expected Retry-After rounded up to 90, got %q", ra)
	}
}

func TestHandlerSkipsEmptyKey(t *testing.T) {
	stub := &stubAllower{}
	handler := Handler{
		Limiter: stub,
		Config:  Config{Key: func(*http.Request) string { return "" }, Window: time.Minute, Max: 1},
	}
	rr := httptest.NewRecorder()
	handler.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusSeeOther)
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/meetings", nil))
	if rr.Code != http.StatusSeeOther || stub.calls != 0 {
		t.Fatalf("expected pass through without limiter call, got %d after %d calls", rr.Code, stub.calls)
	}
	if rr.Header().Get("X-RateLimit-Limit") != "" {
		t.Fatal("skipped requests carry no limit headers")
	}
}
