package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, store Store) *Manager {
	t.Helper()
	signer, err := NewSigner("test-secret", "deed", time.Hour)
	require.NoError(t, err)
	return NewManager(store, signer, Options{CookieName: "deed_session", TTL: time.Hour})
}

func sessionCookie(t *testing.T, res *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range res.Cookies() {
		if c.Name == "deed_session" {
			return c
		}
	}
	return nil
}

func TestSignerRoundTrip(t *testing.T) {
	signer, err := NewSigner("secret", "deed", time.Hour)
	require.NoError(t, err)

	value, err := signer.Sign("abc123")
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(value, "."))

	id, err := signer.Verify(value)
	require.NoError(t, err)
	require.Equal(t, "abc123", id)
}

func TestSignerRejectsTamperedAndForeignValues(t *testing.T) {
	signer, err := NewSigner("secret", "deed", time.Hour)
	require.NoError(t, err)
	other, err := NewSigner("other-secret", "deed", time.Hour)
	require.NoError(t, err)

	foreign, err := other.Sign("abc123")
	require.NoError(t, err)
	_, err = signer.Verify(foreign)
	require.Error(t, err)

	_, err = signer.Verify("not-a-token")
	require.Error(t, err)
	_, err = signer.Verify("")
	require.Error(t, err)
}

func TestSignerRejectsExpiredValue(t *testing.T) {
	signer, err := NewSigner("secret", "deed", time.Hour)
	require.NoError(t, err)
	issued := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	signer.now = func() time.Time { return issued }
	value, err := signer.Sign("abc123")
	require.NoError(t, err)

	signer.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = signer.Verify(value)
	require.Error(t, err)
}

func TestNewSignerRequiresSecret(t *testing.T) {
	_, err := NewSigner("", "deed", time.Hour)
	require.Error(t, err)
}

func TestSessionTracksChanges(t *testing.T) {
	s := newSession("id", map[string]string{"a": "1"}, false)
	require.False(t, s.Dirty())

	s.Set("a", "1")
	require.False(t, s.Dirty(), "same value leaves the session clean")

	s.Set("b", "2")
	require.True(t, s.Dirty())
	v, ok := s.Get("b")
	require.True(t, ok)
	require.Equal(t, "2", v)

	s.markSaved()
	s.Delete("missing")
	require.False(t, s.Dirty())
	s.Delete("a")
	require.True(t, s.Dirty())

	s.Clear()
	_, ok = s.Get("b")
	require.False(t, ok)
}

func TestMemoryStoreExpires(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "id", map[string]string{"k": "v"}, time.Minute))
	values, ok, err := store.Load(ctx, "id")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", values["k"])

	values["k"] = "mutated"
	again, _, _ := store.Load(ctx, "id")
	require.Equal(t, "v", again["k"])

	now = now.Add(2 * time.Minute)
	_, ok, err = store.Load(ctx, "id")
	require.NoError(t, err)
	require.False(t, ok)
	require.Zero(t, store.Len())
}

func TestMemoryStoreCapsSessions(t *testing.T) {
	store := NewBoundedMemoryStore(100, time.Hour)
	ctx := context.Background()
	for i := 0; i < 1000; i++ {
		require.NoError(t, store.Save(ctx, fmt.Sprintf("visitor-%d", i), map[string]string{"csrf_token": "t"}, time.Hour))
	}
	require.Equal(t, 100, store.Len())

	_, ok, err := store.Load(ctx, "visitor-0")
	require.NoError(t, err)
	require.False(t, ok, "oldest session is evicted")
	_, ok, _ = store.Load(ctx, "visitor-999")
	require.True(t, ok)
}

func TestMemoryStoreSweepsExpiredSessions(t *testing.T) {
	store := NewBoundedMemoryStore(1000, 50*time.Millisecond)
	ctx := context.Background()
	for i := 0; i < 200; i++ {
		require.NoError(t, store.Save(ctx, fmt.Sprintf("bot-%d", i), map[string]string{"csrf_token": "t"}, time.Hour))
	}
	require.Eventually(t, func() bool { return store.Len() == 0 }, 2*time.Second, 10*time.Millisecond)

	_, ok, err := store.Load(ctx, "bot-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisStoreSavesHashWithTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "abc", map[string]string{"csrf_token": "tok", "lang": "en"}, time.Hour))

	require.Equal(t, "tok", mr.HGet("session:abc", "csrf_token"))
	require.Equal(t, time.Hour, mr.TTL("session:abc"))

	values, ok, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, map[string]string{"csrf_token": "tok", "lang": "en"}, values)

	require.NoError(t, store.Save(ctx, "abc", map[string]string{"lang": "bn"}, time.Hour))
	values, _, _ = store.Load(ctx, "abc")
	require.Equal(t, map[string]string{"lang": "bn"}, values)

	require.NoError(t, store.Delete(ctx, "abc"))
	_, ok, err = store.Load(ctx, "abc")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMiddlewareCreatesAndPersistsSession(t *testing.T) {
	store := NewMemoryStore()
	m := newTestManager(t, store)

	var seen string
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := FromContext(r.Context())
		require.True(t, ok)
		if v, ok := s.Get("visits"); ok {
			seen = v
		}
		s.Set("visits", "1")
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookie := sessionCookie(t, rec.Result())
	require.NotNil(t, cookie)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, 3600, cookie.MaxAge)
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	require.Equal(t, 1, store.Len())
	require.Empty(t, seen)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, "1", seen)
	require.Nil(t, sessionCookie(t, rec.Result()), "existing sessions are not re-issued")
}

func TestMiddlewareReplacesInvalidCookie(t *testing.T) {
	store := NewMemoryStore()
	m := newTestManager(t, store)

	var id string
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, _ := FromContext(r.Context())
		id = s.ID()
		require.True(t, s.IsNew())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "deed_session", Value: "forged"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.NotEmpty(t, id)
	require.NotNil(t, sessionCookie(t, rec.Result()))
	require.Zero(t, store.Len(), "untouched sessions are not stored")
}

func TestMiddlewareUnknownIDStartsFreshSession(t *testing.T) {
	store := NewMemoryStore()
	m := newTestManager(t, store)
	value, err := m.signer.Sign("evicted")
	require.NoError(t, err)

	var id string
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, _ := FromContext(r.Context())
		id = s.ID()
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "deed_session", Value: value})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	require.NotEqual(t, "evicted", id)
}

type failingStore struct{ MemoryStore }

func (failingStore) Load(context.Context, string) (map[string]string, bool, error) {
	return nil, false, errors.New("redis down")
}

func TestMiddlewareStoreFailureReturns500(t *testing.T) {
	m := newTestManager(t, &failingStore{})
	value, err := m.signer.Sign("abc")
	require.NoError(t, err)

	called := false
	handler := m.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "deed_session", Value: value})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.False(t, called)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "SESSION_UNAVAILABLE")
}

func TestSessionFuncAdaptsContext(t *testing.T) {
	m := newTestManager(t, NewMemoryStore())
	fn := m.SessionFunc()

	_, ok := fn(httptest.NewRequest(http.MethodGet, "/", nil))
	require.False(t, ok)

	s := newSession("id", nil, true)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithSession(req.Context(), s))
	got, ok := fn(req)
	require.True(t, ok)
	got.Set("k", "v")
	v, _ := s.Get("k")
	require.Equal(t, "v", v)
}

func TestDestroyExpiresCookie(t *testing.T) {
	store := NewMemoryStore()
	m := newTestManager(t, store)
	require.NoError(t, store.Save(context.Background(), "abc", map[string]string{"k": "v"}, time.Hour))

	s := newSession("abc", map[string]string{"k": "v"}, false)
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(WithSession(req.Context(), s))
	rec := httptest.NewRecorder()
	require.NoError(t, m.Destroy(rec, req))

	require.Zero(t, store.Len())
	cookie := sessionCookie(t, rec.Result())
	require.NotNil(t, cookie)
	require.Equal(t, -1, cookie.MaxAge)
}
