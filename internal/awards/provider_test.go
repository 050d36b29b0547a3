package awards

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/anisjkb/deed/internal/db"
)

type fakeQueries struct {
	calls atomic.Int32
	rows  []db.Award
	err   error
}

func (f *fakeQueries) ListAwards(context.Context) ([]db.Award, error) {
	f.calls.Add(1)
	return f.rows, f.err
}

func TestMiddlewareAttachesAwards(t *testing.T) {
	q := &fakeQueries{rows: []db.Award{
		{ID: 1, Title: "Best Developer", Issuer: pgtype.Text{String: "REHAB", Valid: true}, Year: pgtype.Int4{Int32: 2023, Valid: true}},
		{ID: 2, Title: "Green Building"},
	}}
	p := NewProvider(Config{Queries: q, Logger: zerolog.Nop()})

	var got []Award
	h := p.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []Award{
		{Title: "Best Developer", Issuer: "REHAB", Year: 2023},
		{Title: "Green Building"},
	}, got)
}

func TestLoadFailsSafeToEmpty(t *testing.T) {
	q := &fakeQueries{err: errors.New("db down")}
	p := NewProvider(Config{Queries: q, TTL: time.Minute, Logger: zerolog.Nop()})

	var got []Award
	called := false
	h := p.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		got = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.True(t, called)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	require.Empty(t, got)

	p.Load(context.Background())
	require.EqualValues(t, 2, q.calls.Load(), "failures are not cached")
}

func TestLoadCachesWithinTTL(t *testing.T) {
	q := &fakeQueries{rows: []db.Award{{Title: "A"}}}
	p := NewProvider(Config{Queries: q, TTL: time.Minute, Logger: zerolog.Nop()})
	ctx := context.Background()

	require.Len(t, p.Load(ctx), 1)
	require.Len(t, p.Load(ctx), 1)
	require.EqualValues(t, 1, q.calls.Load())

	p.Purge()
	p.Load(ctx)
	require.EqualValues(t, 2, q.calls.Load())
}

func TestLoadWithoutCacheQueriesEveryTime(t *testing.T) {
	q := &fakeQueries{}
	p := NewProvider(Config{Queries: q, Logger: zerolog.Nop()})
	p.Load(context.Background())
	p.Load(context.Background())
	require.EqualValues(t, 2, q.calls.Load())
}

func TestFromContextWithoutAwards(t *testing.T) {
	require.Nil(t, FromContext(context.Background()))
	var p *Provider
	require.Nil(t, p.Load(context.Background()))
}
