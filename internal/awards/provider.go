// Package awards loads the company awards shown in every page footer.
package awards

import (
	"context"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"github.com/anisjkb/deed/internal/db"
	"github.com/anisjkb/deed/internal/obs"
)

// Award is the template view of an award row.
type Award struct {
	Title       string `json:"title"`
	Issuer      string `json:"issuer,omitempty"`
	Year        int    `json:"year,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

type queryProvider interface {
	ListAwards(ctx context.Context) ([]db.Award, error)
}

const cacheKey = "all"

// Config groups Provider dependencies.
type Config struct {
	Queries queryProvider
	// TTL bounds how long a successful load is reused. Zero disables caching.
	TTL    time.Duration
	Logger zerolog.Logger
}

// Provider attaches awards to each request. Load failures yield an empty list.
type Provider struct {
	queries queryProvider
	cache   *expirable.LRU[string, []Award]
	logger  zerolog.Logger
}

// NewProvider constructs a Provider.
func NewProvider(cfg Config) *Provider {
	p := &Provider{queries: cfg.Queries, logger: cfg.Logger}
	if cfg.TTL > 0 {
		p.cache = expirable.NewLRU[string, []Award](1, nil, cfg.TTL)
	}
	return p
}

// Load returns the current awards, from cache when fresh.
func (p *Provider) Load(ctx context.Context) []Award {
	if p == nil || p.queries == nil {
		return nil
	}
	if p.cache != nil {
		if cached, ok := p.cache.Get(cacheKey); ok {
			obs.ObserveCacheLookup("awards", true)
			return cached
		}
		obs.ObserveCacheLookup("awards", false)
	}
	rows, err := p.queries.ListAwards(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("awards unavailable")
		return []Award{}
	}
	out := make([]Award, 0, len(rows))
	for _, row := range rows {
		a := Award{Title: row.Title}
		if row.Issuer.Valid {
			a.Issuer = row.Issuer.String
		}
		if row.Year.Valid {
			a.Year = int(row.Year.Int32)
		}
		if row.Description.Valid {
			a.Description = row.Description.String
		}
		if row.ImageUrl.Valid {
			a.ImageURL = row.ImageUrl.String
		}
		out = append(out, a)
	}
	if p.cache != nil {
		p.cache.Add(cacheKey, out)
	}
	return out
}

// Purge drops the cached list.
func (p *Provider) Purge() {
	if p != nil && p.cache != nil {
		p.cache.Purge()
	}
}

// Middleware stores the awards on the request context.
func (p *Provider) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithAwards(r.Context(), p.Load(r.Context()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type ctxKey struct{}

// WithAwards attaches list to ctx.
func WithAwards(ctx context.Context, list []Award) context.Context {
	return context.WithValue(ctx, ctxKey{}, list)
}

// FromContext returns the awards attached by Middleware, or nil.
func FromContext(ctx context.Context) []Award {
	if ctx == nil {
		return nil
	}
	list, _ := ctx.Value(ctxKey{}).([]Award)
	return list
}
