// Package projects serves the project catalog: filtered listings and detail pages.
package projects

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/anisjkb/deed/internal/cache"
	"github.com/anisjkb/deed/internal/common"
	"github.com/anisjkb/deed/internal/db"
)

type queryProvider interface {
	ListProjects(ctx context.Context, arg db.ListProjectsParams) ([]db.Project, error)
	ListFeaturedProjects(ctx context.Context, limit int32) ([]db.Project, error)
	GetProjectBySlug(ctx context.Context, slug string) (db.Project, error)
}

// Project is the template and cache view of a project row.
type Project struct {
	Slug         string   `json:"slug"`
	Title        string   `json:"title"`
	Status       string   `json:"status"`
	Type         string   `json:"type"`
	Tagline      string   `json:"tagline,omitempty"`
	Location     string   `json:"location,omitempty"`
	ShortDesc    string   `json:"short_desc,omitempty"`
	SizeRange    string   `json:"size_range,omitempty"`
	Floors       int      `json:"floors,omitempty"`
	HandoverDate string   `json:"handover_date,omitempty"`
	HeroImageURL string   `json:"hero_image_url,omitempty"`
	ProgressPct  int      `json:"progress_pct"`
	Highlights   []string `json:"highlights,omitempty"`
}

// FromRow converts a database row into a Project.
func FromRow(row db.Project) Project {
	p := Project{
		Slug:         row.Slug,
		Title:        row.Title,
		Status:       row.Status,
		Type:         row.Ptype,
		Tagline:      text(row.Tagline),
		Location:     text(row.Location),
		ShortDesc:    text(row.ShortDesc),
		SizeRange:    text(row.SizeRange),
		HeroImageURL: text(row.HeroImageUrl),
		ProgressPct:  int(row.ProgressPct),
		Highlights:   SplitHighlights(text(row.Highlights)),
	}
	if row.Floors.Valid {
		p.Floors = int(row.Floors.Int32)
	}
	if row.HandoverDate.Valid {
		p.HandoverDate = row.HandoverDate.Time.Format("January 2006")
	}
	return p
}

// SplitHighlights turns a free-text highlights column into bullet lines.
func SplitHighlights(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	lines := strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' })
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•· \t")
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Filter narrows the project listing. Empty fields do not filter.
type Filter struct {
	Category string
	Type     string
	Location string
}

// ParseFilter reads category, type and location from a query string. Unknown values are dropped.
func ParseFilter(q url.Values) Filter {
	var f Filter
	switch c := strings.ToLower(strings.TrimSpace(q.Get("category"))); c {
	case "ongoing", "upcoming", "completed":
		f.Category = c
	}
	switch t := strings.ToLower(strings.TrimSpace(q.Get("type"))); t {
	case "residential", "commercial":
		f.Type = t
	}
	f.Location = strings.TrimSpace(q.Get("location"))
	return f
}

// IsZero reports whether f filters nothing.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

func (f Filter) params() db.ListProjectsParams {
	return db.ListProjectsParams{
		Status:   optionalText(f.Category),
		Ptype:    optionalText(f.Type),
		Location: optionalText(f.Location),
	}
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Queries       queryProvider
	Cache         *cache.Cache
	FeaturedLimit int
	Logger        zerolog.Logger
}

// Service orchestrates project queries and caching.
type Service struct {
	queries       queryProvider
	cache         *cache.Cache
	featuredLimit int32
	logger        zerolog.Logger
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Queries == nil {
		return nil, errors.New("projects: queries provider is required")
	}
	limit := cfg.FeaturedLimit
	if limit <= 0 {
		limit = 9
	}
	return &Service{queries: cfg.Queries, cache: cfg.Cache, featuredLimit: int32(limit), logger: cfg.Logger}, nil
}

// List returns projects ordered by title. The unfiltered list is cached.
func (s *Service) List(ctx context.Context, f Filter) ([]Project, error) {
	key := ""
	if f.IsZero() && s.cache != nil {
		key = s.cache.Key("list", "all")
		var cached []Project
		if ok, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("project cache read failed")
		} else if ok {
			return cached, nil
		}
	}
	rows, err := s.queries.ListProjects(ctx, f.params())
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	out := make([]Project, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromRow(row))
	}
	if key != "" {
		if err := s.cache.SetJSON(ctx, key, out); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("project cache write failed")
		}
	}
	return out, nil
}

// Featured returns the projects shown on the home page.
func (s *Service) Featured(ctx context.Context) ([]Project, error) {
	rows, err := s.queries.ListFeaturedProjects(ctx, s.featuredLimit)
	if err != nil {
		return nil, fmt.Errorf("list featured projects: %w", err)
	}
	out := make([]Project, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromRow(row))
	}
	return out, nil
}

// Detail returns the project with slug, or a NOT_FOUND AppError.
func (s *Service) Detail(ctx context.Context, slug string) (Project, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return Project{}, common.NotFound("Project not found", nil)
	}
	var key string
	if s.cache != nil {
		key = s.cache.Key("slug", slug)
		var cached Project
		if ok, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("project cache read failed")
		} else if ok {
			return cached, nil
		}
	}
	row, err := s.queries.GetProjectBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Project{}, common.NotFound("Project not found", err)
		}
		return Project{}, fmt.Errorf("get project %q: %w", slug, err)
	}
	p := FromRow(row)
	if key != "" {
		if err := s.cache.SetJSON(ctx, key, p); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("project cache write failed")
		}
	}
	return p, nil
}

// Invalidate drops the cached list and the given detail entries.
func (s *Service) Invalidate(ctx context.Context, slugs ...string) error {
	if s.cache == nil {
		return nil
	}
	keys := []string{s.cache.Key("list", "all")}
	for _, slug := range slugs {
		keys = append(keys, s.cache.Key("slug", slug))
	}
	return s.cache.Delete(ctx, keys...)
}

func text(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

func optionalText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
