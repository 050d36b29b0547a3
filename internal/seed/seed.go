// Package seed loads YAML content fixtures into the database.
package seed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/anisjkb/deed/internal/db"
)

// Fixture is the top-level document of a seed file.
type Fixture struct {
	Designations []Designation `yaml:"designations"`
	Employees    []Employee    `yaml:"employees"`
	Projects     []Project     `yaml:"projects"`
	Banners      []Banner      `yaml:"banners"`
	Testimonials []Testimonial `yaml:"testimonials"`
	Associates   []Associate   `yaml:"associates"`
	Awards       []Award       `yaml:"awards"`
}

type Designation struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	SortOrder *int32 `yaml:"sort_order"`
}

type Employee struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Designation string `yaml:"designation"`
	PhotoURL    string `yaml:"photo_url"`
	Bio         string `yaml:"bio"`
	LinkedInURL string `yaml:"linkedin_url"`
	SortOrder   *int32 `yaml:"sort_order"`
	Status      string `yaml:"status"`
}

type Project struct {
	Slug         string `yaml:"slug"`
	Title        string `yaml:"title"`
	Status       string `yaml:"status"`
	Type         string `yaml:"type"`
	Tagline      string `yaml:"tagline"`
	Location     string `yaml:"location"`
	ShortDesc    string `yaml:"short_desc"`
	SizeRange    string `yaml:"size_range"`
	Floors       *int32 `yaml:"floors"`
	HandoverDate string `yaml:"handover_date"`
	HeroImageURL string `yaml:"hero_image_url"`
	ProgressPct  int32  `yaml:"progress_pct"`
	Highlights   string `yaml:"highlights"`
}

type Banner struct {
	ImageURL  string `yaml:"image_url"`
	Headline  string `yaml:"headline"`
	Subhead   string `yaml:"subhead"`
	CTAText   string `yaml:"cta_text"`
	CTAURL    string `yaml:"cta_url"`
	SortOrder int32  `yaml:"sort_order"`
	Inactive  bool   `yaml:"inactive"`
}

type Testimonial struct {
	Name         string `yaml:"name"`
	Role         string `yaml:"role"`
	ProjectTitle string `yaml:"project_title"`
	Quote        string `yaml:"quote"`
	VideoURL     string `yaml:"video_url"`
	SortOrder    int32  `yaml:"sort_order"`
	Hidden       bool   `yaml:"hidden"`
}

type Associate struct {
	Name        string `yaml:"name"`
	LogoURL     string `yaml:"logo_url"`
	Description string `yaml:"description"`
	Hidden      bool   `yaml:"hidden"`
}

type Award struct {
	Title       string `yaml:"title"`
	Issuer      string `yaml:"issuer"`
	Year        *int32 `yaml:"year"`
	Description string `yaml:"description"`
	ImageURL    string `yaml:"image_url"`
}

// Decode parses and checks a fixture document. Unknown keys are errors.
func Decode(r io.Reader) (Fixture, error) {
	var f Fixture
	if err := yaml.NewDecoder(r, yaml.DisallowUnknownField()).Decode(&f); err != nil {
		return Fixture{}, fmt.Errorf("seed: decode: %w", err)
	}
	if err := f.check(); err != nil {
		return Fixture{}, err
	}
	return f, nil
}

var (
	projectStatuses = map[string]bool{"ongoing": true, "upcoming": true, "completed": true}
	projectTypes    = map[string]bool{"residential": true, "commercial": true}
	employeeTypes   = map[string]bool{"": true, "Contractual": true, "Permanent": true, "Management": true, "Board Member": true}
)

func (f Fixture) check() error {
	desigs := make(map[string]bool, len(f.Designations))
	for _, d := range f.Designations {
		if d.ID == "" || d.Name == "" {
			return fmt.Errorf("seed: designation needs id and name")
		}
		desigs[d.ID] = true
	}
	for _, e := range f.Employees {
		if e.ID == "" || e.Name == "" {
			return fmt.Errorf("seed: employee needs id and name")
		}
		if !employeeTypes[e.Type] {
			return fmt.Errorf("seed: employee %s has invalid type %q", e.ID, e.Type)
		}
		if e.Designation != "" && !desigs[e.Designation] {
			return fmt.Errorf("seed: employee %s references unknown designation %q", e.ID, e.Designation)
		}
	}
	slugs := make(map[string]bool, len(f.Projects))
	for _, p := range f.Projects {
		if p.Slug == "" || p.Title == "" {
			return fmt.Errorf("seed: project needs slug and title")
		}
		if slugs[p.Slug] {
			return fmt.Errorf("seed: duplicate project slug %q", p.Slug)
		}
		slugs[p.Slug] = true
		if !projectStatuses[p.Status] {
			return fmt.Errorf("seed: project %s has invalid status %q", p.Slug, p.Status)
		}
		if !projectTypes[p.Type] {
			return fmt.Errorf("seed: project %s has invalid type %q", p.Slug, p.Type)
		}
		if p.ProgressPct < 0 || p.ProgressPct > 100 {
			return fmt.Errorf("seed: project %s progress must be 0-100", p.Slug)
		}
		if p.HandoverDate != "" {
			if _, err := time.Parse("2006-01-02", p.HandoverDate); err != nil {
				return fmt.Errorf("seed: project %s handover_date: %w", p.Slug, err)
			}
		}
	}
	for _, b := range f.Banners {
		if b.ImageURL == "" {
			return fmt.Errorf("seed: banner needs image_url")
		}
	}
	for _, t := range f.Testimonials {
		if t.Name == "" || t.Quote == "" {
			return fmt.Errorf("seed: testimonial needs name and quote")
		}
	}
	for _, a := range f.Associates {
		if a.Name == "" || a.LogoURL == "" {
			return fmt.Errorf("seed: associate needs name and logo_url")
		}
	}
	for _, a := range f.Awards {
		if a.Title == "" {
			return fmt.Errorf("seed: award needs title")
		}
	}
	return nil
}

type queryProvider interface {
	ResetContent(ctx context.Context) error
	UpsertDesignation(ctx context.Context, arg db.UpsertDesignationParams) error
	UpsertEmployee(ctx context.Context, arg db.UpsertEmployeeParams) error
	UpsertProject(ctx context.Context, arg db.UpsertProjectParams) (int32, error)
	CreateBanner(ctx context.Context, arg db.CreateBannerParams) error
	CreateTestimonial(ctx context.Context, arg db.CreateTestimonialParams) error
	CreateAssociateBusiness(ctx context.Context, arg db.CreateAssociateBusinessParams) (int32, error)
	CreateAward(ctx context.Context, arg db.CreateAwardParams) error
}

// Counts reports how many rows of each kind were written.
type Counts struct {
	Designations, Employees, Projects, Banners, Testimonials, Associates, Awards int
}

// Apply writes f through q. With reset the list content (banners, testimonials,
// associates, awards) is cleared first so repeated runs do not duplicate it.
// Callers run Apply inside a transaction.
func Apply(ctx context.Context, q queryProvider, f Fixture, reset bool) (Counts, error) {
	var c Counts
	if reset {
		if err := q.ResetContent(ctx); err != nil {
			return c, fmt.Errorf("seed: reset: %w", err)
		}
	}
	for _, d := range f.Designations {
		if err := q.UpsertDesignation(ctx, db.UpsertDesignationParams{DesigID: d.ID, DesigName: d.Name, SortOrder: int4(d.SortOrder)}); err != nil {
			return c, fmt.Errorf("seed: designation %s: %w", d.ID, err)
		}
		c.Designations++
	}
	for _, e := range f.Employees {
		status := e.Status
		if status == "" {
			status = "active"
		}
		empType := e.Type
		if empType == "" {
			empType = "Contractual"
		}
		if err := q.UpsertEmployee(ctx, db.UpsertEmployeeParams{
			EmpID:       e.ID,
			EmpName:     e.Name,
			EmpType:     empType,
			DesigID:     text(e.Designation),
			PhotoUrl:    text(e.PhotoURL),
			Bio:         text(e.Bio),
			LinkedinUrl: text(e.LinkedInURL),
			SortOrder:   int4(e.SortOrder),
			Status:      status,
		}); err != nil {
			return c, fmt.Errorf("seed: employee %s: %w", e.ID, err)
		}
		c.Employees++
	}
	for _, p := range f.Projects {
		if _, err := q.UpsertProject(ctx, db.UpsertProjectParams{
			Slug:         p.Slug,
			Title:        p.Title,
			Status:       p.Status,
			Ptype:        p.Type,
			Tagline:      text(p.Tagline),
			Location:     text(p.Location),
			ShortDesc:    text(p.ShortDesc),
			SizeRange:    text(p.SizeRange),
			Floors:       int4(p.Floors),
			HandoverDate: date(p.HandoverDate),
			HeroImageUrl: text(p.HeroImageURL),
			ProgressPct:  p.ProgressPct,
			Highlights:   text(p.Highlights),
		}); err != nil {
			return c, fmt.Errorf("seed: project %s: %w", p.Slug, err)
		}
		c.Projects++
	}
	for _, b := range f.Banners {
		if err := q.CreateBanner(ctx, db.CreateBannerParams{
			ImageUrl:  b.ImageURL,
			Headline:  text(b.Headline),
			Subhead:   text(b.Subhead),
			CtaText:   text(b.CTAText),
			CtaUrl:    text(b.CTAURL),
			SortOrder: b.SortOrder,
			IsActive:  !b.Inactive,
		}); err != nil {
			return c, fmt.Errorf("seed: banner %s: %w", b.ImageURL, err)
		}
		c.Banners++
	}
	for _, t := range f.Testimonials {
		if err := q.CreateTestimonial(ctx, db.CreateTestimonialParams{
			Name:         t.Name,
			Role:         text(t.Role),
			ProjectTitle: text(t.ProjectTitle),
			Quote:        t.Quote,
			VideoUrl:     text(t.VideoURL),
			SortOrder:    t.SortOrder,
			Published:    yesNo(!t.Hidden),
		}); err != nil {
			return c, fmt.Errorf("seed: testimonial %s: %w", t.Name, err)
		}
		c.Testimonials++
	}
	for _, a := range f.Associates {
		if _, err := q.CreateAssociateBusiness(ctx, db.CreateAssociateBusinessParams{
			BusName:     a.Name,
			LogoUrl:     a.LogoURL,
			Description: text(a.Description),
			Published:   yesNo(!a.Hidden),
		}); err != nil {
			return c, fmt.Errorf("seed: associate %s: %w", a.Name, err)
		}
		c.Associates++
	}
	for _, a := range f.Awards {
		if err := q.CreateAward(ctx, db.CreateAwardParams{
			Title:       a.Title,
			Issuer:      text(a.Issuer),
			Year:        int4(a.Year),
			Description: text(a.Description),
			ImageUrl:    text(a.ImageURL),
		}); err != nil {
			return c, fmt.Errorf("seed: award %s: %w", a.Title, err)
		}
		c.Awards++
	}
	return c, nil
}

func text(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func int4(v *int32) pgtype.Int4 {
	if v == nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: *v, Valid: true}
}

// date expects a value already checked by Decode.
func date(s string) pgtype.Date {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: t, Valid: true}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
