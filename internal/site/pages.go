// Package site serves the marketing pages: home, about, team and the static content pages.
package site

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/anisjkb/deed/internal/associates"
	"github.com/anisjkb/deed/internal/db"
	"github.com/anisjkb/deed/internal/projects"
	"github.com/anisjkb/deed/internal/render"
)

type queryProvider interface {
	ListActiveBanners(ctx context.Context) ([]db.Banner, error)
	ListPublishedTestimonials(ctx context.Context) ([]db.Testimonial, error)
	ListTeamMembers(ctx context.Context) ([]db.ListTeamMembersRow, error)
}

// Banner is a home page slide.
type Banner struct {
	ImageURL string
	Headline string
	Subhead  string
	CTAText  string
	CTAURL   string
}

// Testimonial is a resident quote.
type Testimonial struct {
	Name         string
	Role         string
	ProjectTitle string
	Quote        string
	VideoURL     string
}

// Member is a management team card.
type Member struct {
	Name        string
	Designation string
	PhotoURL    string
	Bio         string
	LinkedInURL string
}

// HomeData is the Data of the home page.
type HomeData struct {
	Banners      []Banner
	Projects     []projects.Project
	Testimonials []Testimonial
	Associates   []associates.Business
}

// TeamData is the Data of the team page.
type TeamData struct {
	Members []Member
}

type staticPage struct {
	path     string
	template string
	title    string
	desc     string
}

var staticPages = []staticPage{
	{"/about-us", "about", "About Us", "Purpose, vision, values, timeline & leadership."},
	{"/about-us/timeline", "about_timeline", "Timeline", "Milestones and handovers across years."},
	{"/gallery", "gallery", "Gallery", "Photos, videos & newsletters."},
	{"/blog", "blog", "Blog", "Stories, updates & guides."},
	{"/career", "career", "Career", "Build with us."},
	{"/royal-club", "royal_club", "Royal Club", "Benefits for valued residents & partners."},
	{"/privacy-policy", "privacy", "Privacy Policy", "Your data & privacy at deed."},
	{"/contact-us", "contact", "Contact Us", "Hotline, email & address."},
	{"/feedback", "feedback", "Share your feedback", "Tell us how we can improve."},
	{"/thank-you", "thank_you", "Thank you", ""},
	{"/landowner", "landowner", "Landowner", "Partner with us to develop your land."},
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Queries    queryProvider
	Projects   *projects.Service
	Associates *associates.Service
	Renderer   *render.Renderer
}

// Handler renders site pages.
type Handler struct {
	queries    queryProvider
	projects   *projects.Service
	associates *associates.Service
	renderer   *render.Renderer
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) (*Handler, error) {
	if cfg.Queries == nil || cfg.Renderer == nil {
		return nil, errors.New("site: queries and renderer are required")
	}
	return &Handler{queries: cfg.Queries, projects: cfg.Projects, associates: cfg.Associates, renderer: cfg.Renderer}, nil
}

// Routes mounts the pages on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Home)
	r.Get("/about-us/team", h.Team)
	for _, p := range staticPages {
		r.Get(p.path, h.static(p))
	}
}

// NotFound renders the 404 page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderer.Error(w, r, http.StatusNotFound, "Page not found")
}

// MethodNotAllowed renders the 405 page.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.renderer.Error(w, r, http.StatusMethodNotAllowed, "Method not allowed")
}

func (h *Handler) static(p staticPage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := h.renderer.Page(r, h.renderer.Title(p.title), p.desc, nil)
		h.renderer.HTML(w, r, http.StatusOK, p.template, page)
	}
}

// Home handles GET /. The four sections load concurrently.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	var data HomeData
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		rows, err := h.queries.ListActiveBanners(ctx)
		if err != nil {
			return err
		}
		data.Banners = make([]Banner, 0, len(rows))
		for _, b := range rows {
			data.Banners = append(data.Banners, Banner{
				ImageURL: b.ImageUrl,
				Headline: b.Headline.String,
				Subhead:  b.Subhead.String,
				CTAText:  b.CtaText.String,
				CTAURL:   b.CtaUrl.String,
			})
		}
		return nil
	})
	g.Go(func() error {
		rows, err := h.queries.ListPublishedTestimonials(ctx)
		if err != nil {
			return err
		}
		data.Testimonials = make([]Testimonial, 0, len(rows))
		for _, t := range rows {
			data.Testimonials = append(data.Testimonials, Testimonial{
				Name:         t.Name,
				Role:         t.Role.String,
				ProjectTitle: t.ProjectTitle.String,
				Quote:        t.Quote,
				VideoURL:     t.VideoUrl.String,
			})
		}
		return nil
	})
	if h.projects != nil {
		g.Go(func() error {
			list, err := h.projects.Featured(ctx)
			data.Projects = list
			return err
		})
	}
	if h.associates != nil {
		g.Go(func() error {
			list, err := h.associates.List(ctx)
			data.Associates = list
			return err
		})
	}
	if err := g.Wait(); err != nil {
		h.renderer.ErrorFrom(w, r, err)
		return
	}

	page := h.renderer.Page(r, "deed | Modern Real Estate in Dhaka",
		"Premium residences across Dhaka. Explore ongoing, upcoming & completed projects.", data)
	h.renderer.HTML(w, r, http.StatusOK, "home", page)
}

// Team handles GET /about-us/team.
func (h *Handler) Team(w http.ResponseWriter, r *http.Request) {
	rows, err := h.queries.ListTeamMembers(r.Context())
	if err != nil {
		h.renderer.ErrorFrom(w, r, err)
		return
	}
	members := make([]Member, 0, len(rows))
	for _, m := range rows {
		members = append(members, Member{
			Name:        m.EmpName,
			Designation: m.DesigName.String,
			PhotoURL:    m.PhotoUrl.String,
			Bio:         m.Bio.String,
			LinkedInURL: m.LinkedinUrl.String,
		})
	}
	page := h.renderer.Page(r, h.renderer.Title("Management Team"), "Leadership that delivers quality & trust.", TeamData{Members: members})
	h.renderer.HTML(w, r, http.StatusOK, "about_team", page)
}
