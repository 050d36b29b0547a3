package projects

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anisjkb/deed/internal/render"
)

// Handler exposes the project pages.
type Handler struct {
	service  *Service
	renderer *render.Renderer
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service  *Service
	Renderer *render.Renderer
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service, renderer: cfg.Renderer}
}

// Routes mounts the project pages on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/projects", h.Index)
	r.Get("/projects/{slug}", h.Detail)
}

// IndexData is the Data of the listing page.
type IndexData struct {
	Filter   Filter
	Projects []Project
}

// DetailData is the Data of the detail page.
type DetailData struct {
	Project Project
}

// Index handles GET /projects.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	filter := ParseFilter(r.URL.Query())
	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.renderer.ErrorFrom(w, r, err)
		return
	}
	page := h.renderer.Page(r, h.renderer.Title("Projects"),
		"All, Ongoing, Upcoming, Completed & filters for type and location.",
		IndexData{Filter: filter, Projects: list})
	h.renderer.HTML(w, r, http.StatusOK, "projects_index", page)
}

// Detail handles GET /projects/{slug}.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Detail(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.renderer.ErrorFrom(w, r, err)
		return
	}
	page := h.renderer.Page(r, h.renderer.Title(p.Title), p.ShortDesc, DetailData{Project: p})
	h.renderer.HTML(w, r, http.StatusOK, "projects_detail", page)
}
