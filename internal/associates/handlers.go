package associates

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/anisjkb/deed/internal/render"
)

// Handler exposes the directory pages.
type Handler struct {
	service  *Service
	renderer *render.Renderer
	logger   zerolog.Logger
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service  *Service
	Renderer *render.Renderer
	Logger   zerolog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service, renderer: cfg.Renderer, logger: cfg.Logger}
}

// Routes mounts the directory pages on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/associate-business", h.Index)
	r.Get("/associate-businesses/{id}", h.Detail)
}

// Index handles GET /associate-business.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.renderer.ErrorFrom(w, r, err)
		return
	}
	h.logger.Debug().Int("count", len(list)).Msg("associate businesses listed")
	page := h.renderer.Page(r, h.renderer.Title("Associate Business"), "", map[string]any{"Businesses": list})
	h.renderer.HTML(w, r, http.StatusOK, "associates_index", page)
}

// Detail handles GET /associate-businesses/{id}.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.renderer.ErrorFrom(w, r, err)
		return
	}
	page := h.renderer.Page(r, h.renderer.Title(b.Name), b.Description, map[string]any{"Business": b})
	h.renderer.HTML(w, r, http.StatusOK, "associates_detail", page)
}
