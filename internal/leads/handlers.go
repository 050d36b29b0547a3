// Package leads accepts the site's lead forms: meeting requests, feedback, landowner enquiries and image uploads.
package leads

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/anisjkb/deed/internal/common"
	"github.com/anisjkb/deed/internal/db"
	"github.com/anisjkb/deed/internal/notify"
	"github.com/anisjkb/deed/internal/obs"
)

type queryProvider interface {
	CreateMeetingRequest(ctx context.Context, arg db.CreateMeetingRequestParams) (db.CreateLeadRow, error)
	CreateFeedback(ctx context.Context, arg db.CreateFeedbackParams) (db.CreateLeadRow, error)
	CreateLandownerLead(ctx context.Context, arg db.CreateLandownerLeadParams) (db.CreateLeadRow, error)
}

const thankYouPath = "/thank-you"

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Queries   queryProvider
	Enqueuer  notify.Enqueuer
	Validator *validator.Validate
	Logger    zerolog.Logger
	// MaxUploadMemory bounds the in-memory part of multipart parsing.
	MaxUploadMemory int64
	// EnqueueTimeout bounds the best-effort notification enqueue.
	EnqueueTimeout time.Duration
}

// Handler exposes POST endpoints for lead capture.
type Handler struct {
	queries        queryProvider
	enqueuer       notify.Enqueuer
	validate       *validator.Validate
	logger         zerolog.Logger
	maxMemory      int64
	enqueueTimeout time.Duration
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) (*Handler, error) {
	if cfg.Queries == nil {
		return nil, errors.New("leads: queries provider is required")
	}
	h := &Handler{
		queries:        cfg.Queries,
		enqueuer:       cfg.Enqueuer,
		validate:       cfg.Validator,
		logger:         cfg.Logger,
		maxMemory:      cfg.MaxUploadMemory,
		enqueueTimeout: cfg.EnqueueTimeout,
	}
	if h.enqueuer == nil {
		h.enqueuer = notify.NopEnqueuer{}
	}
	if h.validate == nil {
		h.validate = NewValidator()
	}
	if h.maxMemory <= 0 {
		h.maxMemory = 10 << 20
	}
	if h.enqueueTimeout <= 0 {
		h.enqueueTimeout = 2 * time.Second
	}
	return h, nil
}

// Routes mounts the endpoints on r. Callers wrap r with CSRF, body limit and rate limit middleware.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/meetings", h.CreateMeeting)
	r.Post("/feedback", h.CreateFeedback)
	r.Post("/landowner", h.CreateLandowner)
	r.Post("/upload-image", h.UploadImage)
}

// CreateMeeting handles POST /api/meetings.
func (h *Handler) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	const kind = notify.KindMeeting
	if !h.parse(w, r, kind) {
		return
	}
	form := parseMeeting(r.PostForm)
	if !h.valid(w, kind, form) {
		return
	}
	source := form.SourcePage
	if source == "" {
		source = r.URL.Path
	}
	row, err := h.queries.CreateMeetingRequest(r.Context(), db.CreateMeetingRequestParams{
		Name:              form.Name,
		Phone:             form.Phone,
		Email:             optional(form.Email),
		PreferredDate:     parseDate(form.PreferredDate),
		PreferredTimeSlot: optional(form.PreferredTimeSlot),
		Message:           optional(form.Message),
		SourcePage:        optional(source),
	})
	if err != nil {
		h.storageError(w, kind, err)
		return
	}
	h.accepted(r.Context(), kind, row.ID)
	http.Redirect(w, r, thankYouPath, http.StatusSeeOther)
}

// CreateFeedback handles POST /api/feedback. XHR callers get JSON instead of a redirect.
func (h *Handler) CreateFeedback(w http.ResponseWriter, r *http.Request) {
	const kind = notify.KindFeedback
	if !h.parse(w, r, kind) {
		return
	}
	form := parseFeedback(r.PostForm)
	if !h.valid(w, kind, form) {
		return
	}
	row, err := h.queries.CreateFeedback(r.Context(), db.CreateFeedbackParams{
		Name:    form.Name,
		Phone:   form.Phone,
		Email:   optional(form.Email),
		Message: optional(form.Message),
	})
	if err != nil {
		h.storageError(w, kind, err)
		return
	}
	h.accepted(r.Context(), kind, row.ID)
	if common.IsXHR(r) {
		common.JSON(w, http.StatusOK, map[string]any{"success": true, "message": "Feedback received"})
		return
	}
	http.Redirect(w, r, thankYouPath, http.StatusSeeOther)
}

// CreateLandowner handles POST /api/landowner.
func (h *Handler) CreateLandowner(w http.ResponseWriter, r *http.Request) {
	const kind = notify.KindLandowner
	if !h.parse(w, r, kind) {
		return
	}
	form := parseLandowner(r.PostForm)
	if !h.valid(w, kind, form) {
		return
	}
	row, err := h.queries.CreateLandownerLead(r.Context(), db.CreateLandownerLeadParams{
		Name:         form.Name,
		Phone:        form.Phone,
		Email:        optional(form.Email),
		LandLocation: optional(form.LandLocation),
		LandSize:     optional(form.LandSize),
		Message:      optional(form.Message),
	})
	if err != nil {
		h.storageError(w, kind, err)
		return
	}
	h.accepted(r.Context(), kind, row.ID)
	http.Redirect(w, r, thankYouPath, http.StatusSeeOther)
}

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// UploadImage handles POST /api/upload-image. Only JPEG and PNG parts are accepted.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxMemory); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_UPLOAD", "Expected a multipart form with a file field.", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_UPLOAD", "Missing file.", nil)
		return
	}
	defer file.Close()

	mediaType, _, _ := mime.ParseMediaType(header.Header.Get("Content-Type"))
	if !allowedImageTypes[mediaType] {
		common.JSONError(w, http.StatusBadRequest, "INVALID_FILE_TYPE", "Invalid file type. Only JPG or PNG allowed.", nil)
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_UPLOAD", "Could not read file.", nil)
		return
	}
	h.logger.Info().Str("filename", header.Filename).Int("bytes", len(data)).Str("content_type", mediaType).Msg("image uploaded")
	common.JSON(w, http.StatusOK, map[string]any{
		"filename": header.Filename,
		"sha256":   common.Sha256HexBytes(data),
	})
}

func (h *Handler) parse(w http.ResponseWriter, r *http.Request, kind notify.LeadKind) bool {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(h.maxMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		obs.ObserveLeadSubmission(string(kind), "invalid")
		common.JSONError(w, http.StatusBadRequest, "INVALID_FORM", "Could not read the submitted form.", nil)
		return false
	}
	return true
}

func (h *Handler) valid(w http.ResponseWriter, kind notify.LeadKind, form any) bool {
	err := h.validate.Struct(form)
	if err == nil {
		return true
	}
	obs.ObserveLeadSubmission(string(kind), "invalid")
	details := fieldErrors(err)
	if details == nil {
		h.logger.Error().Err(err).Str("kind", string(kind)).Msg("validation setup error")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
		return false
	}
	common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", "Please correct the highlighted fields.", details)
	return false
}

func (h *Handler) storageError(w http.ResponseWriter, kind notify.LeadKind, err error) {
	obs.ObserveLeadSubmission(string(kind), "error")
	h.logger.Error().Err(err).Str("kind", string(kind)).Msg("lead insert failed")
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "Could not save your request. Please try again.", nil)
}

// accepted records the lead and schedules its notification. Enqueue failures never fail the request.
func (h *Handler) accepted(ctx context.Context, kind notify.LeadKind, id int32) {
	obs.ObserveLeadSubmission(string(kind), "accepted")
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.enqueueTimeout)
	defer cancel()
	if err := h.enqueuer.EnqueueLead(ctx, notify.Payload{Kind: kind, ID: id}); err != nil {
		h.logger.Warn().Err(err).Str("kind", string(kind)).Int32("lead_id", id).Msg("lead notification enqueue failed")
	}
}
