// Package render executes the site's HTML templates with the shared page context.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/rs/zerolog"

	"github.com/anisjkb/deed/internal/awards"
	"github.com/anisjkb/deed/internal/common"
	"github.com/anisjkb/deed/internal/csrf"
	"github.com/anisjkb/deed/internal/security"
)

// Site is the company contact block shown on every page.
type Site struct {
	Name    string
	Phone   string
	Email   string
	Address string
	BaseURL string
}

// Config groups Renderer dependencies.
type Config struct {
	Templates     fs.FS
	Site          Site
	StaticVersion string
	CSRFField     string
	Location      *time.Location
	Logger        zerolog.Logger
}

// Page is the value every template executes against.
type Page struct {
	Title       string
	Description string
	Path        string
	CSRFToken   string
	CSRFField   string
	Nonce       string
	Site        Site
	Awards      []awards.Award
	Year        int
	Data        any
}

// ErrorData is the Data of the error page.
type ErrorData struct {
	Status  int
	Message string
}

// Renderer holds one parsed template set per page.
type Renderer struct {
	cfg   Config
	pages map[string]*template.Template
	now   func() time.Time
}

// New parses layout.html, partials/*.html and one set per pages/*.html.
func New(cfg Config) (*Renderer, error) {
	if cfg.Templates == nil {
		return nil, errors.New("render: templates filesystem is required")
	}
	if cfg.CSRFField == "" {
		cfg.CSRFField = "csrf_token"
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Site.Name == "" {
		cfg.Site.Name = "deed"
	}

	base, err := template.New("base").Funcs(funcMap(cfg.StaticVersion)).ParseFS(cfg.Templates, "layout.html", "partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("render: parse layout: %w", err)
	}
	files, err := fs.Glob(cfg.Templates, "pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("render: list pages: %w", err)
	}
	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		tmpl, err := clone.ParseFS(cfg.Templates, file)
		if err != nil {
			return nil, fmt.Errorf("render: parse %s: %w", file, err)
		}
		pages[strings.TrimSuffix(path.Base(file), ".html")] = tmpl
	}
	return &Renderer{cfg: cfg, pages: pages, now: time.Now}, nil
}

func funcMap(version string) template.FuncMap {
	fm := sprig.HtmlFuncMap()
	fm["static"] = func(name string) string {
		u := "/static/" + strings.TrimPrefix(name, "/")
		if version != "" {
			u += "?v=" + version
		}
		return u
	}
	return fm
}

// Has reports whether a page template exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// Page builds the common context for req.
func (r *Renderer) Page(req *http.Request, title, description string, data any) Page {
	ctx := req.Context()
	if title == "" {
		title = r.cfg.Site.Name
	}
	return Page{
		Title:       title,
		Description: description,
		Path:        req.URL.Path,
		CSRFToken:   csrf.Token(ctx),
		CSRFField:   r.cfg.CSRFField,
		Nonce:       security.Nonce(ctx),
		Site:        r.cfg.Site,
		Awards:      awards.FromContext(ctx),
		Year:        r.now().In(r.cfg.Location).Year(),
		Data:        data,
	}
}

// Title appends the site name to a page title.
func (r *Renderer) Title(title string) string {
	if title == "" {
		return r.cfg.Site.Name
	}
	return title + " | " + r.cfg.Site.Name
}

// HTML renders page with the named template. Output is buffered so template errors become a clean 500.
func (r *Renderer) HTML(w http.ResponseWriter, req *http.Request, status int, name string, page Page) {
	tmpl, ok := r.pages[name]
	if !ok {
		r.cfg.Logger.Error().Str("template", name).Msg("unknown template")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", page); err != nil {
		r.cfg.Logger.Error().Err(err).Str("template", name).Str("path", req.URL.Path).Msg("template execution failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Error renders the error page with status and message.
func (r *Renderer) Error(w http.ResponseWriter, req *http.Request, status int, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	page := r.Page(req, r.Title(http.StatusText(status)), "", ErrorData{Status: status, Message: message})
	if !r.Has("error") {
		http.Error(w, message, status)
		return
	}
	r.HTML(w, req, status, "error", page)
}

// ErrorFrom maps err onto the error page. AppErrors keep their status and message.
func (r *Renderer) ErrorFrom(w http.ResponseWriter, req *http.Request, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) && appErr.HTTPStatus != 0 && appErr.HTTPStatus < http.StatusInternalServerError {
		r.Error(w, req, appErr.HTTPStatus, appErr.Message)
		return
	}
	r.cfg.Logger.Error().Err(err).Str("path", req.URL.Path).Msg("request failed")
	r.Error(w, req, http.StatusInternalServerError, "Something went wrong. Please try again later.")
}
