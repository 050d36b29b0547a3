// Package app assembles the website router from its parts.
package app

import (
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	validator "github.com/go-playground/validator/v10"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/anisjkb/deed/internal/associates"
	"github.com/anisjkb/deed/internal/awards"
	"github.com/anisjkb/deed/internal/cache"
	"github.com/anisjkb/deed/internal/common"
	"github.com/anisjkb/deed/internal/config"
	"github.com/anisjkb/deed/internal/csrf"
	"github.com/anisjkb/deed/internal/db"
	"github.com/anisjkb/deed/internal/health"
	"github.com/anisjkb/deed/internal/leads"
	"github.com/anisjkb/deed/internal/notify"
	"github.com/anisjkb/deed/internal/obs"
	"github.com/anisjkb/deed/internal/projects"
	"github.com/anisjkb/deed/internal/ratelimit"
	"github.com/anisjkb/deed/internal/render"
	"github.com/anisjkb/deed/internal/security"
	"github.com/anisjkb/deed/internal/session"
	"github.com/anisjkb/deed/internal/site"
	"github.com/anisjkb/deed/web"
)

// Dependencies enumerates what the router needs. Redis, Enqueuer, Metrics and Pprof are optional.
type Dependencies struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Queries   db.Querier
	Redis     redis.Cmdable
	Sessions  session.Store
	Enqueuer  notify.Enqueuer
	Checker   health.Checker
	Validator *validator.Validate
	Metrics   *obs.HTTPMetrics
	Tracing   bool
	Pprof     http.Handler
	Templates fs.FS
	Static    fs.FS
}

// NewRouter builds the site handler.
func NewRouter(d Dependencies) (http.Handler, error) {
	if d.Config == nil || d.Queries == nil {
		return nil, errors.New("app: config and queries are required")
	}
	cfg := d.Config
	if d.Templates == nil {
		d.Templates = web.Templates()
	}
	if d.Static == nil {
		d.Static = web.Static()
	}
	if d.Sessions == nil {
		if d.Redis != nil {
			d.Sessions = session.NewRedisStore(d.Redis)
		} else {
			d.Sessions = session.NewBoundedMemoryStore(session.DefaultMemorySessions, cfg.SessionTTL)
		}
	}
	if d.Enqueuer == nil {
		d.Enqueuer = notify.NopEnqueuer{}
	}

	renderer, err := render.New(render.Config{
		Templates: d.Templates,
		Site: render.Site{
			Name:    cfg.Company.Name,
			Phone:   cfg.Company.Phone,
			Email:   cfg.Company.Email,
			Address: cfg.Company.Address,
			BaseURL: cfg.SiteBaseURL,
		},
		StaticVersion: cfg.StaticVersion,
		CSRFField:     cfg.CSRFFormField,
		Location:      cfg.Location,
		Logger:        d.Logger.With().Str("component", "render").Logger(),
	})
	if err != nil {
		return nil, err
	}

	signer, err := session.NewSigner(cfg.SecretKey, cfg.AppName, cfg.SessionTTL)
	if err != nil {
		return nil, err
	}
	sessions := session.NewManager(d.Sessions, signer, session.Options{
		CookieName: cfg.SessionCookieName,
		Domain:     cfg.CookieDomain,
		Secure:     cfg.CookieSecure,
		SameSite:   cfg.CookieSameSite,
		TTL:        cfg.SessionTTL,
		Logger:     d.Logger.With().Str("component", "session").Logger(),
	})

	exempt := cfg.CSRFExemptPrefixes
	if exempt == nil {
		exempt = csrf.DefaultExemptPrefixes
	}
	protector := csrf.New(csrf.Config{
		CookieName:     cfg.CSRFCookieName,
		CookieDomain:   cfg.CookieDomain,
		CookieSecure:   cfg.CookieSecure,
		CookieSameSite: cfg.CookieSameSite,
		HeaderName:     cfg.CSRFHeaderName,
		FormField:      cfg.CSRFFormField,
		SessionKey:     cfg.CSRFSessionKey,
		MaxAge:         cfg.CSRFMaxAge,
		ExemptPrefixes: exempt,
		Location:       cfg.Location,
		MaxFormMemory:  cfg.BodyLimitBytes,
		OnError:        csrfErrorHandler(renderer, d.Logger),
	}, sessions.SessionFunc())

	projectService, err := projects.NewService(projects.ServiceConfig{
		Queries: d.Queries,
		Cache:   cache.New(d.Redis, "projects", cfg.CacheTTL),
		Logger:  d.Logger.With().Str("component", "projects").Logger(),
	})
	if err != nil {
		return nil, err
	}
	associateService, err := associates.NewService(d.Queries)
	if err != nil {
		return nil, err
	}
	pages, err := site.NewHandler(site.HandlerConfig{
		Queries:    d.Queries,
		Projects:   projectService,
		Associates: associateService,
		Renderer:   renderer,
	})
	if err != nil {
		return nil, err
	}
	leadHandler, err := leads.NewHandler(leads.HandlerConfig{
		Queries:         d.Queries,
		Enqueuer:        d.Enqueuer,
		Validator:       d.Validator,
		Logger:          d.Logger.With().Str("component", "leads").Logger(),
		MaxUploadMemory: cfg.BodyLimitBytes,
	})
	if err != nil {
		return nil, err
	}
	awardProvider := awards.NewProvider(awards.Config{
		Queries: d.Queries,
		TTL:     cfg.CacheTTL,
		Logger:  d.Logger.With().Str("component", "awards").Logger(),
	})

	var allower ratelimit.Allower = ratelimit.Limiter{Client: d.Redis, Prefix: "rl:"}
	if d.Redis == nil {
		allower = ratelimit.NewMemoryLimiter("rl")
	}
	limiter := ratelimit.Handler{
		Limiter: allower,
		Config: ratelimit.Config{
			Key:    ratelimit.ByClientIP("leads"),
			Window: cfg.LeadsRateLimitWindow,
			Max:    cfg.LeadsRateLimitMax,
		},
		OnError: func(err error) {
			d.Logger.Warn().Err(err).Msg("rate limiter unavailable")
		},
		Reject: rateLimitReject(renderer),
	}
	idem := common.Idem{R: d.Redis, TTL: 10 * time.Minute}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if d.Tracing {
		r.Use(obs.NameSpanFromRoute)
	}
	if d.Metrics != nil {
		r.Use(obs.HTTPObs{Metrics: d.Metrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: d.Logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", cfg.CSRFHeaderName, "X-Requested-With", "Idempotency-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(security.Headers{
		Enable:     cfg.SecureHeadersEnabled,
		EnableHSTS: cfg.HSTSEnabled,
	}.Middleware)
	// 404 and 405 pages render the full layout and take the same chain as the page group.
	pageChain := func(h http.HandlerFunc) http.HandlerFunc {
		var wrapped http.Handler = h
		wrapped = awardProvider.Middleware(wrapped)
		wrapped = protector.Middleware(wrapped)
		wrapped = sessions.Middleware(wrapped)
		wrapped = security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware(wrapped)
		return wrapped.ServeHTTP
	}
	r.NotFound(pageChain(pages.NotFound))
	r.MethodNotAllowed(pageChain(pages.MethodNotAllowed))

	healthz := health.Handler{Checker: d.Checker}
	r.Get("/health/live", healthz.Live)
	r.Get("/health/ready", healthz.Ready)
	if d.Metrics != nil {
		r.Handle("/metrics", promhttp.Handler())
	}
	if d.Pprof != nil {
		r.Mount("/debug/pprof", d.Pprof)
	}
	r.Handle("/static/*", site.StaticHandler(d.Static))

	r.Group(func(g chi.Router) {
		g.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)
		g.Use(sessions.Middleware)
		g.Use(protector.Middleware)
		g.Use(awardProvider.Middleware)

		pages.Routes(g)
		projects.NewHandler(projects.HandlerConfig{Service: projectService, Renderer: renderer}).Routes(g)
		associates.NewHandler(associates.HandlerConfig{
			Service:  associateService,
			Renderer: renderer,
			Logger:   d.Logger,
		}).Routes(g)

		g.Route("/api", func(api chi.Router) {
			api.Use(limiter.Middleware)
			api.Use(idem.Middleware)
			leadHandler.Routes(api)
		})
	})

	var handler http.Handler = r
	handler = gzhttp.GzipHandler(handler)
	if d.Tracing {
		handler = obs.TracingHandler(handler, cfg.AppName+"-web")
	}
	return handler, nil
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		if cfg.SiteBaseURL != "" {
			return []string{cfg.SiteBaseURL}
		}
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}
