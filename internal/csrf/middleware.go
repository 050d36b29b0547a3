package csrf

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anisjkb/deed/internal/common"
)

// SessionFunc locates the session attached to a request.
type SessionFunc func(*http.Request) (Session, bool)

type tokenKey struct{}

// Token returns the CSRF token bound to the request context, for templates and JSON payloads.
func Token(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(tokenKey{}).(string); ok {
		return v
	}
	return ""
}

// WithToken stores a CSRF token on the context.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// Protector wires the token store, verifier and issuer into HTTP middleware.
type Protector struct {
	cfg      Config
	sessions SessionFunc
	store    TokenStore
	verifier Verifier
	issuer   Issuer
}

// New builds a Protector. sessions must return the session of the current request.
func New(cfg Config, sessions SessionFunc) *Protector {
	cfg = cfg.withDefaults()
	store := TokenStore{Key: cfg.SessionKey}
	return &Protector{
		cfg:      cfg,
		sessions: sessions,
		store:    store,
		verifier: Verifier{
			CookieName:    cfg.CookieName,
			HeaderName:    cfg.HeaderName,
			FormField:     cfg.FormField,
			Store:         store,
			MaxFormMemory: cfg.MaxFormMemory,
		},
		issuer: Issuer{
			CookieName: cfg.CookieName,
			HeaderName: cfg.HeaderName,
			Domain:     cfg.CookieDomain,
			Secure:     cfg.CookieSecure,
			SameSite:   cfg.CookieSameSite,
			MaxAge:     cfg.MaxAge,
			Location:   cfg.Location,
		},
	}
}

// Config returns the effective configuration.
func (p *Protector) Config() Config {
	return p.cfg
}

// Exempt reports whether the path skips verification.
func (p *Protector) Exempt(path string) bool {
	for _, prefix := range p.cfg.ExemptPrefixes {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Middleware verifies state-changing requests and reissues the token pair on every HTML or JSON response.
func (p *Protector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sess Session
		if p.sessions != nil {
			if s, ok := p.sessions(r); ok && s != nil {
				sess = s
			}
		}
		if sess == nil {
			p.cfg.OnError(w, r, ErrSessionUnavailable)
			return
		}

		bypass := !StateChanging(r.Method) || p.Exempt(r.URL.Path)
		var verifyErr error
		if !bypass {
			verifyErr = p.verifier.Verify(r, sess)
		}

		token, err := p.store.GetOrCreate(sess)
		if err != nil {
			http.Error(w, "csrf token unavailable", http.StatusInternalServerError)
			return
		}

		iw := &issuingWriter{ResponseWriter: w, issuer: p.issuer, token: token}
		r = r.WithContext(WithToken(r.Context(), token))

		if verifyErr != nil {
			var csrfErr *Error
			if !errors.As(verifyErr, &csrfErr) {
				csrfErr = ErrTokenMissing
			}
			p.cfg.OnError(iw, r, csrfErr)
			return
		}
		next.ServeHTTP(iw, r)
	})
}

func writeJSONError(w http.ResponseWriter, _ *http.Request, err *Error) {
	common.JSONError(w, err.Status, "CSRF_"+strings.ToUpper(err.Reason), err.Message, map[string]string{"reason": err.Reason})
}
