package csrf

import (
	"net/http"
	"strings"
	"time"
)

// Config holds CSRF cookie, header and routing settings.
type Config struct {
	CookieName     string
	CookieDomain   string
	CookieSecure   bool
	CookieSameSite http.SameSite
	HeaderName     string
	FormField      string
	SessionKey     string
	MaxAge         time.Duration
	ExemptPrefixes []string
	// Location is used to render the X-CSRF-Expires header.
	Location *time.Location
	// MaxFormMemory bounds multipart parsing while looking for the form field.
	MaxFormMemory int64
	// OnError renders a rejection. The default writes the canonical JSON error body.
	OnError func(w http.ResponseWriter, r *http.Request, err *Error)
}

// DefaultExemptPrefixes lists paths that never carry a CSRF check.
var DefaultExemptPrefixes = []string{"/static/", "/health", "/docs", "/api/auth/", "/metrics"}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.CookieName) == "" {
		c.CookieName = "csrftoken"
	}
	if strings.TrimSpace(c.HeaderName) == "" {
		c.HeaderName = "X-CSRFToken"
	}
	if strings.TrimSpace(c.FormField) == "" {
		c.FormField = "csrf_token"
	}
	if strings.TrimSpace(c.SessionKey) == "" {
		c.SessionKey = "csrf_token"
	}
	if c.MaxAge <= 0 {
		c.MaxAge = 8 * time.Hour
	}
	if c.CookieSameSite == 0 || c.CookieSameSite == http.SameSiteDefaultMode {
		c.CookieSameSite = http.SameSiteLaxMode
	}
	if c.ExemptPrefixes == nil {
		c.ExemptPrefixes = DefaultExemptPrefixes
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	if c.MaxFormMemory <= 0 {
		c.MaxFormMemory = 10 << 20
	}
	if c.OnError == nil {
		c.OnError = writeJSONError
	}
	return c
}
