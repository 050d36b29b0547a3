package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// DefaultTimezone is used when TIMEZONE is empty or cannot be loaded.
const DefaultTimezone = "Asia/Dhaka"

// Company is the contact block rendered in the site header and footer.
type Company struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

// Config holds application configuration loaded from the environment.
type Config struct {
	AppName       string
	AppEnv        string
	Debug         bool
	Host          string
	Port          string
	SiteBaseURL   string
	StaticVersion string
	Timezone      string
	Location      *time.Location

	DatabaseURL   string
	DBAutoMigrate bool
	RedisURL      string

	SecretKey         string
	CookieSecure      bool
	CookieSameSite    http.SameSite
	CookieDomain      string
	SessionCookieName string
	SessionTTL        time.Duration

	CSRFCookieName     string
	CSRFHeaderName     string
	CSRFFormField      string
	CSRFSessionKey     string
	CSRFMaxAge         time.Duration
	CSRFExemptPrefixes []string

	CORSAllowedOrigins   []string
	SecureHeadersEnabled bool
	HSTSEnabled          bool
	BodyLimitBytes       int64

	LeadsRateLimitMax    int
	LeadsRateLimitWindow time.Duration
	CacheTTL             time.Duration

	Company Company

	LeadsNotifyEmail  string
	MailFrom          string
	SMTPAddr          string
	SMTPUsername      string
	SMTPPassword      string
	WorkerConcurrency int
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppName:       valueOrDefault(k.String("APP_NAME"), "deed"),
		AppEnv:        valueOrDefault(k.String("APP_ENV"), "development"),
		Debug:         parseBool(k.String("DEBUG")),
		Host:          strings.TrimSpace(k.String("APP_HOST")),
		Port:          valueOrDefault(k.String("APP_PORT"), "8080"),
		SiteBaseURL:   strings.TrimRight(strings.TrimSpace(k.String("SITE_BASE_URL")), "/"),
		StaticVersion: valueOrDefault(k.String("STATIC_VERSION"), "dev-001"),
		Timezone:      valueOrDefault(k.String("TIMEZONE"), DefaultTimezone),

		DatabaseURL:   strings.TrimSpace(k.String("DATABASE_URL")),
		DBAutoMigrate: parseBool(k.String("DB_AUTO_MIGRATE")),
		RedisURL:      strings.TrimSpace(k.String("REDIS_URL")),

		SecretKey:         k.String("SECRET_KEY"),
		CookieSecure:      parseBool(k.String("COOKIE_SECURE")),
		CookieSameSite:    parseSameSite(k.String("COOKIE_SAMESITE")),
		CookieDomain:      strings.TrimSpace(k.String("COOKIE_DOMAIN")),
		SessionCookieName: valueOrDefault(k.String("SESSION_COOKIE_NAME"), "deed_session"),
		SessionTTL:        parseDuration(k.String("SESSION_TTL"), "336h"),

		CSRFCookieName:     valueOrDefault(k.String("CSRF_COOKIE_NAME"), "csrftoken"),
		CSRFHeaderName:     valueOrDefault(k.String("CSRF_HEADER_NAME"), "X-CSRFToken"),
		CSRFFormField:      valueOrDefault(k.String("CSRF_FORM_FIELD"), "csrf_token"),
		CSRFSessionKey:     valueOrDefault(k.String("CSRF_SESSION_KEY"), "csrf_token"),
		CSRFMaxAge:         parseDuration(k.String("CSRF_MAX_AGE"), "8h"),
		CSRFExemptPrefixes: splitAndTrim(k.String("CSRF_EXEMPT_PREFIXES")),

		CORSAllowedOrigins:   splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		SecureHeadersEnabled: parseBoolDefault(k.String("SECURE_HEADERS_ENABLED"), true),
		HSTSEnabled:          parseBool(k.String("HSTS_ENABLED")),
		BodyLimitBytes:       parseInt64(k.String("BODY_LIMIT_BYTES"), 10<<20),

		LeadsRateLimitMax:    int(parseInt64(k.String("LEADS_RATE_LIMIT_MAX"), 10)),
		LeadsRateLimitWindow: parseDuration(k.String("LEADS_RATE_LIMIT_WINDOW"), "1m"),
		CacheTTL:             parseDuration(k.String("CACHE_TTL"), "5m"),

		Company: Company{
			Name:    valueOrDefault(k.String("COMPANY_NAME"), "Deed Properties Ltd."),
			Phone:   strings.TrimSpace(k.String("COMPANY_PHONE")),
			Email:   strings.TrimSpace(k.String("COMPANY_EMAIL")),
			Address: strings.TrimSpace(k.String("COMPANY_ADDRESS")),
		},

		LeadsNotifyEmail:  strings.TrimSpace(k.String("LEADS_NOTIFY_EMAIL")),
		MailFrom:          valueOrDefault(k.String("MAIL_FROM"), "no-reply@localhost"),
		SMTPAddr:          strings.TrimSpace(k.String("SMTP_ADDR")),
		SMTPUsername:      k.String("SMTP_USERNAME"),
		SMTPPassword:      k.String("SMTP_PASSWORD"),
		WorkerConcurrency: int(parseInt64(k.String("WORKER_CONCURRENCY"), 5)),
	}

	if cfg.CookieSameSite == 0 || cfg.CookieSameSite == http.SameSiteDefaultMode {
		cfg.CookieSameSite = http.SameSiteLaxMode
	}
	cfg.Location = loadLocation(cfg.Timezone)
	if cfg.Location.String() != cfg.Timezone {
		cfg.Timezone = DefaultTimezone
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.SecretKey == "" {
		if cfg.IsProduction() {
			return nil, errors.New("SECRET_KEY is required")
		}
		cfg.SecretKey = "dev-insecure-secret-key"
	}

	return cfg, nil
}

// IsProduction reports whether the app runs outside development and test.
func (c *Config) IsProduction() bool {
	switch strings.ToLower(strings.TrimSpace(c.AppEnv)) {
	case "development", "dev", "local", "test":
		return false
	default:
		return true
	}
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return c.Host + port
	}
	return c.Host + ":" + port
}

// loadLocation falls back to DefaultTimezone when the name is unknown.
func loadLocation(name string) *time.Location {
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	if loc, err := time.LoadLocation(DefaultTimezone); err == nil {
		return loc
	}
	return time.FixedZone(DefaultTimezone, 6*60*60)
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt64(value string, fallback int64) int64 {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func parseBool(value string) bool {
	return parseBoolDefault(value, false)
}

func parseBoolDefault(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func parseSameSite(value string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	case "lax":
		return http.SameSiteLaxMode
	default:
		return http.SameSiteDefaultMode
	}
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
