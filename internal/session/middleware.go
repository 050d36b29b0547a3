package session

import (
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/anisjkb/deed/internal/common"
	"github.com/anisjkb/deed/internal/csrf"
)

// Options configures the session cookie.
type Options struct {
	CookieName string
	Domain     string
	Secure     bool
	SameSite   http.SameSite
	TTL        time.Duration
	Random     io.Reader
	Logger     zerolog.Logger
}

// Manager loads sessions before handlers run and saves them afterwards.
type Manager struct {
	store  Store
	signer *Signer
	opts   Options
}

// NewManager wires a store and signer into a Manager.
func NewManager(store Store, signer *Signer, opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "deed_session"
	}
	if opts.TTL <= 0 {
		opts.TTL = 14 * 24 * time.Hour
	}
	if opts.SameSite == 0 || opts.SameSite == http.SameSiteDefaultMode {
		opts.SameSite = http.SameSiteLaxMode
	}
	return &Manager{store: store, signer: signer, opts: opts}
}

// SessionFunc adapts the manager to the CSRF layer.
func (m *Manager) SessionFunc() csrf.SessionFunc {
	return func(r *http.Request) (csrf.Session, bool) {
		s, ok := FromContext(r.Context())
		if !ok {
			return nil, false
		}
		return s, true
	}
}

// Middleware attaches a session to every request.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess, err := m.load(r)
		if err != nil {
			m.opts.Logger.Error().Err(err).Msg("session load failed")
			common.JSONError(w, http.StatusInternalServerError, "SESSION_UNAVAILABLE", "session store unavailable", nil)
			return
		}
		if sess.IsNew() {
			if err := m.setCookie(w, sess.ID()); err != nil {
				m.opts.Logger.Error().Err(err).Msg("session cookie signing failed")
				common.JSONError(w, http.StatusInternalServerError, "SESSION_UNAVAILABLE", "session unavailable", nil)
				return
			}
		}

		next.ServeHTTP(w, r.WithContext(WithSession(ctx, sess)))

		if sess.Dirty() {
			if err := m.store.Save(ctx, sess.ID(), sess.snapshot(), m.opts.TTL); err != nil {
				m.opts.Logger.Error().Err(err).Str("session_id_prefix", prefix(sess.ID())).Msg("session save failed")
				return
			}
			sess.markSaved()
		}
	})
}

// Destroy deletes the session server-side and expires its cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) error {
	sess, ok := FromContext(r.Context())
	if !ok {
		return nil
	}
	sess.Clear()
	if err := m.store.Delete(r.Context(), sess.ID()); err != nil {
		return err
	}
	sess.markSaved()
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   m.opts.Domain,
		MaxAge:   -1,
		Secure:   m.opts.Secure,
		HttpOnly: true,
		SameSite: m.opts.SameSite,
	})
	return nil
}

func (m *Manager) load(r *http.Request) (*Session, error) {
	if cookie, err := r.Cookie(m.opts.CookieName); err == nil && cookie.Value != "" {
		if id, err := m.signer.Verify(cookie.Value); err == nil {
			values, ok, err := m.store.Load(r.Context(), id)
			if err != nil {
				return nil, err
			}
			if ok {
				return newSession(id, values, false), nil
			}
		}
	}
	id, err := newID(m.opts.Random)
	if err != nil {
		return nil, err
	}
	return newSession(id, nil, true), nil
}

func (m *Manager) setCookie(w http.ResponseWriter, id string) error {
	value, err := m.signer.Sign(id)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    value,
		Path:     "/",
		Domain:   m.opts.Domain,
		MaxAge:   int(m.opts.TTL / time.Second),
		Secure:   m.opts.Secure,
		HttpOnly: true,
		SameSite: m.opts.SameSite,
	})
	return nil
}

func prefix(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
