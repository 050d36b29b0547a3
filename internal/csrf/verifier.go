package csrf

import (
	"crypto/subtle"
	"mime"
	"net/http"
)

// Verifier checks the supplied, cookie and session tokens of state-changing requests.
type Verifier struct {
	CookieName    string
	HeaderName    string
	FormField     string
	Store         TokenStore
	MaxFormMemory int64
}

// StateChanging reports whether the method can alter server state.
func StateChanging(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// Verify returns nil when the request may proceed, or one of the CSRF errors.
func (v Verifier) Verify(r *http.Request, sess Session) error {
	if !StateChanging(r.Method) {
		return nil
	}

	supplied := v.supplied(r)
	cookieToken := ""
	if cookie, err := r.Cookie(v.CookieName); err == nil {
		cookieToken = cookie.Value
	}
	if supplied == "" || cookieToken == "" {
		return ErrTokenMissing
	}
	if !constantTimeEqual(supplied, cookieToken) {
		return ErrTokenMismatch
	}
	sessionToken := v.Store.Lookup(sess)
	if sessionToken == "" || !constantTimeEqual(supplied, sessionToken) {
		return ErrSessionMismatch
	}
	return nil
}

// supplied prefers the header and falls back to the form field for form bodies.
func (v Verifier) supplied(r *http.Request) string {
	if token := r.Header.Get(v.HeaderName); token != "" {
		return token
	}
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return ""
		}
	case "multipart/form-data":
		if err := r.ParseMultipartForm(v.MaxFormMemory); err != nil {
			return ""
		}
	default:
		return ""
	}
	return r.PostForm.Get(v.FormField)
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
