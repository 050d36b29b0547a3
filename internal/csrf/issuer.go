package csrf

import (
	"mime"
	"net/http"
	"time"
)

// ExpiresHeader carries the wall-clock expiry of the issued cookie.
const ExpiresHeader = "X-CSRF-Expires"

// Issuer writes the token pair (cookie and header) onto responses.
type Issuer struct {
	CookieName string
	HeaderName string
	Domain     string
	Secure     bool
	SameSite   http.SameSite
	MaxAge     time.Duration
	Location   *time.Location
	Now        func() time.Time
}

// Attach sets the CSRF cookie and response headers. The cookie stays readable by scripts.
func (i Issuer) Attach(w http.ResponseWriter, token string) {
	if token == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     i.CookieName,
		Value:    token,
		Path:     "/",
		Domain:   i.Domain,
		MaxAge:   int(i.MaxAge / time.Second),
		Secure:   i.Secure,
		HttpOnly: false,
		SameSite: i.SameSite,
	})
	headers := w.Header()
	headers.Set(i.HeaderName, token)

	now := time.Now
	if i.Now != nil {
		now = i.Now
	}
	loc := i.Location
	if loc == nil {
		loc = time.UTC
	}
	headers.Set(ExpiresHeader, now().In(loc).Add(i.MaxAge).Format("2006-01-02T15:04:05-0700"))
}

// carriesToken reports whether a response with the given content type gets the token pair.
func carriesToken(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch mediaType {
	case "text/html", "application/json", "application/problem+json":
		return true
	default:
		return false
	}
}

// issuingWriter attaches the token pair when the response headers are committed.
type issuingWriter struct {
	http.ResponseWriter
	issuer      Issuer
	token       string
	wroteHeader bool
}

func (w *issuingWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		if carriesToken(w.Header().Get("Content-Type")) {
			w.issuer.Attach(w.ResponseWriter, w.token)
		}
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *issuingWriter) Write(p []byte) (int, error) {
	if !w.wroteHeader {
		headers := w.Header()
		if headers.Get("Content-Type") == "" && len(p) > 0 {
			headers.Set("Content-Type", http.DetectContentType(p))
		}
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(p)
}

func (w *issuingWriter) Flush() {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *issuingWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
