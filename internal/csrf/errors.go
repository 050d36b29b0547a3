package csrf

import "net/http"

// Error is a CSRF failure carrying the HTTP status and a machine readable reason.
type Error struct {
	Reason  string
	Message string
	Status  int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

var (
	// ErrTokenMissing is returned when the supplied token or the cookie token is absent.
	ErrTokenMissing = &Error{Reason: "missing", Message: "CSRF token missing.", Status: http.StatusForbidden}
	// ErrTokenMismatch is returned when the supplied token differs from the cookie token.
	ErrTokenMismatch = &Error{Reason: "mismatch", Message: "CSRF token mismatch.", Status: http.StatusForbidden}
	// ErrSessionMismatch is returned when the token pair does not match the session token.
	ErrSessionMismatch = &Error{Reason: "session_mismatch", Message: "CSRF session check failed.", Status: http.StatusForbidden}
	// ErrSessionUnavailable means no session was attached to the request. It is a wiring fault.
	ErrSessionUnavailable = &Error{Reason: "session_unavailable", Message: "Session middleware not available.", Status: http.StatusInternalServerError}
)
