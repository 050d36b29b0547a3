package app

import (
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/anisjkb/deed/internal/common"
	"github.com/anisjkb/deed/internal/csrf"
	"github.com/anisjkb/deed/internal/obs"
	"github.com/anisjkb/deed/internal/render"
)

const (
	expiredFormMessage = "Your form session expired. Please go back, refresh the page and try again."
	serverErrorMessage = "Something went wrong on our side. Please try again in a few minutes."
)

// csrfErrorHandler answers browsers with the error page and scripts with JSON.
// A 403 is the visitor's stale or missing token; anything else is a server fault and is worded as one.
func csrfErrorHandler(renderer *render.Renderer, logger zerolog.Logger) func(http.ResponseWriter, *http.Request, *csrf.Error) {
	return func(w http.ResponseWriter, r *http.Request, err *csrf.Error) {
		rejected := err.Status == http.StatusForbidden
		event := logger.Warn()
		if rejected {
			obs.ObserveCSRFRejection(err.Reason)
		} else {
			event = logger.Error()
		}
		event.
			Str("reason", err.Reason).
			Int("status", err.Status).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("client_ip", common.ClientIP(r)).
			Msg("csrf rejected")

		if common.WantsHTML(r) {
			message := expiredFormMessage
			if !rejected {
				message = serverErrorMessage
			}
			renderer.Error(w, r, err.Status, message)
			return
		}
		common.JSONError(w, err.Status, "CSRF_"+strings.ToUpper(err.Reason), err.Message, map[string]string{"reason": err.Reason})
	}
}

// rateLimitReject renders the 429 page for plain form posts. Script callers keep the JSON body.
func rateLimitReject(renderer *render.Renderer) func(http.ResponseWriter, *http.Request, time.Duration) {
	return func(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
		if !common.WantsHTML(r) {
			common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many submissions, try again later",
				map[string]int{"retry_after_seconds": int(math.Ceil(retryAfter.Seconds()))})
			return
		}
		minutes := max(int(math.Ceil(retryAfter.Minutes())), 1)
		unit := "minutes"
		if minutes == 1 {
			unit = "minute"
		}
		renderer.Error(w, r, http.StatusTooManyRequests,
			fmt.Sprintf("We received several requests from you in a short time. Please try again in %d %s.", minutes, unit))
	}
}
