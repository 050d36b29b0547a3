package common

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ClientIP returns the visitor address used for rate limiting and logs.
// The first parseable entry of X-Forwarded-For wins, then X-Real-IP, then RemoteAddr.
// Junk such as "unknown" or an empty hop is skipped rather than becoming a shared bucket.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	for _, hop := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if ip, ok := parseIP(hop); ok {
			return ip
		}
	}
	if ip, ok := parseIP(r.Header.Get("X-Real-IP")); ok {
		return ip
	}
	remote := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(remote); err == nil {
		remote = host
	}
	if ip, ok := parseIP(remote); ok {
		return ip
	}
	return remote
}

func parseIP(raw string) (string, bool) {
	addr, err := netip.ParseAddr(strings.Trim(strings.TrimSpace(raw), "[]"))
	if err != nil {
		return "", false
	}
	return addr.Unmap().String(), true
}

// IsXHR reports whether the request came from the site's fetch helpers.
func IsXHR(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
}

// WantsHTML reports whether a browser navigation (not a script) issued the request.
func WantsHTML(r *http.Request) bool {
	return !IsXHR(r) && strings.Contains(r.Header.Get("Accept"), "text/html")
}
