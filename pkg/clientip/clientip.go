package clientip

import (
	"net"
	"net/http"
	"strings"
)

// FromRequest returns the sender's network address for a request.
// Order: X-Forwarded-For (first hop), X-Real-IP, then RemoteAddr. The result
// feeds the identity hasher and is never persisted raw.
func FromRequest(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		ips := strings.Split(forwarded, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	return Direct(r)
}

// Direct returns the client IP from r.RemoteAddr only (no proxy headers).
// Use for rate limiting when traffic reaches the app directly, so headers
// cannot be spoofed to dodge per-IP limits.
func Direct(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return strings.TrimSpace(host)
}
