// Package middleware holds the pipeline stages wrapped around every
// note operation: access logging, IP filtering, token authentication,
// rate limiting and payload validation. Each stage is a standard
// func(http.Handler) http.Handler; composition order lives in the
// router.
package middleware

import (
	"encoding/json"
	"net"
	"net/http"
)

// clientIP returns the caller address without the port. The router
// installs chi's RealIP first, so RemoteAddr already reflects
// forwarded headers when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
