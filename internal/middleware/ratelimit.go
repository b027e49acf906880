package middleware

import (
	"net/http"

	"github.com/rs/zerolog"

	"example.com/daynotes/internal/ratelimit"
)

// RateLimit charges the request against the caller's windows for op
// and rejects it once any window is exhausted. It runs after auth so
// rejected credentials never consume budget.
func RateLimit(l *ratelimit.Limiter, op string, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !l.Allow(ip, op) {
				log.Warn().Str("remote", ip).Str("op", op).Msg("rate limit exceeded")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
