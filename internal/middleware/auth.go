package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/rs/zerolog"
)

// TokenHeader carries the shared API secret on every request.
const TokenHeader = "X-API-Token"

// Auth rejects requests whose token header is absent or does not
// match the configured secret. The two cases report distinct messages
// but the same status.
func Auth(token string, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(TokenHeader)
			if got == "" {
				log.Warn().Str("remote", clientIP(r)).Msg("missing token")
				writeError(w, http.StatusUnauthorized, "missing token")
				return
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				log.Warn().Str("remote", clientIP(r)).Msg("invalid token")
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
