package middleware

import (
	"net/http"

	"github.com/rs/zerolog"
)

// IPFilter rejects callers whose address is not in the allow-list.
// An empty allow-list disables the filter.
func IPFilter(allowed []string, log zerolog.Logger) func(http.Handler) http.Handler {
	allow := make(map[string]struct{}, len(allowed))
	for _, ip := range allowed {
		allow[ip] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		if len(allow) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if _, ok := allow[ip]; !ok {
				log.Warn().Str("remote", ip).Msg("ip not in allow-list")
				writeError(w, http.StatusForbidden, "access denied: IP not allowed")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
