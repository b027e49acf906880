package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// ValidateContent caps the request body at maxBody bytes and the
// JSON "content" field at maxNote characters. The buffered body is
// handed back to the request so the handler can decode it again.
// Malformed JSON passes through here; the handler owns that error.
func ValidateContent(maxBody int64, maxNote int, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
			if err != nil {
				log.Warn().Str("remote", clientIP(r)).Err(err).Msg("request body too large")
				writeError(w, http.StatusRequestEntityTooLarge,
					fmt.Sprintf("request body exceeds %d bytes", maxBody))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			var payload struct {
				Content string `json:"content"`
			}
			if err := json.Unmarshal(body, &payload); err == nil {
				if n := utf8.RuneCountInString(payload.Content); n > maxNote {
					log.Warn().Str("remote", clientIP(r)).Int("chars", n).Int("max", maxNote).
						Msg("content too long")
					writeError(w, http.StatusRequestEntityTooLarge,
						fmt.Sprintf("content too long, maximum %d characters", maxNote))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
