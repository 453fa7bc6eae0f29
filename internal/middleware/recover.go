package middleware

import (
	"net/http"

	"github.com/rs/zerolog"
)

// RecoverMiddleware converts panics into generic 500 responses so
// provider error details never reach the client.
func RecoverMiddleware(logger zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("Recovered from panic in handler")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
