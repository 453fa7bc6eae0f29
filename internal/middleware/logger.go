package middleware

import (
	"net/http"

	"github.com/rs/zerolog"
)

// LoggerMiddleware logs incoming HTTP requests.
func LoggerMiddleware(logger zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		logger.Debug().Msgf("%s %s", r.Method, r.URL.RequestURI())
	})
}
