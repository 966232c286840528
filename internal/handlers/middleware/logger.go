package middleware

import (
	"net/http"
	"time"
)

type logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// LoggerMiddleware writes one access line per request.
// Server errors are logged at error level, everything else at info.
func LoggerMiddleware(l logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lw := newLogWriter(w)

			next.ServeHTTP(lw, r)

			fields := []any{
				"method", r.Method,
				"uri", r.RequestURI,
				"duration", time.Since(start),
				"status", lw.status,
				"size", lw.size,
				"request_id", RequestIDFromContext(r.Context()),
			}

			if lw.status >= http.StatusInternalServerError {
				l.Error("HTTP request failed", fields...)
				return
			}
			l.Info("got HTTP request", fields...)
		})
	}
}
