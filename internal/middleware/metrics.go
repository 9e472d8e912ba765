package middleware

import (
	"net/http"
	"time"

	"github.com/exguesich/tagebuch-app/internal/metrics"
)

// Metrics records request duration and count for each request, skipping
// the /metrics endpoint itself.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := wrapResponseWriter(w)
		next.ServeHTTP(wrapped, r)

		if r.URL.Path == "/metrics" {
			return
		}
		path := r.URL.Path
		if path == "" {
			path = "/"
		}
		metrics.RecordRequest(r.Method, path, wrapped.status, time.Since(start).Seconds())
	})
}
