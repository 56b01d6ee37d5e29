package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"gatehouse/internal/platform/metrics"
	"gatehouse/pkg/requestcontext"
)

// Observe logs each request and records it in the HTTP metrics. Route is
// taken from the chi pattern so path parameters do not explode label
// cardinality.
func Observe(logger *slog.Logger, m *metrics.HTTP) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			pattern := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				pattern = rctx.RoutePattern()
			}
			elapsed := time.Since(start)

			m.Observe(r.Method, pattern, ww.Status(), elapsed.Seconds())
			logger.InfoContext(r.Context(), "http request",
				"method", r.Method,
				"route", pattern,
				"status", ww.Status(),
				"duration_ms", elapsed.Milliseconds(),
				"request_id", requestcontext.RequestID(r.Context()),
			)
		})
	}
}
