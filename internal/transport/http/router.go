// Package httptransport is the thin HTTP layer. Handlers delegate to domain
// services and translate domain errors to JSON envelopes; no business logic
// lives here.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gatehouse/internal/platform/metrics"
	"gatehouse/internal/platform/middleware"
	"gatehouse/internal/platform/ratelimit"
	"gatehouse/pkg/httputil"
)

// RouterConfig carries the handlers and cross-cutting collaborators.
type RouterConfig struct {
	Logger   *slog.Logger
	Metrics  *metrics.HTTP
	SignUps  *SignUpHandler
	Redirect *RedirectHandler
	Sessions *SessionHandler
	Tokens   middleware.TokenValidator

	// RateLimit guards the public sign-up surface; nil disables limiting.
	RateLimit ratelimit.Store
	RateCfg   middleware.RateLimitConfig
}

// NewRouter wires all public endpoints.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Observe(cfg.Logger, cfg.Metrics))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimit, cfg.RateCfg, cfg.Logger))
		r.Route("/signups", func(r chi.Router) {
			r.Post("/", cfg.SignUps.handleBegin)
			r.Route("/{attemptID}", func(r chi.Router) {
				r.Get("/", cfg.SignUps.handleGet)
				r.Delete("/", cfg.SignUps.handleRemove)
				r.Post("/continue", cfg.SignUps.handleContinue)
				r.Post("/navigation", cfg.SignUps.handleNavigation)
				r.Post("/auth-redirect", cfg.SignUps.handleAuthRedirect)
				r.Post("/verify/attempt", cfg.SignUps.handleVerifyAttempt)
				r.Post("/verify/restart", cfg.SignUps.handleVerifyRestart)
			})
		})

		r.Post("/redirect/{flow}/evaluate", cfg.Redirect.handleEvaluate)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(cfg.Tokens, cfg.Logger))
			r.Get("/sessions/me", cfg.Sessions.handleMe)
		})
	})

	return r
}
