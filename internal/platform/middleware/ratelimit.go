package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"gatehouse/internal/platform/ratelimit"
	"gatehouse/pkg/domerr"
	"gatehouse/pkg/httputil"
)

// RateLimitConfig tunes the per-IP limiter on public endpoints.
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

// RateLimit enforces a per-IP request budget. A store failure fails open:
// the identity flow must not become unavailable because the limiter backend
// is down.
func RateLimit(store ratelimit.Store, cfg RateLimitConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store == nil || cfg.Limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			res, err := store.Allow(r.Context(), clientIP(r), cfg.Limit, cfg.Window)
			if err != nil {
				logger.Error("rate limit check failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed {
				retryAfter := max(int(time.Until(res.ResetAt).Seconds()), 1)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				httputil.WriteError(w, domerr.New(domerr.CodeRateLimited, "rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// connection peer.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		for i := 0; i < len(fwd); i++ {
			if fwd[i] == ',' {
				return fwd[:i]
			}
		}
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
