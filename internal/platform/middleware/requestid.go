// Package middleware holds the HTTP middleware chain shared by all routes.
package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"gatehouse/pkg/requestcontext"
)

const requestIDHeader = "X-Request-Id"

// RequestID tags each request with an id, honoring one supplied by an
// upstream proxy, and echoes it back in the response. It also pins the
// request time so everything downstream shares one clock reading.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, reqID)
		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		ctx = requestcontext.WithTime(ctx, time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
