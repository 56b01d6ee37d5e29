package testutil

import (
	"net/http"

	"gatehouse/pkg/domain"
	"gatehouse/pkg/requestcontext"
)

// WithSessionID stamps a session ID onto the request context, simulating
// what the auth middleware does for authenticated requests. Invalid IDs are
// silently ignored.
func WithSessionID(req *http.Request, sessionID string) *http.Request {
	parsed, err := domain.ParseSessionID(sessionID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithSessionID(req.Context(), parsed))
}

// WithRequestID stamps a request ID onto the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
