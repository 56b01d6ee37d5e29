// Package ratelimit guards the public endpoints with a sliding-window
// limiter. The window algorithm avoids the burst-at-boundary problem of
// fixed windows.
package ratelimit

import (
	"context"
	"time"
)

// Result reports one limiter decision plus the header material.
type Result struct {
	Allowed   bool
	Remaining int
	Limit     int
	ResetAt   time.Time
}

// Store counts requests per key inside a sliding window.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}
