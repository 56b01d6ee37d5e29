package audit

import "context"

// Store persists audit events. Append must be durable before returning;
// ListByAttempt exists for inspection endpoints and tests.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByAttempt(ctx context.Context, attemptID string) ([]Event, error)
}
