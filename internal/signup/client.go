package signup

import (
	"context"
	"strings"
)

//go:generate mockgen -source=client.go -destination=mocks/mock_client.go -package=mocks

// FieldError is a validation error the server attributes to a single field.
type FieldError struct {
	Field   FieldName `json:"field"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// APIError is the typed failure returned by the identity service. It carries
// field-level and global errors; both may be present.
type APIError struct {
	Fields []FieldError
	Global []string
}

func (e *APIError) Error() string {
	var parts []string
	for _, g := range e.Global {
		parts = append(parts, g)
	}
	for _, f := range e.Fields {
		parts = append(parts, string(f.Field)+": "+f.Message)
	}
	if len(parts) == 0 {
		return "identity service rejected the request"
	}
	return strings.Join(parts, "; ")
}

// PrepareParams configures a prepare-verification call.
type PrepareParams struct {
	Field       FieldName
	RedirectURL string // landing page for link strategies
}

// RedirectParams configures a federated or enterprise redirect authentication.
type RedirectParams struct {
	Provider            string
	RedirectURL         string
	RedirectURLComplete string
}

// PollEvent is one element of the polling stream. Exactly one of Snapshot and
// Err is set.
type PollEvent struct {
	Snapshot *Snapshot
	Err      error
}

// ResourceClient performs the network operations against the remote
// registration resource. Implementations return a fresh snapshot on success
// or an *APIError for server-side validation failures; any other error is
// treated as infrastructure failure.
//
// StartPolling returns a stream of snapshots that ends when ctx is cancelled
// or the stream reaches a terminal event. Two concurrent streams for the same
// attempt must never be requested; the machine enforces cancel-before-replace.
type ResourceClient interface {
	Create(ctx context.Context, fields map[FieldName]string) (*Snapshot, error)
	Update(ctx context.Context, fields map[FieldName]string) (*Snapshot, error)
	PrepareVerification(ctx context.Context, strategy StrategyName, params PrepareParams) (*Snapshot, error)
	AttemptVerification(ctx context.Context, strategy StrategyName, code string) (*Snapshot, error)
	StartPolling(ctx context.Context) (<-chan PollEvent, error)
	AuthenticateWithRedirect(ctx context.Context, params RedirectParams) error
}
