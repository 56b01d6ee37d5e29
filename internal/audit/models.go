// Package audit records an append-only trail of flow transitions, redirect
// decisions and session activations. Events are transport-agnostic so stores
// and sinks can fan out.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Category groups audit events by subsystem.
type Category string

const (
	CategoryFlow     Category = "flow"
	CategoryRedirect Category = "redirect"
	CategorySession  Category = "session"
)

// Event is one audit record.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Category  Category  `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	AttemptID string    `json:"attempt_id,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	Action    string    `json:"action"`
	FromState string    `json:"from_state,omitempty"`
	ToState   string    `json:"to_state,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}
