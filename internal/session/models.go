// Package session stores the sessions the identity service creates for
// completed sign-ups and activates them on flow completion.
package session

import (
	"time"

	"gatehouse/pkg/domain"
)

// Status of a stored session.
type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// Session mirrors the server-created session locally so the gateway can
// answer auth-state questions without a round trip.
type Session struct {
	ID           domain.SessionID
	UserID       domain.UserID
	Status       Status
	AccessToken  string
	CreatedAt    time.Time
	ActivatedAt  time.Time
	ExpiresAt    time.Time
	LastActiveAt time.Time
}

// SignedIn reports whether the session counts as an authenticated session.
func (s *Session) SignedIn() bool {
	return s.Status == StatusActive && time.Now().Before(s.ExpiresAt)
}
