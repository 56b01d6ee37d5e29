// Package domain holds identifier types shared across modules. Distinct UUID
// wrappers keep the compiler from letting a session id leak into an attempt id
// parameter.
package domain

import (
	"github.com/google/uuid"

	"gatehouse/pkg/domerr"
)

// AttemptID identifies one sign-up attempt (one machine instance).
type AttemptID uuid.UUID

// SessionID identifies a created session.
type SessionID uuid.UUID

// UserID identifies the registered user behind a completed attempt.
type UserID uuid.UUID

func (id AttemptID) String() string { return uuid.UUID(id).String() }
func (id SessionID) String() string { return uuid.UUID(id).String() }
func (id UserID) String() string    { return uuid.UUID(id).String() }

func (id AttemptID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsZero() bool    { return uuid.UUID(id) == uuid.Nil }

// IDs serialize as their canonical UUID string so persisted records stay
// readable and stable across store implementations.

func (id AttemptID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id SessionID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id UserID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }

func (id *AttemptID) UnmarshalText(text []byte) error {
	u, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = AttemptID(u)
	return nil
}

func (id *SessionID) UnmarshalText(text []byte) error {
	u, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = SessionID(u)
	return nil
}

func (id *UserID) UnmarshalText(text []byte) error {
	u, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = UserID(u)
	return nil
}

// NewAttemptID allocates a fresh attempt identifier.
func NewAttemptID() AttemptID { return AttemptID(uuid.New()) }

// NewSessionID allocates a fresh session identifier.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

// ParseAttemptID parses and validates an attempt id at a trust boundary.
// IDs must be valid, non-nil UUIDs.
func ParseAttemptID(s string) (AttemptID, error) {
	u, err := parse(s, "attempt id")
	return AttemptID(u), err
}

// ParseSessionID parses and validates a session id at a trust boundary.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parse(s, "session id")
	return SessionID(u), err
}

// ParseUserID parses and validates a user id at a trust boundary.
func ParseUserID(s string) (UserID, error) {
	u, err := parse(s, "user id")
	return UserID(u), err
}

func parse(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, domerr.New(domerr.CodeInvalidInput, what+" must not be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, domerr.Wrap(domerr.CodeInvalidInput, "invalid "+what, err)
	}
	if u == uuid.Nil {
		return uuid.Nil, domerr.New(domerr.CodeInvalidInput, what+" must not be the nil uuid")
	}
	return u, nil
}
