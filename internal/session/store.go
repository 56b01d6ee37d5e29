package session

import (
	"context"

	"gatehouse/pkg/domain"
)

// Store persists sessions. Implementations return sentinel.ErrNotFound
// (optionally wrapped) for unknown ids.
type Store interface {
	Save(ctx context.Context, s *Session) error
	FindByID(ctx context.Context, id domain.SessionID) (*Session, error)
	ListActive(ctx context.Context) ([]*Session, error)
	Delete(ctx context.Context, id domain.SessionID) error
}
