package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gatehouse/internal/token"
	"gatehouse/pkg/domain"
	"gatehouse/pkg/sentinel"
)

// Activator commits a created session: it marks the record active, mints an
// access token and invokes the caller's pre-navigation hook before
// returning. It satisfies the flow machine's SessionActivator port.
type Activator struct {
	store  Store
	tokens *token.Service
	logger *slog.Logger
	ttl    time.Duration
}

func NewActivator(store Store, tokens *token.Service, logger *slog.Logger, ttl time.Duration) *Activator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Activator{store: store, tokens: tokens, logger: logger, ttl: ttl}
}

// SetActive activates the session the identity service created. An unknown
// id is not an error: the remote service owns session creation and this
// gateway may simply not have mirrored it yet.
func (a *Activator) SetActive(ctx context.Context, sessionID domain.SessionID, onBeforeNavigate func()) error {
	if sessionID.IsZero() {
		return fmt.Errorf("activate session: %w", sentinel.ErrInvalidState)
	}

	sess, err := a.store.FindByID(ctx, sessionID)
	if errors.Is(err, sentinel.ErrNotFound) {
		sess = &Session{
			ID:        sessionID,
			Status:    StatusPending,
			CreatedAt: time.Now(),
		}
	} else if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	if sess.Status == StatusRevoked {
		return fmt.Errorf("activate session: %w", sentinel.ErrInvalidState)
	}

	now := time.Now()
	accessToken, err := a.tokens.Generate(sess.ID, sess.UserID, a.ttl)
	if err != nil {
		return fmt.Errorf("mint access token: %w", err)
	}

	sess.Status = StatusActive
	sess.AccessToken = accessToken
	sess.ActivatedAt = now
	sess.LastActiveAt = now
	sess.ExpiresAt = now.Add(a.ttl)

	if err := a.store.Save(ctx, sess); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	a.logger.Info("session activated", "session_id", sessionID.String())

	if onBeforeNavigate != nil {
		onBeforeNavigate()
	}
	return nil
}
