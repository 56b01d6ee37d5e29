package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatehouse/internal/token"
	"gatehouse/pkg/domain"
	"gatehouse/pkg/sentinel"
)

func newActivator(store Store) *Activator {
	tokens := token.NewService("test-signing-key", "gatehouse-test", "gatehouse")
	return NewActivator(store, tokens, nil, time.Hour)
}

func TestSetActiveCreatesUnknownSession(t *testing.T) {
	store := NewInMemoryStore()
	a := newActivator(store)
	id := domain.NewSessionID()

	hookCalled := false
	err := a.SetActive(context.Background(), id, func() { hookCalled = true })
	require.NoError(t, err)
	assert.True(t, hookCalled, "pre-navigation hook must run before SetActive returns")

	sess, err := store.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, sess.Status)
	assert.NotEmpty(t, sess.AccessToken)
	assert.True(t, sess.SignedIn())
}

func TestSetActiveMintedTokenValidates(t *testing.T) {
	store := NewInMemoryStore()
	tokens := token.NewService("test-signing-key", "gatehouse-test", "gatehouse")
	a := NewActivator(store, tokens, nil, time.Hour)
	id := domain.NewSessionID()

	require.NoError(t, a.SetActive(context.Background(), id, nil))

	sess, err := store.FindByID(context.Background(), id)
	require.NoError(t, err)

	claims, err := tokens.Validate(sess.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.SessionID)
}

func TestSetActiveRejectsZeroID(t *testing.T) {
	a := newActivator(NewInMemoryStore())
	err := a.SetActive(context.Background(), domain.SessionID{}, nil)
	require.ErrorIs(t, err, sentinel.ErrInvalidState)
}

func TestSetActiveRejectsRevokedSession(t *testing.T) {
	store := NewInMemoryStore()
	a := newActivator(store)
	id := domain.NewSessionID()
	require.NoError(t, store.Save(context.Background(), &Session{
		ID:     id,
		Status: StatusRevoked,
	}))

	err := a.SetActive(context.Background(), id, nil)
	require.ErrorIs(t, err, sentinel.ErrInvalidState)
}
