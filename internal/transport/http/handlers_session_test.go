package httptransport

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatehouse/internal/session"
	"gatehouse/pkg/domain"
	"gatehouse/pkg/testutil"
)

func (f *routerFixture) activeSession(t *testing.T) (*session.Session, string) {
	t.Helper()
	sess := &session.Session{
		ID:          domain.NewSessionID(),
		Status:      session.StatusActive,
		ActivatedAt: time.Now(),
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	require.NoError(t, f.store.Save(context.Background(), sess))
	bearer, err := f.tokens.Generate(sess.ID, domain.UserID{}, time.Hour)
	require.NoError(t, err)
	return sess, bearer
}

func TestMeReturnsSessionFromToken(t *testing.T) {
	f := newRouterFixture(t)
	sess, bearer := f.activeSession(t)

	req := testutil.NewRequest(t, http.MethodGet, "/v1/sessions/me")
	req.Header.Set("Authorization", "Bearer "+bearer)
	rr := testutil.DoRequest(f.handler, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	view := testutil.UnmarshalResponse[sessionView](t, rr)
	assert.Equal(t, sess.ID.String(), view.ID)
	assert.Equal(t, string(session.StatusActive), view.Status)
	assert.True(t, view.SignedIn)
	assert.Empty(t, view.UserID)
}

func TestMeWithoutToken(t *testing.T) {
	f := newRouterFixture(t)
	rr := testutil.DoRequest(f.handler, testutil.NewRequest(t, http.MethodGet, "/v1/sessions/me"))
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}

func TestMeWithGarbageToken(t *testing.T) {
	f := newRouterFixture(t)
	req := testutil.NewRequest(t, http.MethodGet, "/v1/sessions/me")
	req.Header.Set("Authorization", "Bearer nonsense")
	rr := testutil.DoRequest(f.handler, req)
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}

func TestMeWithUnknownSession(t *testing.T) {
	f := newRouterFixture(t)
	bearer, err := f.tokens.Generate(domain.NewSessionID(), domain.UserID{}, time.Hour)
	require.NoError(t, err)

	req := testutil.NewRequest(t, http.MethodGet, "/v1/sessions/me")
	req.Header.Set("Authorization", "Bearer "+bearer)
	rr := testutil.DoRequest(f.handler, req)
	testutil.AssertStatus(t, rr, http.StatusNotFound)
	testutil.AssertErrorCode(t, rr, "not_found")
}
