package signup_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"gatehouse/internal/signup"
	"gatehouse/internal/signup/mocks"
	"gatehouse/pkg/domain"
	"gatehouse/pkg/domerr"
)

type nopActivator struct{}

func (nopActivator) SetActive(context.Context, domain.SessionID, func()) error { return nil }

func newTestService(t *testing.T, client signup.ResourceClient) *signup.Service {
	t.Helper()
	return signup.NewService(signup.ServiceConfig{
		NewClient: func(domain.AttemptID) signup.ResourceClient { return client },
		Sessions:  nopActivator{},
		Paths: signup.Paths{
			SignUp:      "/sign-up",
			SignIn:      "/sign-in",
			AfterSignUp: "/app",
			SSOCallback: "/sign-up/sso-callback",
		},
		Providers: []string{"oauth_google"},
		Spawn:     func(fn func()) { fn() },
	})
}

func TestBeginSubmitsInitialFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockResourceClient(ctrl)

	fields := map[signup.FieldName]string{signup.FieldEmailAddress: "ada@example.com"}
	client.EXPECT().
		Create(gomock.Any(), fields).
		Return(&signup.Snapshot{
			ID:            domain.NewAttemptID(),
			Status:        signup.StatusMissingRequirements,
			MissingFields: []signup.FieldName{signup.FieldPassword},
		}, nil)

	svc := newTestService(t, client)
	id, at, err := svc.Begin(context.Background(), "/sign-up", fields)
	require.NoError(t, err)
	require.False(t, id.IsZero())

	st := at.Machine.State()
	require.Equal(t, signup.FlowContinue, st.Flow)
	require.Equal(t, signup.PhaseAwaitingInput, st.Phase)
}

func TestGetUnknownAttempt(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := newTestService(t, mocks.NewMockResourceClient(ctrl))

	_, err := svc.Get(domain.NewAttemptID())
	require.Error(t, err)
	require.True(t, domerr.HasCode(err, domerr.CodeNotFound))
}

func TestAttemptCodeValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := newTestService(t, mocks.NewMockResourceClient(ctrl))

	err := svc.AttemptCode(context.Background(), domain.NewAttemptID(), "")
	require.Error(t, err)
	require.True(t, domerr.HasCode(err, domerr.CodeInvalidInput))
}

func TestRemoveTearsDownAttempt(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockResourceClient(ctrl)
	client.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(&signup.Snapshot{
			ID:            domain.NewAttemptID(),
			Status:        signup.StatusMissingRequirements,
			MissingFields: []signup.FieldName{signup.FieldPassword},
		}, nil)

	svc := newTestService(t, client)
	id, _, err := svc.Begin(context.Background(), "/sign-up", nil)
	require.NoError(t, err)

	svc.Remove(id)
	_, err = svc.Get(id)
	require.True(t, domerr.HasCode(err, domerr.CodeNotFound))

	// Removing twice is a no-op.
	svc.Remove(id)
}
