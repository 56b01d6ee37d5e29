package signup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gatehouse/pkg/domain"
)

// Polling tests run actors on real goroutines: the poll actor blocks on its
// stream, so inline spawning would never return.

type pollFixture struct {
	client    *stubClient
	activator *stubActivator
	form      *FormState
	router    *RecordingRouter
	machine   *Machine
}

func newPollFixture(t *testing.T, pollTimeout time.Duration) *pollFixture {
	t.Helper()
	f := &pollFixture{
		client:    &stubClient{pollStream: make(chan PollEvent)},
		activator: &stubActivator{},
		form:      NewFormState(),
		router:    NewRecordingRouter("/sign-up"),
	}
	f.client.createSnap = snapUnverified(FieldEmailAddress, StrategyEmailLink)
	f.machine = New(context.Background(), domain.NewAttemptID(), Deps{
		Client:      f.client,
		Router:      f.router,
		Sessions:    f.activator,
		Form:        f.form,
		Fields:      f.form,
		Paths:       Paths{SignUp: "/sign-up", SignIn: "/sign-in", AfterSignUp: "/app"},
		PollTimeout: pollTimeout,
	})
	t.Cleanup(f.machine.Stop)
	return f
}

func (f *pollFixture) startPolling(t *testing.T) {
	t.Helper()
	f.machine.Start(context.Background())
	f.machine.Dispatch(context.Background(), Event{Kind: EventSubmit})
	waitFor(t, func() bool {
		st := f.machine.State()
		return st.Flow == FlowVerification && st.Phase == PhaseAttempting &&
			st.Strategy == StrategyEmailLink && len(f.client.pollContexts()) == 1
	}, "machine never reached the polling phase")
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if cond() {
			return
		}
		select {
		case <-deadline:
			t.Fatal(msg)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestEmailLinkVerifiedThroughPolling(t *testing.T) {
	f := newPollFixture(t, time.Minute)
	f.startPolling(t)

	// Unverified snapshots keep the poller alive.
	f.client.pollStream <- PollEvent{Snapshot: snapUnverified(FieldEmailAddress, StrategyEmailLink)}
	time.Sleep(20 * time.Millisecond)
	st := f.machine.State()
	require.Equal(t, PhaseAttempting, st.Phase)

	f.client.pollStream <- PollEvent{Snapshot: snapComplete()}
	waitFor(t, func() bool {
		return f.machine.State().Flow == FlowComplete
	}, "verified snapshot did not complete the flow")
	require.Equal(t, 1, f.activator.activations())

	ctxs := f.client.pollContexts()
	require.Len(t, ctxs, 1)
	waitFor(t, func() bool { return ctxs[0].Err() != nil },
		"poller context not cancelled after completion")
}

func TestPollTimeoutRaisesDistinctFailure(t *testing.T) {
	f := newPollFixture(t, 30*time.Millisecond)
	f.startPolling(t)

	waitFor(t, func() bool {
		err := f.machine.Err()
		return err != nil && err.Reason == ReasonVerificationTimeout
	}, "poll timeout did not surface as a timeout failure")

	require.Equal(t, State{Flow: FlowStart, Phase: PhaseAwaitingInput}, f.machine.State())
	require.Contains(t, f.form.GlobalError(), "expired")

	ctxs := f.client.pollContexts()
	require.Len(t, ctxs, 1)
	require.Error(t, ctxs[0].Err())
}

func TestRestartCancelsActivePoller(t *testing.T) {
	f := newPollFixture(t, time.Minute)
	f.startPolling(t)

	f.machine.Dispatch(context.Background(), Event{Kind: EventRestart})

	waitFor(t, func() bool { return len(f.client.pollContexts()) == 2 },
		"restart did not start a fresh poller")

	ctxs := f.client.pollContexts()
	require.Error(t, ctxs[0].Err(), "previous poller must be cancelled before the replacement starts")
	require.NoError(t, ctxs[1].Err())
	require.Equal(t, []StrategyName{StrategyEmailLink, StrategyEmailLink}, f.client.preparedStrategies())
}

func TestPollStreamErrorFailsVerification(t *testing.T) {
	f := newPollFixture(t, time.Minute)
	f.startPolling(t)

	f.client.pollStream <- PollEvent{Err: context.DeadlineExceeded}

	waitFor(t, func() bool {
		err := f.machine.Err()
		return err != nil && err.Reason == ReasonVerificationFailed
	}, "stream error did not fail the verification")
	require.Equal(t, State{Flow: FlowStart, Phase: PhaseAwaitingInput}, f.machine.State())
}
