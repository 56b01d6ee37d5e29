package signup

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"gatehouse/pkg/domain"
)

// stubClient scripts the identity service. Calls are recorded so tests can
// assert on what the machine asked for.
type stubClient struct {
	mu sync.Mutex

	createSnap  *Snapshot
	createErr   error
	updateSnap  *Snapshot
	updateErr   error
	prepareSnap *Snapshot
	prepareErr  error
	attemptSnap *Snapshot
	attemptErr  error
	pollStream  chan PollEvent
	pollErr     error
	redirectErr error

	createCalls  int
	updateCalls  int
	prepareCalls []StrategyName
	prepareField []FieldName
	attemptCodes []string
	pollCtxs     []context.Context
}

func (c *stubClient) Create(_ context.Context, _ map[FieldName]string) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.createCalls++
	return c.createSnap, c.createErr
}

func (c *stubClient) Update(_ context.Context, _ map[FieldName]string) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateCalls++
	return c.updateSnap, c.updateErr
}

func (c *stubClient) PrepareVerification(_ context.Context, strategy StrategyName, params PrepareParams) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prepareCalls = append(c.prepareCalls, strategy)
	c.prepareField = append(c.prepareField, params.Field)
	if c.prepareSnap != nil || c.prepareErr != nil {
		return c.prepareSnap, c.prepareErr
	}
	return c.createSnap, nil
}

func (c *stubClient) AttemptVerification(_ context.Context, _ StrategyName, code string) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attemptCodes = append(c.attemptCodes, code)
	return c.attemptSnap, c.attemptErr
}

func (c *stubClient) StartPolling(ctx context.Context) (<-chan PollEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pollCtxs = append(c.pollCtxs, ctx)
	return c.pollStream, c.pollErr
}

func (c *stubClient) AuthenticateWithRedirect(_ context.Context, _ RedirectParams) error {
	return c.redirectErr
}

func (c *stubClient) preparedStrategies() []StrategyName {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]StrategyName(nil), c.prepareCalls...)
}

func (c *stubClient) pollContexts() []context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]context.Context(nil), c.pollCtxs...)
}

// stubActivator records session activations.
type stubActivator struct {
	mu    sync.Mutex
	calls []domain.SessionID
	err   error
}

func (a *stubActivator) SetActive(_ context.Context, sessionID domain.SessionID, onBeforeNavigate func()) error {
	a.mu.Lock()
	a.calls = append(a.calls, sessionID)
	err := a.err
	a.mu.Unlock()
	if err != nil {
		return err
	}
	if onBeforeNavigate != nil {
		onBeforeNavigate()
	}
	return nil
}

func (a *stubActivator) activations() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}

// inline runs actors synchronously, which keeps non-polling tests fully
// deterministic. Polling tests use real goroutines instead.
func inline(fn func()) { fn() }

func snapMissing(fields ...FieldName) *Snapshot {
	return &Snapshot{
		ID:            domain.NewAttemptID(),
		Status:        StatusMissingRequirements,
		MissingFields: fields,
	}
}

func snapComplete() *Snapshot {
	return &Snapshot{
		ID:               domain.NewAttemptID(),
		Status:           StatusComplete,
		CreatedSessionID: domain.NewSessionID(),
	}
}

func snapUnverified(field FieldName, strategies ...StrategyName) *Snapshot {
	return &Snapshot{
		ID:               domain.NewAttemptID(),
		Status:           StatusMissingRequirements,
		UnverifiedFields: []FieldName{field},
		SupportedStrategies: map[FieldName][]StrategyName{
			field: strategies,
		},
		Verifications: map[FieldName]VerificationState{
			field: {Status: VerificationUnverified},
		},
	}
}

type MachineSuite struct {
	suite.Suite

	client    *stubClient
	activator *stubActivator
	form      *FormState
	router    *RecordingRouter
	paths     Paths
}

func TestMachineSuite(t *testing.T) {
	suite.Run(t, new(MachineSuite))
}

func (s *MachineSuite) SetupTest() {
	s.client = &stubClient{}
	s.activator = &stubActivator{}
	s.form = NewFormState()
	s.paths = Paths{
		SignUp:      "/sign-up",
		SignIn:      "/sign-in",
		AfterSignUp: "/app",
		SSOCallback: "/sign-up/sso-callback",
	}
}

func (s *MachineSuite) newMachine(currentPath string, spawn func(func())) *Machine {
	s.router = NewRecordingRouter(currentPath)
	return New(context.Background(), domain.NewAttemptID(), Deps{
		Client:   s.client,
		Router:   s.router,
		Sessions: s.activator,
		Form:     s.form,
		Fields:   s.form,
		Paths:    s.paths,
		Spawn:    spawn,
	})
}

func (s *MachineSuite) TestClientReadyRouting() {
	s.Run("regular path lands on start", func() {
		s.SetupTest()
		m := s.newMachine("/sign-up", inline)
		m.Start(context.Background())

		s.Equal(State{Flow: FlowStart, Phase: PhaseAwaitingInput}, m.State())
	})

	s.Run("sso callback path refreshes and completes", func() {
		s.SetupTest()
		s.client.updateSnap = snapComplete()
		m := s.newMachine("/sign-up/sso-callback", inline)
		m.Start(context.Background())

		s.Equal(FlowComplete, m.State().Flow)
		s.Equal(1, s.activator.activations())
		path, ok := s.router.ConsumePending()
		s.True(ok)
		s.Equal("/app", path)
	})

	s.Run("abandoned callback returns to sign-in entry", func() {
		s.SetupTest()
		s.client.updateSnap = &Snapshot{ID: domain.NewAttemptID(), Status: StatusAbandoned}
		m := s.newMachine("/sign-up/sso-callback", inline)
		m.Start(context.Background())

		s.Equal(State{Flow: FlowStart, Phase: PhaseAwaitingInput}, m.State())
		path, ok := s.router.ConsumePending()
		s.True(ok)
		s.Equal("/sign-in", path)
	})
}

func (s *MachineSuite) TestSubmitAdvancesByRequirements() {
	s.Run("missing fields land on continue", func() {
		s.SetupTest()
		s.client.createSnap = snapMissing(FieldPassword)
		m := s.newMachine("/sign-up", inline)
		m.Start(context.Background())
		m.Dispatch(context.Background(), Event{Kind: EventSubmit})

		s.Equal(State{Flow: FlowContinue, Phase: PhaseAwaitingInput}, m.State())
		s.Equal(1, s.client.createCalls)
	})

	s.Run("complete snapshot activates session exactly once", func() {
		s.SetupTest()
		s.client.createSnap = snapComplete()
		m := s.newMachine("/sign-up", inline)
		m.Start(context.Background())
		m.Dispatch(context.Background(), Event{Kind: EventSubmit})

		s.Equal(FlowComplete, m.State().Flow)
		s.Equal(1, s.activator.activations())

		// Terminal state swallows further events without re-activating.
		m.Dispatch(context.Background(), Event{Kind: EventNext})
		m.Dispatch(context.Background(), Event{Kind: EventSubmit})
		s.Equal(1, s.activator.activations())
	})

	s.Run("unverified fields trump missing fields", func() {
		s.SetupTest()
		snap := snapUnverified(FieldEmailAddress, StrategyEmailCode)
		snap.MissingFields = []FieldName{FieldPassword}
		s.client.createSnap = snap
		m := s.newMachine("/sign-up", inline)
		m.Start(context.Background())
		m.Dispatch(context.Background(), Event{Kind: EventSubmit})

		st := m.State()
		s.Equal(FlowVerification, st.Flow)
		s.Equal(StrategyEmailCode, st.Strategy)
		s.Equal(PhaseAwaitingInput, st.Phase)
	})
}

func (s *MachineSuite) TestStrategySelection() {
	s.Run("phone code wins over email strategies", func() {
		s.SetupTest()
		snap := &Snapshot{
			ID:               domain.NewAttemptID(),
			Status:           StatusMissingRequirements,
			UnverifiedFields: []FieldName{FieldEmailAddress, FieldPhoneNumber},
			SupportedStrategies: map[FieldName][]StrategyName{
				FieldEmailAddress: {StrategyEmailLink, StrategyEmailCode},
				FieldPhoneNumber:  {StrategyPhoneCode},
			},
		}
		s.client.createSnap = snap
		m := s.newMachine("/sign-up", inline)
		m.Start(context.Background())
		m.Dispatch(context.Background(), Event{Kind: EventSubmit})

		s.Equal([]StrategyName{StrategyPhoneCode}, s.client.preparedStrategies())
		s.Equal(StrategyPhoneCode, m.State().Strategy)
	})

	s.Run("no matching strategy is a flow failure", func() {
		s.SetupTest()
		snap := snapUnverified(FieldEmailAddress) // no supported strategies
		s.client.createSnap = snap
		m := s.newMachine("/sign-up", inline)
		m.Start(context.Background())
		m.Dispatch(context.Background(), Event{Kind: EventSubmit})

		s.Equal(State{Flow: FlowStart, Phase: PhaseAwaitingInput}, m.State())
		s.Require().NotNil(m.Err())
		s.Equal(ReasonNoStrategy, m.Err().Reason)
		s.NotEmpty(s.form.GlobalError())
	})
}

func (s *MachineSuite) TestVerificationAttempt() {
	s.Run("correct code completes the flow", func() {
		s.SetupTest()
		s.client.createSnap = snapUnverified(FieldEmailAddress, StrategyEmailCode)
		s.client.attemptSnap = snapComplete()
		m := s.newMachine("/sign-up", inline)
		m.Start(context.Background())
		m.Dispatch(context.Background(), Event{Kind: EventSubmit})
		s.Require().Equal(PhaseAwaitingInput, m.State().Phase)

		m.Dispatch(context.Background(), Event{Kind: EventAttempt, Code: "424242"})

		s.Equal(FlowComplete, m.State().Flow)
		s.Equal([]string{"424242"}, s.client.attemptCodes)
		s.Equal(1, s.activator.activations())
	})

	s.Run("rejected code returns to awaiting input with the error surfaced", func() {
		s.SetupTest()
		s.client.createSnap = snapUnverified(FieldEmailAddress, StrategyEmailCode)
		s.client.attemptErr = &APIError{Global: []string{"incorrect code"}}
		m := s.newMachine("/sign-up", inline)
		m.Start(context.Background())
		m.Dispatch(context.Background(), Event{Kind: EventSubmit})

		m.Dispatch(context.Background(), Event{Kind: EventAttempt, Code: "000000"})

		st := m.State()
		s.Equal(FlowVerification, st.Flow)
		s.Equal(PhaseAwaitingInput, st.Phase)
		s.Equal("incorrect code", s.form.GlobalError())
	})
}

func (s *MachineSuite) TestErrorSurfacing() {
	s.Run("field errors pass through to the form", func() {
		s.SetupTest()
		s.client.createErr = &APIError{
			Fields: []FieldError{{Field: FieldEmailAddress, Code: "taken", Message: "email already in use"}},
		}
		m := s.newMachine("/sign-up", inline)
		m.Start(context.Background())
		m.Dispatch(context.Background(), Event{Kind: EventSubmit})

		s.Equal(State{Flow: FlowStart, Phase: PhaseAwaitingInput}, m.State())
		errs := s.form.FieldErrors()
		s.Require().Len(errs, 1)
		s.Equal(FieldEmailAddress, errs[0].Field)
	})

	s.Run("untyped errors become a generic global error", func() {
		s.SetupTest()
		s.client.createErr = context.DeadlineExceeded
		m := s.newMachine("/sign-up", inline)
		m.Start(context.Background())
		m.Dispatch(context.Background(), Event{Kind: EventSubmit})

		s.NotEmpty(s.form.GlobalError())
	})
}

func (s *MachineSuite) TestUnexpectedNavigation() {
	s.SetupTest()
	s.client.createSnap = snapMissing(FieldPassword)
	m := s.newMachine("/sign-up", inline)
	m.Start(context.Background())

	m.Dispatch(context.Background(), Event{Kind: EventNavigation})

	s.Equal(State{Flow: FlowStart, Phase: PhaseAwaitingInput}, m.State())
	s.Require().NotNil(m.Err())
	s.Equal(ReasonHavingTrouble, m.Err().Reason)
	path, ok := s.router.ConsumePending()
	s.True(ok)
	s.Equal("/sign-up", path)
}

func (s *MachineSuite) TestAuthRedirectFailureReturnsToOrigin() {
	s.SetupTest()
	s.client.redirectErr = context.DeadlineExceeded
	m := s.newMachine("/sign-up", inline)
	m.Start(context.Background())

	m.Dispatch(context.Background(), Event{
		Kind:     EventAuthRedirect,
		Redirect: RedirectParams{Provider: "oauth_google"},
	})

	s.Equal(State{Flow: FlowStart, Phase: PhaseAwaitingInput}, m.State())
	s.NotEmpty(s.form.GlobalError())
}
