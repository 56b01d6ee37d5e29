package signup

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gatehouse/internal/signup/metrics"
	"gatehouse/pkg/domain"
	"gatehouse/pkg/domerr"
)

// ServiceConfig wires the collaborators shared by every attempt.
type ServiceConfig struct {
	// NewClient builds the identity-service client for one attempt.
	NewClient func(attemptID domain.AttemptID) ResourceClient

	Sessions    SessionActivator
	Audit       AuditSink
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	Paths       Paths
	Providers   []string
	PollTimeout time.Duration

	// Spawn propagates to machines; tests run actors inline.
	Spawn func(fn func())
}

// Attempt aggregates one sign-up attempt: its machine, its form store and
// the recording router whose pending navigation the shell consumes.
type Attempt struct {
	Machine *Machine
	Form    *FormState
	Router  *RecordingRouter
}

// Service owns the live machines, keyed by attempt id. It is the seam the
// transport layer talks to; every operation is traced.
type Service struct {
	cfg    ServiceConfig
	tracer trace.Tracer

	mu       sync.RWMutex
	attempts map[domain.AttemptID]*Attempt
}

func NewService(cfg ServiceConfig) *Service {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{
		cfg:      cfg,
		tracer:   otel.Tracer("gatehouse/internal/signup"),
		attempts: make(map[domain.AttemptID]*Attempt),
	}
}

// Begin starts a new attempt: a fresh machine on a fresh form, submitted
// immediately with the given values.
func (s *Service) Begin(ctx context.Context, currentPath string, values map[FieldName]string) (domain.AttemptID, *Attempt, error) {
	id := domain.NewAttemptID()
	ctx, span := s.tracer.Start(ctx, "signup.begin",
		trace.WithAttributes(attribute.String("attempt_id", id.String())))
	defer span.End()

	form := NewFormState()
	form.SetValues(values)
	router := NewRecordingRouter(currentPath)

	machine := New(context.WithoutCancel(ctx), id, Deps{
		Client:      s.cfg.NewClient(id),
		Router:      router,
		Sessions:    s.cfg.Sessions,
		Form:        form,
		Fields:      form,
		Audit:       s.cfg.Audit,
		Logger:      s.cfg.Logger.With("attempt_id", id.String()),
		Metrics:     s.cfg.Metrics,
		Paths:       s.cfg.Paths,
		Providers:   s.cfg.Providers,
		PollTimeout: s.cfg.PollTimeout,
		Spawn:       s.cfg.Spawn,
	})

	at := &Attempt{Machine: machine, Form: form, Router: router}
	s.mu.Lock()
	s.attempts[id] = at
	s.mu.Unlock()

	machine.Start(ctx)
	machine.Dispatch(ctx, Event{Kind: EventSubmit})
	return id, at, nil
}

// Providers lists the configured OAuth providers.
func (s *Service) Providers() []string { return s.cfg.Providers }

// Get looks up a live attempt.
func (s *Service) Get(id domain.AttemptID) (*Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	at, ok := s.attempts[id]
	if !ok {
		return nil, domerr.New(domerr.CodeNotFound, "unknown sign-up attempt")
	}
	return at, nil
}

// Submit posts additional field values (the Continue step).
func (s *Service) Submit(ctx context.Context, id domain.AttemptID, values map[FieldName]string) error {
	return s.dispatch(ctx, id, "signup.submit", func(at *Attempt) Event {
		at.Form.SetValues(values)
		return Event{Kind: EventSubmit}
	})
}

// AttemptCode submits a verification code for the active code strategy.
func (s *Service) AttemptCode(ctx context.Context, id domain.AttemptID, code string) error {
	if code == "" {
		return domerr.New(domerr.CodeInvalidInput, "verification code must not be empty")
	}
	return s.dispatch(ctx, id, "signup.attempt", func(*Attempt) Event {
		return Event{Kind: EventAttempt, Code: code}
	})
}

// Restart re-prepares the polling verification, stopping the active poller.
func (s *Service) Restart(ctx context.Context, id domain.AttemptID) error {
	return s.dispatch(ctx, id, "signup.restart", func(*Attempt) Event {
		return Event{Kind: EventRestart}
	})
}

// NotifyNavigation reports a navigation callback from the shell. Outside
// the SSO callback state it lands on the "Having trouble?" recovery path.
func (s *Service) NotifyNavigation(ctx context.Context, id domain.AttemptID) error {
	return s.dispatch(ctx, id, "signup.navigation", func(*Attempt) Event {
		return Event{Kind: EventNavigation}
	})
}

// AuthRedirect starts a federated or enterprise redirect authentication.
func (s *Service) AuthRedirect(ctx context.Context, id domain.AttemptID, params RedirectParams) error {
	return s.dispatch(ctx, id, "signup.auth_redirect", func(*Attempt) Event {
		return Event{Kind: EventAuthRedirect, Redirect: params}
	})
}

// Remove tears an attempt down (navigation away / unmount).
func (s *Service) Remove(id domain.AttemptID) {
	s.mu.Lock()
	at, ok := s.attempts[id]
	delete(s.attempts, id)
	s.mu.Unlock()
	if ok {
		at.Machine.Stop()
	}
}

func (s *Service) dispatch(ctx context.Context, id domain.AttemptID, spanName string, build func(*Attempt) Event) error {
	at, err := s.Get(id)
	if err != nil {
		return err
	}
	ctx, span := s.tracer.Start(ctx, spanName,
		trace.WithAttributes(attribute.String("attempt_id", id.String())))
	defer span.End()
	at.Machine.Dispatch(ctx, build(at))
	return nil
}
