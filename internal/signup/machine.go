package signup

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"gatehouse/internal/signup/metrics"
	"gatehouse/pkg/domain"
)

// DefaultPollTimeout bounds the email-link polling sub-flow. Measured from
// poll start; on expiry the poll actor is stopped and a timeout failure is
// raised.
const DefaultPollTimeout = 5 * time.Minute

// Paths locates the flow inside the hosting application.
type Paths struct {
	SignUp      string // flow root, e.g. /sign-up
	SignIn      string // counterpart flow entry
	AfterSignUp string // destination after session activation
	SSOCallback string // path the external provider redirects back to
}

// Deps carries the machine's collaborators. Client, Router, Sessions, Form
// and Fields are required; the rest default to no-ops.
type Deps struct {
	Client   ResourceClient
	Router   Router
	Sessions SessionActivator
	Form     FormSink
	Fields   FormValues
	Audit    AuditSink
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Paths    Paths

	// Providers are the third-party strategies enabled by the environment.
	Providers []string

	// PollTimeout overrides DefaultPollTimeout; tests shrink it.
	PollTimeout time.Duration

	// Spawn runs actor bodies. Defaults to `go fn()`; tests may run inline.
	Spawn func(fn func())
}

// Machine is the finite-state machine coordinating the registration
// protocol. Events are processed strictly in arrival order; one event is
// drained to completion before the next, and async actors re-enter through
// the same queue, so the machine never observes partial actor progress.
//
// The snapshot has exactly one writer: actor completion handling inside the
// dispatch loop. External readers go through Snapshot().
type Machine struct {
	id   domain.AttemptID
	deps Deps

	baseCtx context.Context
	stop    context.CancelFunc

	mu       sync.Mutex
	queue    []Event
	draining bool

	state       State
	returnFlow  FlowState // where AuthenticatingWithRedirect reports failures
	verifyField FieldName // field the active verification strategy targets
	snapshot    *Snapshot
	flowErr     *FlowError
	providers   []string
	completed   bool // session activated exactly once

	actors        map[actorOp]context.CancelFunc
	pendingSpawns []func()
}

// New builds a machine in its Init state. ctx bounds the machine's lifetime:
// cancelling it (or calling Stop) tears down all in-flight actors.
func New(ctx context.Context, id domain.AttemptID, deps Deps) *Machine {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.PollTimeout <= 0 {
		deps.PollTimeout = DefaultPollTimeout
	}
	if deps.Spawn == nil {
		deps.Spawn = func(fn func()) { go fn() }
	}
	baseCtx, stop := context.WithCancel(ctx)
	m := &Machine{
		id:      id,
		deps:    deps,
		baseCtx: baseCtx,
		stop:    stop,
		state:   State{Flow: FlowInit},
		actors:  make(map[actorOp]context.CancelFunc),
	}
	m.providers = append([]string(nil), deps.Providers...)
	return m
}

// Start signals that the identity-service client is ready. The Init state
// then routes to SSOCallback or Start depending on the current path.
func (m *Machine) Start(ctx context.Context) {
	m.Dispatch(ctx, Event{Kind: EventClientReady})
}

// Stop tears the machine down, cancelling every in-flight actor.
func (m *Machine) Stop() {
	m.mu.Lock()
	for op, cancel := range m.actors {
		cancel()
		delete(m.actors, op)
	}
	m.mu.Unlock()
	m.stop()
}

// ID returns the attempt this machine drives.
func (m *Machine) ID() domain.AttemptID { return m.id }

// State returns the current machine position.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Snapshot returns a copy of the latest resource snapshot, or nil before the
// first successful actor call.
func (m *Machine) Snapshot() *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot.Clone()
}

// Err returns the last fatal flow error, nil if none.
func (m *Machine) Err() *FlowError {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flowErr
}

// Providers returns the third-party strategies derived from the environment.
func (m *Machine) Providers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.providers...)
}

// SetEnvironment recomputes the derived provider list. Multiple instances
// never share this state.
func (m *Machine) SetEnvironment(providers []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers = append([]string(nil), providers...)
}

// Dispatch queues an event and, unless a drain is already running, processes
// the queue to exhaustion. Events raised while processing (including actor
// completions posted synchronously) keep their arrival order.
func (m *Machine) Dispatch(ctx context.Context, ev Event) {
	m.mu.Lock()
	m.queue = append(m.queue, ev)
	if m.draining {
		m.mu.Unlock()
		return
	}
	m.draining = true
	m.mu.Unlock()
	m.drain(ctx)
}

func (m *Machine) drain(ctx context.Context) {
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.draining = false
			m.mu.Unlock()
			return
		}
		ev := m.queue[0]
		m.queue = m.queue[1:]
		m.process(ctx, ev)
		spawns := m.pendingSpawns
		m.pendingSpawns = nil
		m.mu.Unlock()

		// Actors start outside the lock so an inline Spawn (tests) can
		// re-enter Dispatch without deadlocking.
		for _, fn := range spawns {
			m.deps.Spawn(fn)
		}
	}
}

// process runs one event against the transition table. Called with mu held.
func (m *Machine) process(ctx context.Context, ev Event) {
	if m.state.Terminal() {
		m.deps.Logger.Debug("event after terminal state ignored",
			"attempt_id", m.id.String(), "event", string(ev.Kind))
		return
	}
	t, ok := findTransition(m, ev)
	if !ok {
		m.deps.Logger.Warn("no transition for event",
			"attempt_id", m.id.String(), "state", m.state.String(), "event", string(ev.Kind))
		return
	}
	t.apply(m, ctx, ev)
}

// raise queues an event from within the dispatch loop. Called with mu held;
// the event is processed after everything already queued.
func (m *Machine) raise(ev Event) {
	m.queue = append(m.queue, ev)
}

// setState records a transition with its observability side effects.
// Called with mu held.
func (m *Machine) setState(ctx context.Context, to State, ev Event) {
	from := m.state
	m.state = to
	m.deps.Logger.Info("flow transition",
		"attempt_id", m.id.String(),
		"from", from.String(), "to", to.String(), "event", string(ev.Kind))
	m.deps.Metrics.IncTransition(from.String(), to.String(), string(ev.Kind))
	if m.deps.Audit != nil {
		m.deps.Audit.FlowTransition(ctx, m.id, from, to, ev.Kind, ev.Reason)
	}
}

// writeSnapshot is the single mutation point for the machine-owned snapshot.
// Called with mu held, only from actor completion handling.
func (m *Machine) writeSnapshot(s *Snapshot) {
	if s != nil {
		m.snapshot = s
	}
}

// surfaceError routes an actor failure onto the external form store.
// Field and global errors pass through verbatim; anything untyped becomes a
// generic global error. Called with mu held.
func (m *Machine) surfaceError(err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if len(apiErr.Fields) > 0 {
			m.deps.Form.SetFieldErrors(apiErr.Fields)
		}
		for _, g := range apiErr.Global {
			m.deps.Form.SetGlobalError(g)
		}
		return
	}
	m.deps.Form.SetGlobalError("Something went wrong. Please try again.")
}

func (m *Machine) pollTimeout() time.Duration { return m.deps.PollTimeout }
