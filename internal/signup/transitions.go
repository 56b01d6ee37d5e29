package signup

import (
	"context"
	"strings"
)

// The transition table is flat: nested states are the (flow, phase, strategy)
// tuple in State, and hierarchy is expressed through match specificity plus
// ordering. Lookup scans in declaration order and takes the first entry whose
// source, event and guard all match, which is also how the ordered NEXT
// guards get their strict priority.

const (
	flowAny  FlowState = "*"
	phaseAny Phase     = "*"
)

type transition struct {
	flow  FlowState
	phase Phase
	event EventKind
	guard func(m *Machine, ev Event) bool
	apply func(m *Machine, ctx context.Context, ev Event)
}

var transitions []transition

// Populated in init to break the initialization cycle between the table and
// the action functions, which reference findTransition via Dispatch.
func init() {
	transitions = []transition{
		// Init waits for the identity-service client, then routes by path.
		{flow: FlowInit, phase: phaseAny, event: EventClientReady, guard: onSSOCallbackPath, apply: enterSSOCallback},
		{flow: FlowInit, phase: phaseAny, event: EventClientReady, apply: enterStart},

		// Navigation events are expected only inside SSOCallback. Anywhere else
		// they are an irrecoverable surprise. The catch-all fires even during
		// AuthenticatingWithRedirect; that matches the shipped behavior.
		{flow: FlowSSOCallback, phase: phaseAny, event: EventNavigation, apply: refreshAfterCallback},
		{flow: flowAny, phase: phaseAny, event: EventNavigation, apply: unexpectedNavigation},

		// Start / Continue share the two-phase submit shape.
		{flow: FlowStart, phase: PhaseAwaitingInput, event: EventSubmit, apply: submitCreate},
		{flow: FlowContinue, phase: PhaseAwaitingInput, event: EventSubmit, apply: submitUpdate},

		// Federated / enterprise auth leaves through the browser; there is no
		// success transition, only a failure return path.
		{flow: FlowStart, phase: PhaseAwaitingInput, event: EventAuthRedirect, apply: startAuthRedirect},
		{flow: FlowContinue, phase: PhaseAwaitingInput, event: EventAuthRedirect, apply: startAuthRedirect},

		// Verification sub-flows.
		{flow: FlowVerification, phase: PhaseAwaitingInput, event: EventAttempt, apply: submitAttempt},
		{flow: FlowVerification, phase: phaseAny, event: EventRestart, guard: inPollingStrategy, apply: restartPolling},

		// NEXT guard chain. Order is the contract: unverified fields trump
		// missing fields, completion comes last.
		{flow: flowAny, phase: phaseAny, event: EventNext, guard: guardUnverified, apply: enterVerification},
		{flow: flowAny, phase: phaseAny, event: EventNext, guard: guardMissing, apply: enterContinue},
		{flow: flowAny, phase: phaseAny, event: EventNext, guard: guardComplete, apply: enterComplete},

		// FAILURE is the single top-level recovery path.
		{flow: flowAny, phase: phaseAny, event: EventFailure, apply: failToStart},

		// Actor completions re-enter here.
		{flow: flowAny, phase: phaseAny, event: eventActorDone, apply: actorDone},
		{flow: flowAny, phase: phaseAny, event: eventActorError, apply: actorError},
		{flow: FlowVerification, phase: PhaseAttempting, event: eventPollUpdate, apply: pollUpdate},
	}
}

func findTransition(m *Machine, ev Event) (transition, bool) {
	for _, t := range transitions {
		if t.flow != flowAny && t.flow != m.state.Flow {
			continue
		}
		if t.phase != phaseAny && t.phase != m.state.Phase {
			continue
		}
		if t.event != ev.Kind {
			continue
		}
		if t.guard != nil && !t.guard(m, ev) {
			continue
		}
		return t, true
	}
	return transition{}, false
}

// --- guards ---

func onSSOCallbackPath(m *Machine, _ Event) bool {
	cb := m.deps.Paths.SSOCallback
	return cb != "" && strings.HasPrefix(m.deps.Router.CurrentPath(), cb)
}

func guardUnverified(m *Machine, _ Event) bool { return HasUnverifiedFields(m.snapshot) }
func guardMissing(m *Machine, _ Event) bool    { return HasMissingFields(m.snapshot) }
func guardComplete(m *Machine, _ Event) bool   { return IsComplete(m.snapshot) }

func inPollingStrategy(m *Machine, _ Event) bool {
	return pollingStrategy(m.state.Strategy)
}

// --- actions ---

func enterStart(m *Machine, ctx context.Context, ev Event) {
	m.setState(ctx, State{Flow: FlowStart, Phase: PhaseAwaitingInput}, ev)
}

func enterSSOCallback(m *Machine, ctx context.Context, ev Event) {
	m.setState(ctx, State{Flow: FlowSSOCallback}, ev)
	m.spawnRefresh()
}

// refreshAfterCallback re-reads the resource after the external leg comes
// back; resolution happens in actorDone once the fresh snapshot landed.
func refreshAfterCallback(m *Machine, _ context.Context, _ Event) {
	m.spawnRefresh()
}

func unexpectedNavigation(m *Machine, _ context.Context, _ Event) {
	m.raise(Event{Kind: EventFailure, Reason: ReasonHavingTrouble})
}

func submitCreate(m *Machine, ctx context.Context, ev Event) {
	m.setState(ctx, State{Flow: FlowStart, Phase: PhaseAttempting}, ev)
	m.spawnCreate()
}

func submitUpdate(m *Machine, ctx context.Context, ev Event) {
	m.setState(ctx, State{Flow: FlowContinue, Phase: PhaseAttempting}, ev)
	m.spawnUpdate()
}

func startAuthRedirect(m *Machine, ctx context.Context, ev Event) {
	m.returnFlow = m.state.Flow
	m.setState(ctx, State{Flow: FlowAuthRedirect}, ev)
	m.spawnAuthRedirect(ev.Redirect)
}

func submitAttempt(m *Machine, ctx context.Context, ev Event) {
	strategy := m.state.Strategy
	m.setState(ctx, State{Flow: FlowVerification, Phase: PhaseAttempting, Strategy: strategy}, ev)
	m.spawnAttempt(strategy, ev.Code)
}

// enterVerification is the Init pseudo-state of Verification. It always
// re-runs strategy selection against the latest snapshot, so re-entry after
// a requirements change can never resume a stale sub-flow.
func enterVerification(m *Machine, ctx context.Context, ev Event) {
	m.cancelActor(opPoll)
	strategy, field, ok := selectStrategy(m.snapshot)
	if !ok {
		m.raise(Event{Kind: EventFailure, Reason: ReasonNoStrategy})
		return
	}
	if !knownStrategy(strategy) {
		m.setState(ctx, State{Flow: FlowNotImplemented}, ev)
		m.raise(Event{Kind: EventFailure, Reason: ReasonHavingTrouble})
		return
	}
	m.verifyField = field
	m.setState(ctx, State{Flow: FlowVerification, Phase: PhasePreparing, Strategy: strategy}, ev)
	m.spawnPrepare(strategy, field)
}

func enterContinue(m *Machine, ctx context.Context, ev Event) {
	m.setState(ctx, State{Flow: FlowContinue, Phase: PhaseAwaitingInput}, ev)
}

// enterComplete activates the session exactly once and navigates away.
func enterComplete(m *Machine, ctx context.Context, ev Event) {
	if m.completed {
		return
	}
	m.completed = true
	m.cancelAllActors()
	m.setState(ctx, State{Flow: FlowComplete}, ev)
	m.deps.Metrics.IncSessionActivation()
	sessionID := m.snapshot.CreatedSessionID
	m.pendingSpawns = append(m.pendingSpawns, func() {
		if err := m.deps.Sessions.SetActive(m.baseCtx, sessionID, nil); err != nil {
			m.deps.Logger.Error("session activation failed",
				"attempt_id", m.id.String(), "session_id", sessionID.String(), "error", err)
			return
		}
		m.deps.Router.Navigate(m.deps.Paths.AfterSignUp)
	})
}

// restartPolling stops the in-flight poller before anything else; two
// concurrent pollers for the same verification must never coexist.
func restartPolling(m *Machine, ctx context.Context, ev Event) {
	m.cancelActor(opPoll)
	strategy := m.state.Strategy
	m.setState(ctx, State{Flow: FlowVerification, Phase: PhasePreparing, Strategy: strategy}, ev)
	m.spawnPrepare(strategy, m.verifyField)
}

// failToStart is the single recovery path: surface the error, tear down
// actors and route through the HavingTrouble escape hatch back to Start.
func failToStart(m *Machine, ctx context.Context, ev Event) {
	reason := ev.Reason
	if reason == ReasonNone {
		reason = ReasonHavingTrouble
	}
	m.flowErr = &FlowError{Reason: reason, Message: userMessage(reason)}
	m.cancelAllActors()
	m.deps.Metrics.IncFailure(string(reason))
	if ev.Err != nil {
		m.surfaceError(ev.Err)
	}
	m.deps.Form.SetGlobalError(userMessage(reason))
	m.setState(ctx, State{Flow: FlowHavingTrouble}, ev)
	m.deps.Router.Navigate(m.deps.Paths.SignUp)
	m.setState(ctx, State{Flow: FlowStart, Phase: PhaseAwaitingInput}, ev)
}

// actorDone writes the fresh snapshot, then advances per actor slot.
func actorDone(m *Machine, ctx context.Context, ev Event) {
	if !m.expectsActor(ev.op) {
		m.deps.Logger.Debug("stale actor completion dropped",
			"attempt_id", m.id.String(), "op", string(ev.op), "state", m.state.String())
		return
	}
	m.clearActor(ev.op)
	m.writeSnapshot(ev.snapshot)

	switch ev.op {
	case opCreate, opUpdate, opAttempt:
		m.deps.Form.ClearErrors()
		m.flowErr = nil
		m.raise(Event{Kind: EventNext})
	case opPrepare:
		strategy := m.state.Strategy
		if awaitsCode(strategy) {
			m.setState(ctx, State{Flow: FlowVerification, Phase: PhaseAwaitingInput, Strategy: strategy}, ev)
			return
		}
		m.setState(ctx, State{Flow: FlowVerification, Phase: PhaseAttempting, Strategy: strategy}, ev)
		m.spawnPoll()
	case opCallback:
		m.resolveCallback(ctx, ev)
	}
}

// actorError surfaces the failure and returns the sub-state to its
// input-awaiting shape; it never silently retries.
func actorError(m *Machine, ctx context.Context, ev Event) {
	if !m.expectsActor(ev.op) {
		return
	}
	m.clearActor(ev.op)
	m.surfaceError(ev.Err)

	switch ev.op {
	case opCreate:
		m.setState(ctx, State{Flow: FlowStart, Phase: PhaseAwaitingInput}, ev)
	case opUpdate:
		m.setState(ctx, State{Flow: FlowContinue, Phase: PhaseAwaitingInput}, ev)
	case opAttempt, opPrepare:
		strategy := m.state.Strategy
		if pollingStrategy(strategy) {
			m.raise(Event{Kind: EventFailure, Reason: ReasonVerificationFailed, Err: ev.Err})
			return
		}
		m.setState(ctx, State{Flow: FlowVerification, Phase: PhaseAwaitingInput, Strategy: strategy}, ev)
	case opRedirect:
		returnTo := m.returnFlow
		if returnTo == "" {
			returnTo = FlowStart
		}
		m.setState(ctx, State{Flow: returnTo, Phase: PhaseAwaitingInput}, ev)
	case opPoll:
		m.raise(Event{Kind: EventFailure, Reason: ReasonVerificationFailed, Err: ev.Err})
	case opCallback:
		m.raise(Event{Kind: EventFailure, Reason: ReasonHavingTrouble, Err: ev.Err})
	}
}

// pollUpdate consumes one element of the polling stream.
func pollUpdate(m *Machine, _ context.Context, ev Event) {
	m.writeSnapshot(ev.snapshot)
	if IsComplete(m.snapshot) || !FieldUnverified(m.snapshot, m.verifyField) {
		m.cancelActor(opPoll)
		m.raise(Event{Kind: EventNext})
	}
	// Otherwise remain in Attempting until a terminal event or timeout.
}

// resolveCallback decides what the SSO callback means: a finished
// registration activates the session, a usable snapshot advances, anything
// else goes back to the counterpart flow entry.
func (m *Machine) resolveCallback(ctx context.Context, ev Event) {
	switch {
	case IsComplete(m.snapshot):
		m.raise(Event{Kind: EventNext})
	case m.snapshot != nil && !IsAbandoned(m.snapshot):
		m.raise(Event{Kind: EventNext})
	default:
		m.deps.Router.Navigate(m.deps.Paths.SignIn)
		m.setState(ctx, State{Flow: FlowStart, Phase: PhaseAwaitingInput}, ev)
	}
}
