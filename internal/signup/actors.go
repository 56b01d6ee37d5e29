package signup

import (
	"context"
	"time"
)

// Actors are the machine's async side effects. Each actor slot holds at most
// one live cancellation token and spawning cancels any predecessor first.
// Actor bodies run outside the machine lock and re-enter exclusively through
// Dispatch, so snapshot writes happen-before the event announcing them.

// spawnActor registers a cancel token for op and schedules fn. Called with
// mu held; the body starts after the current event finishes processing.
func (m *Machine) spawnActor(op actorOp, fn func(actx context.Context)) {
	m.cancelActor(op)
	actx, cancel := context.WithCancel(m.baseCtx)
	m.actors[op] = cancel
	m.pendingSpawns = append(m.pendingSpawns, func() { fn(actx) })
}

// cancelActor stops the live actor in a slot, if any. Called with mu held.
func (m *Machine) cancelActor(op actorOp) {
	if cancel, ok := m.actors[op]; ok {
		cancel()
		delete(m.actors, op)
	}
}

// clearActor forgets a settled actor without cancelling. Called with mu held.
func (m *Machine) clearActor(op actorOp) {
	delete(m.actors, op)
}

func (m *Machine) cancelAllActors() {
	for op, cancel := range m.actors {
		cancel()
		delete(m.actors, op)
	}
}

// stopActorLocked is the lock-acquiring variant for use from actor bodies.
func (m *Machine) stopActorLocked(op actorOp) {
	m.mu.Lock()
	m.cancelActor(op)
	m.mu.Unlock()
}

// expectsActor reports whether a completion for op is still relevant to the
// current state. Cancelled actors do not post, but a completion can race a
// transition; stale ones are dropped here.
func (m *Machine) expectsActor(op actorOp) bool {
	switch op {
	case opCreate:
		return m.state.Flow == FlowStart && m.state.Phase == PhaseAttempting
	case opUpdate:
		return m.state.Flow == FlowContinue && m.state.Phase == PhaseAttempting
	case opPrepare:
		return m.state.Flow == FlowVerification && m.state.Phase == PhasePreparing
	case opAttempt:
		return m.state.Flow == FlowVerification && m.state.Phase == PhaseAttempting && awaitsCode(m.state.Strategy)
	case opPoll:
		return m.state.Flow == FlowVerification && m.state.Phase == PhaseAttempting && pollingStrategy(m.state.Strategy)
	case opRedirect:
		return m.state.Flow == FlowAuthRedirect
	case opCallback:
		return m.state.Flow == FlowSSOCallback
	default:
		return false
	}
}

// postDone and postError re-enter the machine unless the actor was cancelled
// while its call was in flight.
func (m *Machine) postDone(actx context.Context, op actorOp, snap *Snapshot) {
	if actx.Err() != nil {
		return
	}
	m.Dispatch(m.baseCtx, Event{Kind: eventActorDone, op: op, snapshot: snap})
}

func (m *Machine) postError(actx context.Context, op actorOp, err error) {
	if actx.Err() != nil {
		return
	}
	m.Dispatch(m.baseCtx, Event{Kind: eventActorError, op: op, Err: err})
}

func (m *Machine) spawnCreate() {
	fields := m.deps.Fields.Values()
	m.spawnActor(opCreate, func(actx context.Context) {
		start := time.Now()
		snap, err := m.deps.Client.Create(actx, fields)
		m.deps.Metrics.ObserveActor(string(opCreate), time.Since(start))
		if err != nil {
			m.postError(actx, opCreate, err)
			return
		}
		m.postDone(actx, opCreate, snap)
	})
}

func (m *Machine) spawnUpdate() {
	fields := m.deps.Fields.Values()
	m.spawnActor(opUpdate, func(actx context.Context) {
		start := time.Now()
		snap, err := m.deps.Client.Update(actx, fields)
		m.deps.Metrics.ObserveActor(string(opUpdate), time.Since(start))
		if err != nil {
			m.postError(actx, opUpdate, err)
			return
		}
		m.postDone(actx, opUpdate, snap)
	})
}

// spawnRefresh re-reads the resource after the external SSO leg; an update
// with no fields is the identity service's refresh call.
func (m *Machine) spawnRefresh() {
	m.spawnActor(opCallback, func(actx context.Context) {
		snap, err := m.deps.Client.Update(actx, nil)
		if err != nil {
			m.postError(actx, opCallback, err)
			return
		}
		m.postDone(actx, opCallback, snap)
	})
}

func (m *Machine) spawnPrepare(strategy StrategyName, field FieldName) {
	params := PrepareParams{Field: field, RedirectURL: m.deps.Paths.SignUp + "/verify"}
	m.spawnActor(opPrepare, func(actx context.Context) {
		start := time.Now()
		snap, err := m.deps.Client.PrepareVerification(actx, strategy, params)
		m.deps.Metrics.ObserveActor(string(opPrepare), time.Since(start))
		if err != nil {
			m.postError(actx, opPrepare, err)
			return
		}
		m.postDone(actx, opPrepare, snap)
	})
}

func (m *Machine) spawnAttempt(strategy StrategyName, code string) {
	m.spawnActor(opAttempt, func(actx context.Context) {
		start := time.Now()
		snap, err := m.deps.Client.AttemptVerification(actx, strategy, code)
		m.deps.Metrics.ObserveActor(string(opAttempt), time.Since(start))
		if err != nil {
			m.postError(actx, opAttempt, err)
			return
		}
		m.postDone(actx, opAttempt, snap)
	})
}

func (m *Machine) spawnAuthRedirect(params RedirectParams) {
	m.spawnActor(opRedirect, func(actx context.Context) {
		// Success means the browser navigated away; only failures come back.
		if err := m.deps.Client.AuthenticateWithRedirect(actx, params); err != nil {
			m.postError(actx, opRedirect, err)
		}
	})
}

// spawnPoll runs the email-link polling sub-flow: a bounded wait on the
// snapshot stream. The timeout is global, measured from poll start; expiry
// stops the poller and raises a failure distinct from a verification
// rejection.
func (m *Machine) spawnPoll() {
	timeout := m.pollTimeout()
	m.spawnActor(opPoll, func(actx context.Context) {
		stream, err := m.deps.Client.StartPolling(actx)
		if err != nil {
			m.postError(actx, opPoll, err)
			return
		}
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		for {
			select {
			case <-actx.Done():
				return
			case <-timer.C:
				m.stopActorLocked(opPoll)
				m.Dispatch(m.baseCtx, Event{Kind: EventFailure, Reason: ReasonVerificationTimeout})
				return
			case pe, ok := <-stream:
				if !ok {
					return
				}
				if pe.Err != nil {
					m.postError(actx, opPoll, pe.Err)
					return
				}
				if actx.Err() != nil {
					return
				}
				m.Dispatch(m.baseCtx, Event{Kind: eventPollUpdate, op: opPoll, snapshot: pe.Snapshot})
			}
		}
	})
}
