package signup

import (
	"context"

	"gatehouse/pkg/domain"
)

// Router abstracts the navigation primitive of the hosting shell. Navigate
// performs a full transition, Replace swaps the current location without one.
type Router interface {
	Navigate(path string)
	Replace(path string)
	CurrentPath() string
}

// SessionActivator commits a created session. Implementations must invoke
// onBeforeNavigate after the session is active but before returning, so the
// caller can flush state ahead of the final navigation.
type SessionActivator interface {
	SetActive(ctx context.Context, sessionID domain.SessionID, onBeforeNavigate func()) error
}

// FormSink receives validation errors surfaced by the machine. The form
// store itself is external; the machine only writes errors into it.
type FormSink interface {
	SetFieldErrors(errs []FieldError)
	SetGlobalError(message string)
	ClearErrors()
}

// FormValues exposes the current form field values. The machine reads them
// when submitting but never writes them.
type FormValues interface {
	Values() map[FieldName]string
}

// AuditSink records flow transitions for the audit trail. Implementations
// must not block the dispatch loop.
type AuditSink interface {
	FlowTransition(ctx context.Context, attemptID domain.AttemptID, from, to State, event EventKind, reason FailureReason)
}
