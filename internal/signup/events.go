package signup

// EventKind discriminates machine events. Lowercase kinds are raised
// internally by actor completion handling and never cross the package
// boundary.
type EventKind string

const (
	// External events, posted by the hosting shell.
	EventClientReady  EventKind = "CLIENT_READY"
	EventSubmit       EventKind = "SUBMIT"
	EventAttempt      EventKind = "ATTEMPT"
	EventAuthRedirect EventKind = "AUTHENTICATE_WITH_REDIRECT"
	EventRestart      EventKind = "RESTART"
	EventNavigation   EventKind = "NAVIGATION"

	// Raised by actor completion handlers and by transitions themselves.
	EventNext    EventKind = "NEXT"
	EventFailure EventKind = "FAILURE"

	// Internal actor lifecycle events.
	eventActorDone  EventKind = "actor_done"
	eventActorError EventKind = "actor_error"
	eventPollUpdate EventKind = "poll_update"
)

// actorOp identifies which actor slot produced a completion event.
type actorOp string

const (
	opCreate   actorOp = "create"
	opUpdate   actorOp = "update"
	opPrepare  actorOp = "prepare"
	opAttempt  actorOp = "attempt"
	opPoll     actorOp = "poll"
	opRedirect actorOp = "redirect"
	opCallback actorOp = "callback"
)

// Event is the tagged union processed by the machine. Only the fields
// relevant to Kind are set.
type Event struct {
	Kind EventKind

	// ATTEMPT
	Code string

	// AUTHENTICATE_WITH_REDIRECT
	Redirect RedirectParams

	// NAVIGATION: true when the callback reports the external flow finished.
	CallbackComplete bool

	// FAILURE
	Reason FailureReason
	Err    error

	// internal actor completion payload
	op       actorOp
	snapshot *Snapshot
}
