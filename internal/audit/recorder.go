package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"gatehouse/internal/signup"
	"gatehouse/pkg/domain"
	"gatehouse/pkg/requestcontext"
)

// Recorder hands events to the background worker over a bounded inbox. The
// dispatch loop must never block on auditing, so a full inbox drops the
// event with a warning instead of applying backpressure.
type Recorder struct {
	inbox  chan Event
	logger *slog.Logger
}

func NewRecorder(buffer int, logger *slog.Logger) *Recorder {
	if buffer <= 0 {
		buffer = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{inbox: make(chan Event, buffer), logger: logger}
}

// Inbox is consumed by the Worker.
func (r *Recorder) Inbox() <-chan Event { return r.inbox }

// Emit queues one event, stamping id and timestamp if absent.
func (r *Recorder) Emit(ctx context.Context, event Event) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	select {
	case r.inbox <- event:
	default:
		r.logger.Warn("audit inbox full, event dropped",
			"category", string(event.Category), "action", event.Action)
	}
}

// FlowTransition implements the flow machine's AuditSink port.
func (r *Recorder) FlowTransition(ctx context.Context, attemptID domain.AttemptID, from, to signup.State, event signup.EventKind, reason signup.FailureReason) {
	r.Emit(ctx, Event{
		Category:  CategoryFlow,
		AttemptID: attemptID.String(),
		Action:    string(event),
		FromState: from.String(),
		ToState:   to.String(),
		Reason:    string(reason),
	})
}

// RedirectDecision records the outcome of a redirect evaluation.
func (r *Recorder) RedirectDecision(ctx context.Context, flow, destination, reason string) {
	r.Emit(ctx, Event{
		Category: CategoryRedirect,
		Action:   "redirect:" + flow,
		ToState:  destination,
		Reason:   reason,
	})
}
