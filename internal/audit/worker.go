package audit

import (
	"context"
	"log/slog"
)

// Publisher fans an event out to an external sink after it is persisted.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Worker drains the recorder inbox: persist first, then publish. A publish
// failure is logged, not fatal; the store remains the durable copy.
type Worker struct {
	store     Store
	publisher Publisher // optional
	inbox     <-chan Event
	logger    *slog.Logger
}

func NewWorker(store Store, publisher Publisher, inbox <-chan Event, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{store: store, publisher: publisher, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				return err
			}
			if w.publisher == nil {
				continue
			}
			if err := w.publisher.Publish(ctx, event); err != nil {
				w.logger.Error("audit publish failed",
					"event_id", event.ID.String(), "error", err)
			}
		}
	}
}
