package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *stubPublisher) Publish(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *stubPublisher) published() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}

type failingStore struct{ err error }

func (s *failingStore) Append(context.Context, Event) error { return s.err }
func (s *failingStore) ListByAttempt(context.Context, string) ([]Event, error) {
	return nil, nil
}

func runWorker(t *testing.T, w *Worker) (cancel func(), wait func() error) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	return stop, func() error {
		select {
		case err := <-errCh:
			return err
		case <-time.After(2 * time.Second):
			t.Fatal("worker did not stop")
			return nil
		}
	}
}

func waitForEvents(t *testing.T, count func() int, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if count() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("saw %d events, want %d", count(), want)
}

func TestWorkerPersistsThenPublishes(t *testing.T) {
	store := NewInMemoryStore()
	pub := &stubPublisher{}
	inbox := make(chan Event, 4)
	w := NewWorker(store, pub, inbox, nil)
	cancel, wait := runWorker(t, w)

	event := Event{ID: uuid.New(), Category: CategoryFlow, Action: "submit"}
	inbox <- event

	waitForEvents(t, func() int { return len(pub.published()) }, 1)
	cancel()
	require.ErrorIs(t, wait(), context.Canceled)

	require.Len(t, store.All(), 1)
	assert.Equal(t, event.ID, store.All()[0].ID)
	assert.Equal(t, event.ID, pub.published()[0].ID)
}

func TestWorkerToleratesPublishFailure(t *testing.T) {
	store := NewInMemoryStore()
	pub := &stubPublisher{err: errors.New("broker down")}
	inbox := make(chan Event, 4)
	w := NewWorker(store, pub, inbox, nil)
	cancel, wait := runWorker(t, w)

	inbox <- Event{ID: uuid.New(), Action: "one"}
	inbox <- Event{ID: uuid.New(), Action: "two"}

	waitForEvents(t, func() int { return len(store.All()) }, 2)
	cancel()
	require.ErrorIs(t, wait(), context.Canceled)
}

func TestWorkerRunsWithoutPublisher(t *testing.T) {
	store := NewInMemoryStore()
	inbox := make(chan Event, 4)
	w := NewWorker(store, nil, inbox, nil)
	cancel, wait := runWorker(t, w)

	inbox <- Event{ID: uuid.New(), Action: "solo"}

	waitForEvents(t, func() int { return len(store.All()) }, 1)
	cancel()
	require.ErrorIs(t, wait(), context.Canceled)
}

func TestWorkerStopsOnStoreError(t *testing.T) {
	storeErr := errors.New("disk full")
	inbox := make(chan Event, 1)
	w := NewWorker(&failingStore{err: storeErr}, nil, inbox, nil)
	_, wait := runWorker(t, w)

	inbox <- Event{ID: uuid.New(), Action: "doomed"}
	require.ErrorIs(t, wait(), storeErr)
}
