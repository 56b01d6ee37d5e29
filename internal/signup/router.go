package signup

import "sync"

// RecordingRouter is the server-side Router implementation: instead of
// driving a browser it records where the shell should go next, and the
// status response carries the pending navigation back to the client.
type RecordingRouter struct {
	mu      sync.Mutex
	current string
	pending string
	hasNav  bool
}

func NewRecordingRouter(currentPath string) *RecordingRouter {
	return &RecordingRouter{current: currentPath}
}

func (r *RecordingRouter) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = path
	r.pending = path
	r.hasNav = true
}

// Replace swaps the location without recording a pending navigation.
func (r *RecordingRouter) Replace(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = path
}

func (r *RecordingRouter) CurrentPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// ConsumePending returns the queued navigation, if any, and clears it so the
// shell performs it exactly once.
func (r *RecordingRouter) ConsumePending() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.hasNav {
		return "", false
	}
	path := r.pending
	r.pending = ""
	r.hasNav = false
	return path, true
}
