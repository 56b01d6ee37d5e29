package signup

import "sync"

// FormState is the default implementation of the external form store: field
// values written by the shell, validation errors written by the machine.
// It satisfies both FormValues and FormSink.
type FormState struct {
	mu          sync.RWMutex
	values      map[FieldName]string
	fieldErrors []FieldError
	globalError string
}

func NewFormState() *FormState {
	return &FormState{values: make(map[FieldName]string)}
}

// SetValues merges submitted field values into the form.
func (f *FormState) SetValues(values map[FieldName]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, v := range values {
		f.values[k] = v
	}
}

// Values returns a copy of the current field values.
func (f *FormState) Values() map[FieldName]string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[FieldName]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

func (f *FormState) SetFieldErrors(errs []FieldError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fieldErrors = append([]FieldError(nil), errs...)
}

func (f *FormState) SetGlobalError(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.globalError = message
}

func (f *FormState) ClearErrors() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fieldErrors = nil
	f.globalError = ""
}

// FieldErrors returns the current per-field validation errors.
func (f *FormState) FieldErrors() []FieldError {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]FieldError(nil), f.fieldErrors...)
}

// GlobalError returns the current banner message, empty if none.
func (f *FormState) GlobalError() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.globalError
}
