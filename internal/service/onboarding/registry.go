package onboarding

import (
	"errors"
	"sync"
)

// ErrSessionActive is returned when a session start is rejected because
// one is already running.
var ErrSessionActive = errors.New("an onboarding session is already running")

// Registry serializes session starts. The assistant owns one
// microphone and one speaker, so at most one session runs at a time.
type Registry struct {
	mu     sync.Mutex
	active *Session
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Begin claims the single session slot. The caller must Release it when
// the session ends.
func (r *Registry) Begin(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil {
		return ErrSessionActive
	}
	r.active = s
	return nil
}

// Release frees the slot if the given session holds it.
func (r *Registry) Release(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == s {
		r.active = nil
	}
}

// Active returns the running session, if any.
func (r *Registry) Active() (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active, r.active != nil
}
