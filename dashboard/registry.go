package dashboard

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Registry holds one State per session id. States live in memory only;
// after a restart the first page load refreshes them from the backend.
type Registry struct {
	api API
	log *logrus.Logger

	mu     sync.Mutex
	states map[string]*State
}

func NewRegistry(api API, log *logrus.Logger) *Registry {
	return &Registry{
		api:    api,
		log:    log,
		states: make(map[string]*State),
	}
}

// Get returns the session's state, creating it on first use.
func (r *Registry) Get(sessionID string) *State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.states[sessionID]; ok {
		return st
	}
	st := NewState(r.api, r.log.WithField("session_id", sessionID))
	r.states[sessionID] = st
	return st
}

// Lookup returns the state only if it already exists.
func (r *Registry) Lookup(sessionID string) (*State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.states[sessionID]
	return st, ok
}

func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	delete(r.states, sessionID)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}
