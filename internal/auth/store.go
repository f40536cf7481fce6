// Package auth holds the process-wide authentication state and notifies
// observers of every transition.
package auth

import (
	"sync"

	"github.com/welldanyogia/webrana-inbox-viewer/internal/models"
)

// Listener observes state transitions
type Listener func(models.AuthState)

// Store is the observable credential store
type Store struct {
	mu        sync.Mutex
	state     models.AuthState
	listeners map[int]Listener
	order     []int
	nextID    int
}

// NewStore creates an unauthenticated store
func NewStore() *Store {
	return &Store{listeners: make(map[int]Listener)}
}

// State returns a copy of the current state
func (s *Store) State() models.AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyState(s.state)
}

// Subscribe registers l and returns a function that removes it.
// Listeners run synchronously, in registration order, after each transition.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.order = append(s.order, id)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

// SetCredentials records a successful login
func (s *Store) SetCredentials(c models.Credentials) {
	s.update(func(st *models.AuthState) {
		st.Credentials = &c
		st.IsAuthenticated = true
		st.Error = ""
	})
}

// ClearCredentials logs out
func (s *Store) ClearCredentials() {
	s.update(func(st *models.AuthState) {
		st.Credentials = nil
		st.IsAuthenticated = false
		st.Error = ""
	})
}

// SetAuthenticationRequired records whether the backend requires login
func (s *Store) SetAuthenticationRequired(required bool) {
	s.update(func(st *models.AuthState) {
		st.AuthenticationRequired = required
	})
}

// SetAuthError records a failed login and forces the unauthenticated state
func (s *Store) SetAuthError(msg string) {
	s.update(func(st *models.AuthState) {
		st.Error = msg
		st.IsAuthenticated = false
	})
}

// ClearAuthError drops a stale error, e.g. after a credential field edit
func (s *Store) ClearAuthError() {
	s.update(func(st *models.AuthState) {
		st.Error = ""
	})
}

// Authorization returns the Basic header value when authenticated
func (s *Store) Authorization() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.IsAuthenticated || s.state.Credentials == nil {
		return "", false
	}
	return s.state.Credentials.BasicAuth(), true
}

func (s *Store) update(fn func(*models.AuthState)) {
	s.mu.Lock()
	fn(&s.state)
	if s.state.IsAuthenticated && s.state.Credentials == nil {
		s.state.IsAuthenticated = false
	}
	snapshot := copyState(s.state)
	listeners := make([]Listener, 0, len(s.order))
	for _, id := range s.order {
		listeners = append(listeners, s.listeners[id])
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snapshot)
	}
}

func copyState(st models.AuthState) models.AuthState {
	if st.Credentials != nil {
		c := *st.Credentials
		st.Credentials = &c
	}
	return st
}
