package session

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/travelers/internal/models"
)

// Persister is the local key/value store the session is mirrored into.
type Persister interface {
	GetJSON(key string, v any) (bool, error)
	SetJSON(key string, v any) error
	Remove(key string) error
}

// Store is the session state container.
type Store struct {
	mu      sync.RWMutex
	state   models.Session
	persist Persister
	logger  *log.Logger
}

// NewStore creates an empty store. persist may be nil.
func NewStore(persist Persister, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{persist: persist, logger: logger}
}

// Hydrate loads the persisted user, making it the client-held user the bootstrapper starts from.
func (s *Store) Hydrate() {
	if s.persist == nil {
		return
	}

	var saved models.PersistedSession
	ok, err := s.persist.GetJSON(models.LocalKeySession, &saved)
	if err != nil {
		s.logger.Warn("ignoring unreadable persisted session", "error", err)
		return
	}
	if !ok || saved.User == nil || saved.User.ID == "" {
		return
	}

	s.mu.Lock()
	s.state.User = saved.User
	s.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// User returns the held user or nil.
func (s *Store) User() *models.UserProfile {
	return s.Snapshot().User
}

// SetUser makes user the session user. A nil user clears the session.
func (s *Store) SetUser(user *models.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.User = user
	s.save(s.state)
}

// Clear drops the user.
func (s *Store) Clear() {
	s.SetUser(nil)
}

// SetLoading toggles the loading flag.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsLoading = loading
}

// MarkSynchronized records that the bootstrapper reached a terminal state.
func (s *Store) MarkSynchronized() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.HasSynchronized = true
}

// Reset returns the in-memory state to its initial value without touching persistence.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = models.Session{}
}

// Forget removes the persisted session key.
func (s *Store) Forget() {
	if s.persist == nil {
		return
	}
	if err := s.persist.Remove(models.LocalKeySession); err != nil {
		s.logger.Warn("failed to remove persisted session", "error", err)
	}
}

func (s *Store) save(snapshot models.Session) {
	if s.persist == nil {
		return
	}
	if err := s.persist.SetJSON(models.LocalKeySession, snapshot.Persisted()); err != nil {
		s.logger.Warn("failed to persist session", "error", err)
	}
}
