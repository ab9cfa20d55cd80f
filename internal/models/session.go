package models

import "encoding/json"

// Session is a snapshot of the authentication state container.
type Session struct {
	User            *UserProfile
	IsLoading       bool
	HasSynchronized bool
}

// IsAuthenticated is true exactly when a user is held.
func (s Session) IsAuthenticated() bool {
	return s.User != nil
}

// MarshalJSON renders the derived isAuthenticated flag alongside the stored fields.
func (s Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		User            *UserProfile `json:"user"`
		IsAuthenticated bool         `json:"isAuthenticated"`
		IsLoading       bool         `json:"isLoading"`
		HasSynchronized bool         `json:"hasSynchronized"`
	}{s.User, s.IsAuthenticated(), s.IsLoading, s.HasSynchronized})
}

// PersistedSession is what survives a restart under [LocalKeySession].
type PersistedSession struct {
	User            *UserProfile `json:"user"`
	IsAuthenticated bool         `json:"isAuthenticated"`
}

// Persisted returns the part of s written to the local store.
func (s Session) Persisted() PersistedSession {
	return PersistedSession{User: s.User, IsAuthenticated: s.IsAuthenticated()}
}
