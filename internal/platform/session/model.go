// Package session implements the server-side session store backing both
// authentication guards. Session data lives in Redis; the browser only
// holds an opaque session id cookie.
package session

// Session is a bag of string values addressed by an opaque id. Both the
// local guard (bound user id, remember flag) and the OAuth provider client
// (sign-in state, tokens) keep their state here, so a single cookie covers
// the whole authentication surface.
type Session struct {
	ID     string
	Values map[string]string

	dirty bool
}

// Get returns the value stored under key.
func (s *Session) Get(key string) (string, bool) {
	v, ok := s.Values[key]
	return v, ok
}

// Put stores value under key and marks the session dirty.
func (s *Session) Put(key, value string) {
	if s.Values == nil {
		s.Values = make(map[string]string)
	}
	s.Values[key] = value
	s.dirty = true
}

// Forget removes key from the session.
func (s *Session) Forget(key string) {
	if _, ok := s.Values[key]; !ok {
		return
	}
	delete(s.Values, key)
	s.dirty = true
}

// Clear drops every value from the session.
func (s *Session) Clear() {
	if len(s.Values) == 0 {
		return
	}
	s.Values = make(map[string]string)
	s.dirty = true
}

// Dirty reports whether the session has unsaved changes.
func (s *Session) Dirty() bool {
	return s.dirty
}
