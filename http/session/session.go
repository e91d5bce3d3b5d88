package session

import (
	"net/http"

	gorilla "github.com/gorilla/sessions"
)

// A Session is the session of the visitor making a request.
//
// It lightly wraps a gorilla.Session, bound to the request it was read from
// and the response any changes are written to.
type Session struct {
	s *gorilla.Session
	w http.ResponseWriter
	r *http.Request
}

// Get retrieves a value from the session according to the key passed in.
func (s Session) Get(key string) any { return s.s.Values[key] }

// Set stores a value according to the key passed in on the session.
func (s Session) Set(key string, val any) error {
	s.s.Values[key] = val
	return s.Save()
}

// Unset removes the value stored under key.
func (s Session) Unset(key string) error {
	delete(s.s.Values, key)
	return s.Save()
}

// Delete removes a session by making the MaxAge negative.
func (s Session) Delete() error {
	s.s.Options.MaxAge = -1
	return s.Save()
}

// Flashes retrieves and removes the []Flash stored in the session.
func (s Session) Flashes() []Flash {
	raw := s.s.Flashes()
	fs := make([]Flash, 0, len(raw))
	for _, r := range raw {
		if f, ok := r.(Flash); ok {
			fs = append(fs, f)
		}
	}

	if len(raw) > 0 {
		// removing flashes requires saving the session
		if err := s.Save(); err != nil {
			return nil
		}
	}

	return fs
}

// AddFlash stores the passed in Flash in the session.
func (s Session) AddFlash(flash Flash) error {
	s.s.AddFlash(flash)
	return s.Save()
}

// IsNew asserts whether the session was created for this request.
func (s Session) IsNew() bool { return s.s.IsNew }

// Save writes the session to its store and the response.
func (s Session) Save() error {
	if s.w == nil {
		return nil
	}

	return s.s.Save(s.r, s.w)
}
