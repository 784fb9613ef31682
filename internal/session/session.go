// Package session holds the authenticated identity of a browser across
// requests. A Session is either whole (username, role and token all set)
// or empty; stores never hand out anything in between.
package session

import (
	"context"
	"errors"
	"net/http"

	"workshopportal/internal/entity"
)

// ErrIncomplete is returned by Save for a session missing a field.
var ErrIncomplete = errors.New("session: username, role and token are all required")

type Session struct {
	Username string
	Role     entity.Role
	Token    string

	// ID links the cookie to its registry row. Empty for untracked stores.
	ID string
}

// Present reports whether the session belongs to a logged-in user.
func (s Session) Present() bool {
	return s.Username != ""
}

func (s Session) complete() bool {
	return s.Username != "" && s.Token != "" && s.Role.Valid()
}

// Store persists a Session for the browser making the request.
type Store interface {
	// Save replaces the stored session with s in a single cookie write.
	Save(w http.ResponseWriter, r *http.Request, s Session) error
	// Read returns the current session, or the zero Session.
	Read(r *http.Request) Session
	// Clear removes the stored session.
	Clear(w http.ResponseWriter, r *http.Request) error
}

type ctxKey struct{}

// WithContext attaches s to ctx so handlers behind the guard do not read
// the store a second time.
func WithContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session attached by WithContext.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}

// Current returns the session attached to r, falling back to store.
func Current(store Store, r *http.Request) Session {
	if s, ok := FromContext(r.Context()); ok {
		return s
	}
	return store.Read(r)
}
