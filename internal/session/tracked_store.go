package session

import (
	"context"
	"log/slog"
	"net/http"

	"workshopportal/internal/entity"
)

// Registry records issued sessions server-side so they can be revoked
// while the browser still holds the cookie.
type Registry interface {
	Create(ctx context.Context, username string, role entity.Role) (string, error)
	// Active reports whether id exists and is not revoked.
	Active(ctx context.Context, id string) (bool, error)
	Revoke(ctx context.Context, id string) error
}

// TrackedStore decorates a Store with a Registry. Cookies without a live
// registry row read as the empty session.
type TrackedStore struct {
	inner    Store
	registry Registry
}

func NewTrackedStore(inner Store, registry Registry) *TrackedStore {
	return &TrackedStore{inner: inner, registry: registry}
}

func (t *TrackedStore) Save(w http.ResponseWriter, r *http.Request, s Session) error {
	if !s.complete() {
		return ErrIncomplete
	}

	id, err := t.registry.Create(r.Context(), s.Username, s.Role)
	if err != nil {
		return err
	}
	s.ID = id

	if err := t.inner.Save(w, r, s); err != nil {
		// the cookie never reached the browser, so the row must not stay live
		if revokeErr := t.registry.Revoke(context.WithoutCancel(r.Context()), id); revokeErr != nil {
			slog.Error("revoke orphaned session", "session_id", id, "error", revokeErr)
		}
		return err
	}
	return nil
}

func (t *TrackedStore) Read(r *http.Request) Session {
	s := t.inner.Read(r)
	if !s.Present() || s.ID == "" {
		return Session{}
	}

	active, err := t.registry.Active(r.Context(), s.ID)
	if err != nil {
		slog.Error("session registry lookup failed", "session_id", s.ID, "error", err)
		return Session{}
	}
	if !active {
		return Session{}
	}
	return s
}

func (t *TrackedStore) Clear(w http.ResponseWriter, r *http.Request) error {
	if s := t.inner.Read(r); s.ID != "" {
		if err := t.registry.Revoke(r.Context(), s.ID); err != nil {
			slog.Error("revoke session", "session_id", s.ID, "error", err)
		}
	}
	return t.inner.Clear(w, r)
}
