package session

import (
	"net/http"

	"github.com/gorilla/sessions"
)

const FlashCookieName = "workshop-flash"

// Flash kinds double as CSS classes in the layout template.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Kind    string
	Message string
}

// Flasher stores flashes in their own cookie so they never touch the
// session cookie.
type Flasher struct {
	store *sessions.CookieStore
}

func NewFlasher(store *sessions.CookieStore) *Flasher {
	return &Flasher{store: store}
}

func (f *Flasher) Add(w http.ResponseWriter, r *http.Request, kind, message string) error {
	sess, _ := f.store.Get(r, FlashCookieName)
	sess.AddFlash(message, kind)
	return sess.Save(r, w)
}

// Pop returns and removes all pending flashes.
func (f *Flasher) Pop(w http.ResponseWriter, r *http.Request) []Flash {
	sess, err := f.store.Get(r, FlashCookieName)
	if err != nil {
		return nil
	}

	var out []Flash
	for _, kind := range []string{FlashSuccess, FlashError} {
		for _, v := range sess.Flashes(kind) {
			if msg, ok := v.(string); ok {
				out = append(out, Flash{Kind: kind, Message: msg})
			}
		}
	}
	if len(out) > 0 {
		_ = sess.Save(r, w)
	}
	return out
}
