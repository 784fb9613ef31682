package session

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"workshopportal/internal/entity"
)

const (
	CookieName = "workshop-session"

	keyUsername = "username"
	keyRole     = "role"
	keyToken    = "token"
	keyID       = "sid"
)

type Options struct {
	HashKey  []byte // HMAC key; generated when empty
	BlockKey []byte // AES key; cookies are only signed when empty
	MaxAge   int    // seconds; 0 makes a browser-session cookie
	Secure   bool
}

// NewGorillaStore builds the gorilla cookie store shared by the session,
// flash and login-flow cookies.
func NewGorillaStore(opts Options) *sessions.CookieStore {
	hashKey := opts.HashKey
	if len(hashKey) == 0 {
		slog.Warn("SESSION_KEY not set, generating a per-process key; sessions will not survive a restart")
		hashKey = securecookie.GenerateRandomKey(64)
	}

	var store *sessions.CookieStore
	if len(opts.BlockKey) > 0 {
		store = sessions.NewCookieStore(hashKey, opts.BlockKey)
	} else {
		store = sessions.NewCookieStore(hashKey)
	}

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   opts.MaxAge,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	// securecookie rejects timestamps older than MaxAge, so the cookie
	// cannot outlive its configured lifetime even if the browser keeps it.
	store.MaxAge(opts.MaxAge)

	return store
}

// CookieStore keeps the session in a signed (and optionally encrypted)
// browser cookie.
type CookieStore struct {
	store *sessions.CookieStore
	name  string
}

func NewCookieStore(store *sessions.CookieStore) *CookieStore {
	return &CookieStore{store: store, name: CookieName}
}

func (c *CookieStore) Save(w http.ResponseWriter, r *http.Request, s Session) error {
	if !s.complete() {
		return ErrIncomplete
	}

	// a stale or tampered cookie yields a fresh session alongside the error
	sess, _ := c.store.Get(r, c.name)
	sess.Values = map[interface{}]interface{}{
		keyUsername: s.Username,
		keyRole:     string(s.Role),
		keyToken:    s.Token,
	}
	if s.ID != "" {
		sess.Values[keyID] = s.ID
	}

	return sess.Save(r, w)
}

func (c *CookieStore) Read(r *http.Request) Session {
	sess, err := c.store.Get(r, c.name)
	if err != nil {
		return Session{}
	}

	username, _ := sess.Values[keyUsername].(string)
	roleName, _ := sess.Values[keyRole].(string)
	token, _ := sess.Values[keyToken].(string)
	id, _ := sess.Values[keyID].(string)

	role, err := entity.ParseRole(roleName)
	if err != nil || username == "" || token == "" {
		return Session{}
	}

	return Session{Username: username, Role: role, Token: token, ID: id}
}

func (c *CookieStore) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := c.store.Get(r, c.name)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}
