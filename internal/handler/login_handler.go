package handler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"workshopportal/internal/backend"
	"workshopportal/internal/captcha"
	"workshopportal/internal/entity"
	"workshopportal/internal/session"
)

// Challenge is the captcha step of the login form; *captcha.Flow in
// production.
type Challenge interface {
	Issue(w http.ResponseWriter, r *http.Request) (template.HTML, error)
	Check(w http.ResponseWriter, r *http.Request, answer string) bool
}

var _ Challenge = (*captcha.Flow)(nil)

type LoginHandler struct {
	store    session.Store
	api      *backend.Client
	attempts AttemptLog
	captcha  Challenge
	view     *Renderer

	inflight singleflight.Group
}

func NewLoginHandler(store session.Store, api *backend.Client, attempts AttemptLog, flow Challenge, view *Renderer) *LoginHandler {
	return &LoginHandler{
		store:    store,
		api:      api,
		attempts: attempts,
		captcha:  flow,
		view:     view,
	}
}

type loginForm struct {
	Username string
	Captcha  template.HTML
}

type credentials struct {
	role  entity.Role
	token string
}

func (h *LoginHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if sess := session.Current(h.store, r); sess.Present() {
		redirect(w, r, sess.Role.HomePath())
		return
	}
	h.renderForm(w, r, http.StatusOK, "", "")
}

func (h *LoginHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	if !h.captcha.Check(w, r, strings.TrimSpace(r.FormValue("captcha"))) {
		h.renderForm(w, r, http.StatusBadRequest, username, "Invalid CAPTCHA. Please try again.")
		return
	}
	if username == "" || password == "" {
		h.renderForm(w, r, http.StatusBadRequest, username, "Username and password are required.")
		return
	}

	creds, err := h.authenticate(r.Context(), username, password)
	if err != nil {
		h.audit(r, username, false)
		slog.Warn("login failed", "username", username, "error", err)
		h.renderForm(w, r, http.StatusUnauthorized, username, "Login failed: Invalid credentials")
		return
	}

	sess := session.Session{Username: username, Role: creds.role, Token: creds.token}
	if sess.Token == "" {
		sess.Token = uuid.NewString()
	}
	if err := h.store.Save(w, r, sess); err != nil {
		slog.Error("save session", "username", username, "error", err)
		h.renderForm(w, r, http.StatusInternalServerError, username, "Login failed. Please try again.")
		return
	}

	h.audit(r, username, true)
	slog.Info("login", "username", username, "role", creds.role.String())

	h.view.Flash(w, r, session.FlashSuccess, "Login successful!")
	redirect(w, r, creds.role.HomePath())
}

func (h *LoginHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := session.Current(h.store, r)
	if err := h.store.Clear(w, r); err != nil {
		slog.Error("clear session", "username", sess.Username, "error", err)
	}
	if sess.Present() {
		slog.Info("logout", "username", sess.Username)
	}
	h.view.Flash(w, r, session.FlashSuccess, "You have been logged out.")
	redirect(w, r, "/login")
}

// authenticate asks the backend once per distinct credential pair in
// flight, so a double-submitted form costs one call.
func (h *LoginHandler) authenticate(ctx context.Context, username, password string) (credentials, error) {
	sum := sha256.Sum256([]byte(password))
	key := username + "\x00" + hex.EncodeToString(sum[:])

	v, err, _ := h.inflight.Do(key, func() (any, error) {
		// the first caller going away must not fail the others
		res, err := h.api.Login(context.WithoutCancel(ctx), username, password)
		if err != nil {
			return nil, err
		}
		role, err := entity.ParseRole(res.Role)
		if err != nil {
			return nil, fmt.Errorf("login response: %w", err)
		}
		return credentials{role: role, token: res.Token}, nil
	})
	if err != nil {
		return credentials{}, err
	}
	return v.(credentials), nil
}

func (h *LoginHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, username, msg string) {
	img, err := h.captcha.Issue(w, r)
	if err != nil {
		slog.Error("issue captcha", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.view.Render(w, r, status, "login", Page{
		Title: "Login",
		Error: msg,
		Data:  loginForm{Username: username, Captcha: img},
	})
}

func (h *LoginHandler) audit(r *http.Request, username string, ok bool) {
	if err := h.attempts.Save(r.Context(), entity.NewLoginAttempt(username, clientAddr(r), ok)); err != nil {
		slog.Error("record login attempt", "username", username, "error", err)
	}
}

func clientAddr(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
