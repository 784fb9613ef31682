package handler

import (
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"workshopportal/internal/backend"
	"workshopportal/internal/entity"
	"workshopportal/internal/session"
)

// UserScope configures one user-management screen.
type UserScope struct {
	Path    string
	Heading string
	// Only limits the list to one role and fixes the role of added users.
	Only entity.Role
	// Assignable are the roles this screen may set; empty disables adding.
	Assignable []entity.Role
}

// UserHandler lists and edits portal accounts. Removing an account or
// changing its role also revokes its portal sessions.
type UserHandler struct {
	api      *backend.Client
	sessions SessionAdmin
	view     *Renderer
	scope    UserScope
}

func NewUserHandler(api *backend.Client, sessions SessionAdmin, view *Renderer, scope UserScope) *UserHandler {
	return &UserHandler{api: api, sessions: sessions, view: view, scope: scope}
}

type userList struct {
	Heading   string
	Path      string
	Query     string
	Users     []entity.User
	Roles     []entity.Role
	CanAdd    bool
	AddLabel  string
	FixedRole entity.Role
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	data := userList{
		Heading:   h.scope.Heading,
		Path:      h.scope.Path,
		Query:     query,
		Roles:     h.scope.Assignable,
		CanAdd:    len(h.scope.Assignable) > 0,
		AddLabel:  "user",
		FixedRole: h.scope.Only,
	}
	if h.scope.Only != "" {
		data.AddLabel = h.scope.Only.String()
	}

	users, err := h.api.ListUsers(apiContext(r))
	if err != nil {
		slog.Error("list users", "error", err)
		h.view.Render(w, r, http.StatusBadGateway, "users", Page{
			Title: h.scope.Heading,
			Error: "Could not load users.",
			Data:  data,
		})
		return
	}

	data.Users = filterUsers(users, h.scope.Only, query)
	h.view.Render(w, r, http.StatusOK, "users", Page{Title: h.scope.Heading, Data: data})
}

func (h *UserHandler) Add(w http.ResponseWriter, r *http.Request) {
	u := entity.User{
		Username:    strings.TrimSpace(r.FormValue("username")),
		Email:       strings.TrimSpace(r.FormValue("email")),
		PhoneNumber: strings.TrimSpace(r.FormValue("phoneNumber")),
		Password:    r.FormValue("password"),
		Role:        entity.Role(r.FormValue("role")),
	}
	if h.scope.Only != "" {
		u.Role = h.scope.Only
	}

	switch {
	case !slices.Contains(h.scope.Assignable, u.Role):
		h.view.Flash(w, r, session.FlashError, "That role cannot be assigned here.")
	case u.Username == "" || u.Password == "" || !validEmail(u.Email):
		h.view.Flash(w, r, session.FlashError, "Username, a valid email and a password are required.")
	default:
		if _, err := h.api.CreateUser(apiContext(r), u); err != nil {
			slog.Warn("create user", "username", u.Username, "error", err)
			h.view.Flash(w, r, session.FlashError, backendMessage(err, "Could not add the user."))
			break
		}
		slog.Info("user created", "username", u.Username, "role", u.Role.String(), "by", currentUser(r).Username)
		h.view.Flash(w, r, session.FlashSuccess, "User added.")
	}
	redirect(w, r, h.scope.Path)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	role := entity.Role(r.FormValue("role"))
	email := strings.TrimSpace(r.FormValue("email"))

	if username == "" {
		h.view.Flash(w, r, session.FlashError, "Unknown user.")
		redirect(w, r, h.scope.Path)
		return
	}
	if !slices.Contains(h.scope.Assignable, role) || (email != "" && !validEmail(email)) {
		h.view.Flash(w, r, session.FlashError, "Invalid role or email.")
		redirect(w, r, h.scope.Path)
		return
	}

	ctx := apiContext(r)
	current, err := h.api.GetUser(ctx, username)
	if err != nil {
		slog.Error("load user", "username", username, "error", err)
		h.view.Flash(w, r, session.FlashError, backendMessage(err, "Could not update the user."))
		redirect(w, r, h.scope.Path)
		return
	}

	if !h.inScope(current) {
		slog.Warn("user outside screen scope", "username", username, "role", current.Role.String(), "by", currentUser(r).Username)
		h.view.Flash(w, r, session.FlashError, "You cannot manage that user here.")
		redirect(w, r, h.scope.Path)
		return
	}

	updated := current
	updated.Role = role
	if email != "" {
		updated.Email = email
	}
	if _, err := h.api.UpdateUser(ctx, userKey(r.FormValue("id"), username), updated); err != nil {
		slog.Warn("update user", "username", username, "error", err)
		h.view.Flash(w, r, session.FlashError, backendMessage(err, "Could not update the user."))
		redirect(w, r, h.scope.Path)
		return
	}

	if current.Role != role {
		h.revoke(r, username)
	}
	h.view.Flash(w, r, session.FlashSuccess, "User updated.")
	redirect(w, r, h.scope.Path)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	if username == "" {
		h.view.Flash(w, r, session.FlashError, "Unknown user.")
		redirect(w, r, h.scope.Path)
		return
	}
	if username == currentUser(r).Username {
		h.view.Flash(w, r, session.FlashError, "You cannot delete your own account.")
		redirect(w, r, h.scope.Path)
		return
	}

	ctx := apiContext(r)
	target, err := h.api.GetUser(ctx, username)
	if err != nil {
		slog.Error("load user", "username", username, "error", err)
		h.view.Flash(w, r, session.FlashError, backendMessage(err, "Could not delete the user."))
		redirect(w, r, h.scope.Path)
		return
	}
	if !h.inScope(target) {
		slog.Warn("user outside screen scope", "username", username, "role", target.Role.String(), "by", currentUser(r).Username)
		h.view.Flash(w, r, session.FlashError, "You cannot manage that user here.")
		redirect(w, r, h.scope.Path)
		return
	}

	if err := h.api.DeleteUser(ctx, userKey(r.FormValue("id"), username)); err != nil {
		slog.Warn("delete user", "username", username, "error", err)
		h.view.Flash(w, r, session.FlashError, backendMessage(err, "Could not delete the user."))
		redirect(w, r, h.scope.Path)
		return
	}

	h.revoke(r, username)
	slog.Info("user deleted", "username", username, "by", currentUser(r).Username)
	h.view.Flash(w, r, session.FlashSuccess, "User deleted.")
	redirect(w, r, h.scope.Path)
}

// inScope reports whether u may be edited from this screen. A screen
// limited to one role never touches accounts of another.
func (h *UserHandler) inScope(u entity.User) bool {
	return h.scope.Only == "" || u.Role == h.scope.Only
}

func (h *UserHandler) revoke(r *http.Request, username string) {
	n, err := h.sessions.RevokeUsers(r.Context(), []string{username})
	if err != nil {
		slog.Error("revoke sessions", "username", username, "error", err)
		return
	}
	if n > 0 {
		slog.Info("sessions revoked", "username", username, "count", n)
	}
}

// userKey prefers the numeric id the backend assigned.
func userKey(id, username string) string {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil && n > 0 {
		return id
	}
	return username
}

func filterUsers(users []entity.User, only entity.Role, query string) []entity.User {
	query = strings.ToLower(query)
	out := make([]entity.User, 0, len(users))
	for _, u := range users {
		if only != "" && u.Role != only {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(u.Username), query) &&
			!strings.Contains(strings.ToLower(u.Email), query) {
			continue
		}
		out = append(out, u)
	}
	return out
}
