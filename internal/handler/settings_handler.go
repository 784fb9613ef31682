package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"workshopportal/internal/backend"
	"workshopportal/internal/entity"
	"workshopportal/internal/session"
)

// SettingsHandler lets any signed-in user edit their own profile, one
// field per submit.
type SettingsHandler struct {
	api  *backend.Client
	view *Renderer
}

func NewSettingsHandler(api *backend.Client, view *Renderer) *SettingsHandler {
	return &SettingsHandler{api: api, view: view}
}

type settingsField struct {
	Name  string
	Label string
	Type  string
	Value string
}

type settingsPage struct {
	Action string
	Fields []settingsField
}

// profileFields are the editable fields in display order.
var profileFields = []settingsField{
	{Name: "email", Label: "Email", Type: "email"},
	{Name: "phoneNumber", Label: "Phone number", Type: "tel"},
	{Name: "dob", Label: "Date of birth", Type: "date"},
	{Name: "gender", Label: "Gender", Type: "text"},
	{Name: "password", Label: "Password", Type: "password"},
}

func (h *SettingsHandler) Page(w http.ResponseWriter, r *http.Request) {
	username := currentUser(r).Username

	user, err := h.api.GetUser(apiContext(r), username)
	if err != nil {
		slog.Error("load profile", "username", username, "error", err)
		h.view.Render(w, r, http.StatusBadGateway, "settings", Page{
			Title: "Settings",
			Error: "Could not load your profile.",
			Data:  settingsPage{Action: r.URL.Path},
		})
		return
	}

	fields := make([]settingsField, len(profileFields))
	copy(fields, profileFields)
	for i := range fields {
		fields[i].Value = profileValue(user, fields[i].Name)
	}

	h.view.Render(w, r, http.StatusOK, "settings", Page{
		Title: "Settings",
		Data:  settingsPage{Action: r.URL.Path, Fields: fields},
	})
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	username := currentUser(r).Username
	field := r.FormValue("field")
	value := strings.TrimSpace(r.FormValue("value"))
	back := r.URL.Path

	if value == "" {
		h.view.Flash(w, r, session.FlashError, "Value cannot be empty.")
		redirect(w, r, back)
		return
	}
	if field == "email" && !validEmail(value) {
		h.view.Flash(w, r, session.FlashError, "Please enter a valid email address.")
		redirect(w, r, back)
		return
	}

	ctx := apiContext(r)
	user, err := h.api.GetUser(ctx, username)
	if err != nil {
		slog.Error("load profile", "username", username, "error", err)
		h.view.Flash(w, r, session.FlashError, "Could not update your profile.")
		redirect(w, r, back)
		return
	}
	if !setProfileValue(&user, field, value) {
		h.view.Flash(w, r, session.FlashError, "Unknown field.")
		redirect(w, r, back)
		return
	}

	if _, err := h.api.UpdateUser(ctx, username, user); err != nil {
		slog.Warn("update profile", "username", username, "field", field, "error", err)
		h.view.Flash(w, r, session.FlashError, backendMessage(err, "Could not update your profile."))
		redirect(w, r, back)
		return
	}

	h.view.Flash(w, r, session.FlashSuccess, "Profile updated.")
	redirect(w, r, back)
}

func profileValue(u entity.User, field string) string {
	switch field {
	case "email":
		return u.Email
	case "phoneNumber":
		return u.PhoneNumber
	case "dob":
		return u.DOB
	case "gender":
		return u.Gender
	}
	return ""
}

func setProfileValue(u *entity.User, field, value string) bool {
	switch field {
	case "email":
		u.Email = value
	case "phoneNumber":
		u.PhoneNumber = value
	case "dob":
		u.DOB = value
	case "gender":
		u.Gender = value
	case "password":
		u.Password = value
	default:
		return false
	}
	return true
}
