package handler

import (
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"workshopportal/internal/backend"
	"workshopportal/internal/entity"
	"workshopportal/internal/session"
)

// RegistrationHandler serves self sign-up.
type RegistrationHandler struct {
	api  *backend.Client
	view *Renderer
}

func NewRegistrationHandler(api *backend.Client, view *Renderer) *RegistrationHandler {
	return &RegistrationHandler{api: api, view: view}
}

type signupForm struct {
	Form entity.Signup
}

func (h *RegistrationHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.view.Render(w, r, http.StatusOK, "signup", Page{Title: "Registration", Data: signupForm{}})
}

func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	form := entity.Signup{
		Username:    strings.TrimSpace(r.FormValue("username")),
		Email:       strings.TrimSpace(r.FormValue("email")),
		PhoneNumber: strings.TrimSpace(r.FormValue("phoneNumber")),
		DOB:         r.FormValue("dob"),
		Gender:      r.FormValue("gender"),
		Password:    r.FormValue("password"),
	}

	if msg := validateSignup(form, r.FormValue("retypePassword")); msg != "" {
		h.renderError(w, r, http.StatusBadRequest, form, msg)
		return
	}

	if err := h.api.Signup(r.Context(), form); err != nil {
		slog.Warn("signup failed", "username", form.Username, "error", err)
		h.renderError(w, r, http.StatusBadRequest, form, backendMessage(err, "Registration failed. Please try again."))
		return
	}

	slog.Info("signup", "username", form.Username)
	h.view.Flash(w, r, session.FlashSuccess, "Registration successful! Please log in.")
	redirect(w, r, "/login")
}

func (h *RegistrationHandler) renderError(w http.ResponseWriter, r *http.Request, status int, form entity.Signup, msg string) {
	form.Password = ""
	h.view.Render(w, r, status, "signup", Page{Title: "Registration", Error: msg, Data: signupForm{Form: form}})
}

func validateSignup(f entity.Signup, retype string) string {
	switch {
	case f.Username == "" || f.Email == "" || f.Password == "":
		return "Username, email and password are required."
	case !validEmail(f.Email):
		return "Please enter a valid email address."
	case f.Password != retype:
		return "Passwords do not match."
	}
	return ""
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
