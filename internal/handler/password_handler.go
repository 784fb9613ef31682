package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"workshopportal/internal/backend"
	"workshopportal/internal/session"
)

// PasswordHandler serves the forgot/reset password pair.
type PasswordHandler struct {
	api  *backend.Client
	view *Renderer
}

func NewPasswordHandler(api *backend.Client, view *Renderer) *PasswordHandler {
	return &PasswordHandler{api: api, view: view}
}

type forgotForm struct {
	Email string
}

type resetForm struct {
	Token string
}

func (h *PasswordHandler) ForgotPage(w http.ResponseWriter, r *http.Request) {
	h.view.Render(w, r, http.StatusOK, "forgot_password", Page{Title: "Forgot Password", Data: forgotForm{}})
}

func (h *PasswordHandler) Forgot(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	if !validEmail(email) {
		h.view.Render(w, r, http.StatusBadRequest, "forgot_password", Page{
			Title: "Forgot Password",
			Error: "Please enter a valid email address.",
			Data:  forgotForm{Email: email},
		})
		return
	}

	if err := h.api.ForgotPassword(r.Context(), email); err != nil {
		slog.Warn("forgot password failed", "error", err)
		h.view.Render(w, r, http.StatusBadRequest, "forgot_password", Page{
			Title: "Forgot Password",
			Error: backendMessage(err, "Could not send the reset link. Please try again."),
			Data:  forgotForm{Email: email},
		})
		return
	}

	h.view.Flash(w, r, session.FlashSuccess, "Password reset link sent to your email.")
	redirect(w, r, "/login")
}

func (h *PasswordHandler) ResetPage(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	page := Page{Title: "Reset Password", Data: resetForm{Token: token}}
	if token == "" {
		page.Error = "Invalid or missing reset token."
	}
	h.view.Render(w, r, http.StatusOK, "reset_password", page)
}

func (h *PasswordHandler) Reset(w http.ResponseWriter, r *http.Request) {
	token := r.FormValue("token")
	password := r.FormValue("newPassword")

	fail := func(msg string) {
		h.view.Render(w, r, http.StatusBadRequest, "reset_password", Page{
			Title: "Reset Password",
			Error: msg,
			Data:  resetForm{Token: token},
		})
	}

	switch {
	case token == "":
		fail("Invalid or missing reset token.")
		return
	case password == "":
		fail("Please enter a new password.")
		return
	case password != r.FormValue("confirmPassword"):
		fail("Passwords do not match.")
		return
	}

	if err := h.api.ResetPassword(r.Context(), token, password); err != nil {
		slog.Warn("reset password failed", "error", err)
		fail(backendMessage(err, "Could not reset the password. Please try again."))
		return
	}

	h.view.Flash(w, r, session.FlashSuccess, "Password reset successful. Please log in.")
	redirect(w, r, "/login")
}
