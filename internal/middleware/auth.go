package middleware

import (
	"log/slog"
	"net/http"

	"workshopportal/internal/entity"
	"workshopportal/internal/guard"
	"workshopportal/internal/session"
)

// LoginPath is where every denied request is sent.
const LoginPath = "/login"

// RequireRole gates next behind the route guard. Denied requests are
// redirected to the login page whatever the reason; allowed requests
// carry the session in their context.
func RequireRole(store session.Store, required entity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := store.Read(r)

			decision := guard.Evaluate(required, sess)
			if !decision.Allowed {
				slog.Warn("route guard denied",
					"path", r.URL.Path,
					"required_role", required.String(),
					"user_role", sess.Role.String(),
					"username", sess.Username,
					"reason", decision.Reason.String(),
				)
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(session.WithContext(r.Context(), sess)))
		})
	}
}
