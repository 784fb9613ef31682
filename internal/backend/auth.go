package backend

import (
	"context"
	"net/http"

	"workshopportal/internal/entity"
)

// LoginResult is the 200 body of /api/auth/login. Token is empty when the
// backend does not issue one.
type LoginResult struct {
	Role  string `json:"role"`
	Token string `json:"token,omitempty"`
}

func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var out LoginResult
	in := map[string]string{"username": username, "password": password}
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", in, &out)
	return out, err
}

func (c *Client) Signup(ctx context.Context, s entity.Signup) error {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/signup", s, nil)
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/forgot-password", map[string]string{"email": email}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	in := map[string]string{"token": token, "newPassword": newPassword}
	return c.doJSON(ctx, http.MethodPost, "/api/auth/reset-password", in, nil)
}
