package backend

import (
	"context"
	"net/http"

	"workshopportal/internal/entity"
)

func (c *Client) ListUsers(ctx context.Context) ([]entity.User, error) {
	var out []entity.User
	err := c.doJSON(ctx, http.MethodGet, "/api/users", nil, &out)
	return out, err
}

// GetUser fetches a profile by username.
func (c *Client) GetUser(ctx context.Context, username string) (entity.User, error) {
	var out entity.User
	err := c.doJSON(ctx, http.MethodGet, "/api/users/"+escape(username), nil, &out)
	return out, err
}

func (c *Client) CreateUser(ctx context.Context, u entity.User) (entity.User, error) {
	var out entity.User
	err := c.doJSON(ctx, http.MethodPost, "/api/users", u, &out)
	return out, err
}

// UpdateUser replaces the user addressed by key, which the backend accepts
// as either the numeric id or the username.
func (c *Client) UpdateUser(ctx context.Context, key string, u entity.User) (entity.User, error) {
	var out entity.User
	err := c.doJSON(ctx, http.MethodPut, "/api/users/"+escape(key), u, &out)
	return out, err
}

func (c *Client) DeleteUser(ctx context.Context, key string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/users/"+escape(key), nil, nil)
}
