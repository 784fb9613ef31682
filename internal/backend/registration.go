package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"workshopportal/internal/entity"
)

func (c *Client) Register(ctx context.Context, username string, workshopID int64) error {
	in := entity.Registration{Username: username, WorkshopID: workshopID}
	return c.doJSON(ctx, http.MethodPost, "/api/registration", in, nil)
}

func (c *Client) Unregister(ctx context.Context, username string, workshopID int64) error {
	path := "/api/registration/" + strconv.FormatInt(workshopID, 10) + "?" + url.Values{"username": {username}}.Encode()
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// RegisteredWorkshops lists the workshops username signed up for.
func (c *Client) RegisteredWorkshops(ctx context.Context, username string) ([]entity.Workshop, error) {
	var out []entity.Workshop
	err := c.doJSON(ctx, http.MethodGet, "/api/registration/workshops/"+escape(username), nil, &out)
	return out, err
}
