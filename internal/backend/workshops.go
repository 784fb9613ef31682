package backend

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"workshopportal/internal/entity"
)

// Material is an uploaded file attached to a workshop.
type Material struct {
	Filename string
	Content  io.Reader
}

func (c *Client) ListWorkshops(ctx context.Context) ([]entity.Workshop, error) {
	var out []entity.Workshop
	err := c.doJSON(ctx, http.MethodGet, "/api/workshops", nil, &out)
	return out, err
}

func (c *Client) GetWorkshop(ctx context.Context, id int64) (entity.Workshop, error) {
	var out entity.Workshop
	err := c.doJSON(ctx, http.MethodGet, "/api/workshops/"+strconv.FormatInt(id, 10), nil, &out)
	return out, err
}

// CreateWorkshop posts the workshop as multipart form data, the way the
// backend accepts material uploads. material may be nil.
func (c *Client) CreateWorkshop(ctx context.Context, w entity.Workshop, material *Material) (entity.Workshop, error) {
	return c.sendWorkshop(ctx, http.MethodPost, "/api/workshops", w, material)
}

func (c *Client) UpdateWorkshop(ctx context.Context, w entity.Workshop, material *Material) (entity.Workshop, error) {
	return c.sendWorkshop(ctx, http.MethodPut, "/api/workshops/"+strconv.FormatInt(w.ID, 10), w, material)
}

func (c *Client) DeleteWorkshop(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/workshops/"+strconv.FormatInt(id, 10), nil, nil)
}

// MaterialURL is the download link for a stored material file.
func (c *Client) MaterialURL(name string) string {
	return c.URL("/api/workshops/materials/" + escape(name))
}

func (c *Client) sendWorkshop(ctx context.Context, method, path string, w entity.Workshop, material *Material) (entity.Workshop, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"name", w.Name},
		{"date", w.Date},
		{"time", w.Time},
		{"meetingLink", w.MeetingLink},
		{"description", w.Description},
		{"instructor", w.Instructor},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return entity.Workshop{}, errors.Wrap(err, "write workshop form")
		}
	}

	if material != nil {
		part, err := mw.CreateFormFile("material", material.Filename)
		if err != nil {
			return entity.Workshop{}, errors.Wrap(err, "create material part")
		}
		if _, err := io.Copy(part, material.Content); err != nil {
			return entity.Workshop{}, errors.Wrap(err, "copy material")
		}
	}
	if err := mw.Close(); err != nil {
		return entity.Workshop{}, errors.Wrap(err, "close workshop form")
	}

	req, err := c.newRequest(ctx, method, path, &buf, mw.FormDataContentType())
	if err != nil {
		return entity.Workshop{}, err
	}

	var out entity.Workshop
	if err := c.do(req, &out); err != nil {
		return entity.Workshop{}, err
	}
	return out, nil
}
