package backend

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"workshopportal/internal/entity"
)

// maxConcurrentMarks bounds the fan-out of MarkAttendanceBatch.
const maxConcurrentMarks = 8

func (c *Client) MarkAttendance(ctx context.Context, m entity.AttendanceMark) error {
	return c.doJSON(ctx, http.MethodPost, "/api/attendance/mark", m, nil)
}

// MarkAttendanceBatch posts every mark concurrently. The backend only takes
// one mark per call; the batch fails if any single mark fails.
func (c *Client) MarkAttendanceBatch(ctx context.Context, marks []entity.AttendanceMark) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentMarks)

	for _, m := range marks {
		g.Go(func() error {
			if err := c.MarkAttendance(gctx, m); err != nil {
				return fmt.Errorf("mark %s for workshop %d: %w", m.Username, m.WorkshopID, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (c *Client) WorkshopAttendance(ctx context.Context, workshopID int64) ([]entity.AttendanceRecord, error) {
	var out []entity.AttendanceRecord
	err := c.doJSON(ctx, http.MethodGet, "/api/attendance/workshop/"+strconv.FormatInt(workshopID, 10), nil, &out)
	return out, err
}

func (c *Client) Participants(ctx context.Context, workshopID int64) ([]entity.Participant, error) {
	var out []entity.Participant
	path := "/api/attendance/workshop/" + strconv.FormatInt(workshopID, 10) + "/participants"
	err := c.doJSON(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) UserAttendance(ctx context.Context, username string) ([]entity.AttendanceRecord, error) {
	var out []entity.AttendanceRecord
	err := c.doJSON(ctx, http.MethodGet, "/api/attendance/user/"+escape(username), nil, &out)
	return out, err
}
