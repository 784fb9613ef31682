package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"workshopportal/internal/backend"
	"workshopportal/internal/entity"
	"workshopportal/internal/session"
)

// AttendanceHandler lets staff mark who attended a workshop.
type AttendanceHandler struct {
	api  *backend.Client
	view *Renderer
	path string
}

func NewAttendanceHandler(api *backend.Client, view *Renderer, path string) *AttendanceHandler {
	return &AttendanceHandler{api: api, view: view, path: path}
}

type attendancePage struct {
	Path         string
	Workshops    []entity.Workshop
	Selected     int64
	Participants []entity.Participant
	Posted       []entity.AttendanceRecord
}

func (h *AttendanceHandler) Page(w http.ResponseWriter, r *http.Request) {
	data := attendancePage{Path: h.path}
	ctx := apiContext(r)

	selected, _ := strconv.ParseInt(r.URL.Query().Get("workshop"), 10, 64)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		data.Workshops, err = h.api.ListWorkshops(gctx)
		return err
	})
	if selected > 0 {
		data.Selected = selected
		g.Go(func() (err error) {
			data.Participants, err = h.api.Participants(gctx, selected)
			return err
		})
		g.Go(func() (err error) {
			data.Posted, err = h.api.WorkshopAttendance(gctx, selected)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error("load attendance", "workshop_id", selected, "error", err)
		h.view.Render(w, r, http.StatusBadGateway, "attendance", Page{
			Title: "Attendance",
			Error: "Could not load attendance data.",
			Data:  attendancePage{Path: h.path},
		})
		return
	}

	h.view.Render(w, r, http.StatusOK, "attendance", Page{Title: "Attendance", Data: data})
}

// Submit posts one mark per listed participant; unticked means present.
func (h *AttendanceHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	id, err := strconv.ParseInt(r.FormValue("workshop"), 10, 64)
	if err != nil || id <= 0 {
		h.view.Flash(w, r, session.FlashError, "Select a workshop first.")
		redirect(w, r, h.path)
		return
	}
	back := fmt.Sprintf("%s?workshop=%d", h.path, id)

	marks := attendanceMarks(id, r.Form["participant"], r.Form["absent"])
	if len(marks) == 0 {
		h.view.Flash(w, r, session.FlashError, "No participants to mark.")
		redirect(w, r, back)
		return
	}

	if err := h.api.MarkAttendanceBatch(apiContext(r), marks); err != nil {
		slog.Error("mark attendance", "workshop_id", id, "error", err)
		h.view.Flash(w, r, session.FlashError, "Failed to submit attendance.")
		redirect(w, r, back)
		return
	}

	slog.Info("attendance submitted", "workshop_id", id, "marks", len(marks), "by", currentUser(r).Username)
	h.view.Flash(w, r, session.FlashSuccess, "Attendance submitted successfully.")
	redirect(w, r, back)
}

func attendanceMarks(workshopID int64, participants, absent []string) []entity.AttendanceMark {
	away := make(map[string]bool, len(absent))
	for _, u := range absent {
		away[u] = true
	}

	seen := make(map[string]bool, len(participants))
	marks := make([]entity.AttendanceMark, 0, len(participants))
	for _, u := range participants {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		marks = append(marks, entity.AttendanceMark{WorkshopID: workshopID, Username: u, IsPresent: !away[u]})
	}
	return marks
}
