package handler

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"workshopportal/internal/backend"
	"workshopportal/internal/entity"
	"workshopportal/internal/repository"
)

const (
	// activityDays is how far back the admin login chart reaches.
	activityDays   = 7
	recentSessions = 10
)

// DashboardHandler serves the admin and faculty landing pages.
type DashboardHandler struct {
	api      *backend.Client
	sessions SessionAdmin
	attempts AttemptLog
	view     *Renderer
	now      func() time.Time
}

func NewDashboardHandler(api *backend.Client, sessions SessionAdmin, attempts AttemptLog, view *Renderer, now func() time.Time) *DashboardHandler {
	if now == nil {
		now = time.Now
	}
	return &DashboardHandler{api: api, sessions: sessions, attempts: attempts, view: view, now: now}
}

type roleCount struct {
	Role  entity.Role
	Count int
}

type adminDashboard struct {
	TotalUsers     int
	TotalWorkshops int
	ActiveSessions int
	SessionsByRole []roleCount
	Recent         []entity.SessionRecord
	Activity       []repository.DayActivity
}

type facultyDashboard struct {
	TotalUsers     int
	TotalWorkshops int
	Upcoming       []entity.Workshop
}

func (h *DashboardHandler) Admin(w http.ResponseWriter, r *http.Request) {
	ctx := apiContext(r)

	var (
		data      adminDashboard
		users     []entity.User
		workshops []entity.Workshop
		active    map[entity.Role]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = h.api.ListUsers(gctx)
		return err
	})
	g.Go(func() (err error) {
		workshops, err = h.api.ListWorkshops(gctx)
		return err
	})
	g.Go(func() (err error) {
		active, err = h.sessions.CountActive(gctx)
		return err
	})
	g.Go(func() (err error) {
		data.Recent, err = h.sessions.ListActive(gctx, recentSessions)
		return err
	})
	g.Go(func() (err error) {
		data.Activity, err = h.attempts.DailyActivity(gctx, activityDays)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.Error("load admin dashboard", "error", err)
		h.view.Render(w, r, http.StatusBadGateway, "admin_dashboard", Page{
			Title: "Admin Dashboard",
			Error: "Could not load dashboard data.",
			Data:  adminDashboard{},
		})
		return
	}

	data.TotalUsers = len(users)
	data.TotalWorkshops = len(workshops)
	for _, role := range entity.Roles {
		data.SessionsByRole = append(data.SessionsByRole, roleCount{Role: role, Count: active[role]})
		data.ActiveSessions += active[role]
	}

	h.view.Render(w, r, http.StatusOK, "admin_dashboard", Page{Title: "Admin Dashboard", Data: data})
}

func (h *DashboardHandler) Faculty(w http.ResponseWriter, r *http.Request) {
	ctx := apiContext(r)

	var (
		users     []entity.User
		workshops []entity.Workshop
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = h.api.ListUsers(gctx)
		return err
	})
	g.Go(func() (err error) {
		workshops, err = h.api.ListWorkshops(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.Error("load faculty dashboard", "error", err)
		h.view.Render(w, r, http.StatusBadGateway, "faculty_dashboard", Page{
			Title: "Faculty Dashboard",
			Error: "Could not load dashboard data.",
			Data:  facultyDashboard{},
		})
		return
	}

	h.view.Render(w, r, http.StatusOK, "faculty_dashboard", Page{
		Title: "Faculty Dashboard",
		Data: facultyDashboard{
			TotalUsers:     len(users),
			TotalWorkshops: len(workshops),
			Upcoming:       upcoming(workshops, h.now()),
		},
	})
}
