package handler

import (
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"workshopportal/internal/backend"
	"workshopportal/internal/entity"
	"workshopportal/internal/session"
)

const (
	registrationPath = "/student-dashboard/registration"
	registeredPath   = "/student-dashboard/registered-workshops"
)

type StudentHandler struct {
	api  *backend.Client
	view *Renderer
	now  func() time.Time
}

func NewStudentHandler(api *backend.Client, view *Renderer, now func() time.Time) *StudentHandler {
	if now == nil {
		now = time.Now
	}
	return &StudentHandler{api: api, view: view, now: now}
}

type studentDashboard struct {
	Registered []entity.Workshop
	Upcoming   []entity.Workshop
}

type workshopRow struct {
	Workshop       entity.Workshop
	Registered     bool
	UnregisterOpen bool
	MaterialURL    string
}

type registrationPage struct {
	Rows  []workshopRow
	Path  string
	Query string
	Pager Pager
}

type attendanceSummary struct {
	Records []entity.AttendanceRecord
	Present int
}

func (h *StudentHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	registered, err := h.api.RegisteredWorkshops(apiContext(r), user.Username)
	if err != nil {
		slog.Error("list registered workshops", "username", user.Username, "error", err)
		h.view.Render(w, r, http.StatusBadGateway, "student_dashboard", Page{
			Title: "Student Dashboard",
			Error: "Could not load your workshops.",
			Data:  studentDashboard{},
		})
		return
	}

	h.view.Render(w, r, http.StatusOK, "student_dashboard", Page{
		Title: "Student Dashboard",
		Data:  studentDashboard{Registered: registered, Upcoming: upcoming(registered, h.now())},
	})
}

func (h *StudentHandler) RegistrationPage(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	ctx := apiContext(r)
	query, page := listQuery(r)
	data := registrationPage{Path: registrationPath, Query: query}

	var all, mine []entity.Workshop
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		all, err = h.api.ListWorkshops(gctx)
		return err
	})
	g.Go(func() (err error) {
		mine, err = h.api.RegisteredWorkshops(gctx, user.Username)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.Error("load registration page", "username", user.Username, "error", err)
		h.view.Render(w, r, http.StatusBadGateway, "student_registration", Page{
			Title: "Workshop Registration",
			Error: "Could not load workshops.",
			Data:  data,
		})
		return
	}

	registered := make(map[int64]bool, len(mine))
	for _, ws := range mine {
		registered[ws.ID] = true
	}

	all, data.Pager = paginate(filterWorkshops(all, query), page, workshopsPerPage, registrationPath, query)

	now := h.now()
	rows := make([]workshopRow, 0, len(all))
	for _, ws := range all {
		rows = append(rows, workshopRow{
			Workshop:       ws,
			Registered:     registered[ws.ID],
			UnregisterOpen: ws.UnregisterOpen(now),
		})
	}

	data.Rows = rows
	h.view.Render(w, r, http.StatusOK, "student_registration", Page{
		Title: "Workshop Registration",
		Data:  data,
	})
}

// Registration handles both register and unregister from the catalogue.
func (h *StudentHandler) Registration(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.FormValue("workshop_id"), 10, 64)
	if err != nil {
		h.view.Flash(w, r, session.FlashError, "Unknown workshop.")
		redirect(w, r, registrationPath)
		return
	}

	switch r.FormValue("action") {
	case "register":
		h.register(w, r, id)
	case "unregister":
		h.unregister(w, r, id)
	default:
		h.view.Flash(w, r, session.FlashError, "Unknown action.")
	}
	redirect(w, r, registrationPath)
}

func (h *StudentHandler) RegisteredPage(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	query, page := listQuery(r)
	data := registrationPage{Path: registeredPath, Query: query}

	mine, err := h.api.RegisteredWorkshops(apiContext(r), user.Username)
	if err != nil {
		slog.Error("list registered workshops", "username", user.Username, "error", err)
		h.view.Render(w, r, http.StatusBadGateway, "student_registered", Page{
			Title: "Registered Workshops",
			Error: "Could not load your workshops.",
			Data:  data,
		})
		return
	}

	mine, data.Pager = paginate(filterWorkshops(mine, query), page, workshopsPerPage, registeredPath, query)

	now := h.now()
	rows := make([]workshopRow, 0, len(mine))
	for _, ws := range mine {
		row := workshopRow{Workshop: ws, Registered: true, UnregisterOpen: ws.UnregisterOpen(now)}
		if ws.Material != "" {
			row.MaterialURL = h.api.MaterialURL(ws.Material)
		}
		rows = append(rows, row)
	}

	data.Rows = rows
	h.view.Render(w, r, http.StatusOK, "student_registered", Page{
		Title: "Registered Workshops",
		Data:  data,
	})
}

func (h *StudentHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.FormValue("workshop_id"), 10, 64)
	if err != nil {
		h.view.Flash(w, r, session.FlashError, "Unknown workshop.")
	} else {
		h.unregister(w, r, id)
	}
	redirect(w, r, registeredPath)
}

func (h *StudentHandler) Attendance(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	records, err := h.api.UserAttendance(apiContext(r), user.Username)
	if err != nil {
		slog.Error("load attendance", "username", user.Username, "error", err)
		h.view.Render(w, r, http.StatusBadGateway, "student_attendance", Page{
			Title: "My Attendance",
			Error: "Could not load attendance.",
			Data:  attendanceSummary{},
		})
		return
	}

	summary := attendanceSummary{Records: records}
	for _, rec := range records {
		if rec.IsPresent {
			summary.Present++
		}
	}
	h.view.Render(w, r, http.StatusOK, "student_attendance", Page{Title: "My Attendance", Data: summary})
}

func (h *StudentHandler) register(w http.ResponseWriter, r *http.Request, id int64) {
	user := currentUser(r)
	if err := h.api.Register(apiContext(r), user.Username, id); err != nil {
		slog.Warn("register for workshop", "username", user.Username, "workshop_id", id, "error", err)
		h.view.Flash(w, r, session.FlashError, backendMessage(err, "Registration failed."))
		return
	}
	h.view.Flash(w, r, session.FlashSuccess, "Registered successfully.")
}

// unregister re-checks the two-hour window against the backend's copy of
// the workshop; a disabled button is not enough.
func (h *StudentHandler) unregister(w http.ResponseWriter, r *http.Request, id int64) {
	user := currentUser(r)
	ctx := apiContext(r)

	ws, err := h.api.GetWorkshop(ctx, id)
	if err != nil {
		slog.Error("load workshop", "workshop_id", id, "error", err)
		h.view.Flash(w, r, session.FlashError, "Could not unregister. Please try again.")
		return
	}
	if !ws.UnregisterOpen(h.now()) {
		h.view.Flash(w, r, session.FlashError, "You cannot unregister within 2 hours of the workshop start.")
		return
	}

	if err := h.api.Unregister(ctx, user.Username, id); err != nil {
		slog.Warn("unregister from workshop", "username", user.Username, "workshop_id", id, "error", err)
		h.view.Flash(w, r, session.FlashError, backendMessage(err, "Could not unregister. Please try again."))
		return
	}
	h.view.Flash(w, r, session.FlashSuccess, "Unregistered successfully.")
}

// upcoming returns the workshops starting after now, soonest first.
func upcoming(list []entity.Workshop, now time.Time) []entity.Workshop {
	type dated struct {
		ws    entity.Workshop
		start time.Time
	}
	var out []dated
	for _, ws := range list {
		start, err := ws.StartsAt(now.Location())
		if err != nil || !start.After(now) {
			continue
		}
		out = append(out, dated{ws, start})
	}
	slices.SortFunc(out, func(a, b dated) int { return a.start.Compare(b.start) })

	res := make([]entity.Workshop, len(out))
	for i, d := range out {
		res[i] = d.ws
	}
	return res
}
