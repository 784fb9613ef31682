package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"workshopportal/internal/backend"
	"workshopportal/internal/entity"
	"workshopportal/internal/session"
)

// maxUploadSize caps a workshop form including its material file.
const maxUploadSize = 32 << 20

// WorkshopPaths places one WorkshopHandler in the route table. Admin and
// faculty manage the same catalogue from different URLs.
type WorkshopPaths struct {
	List     string
	Add      string
	Edit     string
	Delete   string
	Material string // empty hides the material link
}

type WorkshopHandler struct {
	api   *backend.Client
	view  *Renderer
	paths WorkshopPaths
}

func NewWorkshopHandler(api *backend.Client, view *Renderer, paths WorkshopPaths) *WorkshopHandler {
	return &WorkshopHandler{api: api, view: view, paths: paths}
}

type workshopList struct {
	Workshops    []entity.Workshop
	Path         string
	Query        string
	Pager        Pager
	CanAdd       bool
	AddPath      string
	EditPath     string
	DeletePath   string
	MaterialPath string
}

type workshopForm struct {
	Workshop entity.Workshop
	Action   string
}

type materialPage struct {
	Workshop    entity.Workshop
	MaterialURL string
}

func (h *WorkshopHandler) List(w http.ResponseWriter, r *http.Request) {
	query, page := listQuery(r)
	data := workshopList{
		Path:         h.paths.List,
		Query:        query,
		CanAdd:       h.paths.Add != "",
		AddPath:      h.paths.Add,
		EditPath:     h.paths.Edit,
		DeletePath:   h.paths.Delete,
		MaterialPath: h.paths.Material,
	}

	list, err := h.api.ListWorkshops(apiContext(r))
	if err != nil {
		slog.Error("list workshops", "error", err)
		h.view.Render(w, r, http.StatusBadGateway, "workshops", Page{
			Title: "Workshops",
			Error: "Could not load workshops.",
			Data:  data,
		})
		return
	}

	data.Workshops, data.Pager = paginate(filterWorkshops(list, query), page, workshopsPerPage, h.paths.List, query)
	h.view.Render(w, r, http.StatusOK, "workshops", Page{Title: "Workshops", Data: data})
}

func (h *WorkshopHandler) AddPage(w http.ResponseWriter, r *http.Request) {
	h.view.Render(w, r, http.StatusOK, "workshop_form", Page{
		Title: "Add Workshop",
		Data:  workshopForm{Action: h.paths.Add},
	})
}

func (h *WorkshopHandler) Add(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, h.paths.Add)
}

func (h *WorkshopHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		h.view.NotFound(w, r)
		return
	}

	ws, err := h.api.GetWorkshop(apiContext(r), id)
	if err != nil {
		if backend.IsStatus(err, http.StatusNotFound) {
			h.view.NotFound(w, r)
			return
		}
		slog.Error("load workshop", "workshop_id", id, "error", err)
		h.view.Flash(w, r, session.FlashError, "Could not load the workshop.")
		redirect(w, r, h.paths.List)
		return
	}

	h.view.Render(w, r, http.StatusOK, "workshop_form", Page{
		Title: "Update Workshop",
		Data:  workshopForm{Workshop: ws, Action: h.paths.Edit},
	})
}

func (h *WorkshopHandler) Edit(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, h.paths.Edit)
}

func (h *WorkshopHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.FormValue("id"), 10, 64)
	if err != nil {
		h.view.Flash(w, r, session.FlashError, "Unknown workshop.")
		redirect(w, r, h.paths.List)
		return
	}

	if err := h.api.DeleteWorkshop(apiContext(r), id); err != nil {
		slog.Error("delete workshop", "workshop_id", id, "error", err)
		h.view.Flash(w, r, session.FlashError, backendMessage(err, "Could not delete the workshop."))
		redirect(w, r, h.paths.List)
		return
	}

	slog.Info("workshop deleted", "workshop_id", id, "by", currentUser(r).Username)
	h.view.Flash(w, r, session.FlashSuccess, "Workshop deleted.")
	redirect(w, r, h.paths.List)
}

// Material shows one workshop with its rendered description and a link to
// its uploaded file.
func (h *WorkshopHandler) Material(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.view.NotFound(w, r)
		return
	}

	ws, err := h.api.GetWorkshop(apiContext(r), id)
	if err != nil {
		if backend.IsStatus(err, http.StatusNotFound) {
			h.view.NotFound(w, r)
			return
		}
		slog.Error("load workshop", "workshop_id", id, "error", err)
		h.view.Flash(w, r, session.FlashError, "Could not load the workshop.")
		redirect(w, r, h.paths.List)
		return
	}

	page := materialPage{Workshop: ws}
	if ws.Material != "" {
		page.MaterialURL = h.api.MaterialURL(ws.Material)
	}
	h.view.Render(w, r, http.StatusOK, "material", Page{Title: ws.Name, Data: page})
}

// save handles both the add and the update form; an id field selects update.
func (h *WorkshopHandler) save(w http.ResponseWriter, r *http.Request, formPath string) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	ws := entity.Workshop{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Date:        r.FormValue("date"),
		Time:        r.FormValue("time"),
		MeetingLink: strings.TrimSpace(r.FormValue("meetingLink")),
		Description: r.FormValue("description"),
		Instructor:  strings.TrimSpace(r.FormValue("instructor")),
	}
	if raw := r.FormValue("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
		ws.ID = id
	}

	title := "Add Workshop"
	if ws.ID != 0 {
		title = "Update Workshop"
	}
	fail := func(status int, msg string) {
		h.view.Render(w, r, status, "workshop_form", Page{
			Title: title,
			Error: msg,
			Data:  workshopForm{Workshop: ws, Action: formPath},
		})
	}

	if msg := validateWorkshop(ws); msg != "" {
		fail(http.StatusBadRequest, msg)
		return
	}

	material, closeFile, err := formMaterial(r)
	if err != nil {
		slog.Error("read material upload", "error", err)
		fail(http.StatusBadRequest, "Could not read the material file.")
		return
	}
	defer closeFile()

	ctx := apiContext(r)
	if ws.ID == 0 {
		_, err = h.api.CreateWorkshop(ctx, ws, material)
	} else {
		_, err = h.api.UpdateWorkshop(ctx, ws, material)
	}
	if err != nil {
		slog.Error("save workshop", "workshop_id", ws.ID, "error", err)
		fail(http.StatusBadGateway, backendMessage(err, "Could not save the workshop."))
		return
	}

	if ws.ID == 0 {
		h.view.Flash(w, r, session.FlashSuccess, "Workshop added.")
	} else {
		h.view.Flash(w, r, session.FlashSuccess, "Workshop updated.")
	}
	redirect(w, r, h.paths.List)
}

func validateWorkshop(ws entity.Workshop) string {
	if ws.Name == "" || ws.Date == "" || ws.Time == "" {
		return "Name, date and time are required."
	}
	if _, err := ws.StartsAt(time.UTC); err != nil {
		return "Date or time is not valid."
	}
	return ""
}

// formMaterial returns the uploaded material, or nil when none was sent.
func formMaterial(r *http.Request) (*backend.Material, func(), error) {
	file, header, err := r.FormFile("material")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	return &backend.Material{
		Filename: filepath.Base(header.Filename),
		Content:  file,
	}, func() { _ = file.Close() }, nil
}
