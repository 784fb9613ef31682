package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"workshopportal/internal/backend"
	"workshopportal/internal/session"
	"workshopportal/internal/templates"
)

// Page is what every template receives. Handlers fill Title, Error and
// Data; the renderer adds the rest.
type Page struct {
	Title   string
	Error   string
	Data    any
	Session session.Session
	Flashes []session.Flash
	CSRF    template.HTML
}

// Renderer executes the embedded page templates inside the shared layout.
type Renderer struct {
	pages map[string]*template.Template
	flash *session.Flasher
	md    goldmark.Markdown
}

func NewRenderer(flash *session.Flasher) (*Renderer, error) {
	rd := &Renderer{
		pages: make(map[string]*template.Template),
		flash: flash,
		md:    goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
	funcs := template.FuncMap{"markdown": rd.markdown}

	files, err := fs.Glob(templates.FS, "pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	for _, file := range files {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templates.FS, "layout.html", file)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		rd.pages[strings.TrimSuffix(path.Base(file), ".html")] = tmpl
	}
	return rd, nil
}

// markdown renders workshop descriptions. Raw HTML in the source is
// dropped by goldmark's default renderer.
func (rd *Renderer) markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := rd.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name string, page Page) {
	tmpl, ok := rd.pages[name]
	if !ok {
		slog.Error("unknown template", "name", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	page.Session, _ = session.FromContext(r.Context())
	page.Flashes = rd.flash.Pop(w, r)
	page.CSRF = csrf.TemplateField(r)

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", page); err != nil {
		slog.Error("render template", "name", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Flash queues a message for the next rendered page.
func (rd *Renderer) Flash(w http.ResponseWriter, r *http.Request, kind, message string) {
	if err := rd.flash.Add(w, r, kind, message); err != nil {
		slog.Error("save flash", "error", err)
	}
}

// NotFound is the catch-all page.
func (rd *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	rd.Render(w, r, http.StatusNotFound, "not_found", Page{Title: "Not Found"})
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// apiContext carries the caller's session token to the backend.
func apiContext(r *http.Request) context.Context {
	sess, _ := session.FromContext(r.Context())
	return backend.WithToken(r.Context(), sess.Token)
}

func currentUser(r *http.Request) session.Session {
	sess, _ := session.FromContext(r.Context())
	return sess
}

// backendMessage turns a backend failure into text fit for a flash. Only
// client errors carry a message worth showing.
func backendMessage(err error, fallback string) string {
	var se *backend.StatusError
	if errors.As(err, &se) && se.Code >= 400 && se.Code < 500 && se.Message != "" {
		return se.Message
	}
	return fallback
}
