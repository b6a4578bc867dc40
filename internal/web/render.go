package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/desertthunder/pulse/internal/auth"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var templateFuncs = template.FuncMap{
	"join": strings.Join,
}

// parseTemplates pairs every page with the shared layout.
func parseTemplates() (map[string]*template.Template, error) {
	pages, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		name := strings.TrimSuffix(path.Base(page), ".html")
		if name == "layout" {
			continue
		}

		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		templates[name] = t
	}
	return templates, nil
}

// pageData is the value every template is executed with.
type pageData struct {
	Title   string
	Session *auth.Session
	Flash   *auth.Flash
	Data    any
}

func (a *App) newPage(w http.ResponseWriter, r *http.Request, title string, data any) pageData {
	p := pageData{Title: title, Data: data}

	if s, ok := auth.FromContext(r.Context()); ok {
		p.Session = &s
	}

	if f, ok := auth.PopFlash(w, r, a.sessions.Cookies()); ok {
		p.Flash = &f
	}
	return p
}

// render executes a page into a buffer so template errors become a clean 500.
func (a *App) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	t, ok := a.templates[name]
	if !ok {
		a.logger.Error("unknown template", "name", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	page := a.newPage(w, r, title, data)

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", page); err != nil {
		a.logger.Error("failed to render template", "name", name, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (a *App) flash(w http.ResponseWriter, category, message string) {
	auth.SetFlash(w, a.sessions.Cookies(), category, message)
}

// redirectWithFlash stores a flash message and sends the browser to target.
func (a *App) redirectWithFlash(w http.ResponseWriter, r *http.Request, target, category, message string) {
	a.flash(w, category, message)
	http.Redirect(w, r, target, http.StatusSeeOther)
}
