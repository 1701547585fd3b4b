// Package web renders the dashboard's HTML pages and carries the small pieces
// shared by every page handler: flash notifications, formatting and JSON replies.
package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page is what every template receives.
type Page struct {
	Title  string
	Active string // sidebar entry to highlight
	User   string
	Flash  *Flash
	Data   any
}

// Renderer holds one parsed template set per page.
type Renderer struct {
	pages map[string]*template.Template
	user  func(*http.Request) string
	log   *zap.Logger
}

// NewRenderer parses the embedded templates. user reports the signed-in
// admin for the layout, and may be nil.
func NewRenderer(log *zap.Logger, user func(*http.Request) string) (*Renderer, error) {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	pages := map[string]*template.Template{}
	for _, f := range files {
		name := strings.TrimSuffix(path.Base(f), ".html")
		if name == "layout" {
			continue
		}
		t, err := template.New("layout").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", f)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		pages[name] = t
	}
	if user == nil {
		user = func(*http.Request) string { return "" }
	}
	return &Renderer{pages: pages, user: user, log: log}, nil
}

// Render writes page with status 200.
func (v *Renderer) Render(w http.ResponseWriter, r *http.Request, name string, p Page) {
	v.RenderStatus(w, r, http.StatusOK, name, p)
}

func (v *Renderer) RenderStatus(w http.ResponseWriter, r *http.Request, status int, name string, p Page) {
	t, ok := v.pages[name]
	if !ok {
		v.log.Error("unknown page", zap.String("page", name))
		http.Error(w, "page not found", http.StatusInternalServerError)
		return
	}
	p.User = v.user(r)
	if p.Flash == nil {
		p.Flash = PopFlash(w, r)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		v.log.Error("render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "could not render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// JSON writes body as a JSON response.
func JSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// JSONError writes {"error": msg}.
func JSONError(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"error": msg})
}
