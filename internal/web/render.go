package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hku-span/span2030/internal/curriculum"
	"github.com/hku-span/span2030/internal/exercise"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pages = []string{"home.html", "topic.html", "error.html"}

// Renderer executes the layout with one page template.
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	funcMap := template.FuncMap{
		"add":        func(a, b int) int { return a + b },
		"tabPath":    TabPath,
		"topicPath":  func(id string) string { return TopicView(id).Path() },
		"resultName": func(r exercise.Result) string { return r.String() },
		"iconGlyph":  iconGlyph,
		"paragraphs": paragraphs,
		"isChoice":   func(k exercise.Kind) bool { return k == exercise.KindChoice },
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		templates[page] = tmpl
	}
	return &Renderer{templates: templates}, nil
}

// Render writes the page with the given status. Output is buffered so a
// template failure never leaves a half-written page.
func (t *Renderer) Render(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := t.templates[name]
	if !ok {
		slog.Error("template not found", "name", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("render template", "name", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(fmt.Sprintf("web: embedded static: %v", err))
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

func iconGlyph(i curriculum.Icon) string {
	switch i.Normalized() {
	case curriculum.IconBook:
		return "📖"
	case curriculum.IconEdit:
		return "✏️"
	case curriculum.IconMessage:
		return "💬"
	case curriculum.IconSettings:
		return "⚙️"
	default:
		return "🔗"
	}
}

// paragraphs splits authored text on blank lines.
func paragraphs(s string) []string {
	var out []string
	for _, p := range strings.Split(s, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
