package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"schedule_web/backend/internal/admin"
	"schedule_web/backend/internal/entity"
)

//go:embed templates/*.html
var templateFS embed.FS

// MenuItem is one navigation link.
type MenuItem struct {
	Name   string
	Title  string
	Href   string
	Active bool
}

// Page is the data every template receives.
type Page struct {
	Title  string
	Menu   []MenuItem
	Notice *entity.Notice
	Body   any
}

var funcs = template.FuncMap{
	// selected matches a prefilled value against an option's value or label.
	"selected": func(o entity.Option, value string) bool {
		return value != "" && (o.Value == value || o.Label == value)
	},
	"hasOption": func(opts []entity.Option, value string) bool {
		for _, o := range opts {
			if value != "" && (o.Value == value || o.Label == value) {
				return true
			}
		}
		return false
	},
}

// Templates holds one parsed set per page, each sharing the layout.
type Templates struct {
	pages map[string]*template.Template
}

// ParseTemplates loads the embedded page templates.
func ParseTemplates() (*Templates, error) {
	t := &Templates{pages: make(map[string]*template.Template)}
	for _, name := range []string{"admin.html", "selection.html", "table.html"} {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		t.pages[name] = tmpl
	}
	return t, nil
}

// Render executes a page into a buffer first so a template error never
// leaves a half-written response.
func (t *Templates) Render(w http.ResponseWriter, status int, name string, p Page) {
	tmpl, ok := t.pages[name]
	if !ok {
		http.Error(w, "unknown page "+name, http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", p); err != nil {
		log.Printf("ERROR: rendering %s: %v", name, err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("ERROR: writing %s: %v", name, err)
	}
}

// Menu lists the timetable followed by every admin page.
func Menu(active string) []MenuItem {
	items := []MenuItem{{Name: "timetable", Title: "ตารางสอน", Href: "/timetable", Active: active == "timetable"}}
	for _, e := range admin.Entries {
		items = append(items, MenuItem{
			Name:   e.Name,
			Title:  e.Title,
			Href:   "/admin/" + e.Name,
			Active: active == e.Name,
		})
	}
	return items
}
