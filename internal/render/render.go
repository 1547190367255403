// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the site. Every
// page template is paired with the base layout at parse time.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData holds all data passed to page templates.
type PageData struct {
	Title     string          // Page title for <title> tag
	User      *models.User    // Current user (nil if unauthenticated)
	CSRFToken string          // CSRF token for form hidden fields
	Flashes   []session.Flash // One-time notification messages
	Data      map[string]any  // Page-specific data
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
}

// New creates a Renderer by parsing all templates from the embedded
// filesystem. Each page template is paired with the base layout.
func New() (*Renderer, error) {
	funcMap := template.FuncMap{
		// deref safely dereferences a string pointer for use in templates.
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		// datefmt renders timestamps in the site-wide format.
		"datefmt": func(t time.Time) string {
			return t.Format("02 Jan 2006 15:04")
		},
		// pages returns the inclusive page indexes [from, to] for the
		// pagination controls.
		"pages": func(from, to int) []int {
			if to < from {
				return nil
			}
			out := make([]int, 0, to-from+1)
			for i := from; i <= to; i++ {
				out = append(out, i)
			}
			return out
		},
	}

	rn := &Renderer{templates: make(map[string]*template.Template)}

	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == "base.html" {
			continue
		}

		tmpl, err := template.New("base.html").Funcs(funcMap).ParseFS(
			templateFS, "templates/base.html", "templates/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}

		// Strip .html extension for the template name.
		rn.templates[name[:len(name)-len(".html")]] = tmpl
	}

	return rn, nil
}

// Page renders a full page. Flashes, the CSRF token, and the current
// user are injected from the request so handlers only supply
// page-specific data.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		slog.Error("template not found", "template", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = &PageData{}
	}
	data.CSRFToken = middleware.GetCSRFToken(r)
	if data.User == nil {
		data.User = middleware.UserFromCtx(r.Context())
	}
	if data.Flashes == nil {
		data.Flashes = session.PopFlashes(w, r)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		slog.Error("template execution failed", "template", name, "error", err)
	}
}

// Error renders the error page matching the given status code, falling
// back to a bare http.Error if no template covers it.
func (rn *Renderer) Error(w http.ResponseWriter, r *http.Request, status int) {
	var name string
	switch status {
	case http.StatusBadRequest:
		name = "error_400"
	case http.StatusForbidden:
		name = "error_403"
	case http.StatusNotFound:
		name = "error_404"
	case http.StatusInternalServerError:
		name = "error_500"
	default:
		http.Error(w, http.StatusText(status), status)
		return
	}

	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, http.StatusText(status), status)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	data := &PageData{
		Title: http.StatusText(status),
		User:  middleware.UserFromCtx(r.Context()),
	}
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		slog.Error("template execution failed", "template", name, "error", err)
	}
}
