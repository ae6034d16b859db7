// Package web embeds the HTML templates served by cmd/server.
package web

import (
	"embed"
	"html/template"
	"time"
)

//go:embed templates
var templatesFS embed.FS

// Funcs are the helpers available to every template
var Funcs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("2006-01-02 15:04")
	},
}

// Templates parses every embedded template
func Templates() (*template.Template, error) {
	return template.New("peoplebase").Funcs(Funcs).ParseFS(templatesFS,
		"templates/layouts/*.html",
		"templates/*.html",
	)
}
