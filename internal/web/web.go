// Package web embeds the HTML templates of the server-rendered pages.
package web

import (
	"embed"
	"html/template"
	"time"

	"planboard/internal/model"
)

//go:embed templates/*.html
var files embed.FS

var funcs = template.FuncMap{
	"next": func(s model.Status) model.Status { return s.Next() },
	"prev": func(s model.Status) model.Status { return s.Prev() },
	"date": func(t time.Time) string { return t.Local().Format("2006-01-02 15:04") },
}

// Templates parses every page template. Names are the file base names, e.g. "board.html".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(files, "templates/*.html")
}
