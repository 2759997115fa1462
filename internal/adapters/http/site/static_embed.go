package site

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed static/* templates/*
var siteFS embed.FS

var pageTemplate = template.Must(template.ParseFS(siteFS, "templates/page.html"))

// FS returns an http.FileSystem for the embedded stylesheet and assets.
func FS() http.FileSystem {
	sub, err := fs.Sub(siteFS, "static")
	if err != nil {
		return http.FS(siteFS)
	}
	return http.FS(sub)
}
