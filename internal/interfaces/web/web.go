// Package web bundles the page template, its static files and the sample
// coloring pages.
package web

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates/*.html static assets
var files embed.FS

// PageTemplate is the name of the storefront template.
const PageTemplate = "index.html"

// Templates parses the page templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).ParseFS(files, "templates/*.html")
}

// Static serves /static/*.
func Static() fs.FS {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Assets serves /assets/*.
func Assets() fs.FS {
	sub, err := fs.Sub(files, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}

// Root exposes every bundled file under its page reference, so
// "assets/page1.png" resolves as written in a preview set.
func Root() fs.FS {
	return files
}
