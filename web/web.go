// Package web embeds the dashboard served at GET /.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var content embed.FS

// Static is the dashboard's file tree: index.html, app.js and style.css.
func Static() fs.FS {
	sub, err := fs.Sub(content, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
