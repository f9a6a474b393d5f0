// Package templates embeds the server-rendered pages.
package templates

import (
	"embed"
	"html/template"
)

//go:embed *.html
var files embed.FS

// Load parses all embedded pages.
func Load() (*template.Template, error) {
	return template.ParseFS(files, "*.html")
}
