// Package category defines the closed set of file categories and the
// extensions each one accepts.
package category

import (
	"path/filepath"
	"sort"
	"strings"
)

// categories maps each category to its allowed file extensions.
// The set is fixed at startup and not user-extensible.
var categories = map[string][]string{
	"imagenes":   {"png", "jpg", "jpeg", "gif", "webp"},
	"musica":     {"mp3", "wav", "ogg"},
	"documentos": {"pdf", "docx", "txt", "xlsx", "pptx"},
	"contactos":  {"vcf", "csv"},
	"correos":    {"eml", "msg"},
	"videos":     {"mp4", "avi", "mov", "mkv"},
}

// Valid reports whether name is a known category.
func Valid(name string) bool {
	_, ok := categories[name]
	return ok
}

// Allowed reports whether filename has an extension accepted by the
// given category. The comparison is case-insensitive and a filename
// without an extension is never allowed.
func Allowed(cat, filename string) bool {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if ext == "" {
		return false
	}
	ext = strings.ToLower(ext)
	for _, allowed := range categories[cat] {
		if ext == allowed {
			return true
		}
	}
	return false
}

// Names returns all category names in a stable, sorted order.
func Names() []string {
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
