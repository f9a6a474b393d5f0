package storage

import (
	"strings"
)

// SanitizeFilename reduces a client-supplied file name to a safe flat
// name: path separators are dropped, spaces become underscores, and
// anything outside [A-Za-z0-9_.-] is removed. Leading dots and
// underscores are stripped so the result can never be a hidden file or
// a relative path component. An empty string means the name was
// entirely unusable.
func SanitizeFilename(name string) string {
	// Keep only the last path element, for both separator styles.
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}

	return strings.TrimLeft(b.String(), "._")
}
