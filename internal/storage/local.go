package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/flycloudone/flycloud/internal/category"
)

var _ Backend = (*Local)(nil)

// Local stores files in a directory tree with one subdirectory per
// category. All users share the same tree: listings and downloads are
// not scoped per user in this mode.
type Local struct {
	root string
}

// NewLocal creates a local backend rooted at the given directory and
// ensures the per-category subdirectories exist.
func NewLocal(root string) (*Local, error) {
	for _, cat := range category.Names() {
		if err := os.MkdirAll(filepath.Join(root, cat), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create upload directory for %s: %w", cat, err)
		}
	}
	return &Local{root: root}, nil
}

func (l *Local) Kind() string {
	return "local"
}

// Path returns the on-disk location of a file. The name is reduced to
// its base element so request paths cannot escape the category dir.
func (l *Local) Path(cat, filename string) string {
	return filepath.Join(l.root, cat, filepath.Base(filename))
}

// Save writes the uploaded bytes to <root>/<category>/<name>,
// overwriting any existing file with the same name.
func (l *Local) Save(_ context.Context, _ uint, cat, filename string, r io.Reader, _ int64, _ string) (string, error) {
	name := SanitizeFilename(filename)
	if name == "" {
		return "", fmt.Errorf("unusable file name %q", filename)
	}

	dst, err := os.Create(l.Path(cat, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close() //nolint:errcheck

	if _, err := io.Copy(dst, r); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return name, nil
}

// Resolve returns the local path of the file if it exists. The user is
// ignored: the local tree has no per-user isolation.
func (l *Local) Resolve(_ context.Context, _ uint, cat, filename string) (Resolved, error) {
	path := l.Path(cat, filename)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Resolved{}, ErrNotFound
		}
		return Resolved{}, err
	}
	return Resolved{LocalPath: path}, nil
}

// List returns the non-hidden entries of a category directory, sorted
// lexicographically.
func (l *Local) List(cat string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(l.root, cat))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	names := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		return e.Name(), !e.IsDir() && !strings.HasPrefix(e.Name(), ".")
	})
	sort.Strings(names)
	return names, nil
}

// Delete removes a file from the category directory. Deleting a file
// that does not exist is not an error.
func (l *Local) Delete(cat, filename string) error {
	err := os.Remove(l.Path(cat, filename))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
