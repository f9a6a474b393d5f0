// Package storage implements the two file storage backends: a local
// directory tree and a remote S3-compatible object store with metadata
// rows in the database. The backend is chosen once at startup and
// injected; handlers never branch on the deployment mode themselves.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a requested file does not exist in the
// backend, or is not visible to the requesting user.
var ErrNotFound = errors.New("storage: file not found")

// Resolved describes how a stored file can be served. Exactly one of
// the fields is set: LocalPath for the disk backend, RedirectURL for
// the remote one.
type Resolved struct {
	LocalPath   string
	RedirectURL string
}

// Backend stores and resolves uploaded files for a category.
type Backend interface {
	// Kind identifies the backend in logs ("local" or "remote").
	Kind() string

	// Save stores the uploaded bytes for the given user and category
	// and returns the stored (sanitized) file name.
	Save(ctx context.Context, userID uint, category, filename string, r io.Reader, size int64, contentType string) (string, error)

	// Resolve locates a previously stored file for the given user.
	// It returns ErrNotFound when the file does not exist or belongs
	// to another user.
	Resolve(ctx context.Context, userID uint, category, filename string) (Resolved, error)
}
