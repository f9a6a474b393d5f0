// Package handler serves the category-scoped file routes. Every
// operation validates the category against the closed registry first;
// an unknown category is a redirect, not an error.
package handler

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"github.com/flycloudone/flycloud/internal/api/auth"
	"github.com/flycloudone/flycloud/internal/category"
	"github.com/flycloudone/flycloud/internal/storage"
)

// Handler serves the file routes. The backend handles saves and
// resolution; listings, raw fetches and deletes always work against
// the local upload tree, matching the current deployment behavior.
type Handler struct {
	local   *storage.Local
	backend storage.Backend
}

func New(local *storage.Local, backend storage.Backend) *Handler {
	return &Handler{
		local:   local,
		backend: backend,
	}
}

// Home lists every category's contents from the local upload tree. All
// authenticated users see the same listings in local mode.
func (h *Handler) Home(c *gin.Context) {
	files := make(map[string][]string, len(category.Names()))
	for _, cat := range category.Names() {
		names, err := h.local.List(cat)
		if err != nil {
			log.Error("failed to list category", "category", cat, "error", err)
			names = nil
		}
		files[cat] = names
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Flashes":    auth.Flashes(c),
		"Username":   auth.CurrentUsername(c),
		"Categories": category.Names(),
		"Files":      files,
	})
}

// Upload stores a file for the session's user. Disallowed extensions
// and missing files redirect back without error detail.
func (h *Handler) Upload(c *gin.Context) {
	cat := c.Param("category")
	if !category.Valid(cat) {
		c.Redirect(http.StatusFound, "/")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil || fileHeader.Filename == "" {
		c.Redirect(http.StatusFound, "/")
		return
	}
	if !category.Allowed(cat, fileHeader.Filename) {
		c.Redirect(http.StatusFound, "/")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		log.Error("failed to open upload", "error", err)
		auth.Flash(c, "Upload failed, try again")
		c.Redirect(http.StatusFound, "/#"+cat)
		return
	}
	defer src.Close() //nolint:errcheck

	userID := auth.CurrentUserID(c)
	name, err := h.backend.Save(
		c.Request.Context(),
		userID,
		cat,
		fileHeader.Filename,
		src,
		fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		log.Error("failed to store upload", "backend", h.backend.Kind(), "category", cat, "error", err)
		auth.Flash(c, "Upload failed, try again")
		c.Redirect(http.StatusFound, "/#"+cat)
		return
	}

	log.Info("file uploaded",
		"backend", h.backend.Kind(),
		"category", cat,
		"file", name,
		"size", humanize.Bytes(uint64(fileHeader.Size)), //nolint:gosec
		"user_id", userID,
	)
	c.Redirect(http.StatusFound, "/#"+cat)
}

// Download serves a file as an attachment, or redirects to its remote
// URL. A miss redirects back to the listing.
func (h *Handler) Download(c *gin.Context) {
	h.serve(c, true)
}

// Preview serves a file inline, or redirects to its remote URL.
func (h *Handler) Preview(c *gin.Context) {
	h.serve(c, false)
}

func (h *Handler) serve(c *gin.Context, attachment bool) {
	cat := c.Param("category")
	if !category.Valid(cat) {
		c.Redirect(http.StatusFound, "/")
		return
	}
	filename := filepath.Base(c.Param("filename"))

	resolved, err := h.backend.Resolve(c.Request.Context(), auth.CurrentUserID(c), cat, filename)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Error("failed to resolve file", "backend", h.backend.Kind(), "category", cat, "error", err)
		}
		c.Redirect(http.StatusFound, "/#"+cat)
		return
	}

	if resolved.RedirectURL != "" {
		c.Redirect(http.StatusFound, resolved.RedirectURL)
		return
	}
	if attachment {
		c.FileAttachment(resolved.LocalPath, filename)
		return
	}
	c.File(resolved.LocalPath)
}

// Raw serves a file straight from the local upload tree, static-style.
func (h *Handler) Raw(c *gin.Context) {
	cat := c.Param("category")
	if !category.Valid(cat) {
		c.Redirect(http.StatusFound, "/")
		return
	}

	path := h.local.Path(cat, c.Param("filename"))
	c.File(path)
}

// Delete removes a file from the local upload tree. Deleting a missing
// file is a silent no-op; the remote store has no delete path.
func (h *Handler) Delete(c *gin.Context) {
	cat := c.Param("category")
	if !category.Valid(cat) {
		c.Redirect(http.StatusFound, "/")
		return
	}

	if err := h.local.Delete(cat, c.Param("filename")); err != nil {
		log.Error("failed to delete file", "category", cat, "error", err)
		auth.Flash(c, "Delete failed, try again")
	}
	c.Redirect(http.StatusFound, "/#"+cat)
}
