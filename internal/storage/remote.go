package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"gorm.io/gorm"

	"github.com/flycloudone/flycloud/internal/config"
	"github.com/flycloudone/flycloud/internal/database"
	"github.com/flycloudone/flycloud/version"
)

var _ Backend = (*Remote)(nil)

// Remote stores files in an S3-compatible object store and records
// each upload as a row in the files table. Reads resolve to the stored
// public URL, scoped to the owning user.
//
// There is no remote delete path and listings still come from the
// local directory scan; both match the current deployment behavior.
type Remote struct {
	client  *minio.Client
	db      database.DB
	bucket  string
	baseURL string
}

// NewRemote creates the object storage client and ensures the bucket
// exists.
func NewRemote(ctx context.Context, cfg *config.StorageConfig, db database.DB) (*Remote, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}
	client.SetAppInfo("flycloud", version.Version)

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
		log.Info("created bucket", "bucket", cfg.Bucket)
	}

	return &Remote{
		client:  client,
		db:      db,
		bucket:  cfg.Bucket,
		baseURL: cfg.PublicBaseURL(),
	}, nil
}

func (r *Remote) Kind() string {
	return "remote"
}

// Save pushes the bytes under <category>/<user>/<uuid> and records the
// resulting URL. The object key is opaque; the client-facing name is
// the sanitized file name on the row. Re-uploading the same name adds
// a second row.
func (r *Remote) Save(ctx context.Context, userID uint, cat, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	name := SanitizeFilename(filename)
	if name == "" {
		return "", fmt.Errorf("unusable file name %q", filename)
	}

	objectKey := fmt.Sprintf("%s/%d/%s%s", cat, userID, uuid.NewString(), filepath.Ext(name))
	if _, err := r.client.PutObject(ctx, r.bucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	file := &database.StoredFile{
		UserID:   userID,
		Category: cat,
		FileName: name,
		PublicID: objectKey,
		URL:      fmt.Sprintf("%s/%s", r.baseURL, objectKey),
	}
	if err := r.db.CreateFile(ctx, file); err != nil {
		return "", fmt.Errorf("failed to record upload: %w", err)
	}
	return name, nil
}

// Resolve looks the file up in the files table, scoped to the owner,
// and returns its public URL for redirection.
func (r *Remote) Resolve(ctx context.Context, userID uint, cat, filename string) (Resolved, error) {
	url, err := r.db.GetFileURL(ctx, userID, cat, filename)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Resolved{}, ErrNotFound
		}
		return Resolved{}, err
	}
	return Resolved{RedirectURL: url}, nil
}
