// Package database provides the relational persistence layer. The
// dialect is chosen once at startup: a configured remote URL selects
// Postgres, otherwise a local sqlite file is used. Placeholder
// handling between the two dialects is delegated to gorm.
package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/flycloudone/flycloud/internal/config"
)

var _ DB = (*Client)(nil) // Ensure Client implements DB

// DB is the persistence contract used by the rest of the application.
type DB interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByIdentifier(ctx context.Context, identifier string) (*User, error)
	UpdatePassword(ctx context.Context, userID uint, hash string) error
	ListUsers(ctx context.Context) ([]User, error)

	CreateFile(ctx context.Context, file *StoredFile) error
	GetFileURL(ctx context.Context, userID uint, category, filename string) (string, error)
	CountFiles(ctx context.Context, userID uint) (int64, error)

	Close() error
}

// Client wraps the gorm.DB instance.
type Client struct {
	db *gorm.DB
}

// New creates a new database connection and performs migrations.
func New(cfg *config.DatabaseConfig) (*Client, error) {
	var dialector gorm.Dialector
	if cfg.URL != "" {
		dialector = postgres.Open(cfg.URL)
	} else {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dialector = sqlite.Open(cfg.Path)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(
		&User{},
		&StoredFile{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := backfillLegacyPasswords(db); err != nil {
		return nil, fmt.Errorf("failed to backfill legacy passwords: %w", err)
	}

	return &Client{db: db}, nil
}

// backfillLegacyPasswords copies hashes from the pre-rename "password"
// column into password_hash. Additive only, runs at most once per row.
func backfillLegacyPasswords(db *gorm.DB) error {
	if !db.Migrator().HasColumn(&User{}, "password") {
		return nil
	}
	return db.Exec(
		"UPDATE users SET password_hash = password WHERE password_hash IS NULL OR password_hash = ''",
	).Error
}

// Close closes the underlying database connection.
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
