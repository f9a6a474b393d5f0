package database

import (
	"context"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// StoredFile records where a file's bytes live in the remote object
// store. Rows are created on upload and never updated; re-uploading the
// same name for the same user adds a second row.
type StoredFile struct {
	ID       uint   `gorm:"primaryKey"`
	UserID   uint   `gorm:"index;not null"`
	Category string `gorm:"not null"`
	FileName string `gorm:"not null"`
	PublicID string `gorm:"not null"`
	URL      string `gorm:"not null"`
}

// TableName keeps the table name the deployment scripts expect.
func (StoredFile) TableName() string {
	return "files"
}

func (c *Client) CreateFile(ctx context.Context, file *StoredFile) error {
	if err := c.db.WithContext(ctx).Create(file).Error; err != nil {
		log.Error("failed to create file record", "error", err)
		return err
	}
	return nil
}

// GetFileURL returns the public URL of a stored file, scoped to its
// owner. Other users' files are indistinguishable from missing ones.
func (c *Client) GetFileURL(ctx context.Context, userID uint, category, filename string) (string, error) {
	var file StoredFile
	err := c.db.WithContext(ctx).
		Where("user_id = ? AND category = ? AND file_name = ?", userID, category, filename).
		First(&file).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Error("failed to get file record", "error", err)
		}
		return "", err
	}
	return file.URL, nil
}

func (c *Client) CountFiles(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := c.db.WithContext(ctx).
		Model(&StoredFile{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		log.Error("failed to count file records", "error", err)
		return 0, err
	}
	return count, nil
}
