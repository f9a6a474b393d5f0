package database

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// User represents a registered account. The email is stored lower-cased
// and is the unique handle; usernames are display labels and are not
// guaranteed unique. IsVerified is carried in the schema but no login
// gating reads it.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"index"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	IsVerified   bool   `gorm:"default:false"`
	CreatedAt    time.Time
}

func (c *Client) CreateUser(ctx context.Context, user *User) error {
	user.Email = strings.ToLower(user.Email)
	if err := c.db.WithContext(ctx).Create(user).Error; err != nil {
		log.Error("failed to create user", "error", err)
		return err
	}
	return nil
}

// GetUserByEmail looks a user up by email, case-insensitively.
func (c *Client) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := c.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(email)).
		First(&user).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Error("failed to get user by email", "error", err)
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername looks a user up by exact username match.
func (c *Client) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	err := c.db.WithContext(ctx).
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Error("failed to get user by username", "error", err)
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByIdentifier resolves a login identifier that may be either an
// email or a username. The email comparison is lower-cased while the
// username comparison is exact, matching the behavior registration and
// reset rely on.
func (c *Client) GetUserByIdentifier(ctx context.Context, identifier string) (*User, error) {
	var user User
	err := c.db.WithContext(ctx).
		Where("email = ? OR username = ?", strings.ToLower(identifier), identifier).
		First(&user).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Error("failed to get user by identifier", "error", err)
		}
		return nil, err
	}
	return &user, nil
}

// UpdatePassword replaces the stored password hash. Existing sessions
// are not invalidated.
func (c *Client) UpdatePassword(ctx context.Context, userID uint, hash string) error {
	err := c.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", userID).
		Update("password_hash", hash).Error
	if err != nil {
		log.Error("failed to update password", "error", err)
	}
	return err
}

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		log.Error("failed to list users", "error", err)
		return nil, err
	}
	return users, nil
}
