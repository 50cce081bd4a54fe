package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"user_id"`
	TelegramID int64     `gorm:"uniqueIndex;not null" json:"telegram_id"`
	Username   string    `gorm:"type:varchar(64)" json:"username,omitempty"`
	FirstName  string    `gorm:"type:varchar(255)" json:"first_name,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// BeforeSave hook for validation
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.TelegramID == 0 {
		return gorm.ErrInvalidData
	}
	u.Username = strings.TrimPrefix(strings.TrimSpace(u.Username), "@")
	return nil
}

// DisplayName returns the friendliest name available for messages.
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return "someone"
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

// RevokedToken records an invite token id that can no longer be redeemed.
type RevokedToken struct {
	TokenID   string    `gorm:"primaryKey;type:varchar(36)"`
	RevokedAt time.Time `gorm:"not null"`
}

func (RevokedToken) TableName() string {
	return "token_blacklist"
}
