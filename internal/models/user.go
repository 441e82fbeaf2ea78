package models

import (
	"time"

	"gorm.io/datatypes"
)

// User represents a platform account. Role is immutable through the
// self-service profile path; only admins may change it.
type User struct {
	UserID       uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string `gorm:"size:255;not null" json:"name"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Role         Role   `gorm:"size:32;not null;default:'client'" json:"role"`
	Phone        string `gorm:"size:64" json:"phone,omitempty"`
	Company      string `gorm:"size:255" json:"company,omitempty"`
	Active       bool   `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserSetting holds a per-user JSON preferences blob.
type UserSetting struct {
	SettingID   uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint64         `gorm:"uniqueIndex;not null" json:"userId"`
	Preferences datatypes.JSON `gorm:"type:json" json:"preferences"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for UserSetting
func (UserSetting) TableName() string {
	return "user_settings"
}
