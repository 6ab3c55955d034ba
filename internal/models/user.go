package models

import (
	"strings"

	"gorm.io/gorm"
)

// User represents one person using the tracker.
type User struct {
	DefaultModel
	Username     string `gorm:"uniqueIndex"`
	PasswordHash string `json:"-"`
}

// BeforeSave trims whitespace from the username.
func (u *User) BeforeSave(_ *gorm.DB) error {
	u.Username = strings.TrimSpace(u.Username)

	return nil
}
