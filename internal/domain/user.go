package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	IsAdmin      bool       `json:"isAdmin"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// HasPassword reports whether the account can authenticate with a password.
// Accounts migrated from the old anonymous flow have no hash stored.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
