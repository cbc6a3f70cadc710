package domain

import (
	"errors"
	"time"
)

const (
	RoleEmperor  = "emperor"
	RoleDuke     = "duke"
	RoleKnight   = "knight"
	RoleCivilian = "civilian"
)

// RolePrecedence orders roles from highest to lowest privilege. When a user
// holds several roles, the highest present governs their send quota.
var RolePrecedence = []string{RoleEmperor, RoleDuke, RoleKnight, RoleCivilian}

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrUnauthorized = errors.New("missing authentication")

// User models an authenticated actor in the system.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasRole reports whether the user holds the named role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
