package models

import (
	"time"
)

type UserRole string

const (
	RoleAdministrator UserRole = "administrator"
	RoleEditor        UserRole = "editor"
	RoleViewer        UserRole = "viewer"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdministrator, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// User is a row of the usuarios table.
type User struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Username  string    `json:"nome_usuario" gorm:"column:nome_usuario;uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"column:senha;not null"`
	Role      UserRole  `json:"role" gorm:"not null;default:'viewer'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "usuarios"
}

// Profile strips the password hash and timestamps.
func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}
