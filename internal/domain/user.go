package domain

import (
	"context"
	"time"
)

// Role classifies what a user may do. Form authoring requires a non-USER role.
type Role string

const (
	RoleUser   Role = "USER"
	RoleDoctor Role = "DOCTOR"
	RoleAdmin  Role = "ADMIN"
)

// CanAuthorForms reports whether the role may create form definitions.
func (r Role) CanAuthorForms() bool {
	return r != RoleUser && r != ""
}

// User represents a domain user object
type User struct {
	ID           string
	Email        string
	UserName     string
	Appellation  string
	PasswordHash string
	Role         Role
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate validates the user
func (u *User) Validate() error {
	if u.Email == "" {
		return NewValidationError("email is required")
	}
	if u.UserName == "" {
		return NewValidationError("userName is required")
	}
	if u.PasswordHash == "" {
		return NewValidationError("password is required")
	}
	return nil
}

// UserRepository defines the interface for user data persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, userID string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}
