package model

import (
	"context"
	"time"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash, updatedBy string) error
	CreateIfMissing(ctx context.Context, user User) (bool, error)
}

// User represents a stored user with its password hash.
type User struct {
	ID           int64
	Username     string
	Name         string
	Surname      string
	Email        string
	Phone        string
	PasswordHash string
	CreatedAt    time.Time
	CreatedBy    string
	UpdatedAt    *time.Time
	UpdatedBy    *string
	Active       bool
}

// Profile is the public part of a user. It never carries the password hash.
type Profile struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// Profile projects the user onto its public fields.
func (u User) Profile() Profile {
	return Profile{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Surname:  u.Surname,
		Email:    u.Email,
		Phone:    u.Phone,
	}
}

// AdminSeed describes the bootstrap account created at start-up.
type AdminSeed struct {
	Username string
	Password string
	Name     string
	Surname  string
	Email    string
	Phone    string
}
