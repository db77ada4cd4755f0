package model

import (
	"context"
	"time"
)

// SessionStore persists at most one active token per subject.
type SessionStore interface {
	Upsert(ctx context.Context, record SessionRecord) error
	Validate(ctx context.Context, subject, token string, now time.Time) error
	Lookup(ctx context.Context, subject, token string) (bool, error)
	Delete(ctx context.Context, subject string) error
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// SessionRecord is the active session of a subject. A new login overwrites it.
type SessionRecord struct {
	Subject   string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Credentials is a login attempt.
type Credentials struct {
	Username string
	Password string
}

// LoginResult is handed back to a client after a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Profile   Profile
}
