package model

import "time"

// Claims identifies a subject and its validity window.
type Claims struct {
	ID        string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenCodec issues and verifies signed tokens.
type TokenCodec interface {
	Issue(subject string, ttl time.Duration) (string, Claims, error)
	Verify(token string) (Claims, error)
}
