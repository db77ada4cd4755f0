package model

import "errors"

var (
	// ErrNotFound is returned by stores when the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConfigInvalid is returned when a hashing policy or token codec is built from invalid settings.
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrHashingFailed is returned when a password hash could not be produced.
	ErrHashingFailed = errors.New("password hashing failed")

	// ErrHashMalformed is returned when a stored password hash cannot be parsed.
	ErrHashMalformed = errors.New("malformed password hash")

	// ErrInternal marks failures that must surface as a generic internal error.
	ErrInternal = errors.New("internal error")

	// ErrInvalidCredentials covers both unknown usernames and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrMissingAuthorization is returned when a request carries no Authorization header.
	ErrMissingAuthorization = errors.New("missing authorization header")

	// ErrInvalidAuthorization is returned when the Authorization header is not a non-empty bearer token.
	ErrInvalidAuthorization = errors.New("invalid authorization header")

	// ErrSessionNotFound is returned when no active session matches the presented token.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when the matching session is past its expiry.
	ErrSessionExpired = errors.New("session expired")

	// ErrBadRequest is returned for requests that fail input validation.
	ErrBadRequest = errors.New("bad request")
)
