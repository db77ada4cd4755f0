package model

import (
	"errors"
	"fmt"
)

// ErrTokenInvalid is matched by every TokenError.
var ErrTokenInvalid = errors.New("token invalid")

// TokenInvalidReason classifies why a token failed verification.
type TokenInvalidReason string

const (
	// TokenMalformed means the token could not be decoded.
	TokenMalformed TokenInvalidReason = "malformed"
	// TokenBadSignature means the signature or signing method did not check out.
	TokenBadSignature TokenInvalidReason = "bad_signature"
	// TokenExpired means the token is past its expires_at.
	TokenExpired TokenInvalidReason = "expired"
)

// TokenError is returned by TokenCodec.Verify.
type TokenError struct {
	Reason TokenInvalidReason
	Err    error
}

// NewTokenError wraps err with the given reason.
func NewTokenError(reason TokenInvalidReason, err error) *TokenError {
	return &TokenError{Reason: reason, Err: err}
}

func (e *TokenError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("token invalid: %s", e.Reason)
	}
	return fmt.Sprintf("token invalid: %s: %v", e.Reason, e.Err)
}

func (e *TokenError) Unwrap() error { return e.Err }

// Is reports whether target is ErrTokenInvalid.
func (e *TokenError) Is(target error) bool { return target == ErrTokenInvalid }

// TokenReason extracts the TokenInvalidReason from err.
func TokenReason(err error) (TokenInvalidReason, bool) {
	var tokenErr *TokenError
	if errors.As(err, &tokenErr) {
		return tokenErr.Reason, true
	}
	return "", false
}
