package model

import "context"

// PasswordHasher produces and checks stored password hashes.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, encoded string) (bool, error)
	NeedsRehash(encoded string) (bool, error)
	VerifyDummy(ctx context.Context, password string)
}
