package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/sessiongate/internal/logger"
	"github.com/dtroode/sessiongate/internal/model"
)

// Auth runs logins and the account operations of an authenticated subject.
type Auth struct {
	userStore    model.UserStore
	sessionStore model.SessionStore
	hasher       model.PasswordHasher
	tokens       model.TokenCodec
	tokenTTL     time.Duration
	recorder     Recorder
	logger       *logger.Logger
}

func NewAuth(
	userStore model.UserStore,
	sessionStore model.SessionStore,
	hasher model.PasswordHasher,
	tokens model.TokenCodec,
	tokenTTL time.Duration,
	recorder Recorder,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore:    userStore,
		sessionStore: sessionStore,
		hasher:       hasher,
		tokens:       tokens,
		tokenTTL:     tokenTTL,
		recorder:     orNoop(recorder),
		logger:       logger,
	}
}

// Login checks credentials and registers a fresh session, replacing any previous one
// of the same user. Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (a *Auth) Login(ctx context.Context, creds model.Credentials) (model.LoginResult, error) {
	a.logger.Debug("Auth service: starting login",
		"username", creds.Username)

	user, err := a.userStore.GetByUsername(ctx, creds.Username)
	if errors.Is(err, model.ErrNotFound) {
		a.hasher.VerifyDummy(ctx, creds.Password)
		a.logger.Info("Auth service: login rejected",
			"username", creds.Username,
			"reason", "unknown_user")
		a.recorder.LoginOutcome(loginInvalidCredentials)
		return model.LoginResult{}, model.ErrInvalidCredentials
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user by username",
			"username", creds.Username,
			"error", err.Error())
		a.recorder.LoginOutcome(loginError)
		return model.LoginResult{}, fmt.Errorf("failed to get user by username: %w", err)
	}

	ok, err := a.hasher.Verify(ctx, creds.Password, user.PasswordHash)
	if errors.Is(err, model.ErrHashMalformed) {
		a.logger.Error("Auth service: stored password hash is malformed",
			"username", creds.Username,
			"error", err.Error())
		a.recorder.LoginOutcome(loginInvalidCredentials)
		return model.LoginResult{}, model.ErrInvalidCredentials
	}
	if err != nil {
		a.logger.Error("Auth service: failed to verify password",
			"username", creds.Username,
			"error", err.Error())
		a.recorder.LoginOutcome(loginError)
		return model.LoginResult{}, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		a.logger.Info("Auth service: login rejected",
			"username", creds.Username,
			"reason", "wrong_password")
		a.recorder.LoginOutcome(loginInvalidCredentials)
		return model.LoginResult{}, model.ErrInvalidCredentials
	}

	a.upgradeHash(ctx, user, creds.Password)

	token, claims, err := a.tokens.Issue(user.Username, a.tokenTTL)
	if err != nil {
		a.logger.Error("Auth service: failed to issue token",
			"username", creds.Username,
			"error", err.Error())
		a.recorder.LoginOutcome(loginError)
		return model.LoginResult{}, fmt.Errorf("failed to issue token: %w", err)
	}

	err = a.sessionStore.Upsert(ctx, model.SessionRecord{
		Subject:   user.Username,
		Token:     token,
		CreatedAt: claims.IssuedAt,
		ExpiresAt: claims.ExpiresAt,
	})
	if err != nil {
		a.logger.Error("Auth service: failed to store session",
			"username", creds.Username,
			"error", err.Error())
		a.recorder.LoginOutcome(loginError)
		return model.LoginResult{}, fmt.Errorf("failed to store session: %w", err)
	}

	a.logger.Info("Auth service: login succeeded",
		"username", user.Username,
		"expires_at", claims.ExpiresAt)
	a.recorder.LoginOutcome(loginSuccess)

	return model.LoginResult{
		Token:     token,
		ExpiresAt: claims.ExpiresAt,
		Profile:   user.Profile(),
	}, nil
}

// upgradeHash re-hashes the password under the current policy when the stored
// hash is weaker. Failures are logged and never fail the login.
func (a *Auth) upgradeHash(ctx context.Context, user model.User, password string) {
	needs, err := a.hasher.NeedsRehash(user.PasswordHash)
	if err != nil || !needs {
		return
	}

	hash, err := a.hasher.Hash(ctx, password)
	if err != nil {
		a.logger.Warn("Auth service: failed to rehash password",
			"username", user.Username,
			"error", err.Error())
		return
	}

	if err := a.userStore.UpdatePassword(ctx, user.ID, hash, user.Username); err != nil {
		a.logger.Warn("Auth service: failed to store rehashed password",
			"username", user.Username,
			"error", err.Error())
		return
	}

	a.logger.Info("Auth service: password rehashed under current policy",
		"username", user.Username)
}

// Profile returns the public fields of subject.
func (a *Auth) Profile(ctx context.Context, subject string) (model.Profile, error) {
	user, err := a.userStore.GetByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Profile{}, model.ErrNotFound
		}
		a.logger.Error("Auth service: failed to get user by username",
			"username", subject,
			"error", err.Error())
		return model.Profile{}, fmt.Errorf("failed to get user by username: %w", err)
	}

	return user.Profile(), nil
}

// ChangePassword replaces the password of subject after checking the current one.
// The session of subject is dropped, so the caller has to log in again.
func (a *Auth) ChangePassword(ctx context.Context, subject, current, next string) error {
	if next == "" {
		return fmt.Errorf("%w: new password is empty", model.ErrBadRequest)
	}

	user, err := a.userStore.GetByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrNotFound
		}
		return fmt.Errorf("failed to get user by username: %w", err)
	}

	ok, err := a.hasher.Verify(ctx, current, user.PasswordHash)
	if errors.Is(err, model.ErrHashMalformed) || (err == nil && !ok) {
		a.logger.Info("Auth service: password change rejected",
			"username", subject)
		return model.ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}

	hash, err := a.hasher.Hash(ctx, next)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := a.userStore.UpdatePassword(ctx, user.ID, hash, subject); err != nil {
		a.logger.Error("Auth service: failed to update password",
			"username", subject,
			"error", err.Error())
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := a.sessionStore.Delete(ctx, subject); err != nil {
		a.logger.Error("Auth service: failed to drop session after password change",
			"username", subject,
			"error", err.Error())
		return fmt.Errorf("failed to delete session: %w", err)
	}

	a.logger.Info("Auth service: password changed",
		"username", subject)

	return nil
}

// Logout drops the session of subject.
func (a *Auth) Logout(ctx context.Context, subject string) error {
	if err := a.sessionStore.Delete(ctx, subject); err != nil {
		a.logger.Error("Auth service: failed to delete session",
			"username", subject,
			"error", err.Error())
		return fmt.Errorf("failed to delete session: %w", err)
	}

	a.logger.Info("Auth service: logged out",
		"username", subject)

	return nil
}

// EnsureAdmin creates the bootstrap account unless a user with that name exists.
// It reports whether the account was created. An empty password skips seeding.
func (a *Auth) EnsureAdmin(ctx context.Context, seed model.AdminSeed) (bool, error) {
	if seed.Password == "" {
		a.logger.Info("Auth service: no bootstrap password configured, skipping admin seed",
			"username", seed.Username)
		return false, nil
	}

	hash, err := a.hasher.Hash(ctx, seed.Password)
	if err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}

	name, surname := seed.Name, seed.Surname
	if name == "" {
		name = "Admin"
	}
	if surname == "" {
		surname = "Admin"
	}

	created, err := a.userStore.CreateIfMissing(ctx, model.User{
		Username:     seed.Username,
		Name:         name,
		Surname:      surname,
		Email:        seed.Email,
		Phone:        seed.Phone,
		PasswordHash: hash,
		CreatedBy:    seed.Username,
		Active:       true,
	})
	if err != nil {
		return false, fmt.Errorf("failed to seed admin: %w", err)
	}

	if created {
		a.logger.Info("Auth service: admin account created",
			"username", seed.Username)
	}

	return created, nil
}
