package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dtroode/sessiongate/internal/mocks"
	"github.com/dtroode/sessiongate/internal/model"
	"github.com/dtroode/sessiongate/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type authDeps struct {
	users    *mocks.UserStore
	sessions *mocks.SessionStore
	hasher   *mocks.PasswordHasher
	tokens   *mocks.TokenCodec
	recorder *recorderStub
}

func newTestAuth(t *testing.T) (*Auth, authDeps) {
	t.Helper()

	d := authDeps{
		users:    mocks.NewUserStore(t),
		sessions: mocks.NewSessionStore(t),
		hasher:   mocks.NewPasswordHasher(t),
		tokens:   mocks.NewTokenCodec(t),
		recorder: &recorderStub{},
	}
	a := NewAuth(d.users, d.sessions, d.hasher, d.tokens, 8*time.Hour, d.recorder, testutil.MakeNoopLogger())
	return a, d
}

var alice = model.User{
	ID:           1,
	Username:     "alice",
	Name:         "Alice",
	Surname:      "Liddell",
	Email:        "alice@example.com",
	Phone:        "+100",
	PasswordHash: "$argon2id$stored",
	Active:       true,
}

func TestAuth_Login_Success(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, d := newTestAuth(t)

	issuedAt := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	claims := model.Claims{ID: "jti", Subject: "alice", IssuedAt: issuedAt, ExpiresAt: issuedAt.Add(8 * time.Hour)}

	d.users.On("GetByUsername", mock.Anything, "alice").Return(alice, nil)
	d.hasher.On("Verify", mock.Anything, "wonderland", alice.PasswordHash).Return(true, nil)
	d.hasher.On("NeedsRehash", alice.PasswordHash).Return(false, nil)
	d.tokens.On("Issue", "alice", 8*time.Hour).Return("token-1", claims, nil)
	d.sessions.On("Upsert", mock.Anything, model.SessionRecord{
		Subject:   "alice",
		Token:     "token-1",
		CreatedAt: claims.IssuedAt,
		ExpiresAt: claims.ExpiresAt,
	}).Return(nil)

	res, err := a.Login(ctx, model.Credentials{Username: "alice", Password: "wonderland"})
	require.NoError(t, err)
	assert.Equal(t, "token-1", res.Token)
	assert.Equal(t, claims.ExpiresAt, res.ExpiresAt)
	assert.Equal(t, alice.Profile(), res.Profile)
	assert.Equal(t, []string{loginSuccess}, d.recorder.logins)
}

func TestAuth_Login_UnknownUserRunsDummyVerify(t *testing.T) {
	t.Parallel()

	a, d := newTestAuth(t)

	d.users.On("GetByUsername", mock.Anything, "ghost").Return(model.User{}, model.ErrNotFound)
	d.hasher.On("VerifyDummy", mock.Anything, "whatever").Return().Once()

	_, err := a.Login(context.Background(), model.Credentials{Username: "ghost", Password: "whatever"})
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	assert.Equal(t, []string{loginInvalidCredentials}, d.recorder.logins)
}

func TestAuth_Login_WrongPassword(t *testing.T) {
	t.Parallel()

	a, d := newTestAuth(t)

	d.users.On("GetByUsername", mock.Anything, "alice").Return(alice, nil)
	d.hasher.On("Verify", mock.Anything, "nope", alice.PasswordHash).Return(false, nil)

	_, err := a.Login(context.Background(), model.Credentials{Username: "alice", Password: "nope"})
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	d.tokens.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
	d.sessions.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestAuth_Login_UnknownUserAndWrongPasswordLookTheSame(t *testing.T) {
	t.Parallel()

	a1, d1 := newTestAuth(t)
	d1.users.On("GetByUsername", mock.Anything, "ghost").Return(model.User{}, model.ErrNotFound)
	d1.hasher.On("VerifyDummy", mock.Anything, "pw").Return()
	_, errUnknown := a1.Login(context.Background(), model.Credentials{Username: "ghost", Password: "pw"})

	a2, d2 := newTestAuth(t)
	d2.users.On("GetByUsername", mock.Anything, "alice").Return(alice, nil)
	d2.hasher.On("Verify", mock.Anything, "pw", alice.PasswordHash).Return(false, nil)
	_, errWrong := a2.Login(context.Background(), model.Credentials{Username: "alice", Password: "pw"})

	require.Error(t, errUnknown)
	assert.Equal(t, errUnknown, errWrong)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestAuth_Login_MalformedStoredHash(t *testing.T) {
	t.Parallel()

	a, d := newTestAuth(t)

	d.users.On("GetByUsername", mock.Anything, "alice").Return(alice, nil)
	d.hasher.On("Verify", mock.Anything, "pw", alice.PasswordHash).Return(false, model.ErrHashMalformed)

	_, err := a.Login(context.Background(), model.Credentials{Username: "alice", Password: "pw"})
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestAuth_Login_InternalFailures(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	claims := model.Claims{Subject: "alice", IssuedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour)}

	tests := []struct {
		name  string
		setup func(d authDeps)
	}{
		{
			name: "user store failure",
			setup: func(d authDeps) {
				d.users.On("GetByUsername", mock.Anything, "alice").Return(model.User{}, boom)
			},
		},
		{
			name: "hasher failure",
			setup: func(d authDeps) {
				d.users.On("GetByUsername", mock.Anything, "alice").Return(alice, nil)
				d.hasher.On("Verify", mock.Anything, "pw", alice.PasswordHash).Return(false, model.ErrInternal)
			},
		},
		{
			name: "token failure",
			setup: func(d authDeps) {
				d.users.On("GetByUsername", mock.Anything, "alice").Return(alice, nil)
				d.hasher.On("Verify", mock.Anything, "pw", alice.PasswordHash).Return(true, nil)
				d.hasher.On("NeedsRehash", alice.PasswordHash).Return(false, nil)
				d.tokens.On("Issue", "alice", 8*time.Hour).Return("", model.Claims{}, boom)
			},
		},
		{
			name: "session store failure",
			setup: func(d authDeps) {
				d.users.On("GetByUsername", mock.Anything, "alice").Return(alice, nil)
				d.hasher.On("Verify", mock.Anything, "pw", alice.PasswordHash).Return(true, nil)
				d.hasher.On("NeedsRehash", alice.PasswordHash).Return(false, nil)
				d.tokens.On("Issue", "alice", 8*time.Hour).Return("token", claims, nil)
				d.sessions.On("Upsert", mock.Anything, mock.Anything).Return(boom)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, d := newTestAuth(t)
			tt.setup(d)

			_, err := a.Login(context.Background(), model.Credentials{Username: "alice", Password: "pw"})
			require.Error(t, err)
			assert.NotErrorIs(t, err, model.ErrInvalidCredentials)
			assert.Equal(t, []string{loginError}, d.recorder.logins)
		})
	}
}

func TestAuth_Login_RehashesWeakHash(t *testing.T) {
	t.Parallel()

	a, d := newTestAuth(t)
	claims := model.Claims{Subject: "alice", IssuedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour)}

	d.users.On("GetByUsername", mock.Anything, "alice").Return(alice, nil)
	d.hasher.On("Verify", mock.Anything, "pw", alice.PasswordHash).Return(true, nil)
	d.hasher.On("NeedsRehash", alice.PasswordHash).Return(true, nil)
	d.hasher.On("Hash", mock.Anything, "pw").Return("$argon2id$stronger", nil)
	d.users.On("UpdatePassword", mock.Anything, int64(1), "$argon2id$stronger", "alice").Return(nil)
	d.tokens.On("Issue", "alice", 8*time.Hour).Return("token", claims, nil)
	d.sessions.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	_, err := a.Login(context.Background(), model.Credentials{Username: "alice", Password: "pw"})
	require.NoError(t, err)
}

func TestAuth_Login_RehashFailureDoesNotFailLogin(t *testing.T) {
	t.Parallel()

	a, d := newTestAuth(t)
	claims := model.Claims{Subject: "alice", IssuedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour)}

	d.users.On("GetByUsername", mock.Anything, "alice").Return(alice, nil)
	d.hasher.On("Verify", mock.Anything, "pw", alice.PasswordHash).Return(true, nil)
	d.hasher.On("NeedsRehash", alice.PasswordHash).Return(true, nil)
	d.hasher.On("Hash", mock.Anything, "pw").Return("$argon2id$stronger", nil)
	d.users.On("UpdatePassword", mock.Anything, int64(1), "$argon2id$stronger", "alice").Return(errors.New("read only"))
	d.tokens.On("Issue", "alice", 8*time.Hour).Return("token", claims, nil)
	d.sessions.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	res, err := a.Login(context.Background(), model.Credentials{Username: "alice", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "token", res.Token)
}

func TestAuth_Profile(t *testing.T) {
	t.Parallel()

	a, d := newTestAuth(t)

	d.users.On("GetByUsername", mock.Anything, "alice").Return(alice, nil)
	d.users.On("GetByUsername", mock.Anything, "ghost").Return(model.User{}, model.ErrNotFound)

	p, err := a.Profile(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.Profile(), p)

	_, err = a.Profile(context.Background(), "ghost")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestAuth_ChangePassword(t *testing.T) {
	t.Parallel()

	t.Run("success drops the session", func(t *testing.T) {
		a, d := newTestAuth(t)
		d.users.On("GetByUsername", mock.Anything, "alice").Return(alice, nil)
		d.hasher.On("Verify", mock.Anything, "old", alice.PasswordHash).Return(true, nil)
		d.hasher.On("Hash", mock.Anything, "new").Return("$argon2id$new", nil)
		d.users.On("UpdatePassword", mock.Anything, int64(1), "$argon2id$new", "alice").Return(nil)
		d.sessions.On("Delete", mock.Anything, "alice").Return(nil)

		require.NoError(t, a.ChangePassword(context.Background(), "alice", "old", "new"))
	})

	t.Run("wrong current password", func(t *testing.T) {
		a, d := newTestAuth(t)
		d.users.On("GetByUsername", mock.Anything, "alice").Return(alice, nil)
		d.hasher.On("Verify", mock.Anything, "bad", alice.PasswordHash).Return(false, nil)

		err := a.ChangePassword(context.Background(), "alice", "bad", "new")
		assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	})

	t.Run("empty new password", func(t *testing.T) {
		a, _ := newTestAuth(t)

		err := a.ChangePassword(context.Background(), "alice", "old", "")
		assert.ErrorIs(t, err, model.ErrBadRequest)
	})

	t.Run("update failure", func(t *testing.T) {
		a, d := newTestAuth(t)
		d.users.On("GetByUsername", mock.Anything, "alice").Return(alice, nil)
		d.hasher.On("Verify", mock.Anything, "old", alice.PasswordHash).Return(true, nil)
		d.hasher.On("Hash", mock.Anything, "new").Return("$argon2id$new", nil)
		d.users.On("UpdatePassword", mock.Anything, int64(1), "$argon2id$new", "alice").Return(errors.New("boom"))

		err := a.ChangePassword(context.Background(), "alice", "old", "new")
		require.Error(t, err)
		d.sessions.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestAuth_Logout(t *testing.T) {
	t.Parallel()

	a, d := newTestAuth(t)
	d.sessions.On("Delete", mock.Anything, "alice").Return(nil).Once()
	d.sessions.On("Delete", mock.Anything, "bob").Return(errors.New("boom")).Once()

	require.NoError(t, a.Logout(context.Background(), "alice"))
	assert.Error(t, a.Logout(context.Background(), "bob"))
}

func TestAuth_EnsureAdmin(t *testing.T) {
	t.Parallel()

	t.Run("no password configured", func(t *testing.T) {
		a, _ := newTestAuth(t)

		created, err := a.EnsureAdmin(context.Background(), model.AdminSeed{Username: "admin"})
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("creates admin", func(t *testing.T) {
		a, d := newTestAuth(t)
		d.hasher.On("Hash", mock.Anything, "admin#01").Return("$argon2id$admin", nil)
		d.users.On("CreateIfMissing", mock.Anything, mock.MatchedBy(func(u model.User) bool {
			return u.Username == "admin" &&
				u.PasswordHash == "$argon2id$admin" &&
				u.Name == "Admin" &&
				u.Surname == "Admin" &&
				u.CreatedBy == "admin"
		})).Return(true, nil)

		created, err := a.EnsureAdmin(context.Background(), model.AdminSeed{Username: "admin", Password: "admin#01"})
		require.NoError(t, err)
		assert.True(t, created)
	})

	t.Run("already present", func(t *testing.T) {
		a, d := newTestAuth(t)
		d.hasher.On("Hash", mock.Anything, "admin#01").Return("$argon2id$admin", nil)
		d.users.On("CreateIfMissing", mock.Anything, mock.Anything).Return(false, nil)

		created, err := a.EnsureAdmin(context.Background(), model.AdminSeed{Username: "admin", Password: "admin#01"})
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("hash failure", func(t *testing.T) {
		a, d := newTestAuth(t)
		d.hasher.On("Hash", mock.Anything, "admin#01").Return("", model.ErrHashingFailed)

		_, err := a.EnsureAdmin(context.Background(), model.AdminSeed{Username: "admin", Password: "admin#01"})
		assert.ErrorIs(t, err, model.ErrHashingFailed)
	})
}
