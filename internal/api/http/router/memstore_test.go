package router

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/dtroode/sessiongate/internal/model"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newMemUsers(users ...model.User) *memUsers {
	m := &memUsers{users: make(map[string]model.User)}
	for _, u := range users {
		m.users[u.Username] = u
	}
	return m
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id int64, hash, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, u := range m.users {
		if u.ID == id {
			u.PasswordHash = hash
			m.users[name] = u
			return nil
		}
	}
	return model.ErrNotFound
}

func (m *memUsers) CreateIfMissing(_ context.Context, user model.User) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Username]; ok {
		return false, nil
	}
	user.ID = int64(len(m.users) + 1)
	m.users[user.Username] = user
	return true, nil
}

type memSessions struct {
	mu       sync.Mutex
	sessions map[string]model.SessionRecord
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: make(map[string]model.SessionRecord)}
}

func (m *memSessions) Upsert(_ context.Context, rec model.SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[rec.Subject] = rec
	return nil
}

func (m *memSessions) Validate(_ context.Context, subject, token string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.sessions[subject]
	if !ok || subtle.ConstantTimeCompare([]byte(rec.Token), []byte(token)) != 1 {
		return model.ErrSessionNotFound
	}
	if !rec.ExpiresAt.After(now) {
		return model.ErrSessionExpired
	}
	return nil
}

func (m *memSessions) Lookup(ctx context.Context, subject, token string) (bool, error) {
	err := m.Validate(ctx, subject, token, time.Now())
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (m *memSessions) Delete(_ context.Context, subject string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, subject)
	return nil
}

func (m *memSessions) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for subject, rec := range m.sessions {
		if !rec.ExpiresAt.After(now) {
			delete(m.sessions, subject)
			n++
		}
	}
	return n, nil
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func modelSeed(username, pw string) model.AdminSeed {
	return model.AdminSeed{Username: username, Password: pw, Email: username + "@example.com"}
}
