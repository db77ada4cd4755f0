package postgres

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/sessiongate/internal/model"
	"github.com/jackc/pgx/v5"
)

var _ model.SessionStore = (*SessionRepository)(nil)

// SessionRepository keeps one row per subject in user_login.
// Timestamps are written and compared in UTC.
type SessionRepository struct {
	db  DBTX
	now func() time.Time
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db, now: time.Now}
}

// Upsert stores record as the subject's only session, replacing any previous one.
func (r *SessionRepository) Upsert(ctx context.Context, record model.SessionRecord) error {
	const query = `
        INSERT INTO user_login (username, token, created_datetime, expire_datetime)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (username) DO UPDATE
        SET token = EXCLUDED.token,
            created_datetime = EXCLUDED.created_datetime,
            expire_datetime = EXCLUDED.expire_datetime
    `

	if _, err := r.db.Exec(ctx, query,
		record.Subject,
		record.Token,
		record.CreatedAt.UTC(),
		record.ExpiresAt.UTC(),
	); err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}
	return nil
}

// Validate returns nil when token is the subject's current session and it is not expired at now.
func (r *SessionRepository) Validate(ctx context.Context, subject, token string, now time.Time) error {
	const query = `
        SELECT token, expire_datetime
        FROM user_login
        WHERE username = $1
    `

	var (
		stored    string
		expiresAt time.Time
	)
	if err := r.db.QueryRow(ctx, query, subject).Scan(&stored, &expiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrSessionNotFound
		}
		return fmt.Errorf("failed to get session: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(token)) != 1 {
		return model.ErrSessionNotFound
	}
	if !expiresAt.After(now.UTC()) {
		return model.ErrSessionExpired
	}
	return nil
}

// Lookup reports whether token is the subject's active session right now.
func (r *SessionRepository) Lookup(ctx context.Context, subject, token string) (bool, error) {
	err := r.Validate(ctx, subject, token, r.now())
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, model.ErrSessionNotFound), errors.Is(err, model.ErrSessionExpired):
		return false, nil
	default:
		return false, err
	}
}

func (r *SessionRepository) Delete(ctx context.Context, subject string) error {
	const query = `DELETE FROM user_login WHERE username = $1`

	if _, err := r.db.Exec(ctx, query, subject); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// PurgeExpired removes sessions that expired at or before now and returns how many were removed.
func (r *SessionRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM user_login WHERE expire_datetime <= $1`

	tag, err := r.db.Exec(ctx, query, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
