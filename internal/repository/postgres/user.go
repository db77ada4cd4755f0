package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/sessiongate/internal/model"
	"github.com/jackc/pgx/v5"
)

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	db  DBTX
	now func() time.Time
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{
		db:  db,
		now: time.Now,
	}
}

// GetByUsername returns the active user with the given username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (model.User, error) {
	var user model.User
	query := `SELECT id, username, name, surname, COALESCE(phone, ''), COALESCE(email, ''), pwd,
			  create_date, created_by, write_date, update_by, active
			  FROM users WHERE username = $1 AND active`

	err := r.db.QueryRow(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.Name, &user.Surname, &user.Phone, &user.Email, &user.PasswordHash,
		&user.CreatedAt, &user.CreatedBy, &user.UpdatedAt, &user.UpdatedBy, &user.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by username: %w", err)
	}

	return user, nil
}

// UpdatePassword replaces the stored hash of user id.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash, updatedBy string) error {
	query := `UPDATE users SET pwd = $2, write_date = $3, update_by = $4 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, passwordHash, r.now().UTC(), updatedBy)
	if err != nil {
		return fmt.Errorf("failed to update user password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

// CreateIfMissing inserts user unless the username is taken. It reports whether a row was inserted.
func (r *UserRepository) CreateIfMissing(ctx context.Context, user model.User) (bool, error) {
	query := `INSERT INTO users (username, name, surname, phone, email, pwd, created_by)
			  VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7)
			  ON CONFLICT (username) DO NOTHING`

	tag, err := r.db.Exec(ctx, query,
		user.Username, user.Name, user.Surname, user.Phone, user.Email, user.PasswordHash, user.CreatedBy,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create user: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}
