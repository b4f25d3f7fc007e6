package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"gameblog/internal/dbx"
	"gameblog/internal/domain"
	"gameblog/internal/repository"
)

type UserRepository struct {
	db dbx.DBTX
}

func NewUserRepository(db dbx.DBTX) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	user.CreatedAt = time.Now().UTC()

	var id int64
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
INSERT INTO users (name, username, email, password, created_at)
VALUES (?, ?, ?, ?, ?)
RETURNING id`),
		user.Name,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("user %q: %w", user.Username, repository.ErrDuplicateKey)
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	user.ID = id
	return id, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := sqlx.GetContext(ctx, r.db, &user, r.db.Rebind(`
SELECT id, name, username, email, password, created_at
FROM users
WHERE username = ?`),
		username,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", username, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &user, nil
}
