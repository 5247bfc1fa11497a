package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        string
	ClerkID   string
	Email     string
	CreatedAt time.Time
}

type Repository interface {
	GetByClerkID(ctx context.Context, clerkID string) (*User, error)
	Create(ctx context.Context, u *User) error
}

type repo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

func (r *repo) GetByClerkID(ctx context.Context, clerkID string) (*User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, clerk_id, email, created_at
         FROM admin_users WHERE clerk_id = $1`,
		clerkID,
	).Scan(&u.ID, &u.ClerkID, &u.Email, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select admin_user: %w", err)
	}
	return &u, nil
}

func (r *repo) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO admin_users (id, clerk_id, email, created_at)
         VALUES ($1, $2, $3, $4)
         ON CONFLICT (clerk_id) DO NOTHING`,
		u.ID, u.ClerkID, u.Email, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert admin_user: %w", err)
	}
	return nil
}
