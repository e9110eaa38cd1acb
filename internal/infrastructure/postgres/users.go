package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lumichat/otp-api/internal/domain"
)

const selectUserByEmailQuery = `SELECT id, name, email, password, created_at FROM users WHERE email = $1;`

// insertUserQuery returns no row when the email is already taken.
const insertUserQuery = `INSERT INTO users (id, name, email, password, created_at)
    VALUES ($1, $2, $3, $4, $5)
    ON CONFLICT (email) DO NOTHING
    RETURNING id;`

// querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepo stores users in the users table.
type UserRepo struct {
	db querier
}

func NewUserRepo(db querier) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx, selectUserByEmailQuery, email).
		Scan(&u.UserID, &u.Name, &u.Email, &u.Password, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts u. A taken email yields domain.ErrConflict.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	var id string
	err := r.db.QueryRow(ctx, insertUserQuery, u.UserID, u.Name, u.Email, u.Password, u.CreatedAt).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("email %s: %w", u.Email, domain.ErrConflict)
	}
	return err
}
