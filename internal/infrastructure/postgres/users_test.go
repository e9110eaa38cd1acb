package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lumichat/otp-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.values[i].(string)
		case *time.Time:
			*p = r.values[i].(time.Time)
		}
	}
	return nil
}

type fakeQuerier struct {
	row  fakeRow
	sql  string
	args []any
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.sql = sql
	q.args = args
	return q.row
}

// --- tests ---

func TestUserRepo_GetByEmail_NotFound(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{err: pgx.ErrNoRows}}

	_, err := NewUserRepo(q).GetByEmail(context.Background(), "a@b.com")

	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, []any{"a@b.com"}, q.args)
}

func TestUserRepo_GetByEmail_Found(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	q := &fakeQuerier{row: fakeRow{values: []any{"u1", "Alice", "a@b.com", "pw", created}}}

	u, err := NewUserRepo(q).GetByEmail(context.Background(), "a@b.com")

	require.NoError(t, err)
	assert.Equal(t, &domain.User{UserID: "u1", Name: "Alice", Email: "a@b.com", Password: "pw", CreatedAt: created}, u)
}

func TestUserRepo_Create_ConflictWhenNothingInserted(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{err: pgx.ErrNoRows}}

	err := NewUserRepo(q).Create(context.Background(), &domain.User{UserID: "u1", Email: "a@b.com"})

	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Contains(t, q.sql, "ON CONFLICT (email) DO NOTHING")
}

func TestUserRepo_Create_Inserted(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{values: []any{"u1"}}}

	err := NewUserRepo(q).Create(context.Background(), &domain.User{UserID: "u1", Name: "Alice", Email: "a@b.com", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, "u1", q.args[0])
	assert.Equal(t, "a@b.com", q.args[2])
}

func TestUserRepo_Create_OtherError(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{err: errors.New("connection refused")}}

	err := NewUserRepo(q).Create(context.Background(), &domain.User{Email: "a@b.com"})

	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrConflict))
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@localhost:5432/db", migrateURL("postgres://u:p@localhost:5432/db"))
	assert.Equal(t, "pgx5://localhost/db", migrateURL("postgresql://localhost/db"))
	assert.Equal(t, "pgx5://localhost/db", migrateURL("pgx5://localhost/db"))
}
