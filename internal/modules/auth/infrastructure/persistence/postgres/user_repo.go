package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/maeumssi/maeumssi/internal/modules/auth/domain"
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation pq.ErrorCode = "23505"

const (
	userColumns = `id, email, password_hash, nickname, role, is_guest, avatar_url, created_at, updated_at`

	insertUser = `
		INSERT INTO users (` + userColumns + `)
		VALUES (:id, :email, :password_hash, :nickname, :role, :is_guest, :avatar_url, :created_at, :updated_at)`

	selectUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	selectUserByID    = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	deleteStaleGuests = `DELETE FROM users WHERE is_guest AND created_at < $1`
)

type PgUserRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ domain.UserRepository = (*PgUserRepository)(nil)

func NewUserRepository(db *sqlx.DB) *PgUserRepository {
	return &PgUserRepository{db: db, now: time.Now}
}

// Create fills zero timestamps before inserting.
func (r *PgUserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.now()
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}

	if _, err := r.db.NamedExecContext(ctx, insertUser, user); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrUserAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.get(ctx, selectUserByEmail, email)
}

func (r *PgUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.get(ctx, selectUserByID, id)
}

func (r *PgUserRepository) get(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &user, nil
}

func (r *PgUserRepository) DeleteGuestsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteStaleGuests, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stale guests: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete stale guests: %w", err)
	}
	return n, nil
}
