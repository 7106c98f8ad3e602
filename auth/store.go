package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/augmentations-api/apperror"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const pgUniqueViolation = "23505"

// UserStore abstracts user persistence so the service can be exercised
// against fakes in tests.
type UserStore interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	GetUserByUserName(ctx context.Context, userName string) (*User, error)
}

// PostgresUserStore implements UserStore on a pgx connection pool.
type PostgresUserStore struct {
	pool *pgxpool.Pool
}

// NewPostgresUserStore creates a PostgresUserStore.
func NewPostgresUserStore(pool *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{pool: pool}
}

// CreateUser inserts the user and returns it with ID and CreatedAt
// populated. A duplicate username maps to a ConflictError.
func (s *PostgresUserStore) CreateUser(ctx context.Context, user *User) (*User, error) {
	query := `INSERT INTO users (username, password, role)
	          VALUES ($1, $2, $3)
	          RETURNING id, created_at`
	err := s.pool.QueryRow(ctx, query, user.UserName, user.HashedPassword, user.Role).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperror.NewConflictError("username already exists", nil)
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}
	return user, nil
}

// GetUserByUserName fetches a user by username. A missing user maps to
// a NotFoundError.
func (s *PostgresUserStore) GetUserByUserName(ctx context.Context, userName string) (*User, error) {
	var user User
	query := `SELECT id, username, password, role, created_at FROM users WHERE username = $1`
	err := s.pool.QueryRow(ctx, query, userName).
		Scan(&user.ID, &user.UserName, &user.HashedPassword, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}
	return &user, nil
}
