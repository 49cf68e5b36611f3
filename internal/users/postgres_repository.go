package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type db interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores users in the relational database.
type PostgresRepository struct {
	db db
}

// NewPostgresRepository initializes a repo backed by a pgx pool (or mock).
func NewPostgresRepository(db db) *PostgresRepository {
	if db == nil {
		panic("users: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, user *User) (*User, error) {
	id := uuid.New()
	role := user.Role
	if role == "" {
		role = RolePatient
	}

	query := `
		INSERT INTO users (id, username, email, password_hash, phone, verified, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Phone,
		user.Verified,
		role,
	).Scan(&createdAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("users: insert failed: %w", err)
	}

	return &User{
		ID:           id.String(),
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Phone:        user.Phone,
		Verified:     user.Verified,
		Role:         role,
		CreatedAt:    createdAt,
	}, nil
}

const selectUser = `
	SELECT id, username, email, password_hash, phone, verified, role, created_at
	FROM users
`

// GetByID fetches a user by primary key.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.scanOne(r.db.QueryRow(ctx, selectUser+`WHERE id = $1`, id))
}

// GetByLogin fetches a user by username or email.
func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (*User, error) {
	return r.scanOne(r.db.QueryRow(ctx, selectUser+`WHERE username = $1 OR lower(email) = lower($1)`, login))
}

// GetByEmail fetches a user by email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.scanOne(r.db.QueryRow(ctx, selectUser+`WHERE lower(email) = lower($1)`, email))
}

// MarkVerified flips the verified flag for this email.
func (r *PostgresRepository) MarkVerified(ctx context.Context, email string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET verified = TRUE WHERE lower(email) = lower($1)`, email)
	if err != nil {
		return fmt.Errorf("users: mark verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PostgresRepository) scanOne(row pgx.Row) (*User, error) {
	var user User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Phone,
		&user.Verified,
		&user.Role,
		&user.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("users: select failed: %w", err)
	}
	return &user, nil
}
