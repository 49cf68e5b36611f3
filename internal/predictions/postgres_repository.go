package predictions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type db interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository stores predictions in the relational database.
type PostgresRepository struct {
	db db
}

// NewPostgresRepository initializes a repo backed by a pgx pool (or mock).
func NewPostgresRepository(db db) *PostgresRepository {
	if db == nil {
		panic("predictions: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// Create inserts a new row. user_id may be empty for anonymous predictions.
func (r *PostgresRepository) Create(ctx context.Context, p *Prediction) (*Prediction, error) {
	id := uuid.New()
	query := `
		INSERT INTO predictions (id, user_id, image_ref, label, probability)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id,
		p.UserID,
		p.ImageRef,
		p.Label,
		p.Probability,
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("predictions: insert failed: %w", err)
	}

	return &Prediction{
		ID:          id.String(),
		UserID:      p.UserID,
		ImageRef:    p.ImageRef,
		Label:       p.Label,
		Probability: p.Probability,
		CreatedAt:   createdAt,
	}, nil
}

const selectPrediction = `
	SELECT id, COALESCE(user_id::text, ''), image_ref, label, probability, created_at
	FROM predictions
`

// ListByUser returns the user's most recent predictions.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*Prediction, error) {
	rows, err := r.db.Query(ctx, selectPrediction+`WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("predictions: select failed: %w", err)
	}
	return scanAll(rows)
}

// ListRecent returns the most recent predictions across all users.
func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]*Prediction, error) {
	rows, err := r.db.Query(ctx, selectPrediction+`ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("predictions: select failed: %w", err)
	}
	return scanAll(rows)
}

func scanAll(rows pgx.Rows) ([]*Prediction, error) {
	defer rows.Close()

	var out []*Prediction
	for rows.Next() {
		var p Prediction
		if err := rows.Scan(&p.ID, &p.UserID, &p.ImageRef, &p.Label, &p.Probability, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("predictions: scan failed: %w", err)
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("predictions: rows: %w", err)
	}
	return out, nil
}
