package appointments

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

// PostgresRepository stores appointments in the relational database.
type PostgresRepository struct {
	db db
}

// NewPostgresRepository initializes a repo backed by a pgx pool (or mock).
func NewPostgresRepository(db db) *PostgresRepository {
	if db == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// Create inserts a new row, hospital reference included when already known.
func (r *PostgresRepository) Create(ctx context.Context, appt *Appointment) (*Appointment, error) {
	id := uuid.New()
	status := appt.Status
	if status == "" {
		status = StatusBooked
	}

	query := `
		INSERT INTO appointments (id, user_id, patient_name, phone, language, datetime, status, hospital_reference)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, NULLIF($8, ''))
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id,
		appt.UserID,
		appt.PatientName,
		appt.Phone,
		appt.Language,
		appt.Datetime,
		status,
		appt.HospitalReference,
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("appointments: insert failed: %w", err)
	}

	out := *appt
	out.ID = id.String()
	out.Status = status
	out.CreatedAt = createdAt
	return &out, nil
}

const selectAppointment = `
	SELECT id, COALESCE(user_id::text, ''), patient_name, phone, language, datetime, status, COALESCE(hospital_reference, ''), created_at
	FROM appointments
`

// ListByUser returns the user's most recent appointments.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*Appointment, error) {
	rows, err := r.db.Query(ctx, selectAppointment+`WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("appointments: select failed: %w", err)
	}
	return scanAll(rows)
}

// ListRecent returns the most recent appointments across all users.
func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]*Appointment, error) {
	rows, err := r.db.Query(ctx, selectAppointment+`ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("appointments: select failed: %w", err)
	}
	return scanAll(rows)
}

func scanAll(rows pgx.Rows) ([]*Appointment, error) {
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.PatientName,
			&a.Phone,
			&a.Language,
			&a.Datetime,
			&a.Status,
			&a.HospitalReference,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("appointments: scan failed: %w", err)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: rows: %w", err)
	}
	return out, nil
}
