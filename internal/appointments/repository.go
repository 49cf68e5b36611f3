package appointments

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrAppointmentNotFound is returned when an appointment lookup finds nothing.
var ErrAppointmentNotFound = errors.New("appointment not found")

// Repository defines the interface for appointment storage
type Repository interface {
	Create(ctx context.Context, appt *Appointment) (*Appointment, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*Appointment, error)
	ListRecent(ctx context.Context, limit int) ([]*Appointment, error)
}

// InMemoryRepository is a stub implementation of Repository using in-memory storage
type InMemoryRepository struct {
	mu   sync.RWMutex
	rows map[string]*Appointment
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{rows: make(map[string]*Appointment)}
}

// Create stores an appointment row, hospital reference included when present.
func (r *InMemoryRepository) Create(ctx context.Context, appt *Appointment) (*Appointment, error) {
	stored := *appt
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Status == "" {
		stored.Status = StatusBooked
	}
	stored.CreatedAt = time.Now().UTC()

	r.mu.Lock()
	r.rows[stored.ID] = &stored
	r.mu.Unlock()

	out := stored
	return &out, nil
}

// ListByUser returns the user's most recent appointments.
func (r *InMemoryRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Appointment
	for _, a := range r.rows {
		if a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sortNewestFirst(out)
	return clamp(out, limit), nil
}

// ListRecent returns the most recent appointments across all users.
func (r *InMemoryRepository) ListRecent(ctx context.Context, limit int) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Appointment, 0, len(r.rows))
	for _, a := range r.rows {
		cp := *a
		out = append(out, &cp)
	}
	sortNewestFirst(out)
	return clamp(out, limit), nil
}

func sortNewestFirst(rows []*Appointment) {
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
}

func clamp(rows []*Appointment, limit int) []*Appointment {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
