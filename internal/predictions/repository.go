package predictions

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrPredictionNotFound is returned when a prediction lookup finds nothing.
var ErrPredictionNotFound = errors.New("prediction not found")

// Repository defines the interface for prediction storage
type Repository interface {
	Create(ctx context.Context, p *Prediction) (*Prediction, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*Prediction, error)
	ListRecent(ctx context.Context, limit int) ([]*Prediction, error)
}

// InMemoryRepository is a stub implementation of Repository using in-memory storage
type InMemoryRepository struct {
	mu   sync.RWMutex
	rows map[string]*Prediction
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{rows: make(map[string]*Prediction)}
}

// Create stores a prediction row.
func (r *InMemoryRepository) Create(ctx context.Context, p *Prediction) (*Prediction, error) {
	stored := *p
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.CreatedAt = time.Now().UTC()

	r.mu.Lock()
	r.rows[stored.ID] = &stored
	r.mu.Unlock()

	out := stored
	return &out, nil
}

// ListByUser returns the user's most recent predictions.
func (r *InMemoryRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Prediction
	for _, p := range r.rows {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sortNewestFirst(out)
	return clamp(out, limit), nil
}

// ListRecent returns the most recent predictions across all users.
func (r *InMemoryRepository) ListRecent(ctx context.Context, limit int) ([]*Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Prediction, 0, len(r.rows))
	for _, p := range r.rows {
		cp := *p
		out = append(out, &cp)
	}
	sortNewestFirst(out)
	return clamp(out, limit), nil
}

func sortNewestFirst(rows []*Prediction) {
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
}

func clamp(rows []*Prediction, limit int) []*Prediction {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
