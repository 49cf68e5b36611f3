package predictions

import "time"

// Prediction is an immutable record of one classification call. It is
// persisted regardless of whether a booking workflow follows, so a failed
// booking never invalidates the stored result.
type Prediction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id,omitempty"`
	ImageRef    string    `json:"image_ref"`
	Label       string    `json:"label"`
	Probability float64   `json:"probability"`
	CreatedAt   time.Time `json:"created_at"`
}
