package appointments

import "time"

// StatusBooked is the workflow's "we intend to book" state. It is set at
// creation and is independent of whether the hospital later confirms.
const StatusBooked = "booked"

// Appointment is a booking record created when a classification crosses the
// risk threshold. HospitalReference stays empty when the hospital call fails
// or returns no reference; that is a valid terminal state, not an error.
type Appointment struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id,omitempty"`
	PatientName       string    `json:"patient_name"`
	Phone             string    `json:"phone"`
	Language          string    `json:"language"`
	Datetime          string    `json:"datetime"`
	Status            string    `json:"status"`
	HospitalReference string    `json:"hospital_reference,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
