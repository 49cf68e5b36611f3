package appointments

import (
	"time"

	"github.com/dermassist/skin-triage-platform/internal/users"
)

// UnknownPatient is the placeholder name for appointments without a user.
const UnknownPatient = "Unknown"

// DefaultLanguage is used when no language preference is supplied.
const DefaultLanguage = "en"

// New constructs an appointment record for the booking workflow. It is not
// persisted or sent anywhere by this call.
//
// The patient name comes from the user when present, the phone falls back
// from the explicit argument to the user's stored phone to "", and the
// datetime is the creation timestamp in sortable RFC3339 UTC form. The
// language fixed here drives both the hospital payload and the notification
// locale; it is never re-derived later.
func New(user *users.User, phone, language string) Appointment {
	name := UnknownPatient
	userID := ""
	if user != nil {
		name = user.Username
		userID = user.ID
		if phone == "" {
			phone = user.Phone
		}
	}
	if language == "" {
		language = DefaultLanguage
	}

	return Appointment{
		UserID:      userID,
		PatientName: name,
		Phone:       phone,
		Language:    language,
		Datetime:    time.Now().UTC().Format(time.RFC3339),
		Status:      StatusBooked,
	}
}
