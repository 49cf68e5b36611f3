package notify

import (
	"fmt"

	"golang.org/x/text/language"
)

// supportedTags and bookedTemplates are parallel. English is first so the
// matcher falls back to it for unknown codes. The %s slot is the appointment
// datetime string.
var supportedTags = []language.Tag{
	language.English,
	language.French,
	language.Spanish,
	language.German,
	language.Arabic,
	language.Hindi,
}

var bookedTemplates = []string{
	"Your appointment has been booked on %s. Please contact the hospital to confirm.",
	"Votre rendez-vous a ete reserve le %s. Veuillez contacter l'hopital pour confirmer.",
	"Su cita ha sido reservada para el %s. Por favor contacte al hospital para confirmar.",
	"Ihr Termin wurde am %s gebucht. Bitte kontaktieren Sie das Krankenhaus zur Bestaetigung.",
	"تم حجز موعدك في %s. يرجى الاتصال بالمستشفى للتأكيد.",
	"आपका अपॉइंटमेंट %s पर बुक हो गया है। कृपया पुष्टि के लिए अस्पताल से संपर्क करें।",
}

var templateMatcher = language.NewMatcher(supportedTags)

// bookedMessage renders the confirmation text for the requested language,
// falling back to English for unknown or unsupported codes.
func bookedMessage(lang, datetime string) string {
	_, index := language.MatchStrings(templateMatcher, lang)
	return fmt.Sprintf(bookedTemplates[index], datetime)
}
