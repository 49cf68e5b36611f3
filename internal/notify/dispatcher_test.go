package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dermassist/skin-triage-platform/internal/appointments"
)

type recordingSender struct {
	smsTo   []string
	smsBody []string
	waTo    []string
	waBody  []string
	smsErr  error
	waErr   error
}

func (r *recordingSender) SendSMS(ctx context.Context, to, body string) error {
	r.smsTo = append(r.smsTo, to)
	r.smsBody = append(r.smsBody, body)
	return r.smsErr
}

func (r *recordingSender) SendWhatsApp(ctx context.Context, to, body string) error {
	r.waTo = append(r.waTo, to)
	r.waBody = append(r.waBody, body)
	return r.waErr
}

type recordingSynthesizer struct {
	texts []string
	langs []string
	err   error
}

func (r *recordingSynthesizer) Synthesize(ctx context.Context, text, lang string) (string, error) {
	r.texts = append(r.texts, text)
	r.langs = append(r.langs, lang)
	if r.err != nil {
		return "", r.err
	}
	return "/tmp/tts-test.mp3", nil
}

func testAppointment() *appointments.Appointment {
	return &appointments.Appointment{
		PatientName: "pat",
		Phone:       "+14155550100",
		Language:    "en",
		Datetime:    "2026-08-28T10:00:00Z",
		Status:      appointments.StatusBooked,
	}
}

func TestNotifyByVoice_SynthesizesAndSends(t *testing.T) {
	sender := &recordingSender{}
	synth := &recordingSynthesizer{}
	d := NewDispatcher(sender, synth, nil)

	d.NotifyByVoice(context.Background(), testAppointment())

	if len(synth.texts) != 1 {
		t.Fatalf("expected 1 synthesis, got %d", len(synth.texts))
	}
	if !strings.Contains(synth.texts[0], "2026-08-28T10:00:00Z") {
		t.Errorf("expected datetime in spoken text, got %q", synth.texts[0])
	}
	if len(sender.smsTo) != 1 || sender.smsTo[0] != "+14155550100" {
		t.Errorf("expected sms to patient, got %v", sender.smsTo)
	}
	if sender.smsBody[0] != synth.texts[0] {
		t.Error("expected sms body to match spoken text")
	}
}

func TestNotifyByVoice_SynthesisFailureStillSendsSMS(t *testing.T) {
	sender := &recordingSender{}
	synth := &recordingSynthesizer{err: errors.New("tts down")}
	d := NewDispatcher(sender, synth, nil)

	d.NotifyByVoice(context.Background(), testAppointment())

	if len(sender.smsTo) != 1 {
		t.Fatalf("expected sms despite synthesis failure, got %d sends", len(sender.smsTo))
	}
}

func TestNotifyByVoice_SMSFailureDoesNotPanic(t *testing.T) {
	sender := &recordingSender{smsErr: errors.New("twilio down")}
	d := NewDispatcher(sender, &recordingSynthesizer{}, nil)
	d.NotifyByVoice(context.Background(), testAppointment())
}

func TestNotifyByVoice_NoPhoneSkipsSMS(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, &recordingSynthesizer{}, nil)

	appt := testAppointment()
	appt.Phone = ""
	d.NotifyByVoice(context.Background(), appt)

	if len(sender.smsTo) != 0 {
		t.Errorf("expected no sms without phone, got %v", sender.smsTo)
	}
}

func TestNotifyByVoice_NilCollaborators(t *testing.T) {
	d := NewDispatcher(nil, nil, nil)
	d.NotifyByVoice(context.Background(), testAppointment())
}

func TestNotifyByMessaging_SendsWhatsApp(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, nil, nil)

	d.NotifyByMessaging(context.Background(), testAppointment())

	if len(sender.waTo) != 1 || sender.waTo[0] != "+14155550100" {
		t.Fatalf("expected whatsapp to patient, got %v", sender.waTo)
	}
	if !strings.Contains(sender.waBody[0], "contact the hospital") {
		t.Errorf("unexpected body %q", sender.waBody[0])
	}
}

func TestNotifyByMessaging_NilSenderIsNoOp(t *testing.T) {
	d := NewDispatcher(nil, nil, nil)
	d.NotifyByMessaging(context.Background(), testAppointment())
}

func TestBookedMessage_Localization(t *testing.T) {
	fr := bookedMessage("fr", "2026-08-28T10:00:00Z")
	if !strings.Contains(fr, "rendez-vous") {
		t.Errorf("expected french text, got %q", fr)
	}

	en := bookedMessage("en", "2026-08-28T10:00:00Z")
	if !strings.Contains(en, "booked on 2026-08-28T10:00:00Z") {
		t.Errorf("expected english text with datetime, got %q", en)
	}

	unknown := bookedMessage("zz", "2026-08-28T10:00:00Z")
	if unknown != en {
		t.Errorf("expected english fallback for unknown code, got %q", unknown)
	}

	regional := bookedMessage("fr-CA", "2026-08-28T10:00:00Z")
	if regional != fr {
		t.Errorf("expected regional variant to match base language, got %q", regional)
	}
}
