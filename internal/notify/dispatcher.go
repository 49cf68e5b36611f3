package notify

import (
	"context"

	"github.com/dermassist/skin-triage-platform/internal/appointments"
	"github.com/dermassist/skin-triage-platform/internal/messaging"
	"github.com/dermassist/skin-triage-platform/internal/speech"
	"github.com/dermassist/skin-triage-platform/pkg/logging"
)

// Dispatcher delivers appointment confirmations to patients over voice and
// messaging channels. Every channel is best effort: a failed or unconfigured
// channel is logged and skipped, never surfaced to the caller.
type Dispatcher struct {
	sender      messaging.Sender
	synthesizer speech.Synthesizer
	logger      *logging.Logger
}

// NewDispatcher creates a dispatcher. sender and synthesizer may be nil; the
// corresponding channels then degrade to logged no-ops.
func NewDispatcher(sender messaging.Sender, synthesizer speech.Synthesizer, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{
		sender:      sender,
		synthesizer: synthesizer,
		logger:      logger,
	}
}

// NotifyByVoice synthesizes a spoken confirmation artifact and sends the same
// text as an SMS. The two legs fail independently.
func (d *Dispatcher) NotifyByVoice(ctx context.Context, appt *appointments.Appointment) {
	text := bookedMessage(appt.Language, appt.Datetime)

	if d.synthesizer == nil {
		d.logger.Info("voice synthesis skipped, no synthesizer configured")
	} else {
		path, err := d.synthesizer.Synthesize(ctx, text, appt.Language)
		if err != nil {
			d.logger.Error("voice synthesis failed", "error", err, "language", appt.Language)
		} else {
			d.logger.Info("voice confirmation synthesized", "path", path, "language", appt.Language)
		}
	}

	if d.sender == nil {
		d.logger.Info("confirmation sms skipped, no sender configured")
		return
	}
	if appt.Phone == "" {
		d.logger.Info("confirmation sms skipped, patient has no phone")
		return
	}
	if err := d.sender.SendSMS(ctx, appt.Phone, text); err != nil {
		d.logger.Error("confirmation sms failed", "error", err, "to", appt.Phone)
		return
	}
	d.logger.Info("confirmation sms sent", "to", appt.Phone)
}

// NotifyByMessaging sends the confirmation over WhatsApp.
func (d *Dispatcher) NotifyByMessaging(ctx context.Context, appt *appointments.Appointment) {
	if d.sender == nil {
		d.logger.Info("whatsapp confirmation skipped, no sender configured")
		return
	}
	if appt.Phone == "" {
		d.logger.Info("whatsapp confirmation skipped, patient has no phone")
		return
	}
	text := bookedMessage(appt.Language, appt.Datetime)
	if err := d.sender.SendWhatsApp(ctx, appt.Phone, text); err != nil {
		d.logger.Error("whatsapp confirmation failed", "error", err, "to", appt.Phone)
		return
	}
	d.logger.Info("whatsapp confirmation sent", "to", appt.Phone)
}
