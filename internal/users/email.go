package users

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/dermassist/skin-triage-platform/pkg/logging"
)

// VerificationMailer sends the account-confirmation email.
// Implementations can be swapped without changing the handler.
type VerificationMailer interface {
	SendVerification(ctx context.Context, user *User, verifyURL string) error
}

// SendGridMailer delivers verification email through the SendGrid API.
type SendGridMailer struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

// NewSendGridMailer returns nil when no API key is configured, so callers can
// treat verification mail as optional.
func NewSendGridMailer(apiKey, fromEmail, fromName string, logger *logging.Logger) *SendGridMailer {
	if apiKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if fromName == "" {
		fromName = "DermAssist"
	}
	return &SendGridMailer{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
		logger:    logger,
	}
}

// SendVerification emails the confirmation link.
func (m *SendGridMailer) SendVerification(ctx context.Context, user *User, verifyURL string) error {
	from := mail.NewEmail(m.fromName, m.fromEmail)
	to := mail.NewEmail(user.Username, user.Email)
	body := fmt.Sprintf("Hi %s, click to verify your account: %s", user.Username, verifyURL)
	message := mail.NewSingleEmail(from, "Verify your account", to, body, body)

	response, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("users: sendgrid send failed: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("users: sendgrid returned status %d", response.StatusCode)
	}

	m.logger.Info("verification email sent", "to", user.Email, "status", response.StatusCode)
	return nil
}
