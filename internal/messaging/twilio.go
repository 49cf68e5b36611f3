package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dermassist/skin-triage-platform/pkg/logging"
)

var twilioTracer = otel.Tracer("dermassist.internal.messaging.twilio")

const twilioBaseURL = "https://api.twilio.com"

// whatsappPrefix marks a number as a WhatsApp destination on Twilio's API.
const whatsappPrefix = "whatsapp:"

// Sender delivers outbound patient messages. Implementations must not retry;
// a failed send is reported once and the caller decides what to do with it.
type Sender interface {
	SendSMS(ctx context.Context, to, body string) error
	SendWhatsApp(ctx context.Context, to, body string) error
}

// TwilioSender posts messages using Twilio's REST API.
type TwilioSender struct {
	accountSID   string
	authToken    string
	from         string
	whatsappFrom string
	baseURL      string
	httpClient   *http.Client
	logger       *logging.Logger
}

// NewTwilioSender builds a sender with sane defaults. whatsappFrom may be
// empty; WhatsApp sends then reuse the SMS from number.
func NewTwilioSender(accountSID, authToken, from, whatsappFrom string, logger *logging.Logger) *TwilioSender {
	if logger == nil {
		logger = logging.Default()
	}
	if whatsappFrom == "" {
		whatsappFrom = from
	}
	return &TwilioSender{
		accountSID:   accountSID,
		authToken:    authToken,
		from:         from,
		whatsappFrom: whatsappFrom,
		baseURL:      twilioBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

var _ Sender = (*TwilioSender)(nil)

// Configured reports whether the sender carries usable credentials.
func (s *TwilioSender) Configured() bool {
	return s.accountSID != "" && s.authToken != "" && s.from != ""
}

// SendSMS dispatches a single SMS.
func (s *TwilioSender) SendSMS(ctx context.Context, to, body string) error {
	return s.send(ctx, "sms", to, s.from, body)
}

// SendWhatsApp dispatches a WhatsApp message. Numbers are prefixed with
// "whatsapp:" as Twilio requires; callers pass plain E.164 numbers.
func (s *TwilioSender) SendWhatsApp(ctx context.Context, to, body string) error {
	return s.send(ctx, "whatsapp", ensureWhatsAppPrefix(to), ensureWhatsAppPrefix(s.whatsappFrom), body)
}

func (s *TwilioSender) send(ctx context.Context, channel, to, from, body string) error {
	if s.accountSID == "" || s.authToken == "" {
		return errors.New("messaging: twilio credentials missing")
	}
	if strings.TrimSpace(to) == "" || to == whatsappPrefix {
		return errors.New("messaging: to required")
	}
	if strings.TrimSpace(from) == "" || from == whatsappPrefix {
		return errors.New("messaging: from required")
	}
	if strings.TrimSpace(body) == "" {
		return errors.New("messaging: body required")
	}

	ctx, span := twilioTracer.Start(ctx, "messaging.twilio.send")
	defer span.End()
	span.SetAttributes(
		attribute.String("dermassist.channel", channel),
		attribute.String("dermassist.to", to),
	)

	payload := url.Values{}
	payload.Set("To", to)
	payload.Set("From", from)
	payload.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, s.accountSID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(payload.Encode()))
	if err != nil {
		return fmt.Errorf("messaging: create request: %w", err)
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("messaging: twilio request: %w", err)
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		s.logger.Info("twilio message sent", "channel", channel, "to", to)
		return nil
	}

	err = fmt.Errorf("messaging: twilio send failed: %s", formatTwilioError(resp.StatusCode, respBody))
	span.RecordError(err)
	return err
}

func ensureWhatsAppPrefix(number string) string {
	number = strings.TrimSpace(number)
	if number == "" || strings.HasPrefix(number, whatsappPrefix) {
		return number
	}
	return whatsappPrefix + number
}

type twilioAPIError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

func formatTwilioError(status int, body []byte) string {
	body = []byte(strings.TrimSpace(string(body)))
	if len(body) == 0 {
		return fmt.Sprintf("status %d", status)
	}
	var parsed twilioAPIError
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		if parsed.Code != 0 {
			return fmt.Sprintf("status %d code %d: %s", status, parsed.Code, parsed.Message)
		}
		return fmt.Sprintf("status %d: %s", status, parsed.Message)
	}
	return fmt.Sprintf("status %d: %s", status, string(body))
}
