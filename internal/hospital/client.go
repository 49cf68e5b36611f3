package hospital

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dermassist/skin-triage-platform/internal/appointments"
	"github.com/dermassist/skin-triage-platform/pkg/logging"
)

const defaultTimeout = 10 * time.Second

var bookingTracer = otel.Tracer("dermassist.internal.hospital")

// ErrNotConfigured is returned when no booking endpoint is configured.
var ErrNotConfigured = errors.New("hospital: no booking endpoint configured")

// BookingResult is the hospital's answer. Reference may be empty even on a
// successful call: the caller must treat that as "booked without confirmed
// reference", not as an error.
type BookingResult struct {
	Reference string `json:"reference"`
	Status    int    `json:"status,omitempty"`
	RawBody   string `json:"text,omitempty"`
}

// bookingPayload is the wire form of an appointment booking request.
type bookingPayload struct {
	PatientName string `json:"patient_name"`
	Phone       string `json:"phone"`
	Language    string `json:"language"`
	Datetime    string `json:"datetime"`
}

// Client posts appointment bookings to the external hospital API.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient creates a hospital booking client. An empty endpoint is allowed;
// Book then fails with ErrNotConfigured.
func NewClient(endpoint string, timeout time.Duration, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint: strings.TrimSpace(endpoint),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Configured reports whether an endpoint is set.
func (c *Client) Configured() bool {
	return c.endpoint != ""
}

// Book posts the appointment to the hospital API. A malformed or non-JSON
// response is not an error: the result then carries the raw status and body
// with an empty reference.
func (c *Client) Book(ctx context.Context, appt *appointments.Appointment) (*BookingResult, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	ctx, span := bookingTracer.Start(ctx, "hospital.book")
	defer span.End()
	span.SetAttributes(
		attribute.String("dermassist.patient_name", appt.PatientName),
		attribute.String("dermassist.language", appt.Language),
	)

	body, err := json.Marshal(bookingPayload{
		PatientName: appt.PatientName,
		Phone:       appt.Phone,
		Language:    appt.Language,
		Datetime:    appt.Datetime,
	})
	if err != nil {
		return nil, fmt.Errorf("hospital: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("hospital: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("hospital: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("hospital: read response: %w", err)
	}

	var result BookingResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		// Not JSON. Hand back what we got instead of failing the booking.
		raw := strings.TrimSpace(string(respBody))
		if len(raw) > 300 {
			raw = raw[:300]
		}
		c.logger.Warn("hospital returned non-JSON response",
			"status", resp.StatusCode, "body_preview", raw)
		return &BookingResult{Status: resp.StatusCode, RawBody: raw}, nil
	}

	if result.Reference == "" {
		c.logger.Info("hospital booked without reference", "status", resp.StatusCode)
	} else {
		c.logger.Info("hospital booking confirmed", "reference", result.Reference)
	}
	return &result, nil
}
