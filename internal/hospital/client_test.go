package hospital

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dermassist/skin-triage-platform/internal/appointments"
)

func testAppointment() *appointments.Appointment {
	return &appointments.Appointment{
		PatientName: "pat",
		Phone:       "+14155550100",
		Language:    "en",
		Datetime:    "2026-08-28T10:00:00Z",
		Status:      appointments.StatusBooked,
	}
}

func TestBook_NotConfigured(t *testing.T) {
	c := NewClient("", 0, nil)
	_, err := c.Book(context.Background(), testAppointment())
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestBook_Success(t *testing.T) {
	var got bookingPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"reference": "HOSP-42"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, nil)
	result, err := c.Book(context.Background(), testAppointment())
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if result.Reference != "HOSP-42" {
		t.Errorf("expected reference HOSP-42, got %q", result.Reference)
	}
	if got.PatientName != "pat" || got.Phone != "+14155550100" || got.Language != "en" || got.Datetime != "2026-08-28T10:00:00Z" {
		t.Errorf("unexpected payload: %+v", got)
	}
}

func TestBook_JSONWithoutReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"queued": "yes"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, nil)
	result, err := c.Book(context.Background(), testAppointment())
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if result.Reference != "" {
		t.Errorf("expected empty reference, got %q", result.Reference)
	}
}

func TestBook_NonJSONResponseIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>upstream error</html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, nil)
	result, err := c.Book(context.Background(), testAppointment())
	if err != nil {
		t.Fatalf("expected fallback result, got error %v", err)
	}
	if result.Reference != "" {
		t.Errorf("expected no reference, got %q", result.Reference)
	}
	if result.Status != http.StatusBadGateway {
		t.Errorf("expected raw status 502, got %d", result.Status)
	}
	if result.RawBody == "" {
		t.Error("expected raw body preserved")
	}
}

func TestBook_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // immediately unreachable

	c := NewClient(srv.URL, time.Second, nil)
	if _, err := c.Book(context.Background(), testAppointment()); err == nil {
		t.Fatal("expected error for unreachable endpoint")
	}
}
