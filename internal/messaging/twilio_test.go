package messaging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestSender(t *testing.T, handler http.HandlerFunc) (*TwilioSender, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	s := NewTwilioSender("AC123", "secret", "+15005550006", "", nil)
	s.baseURL = srv.URL
	return s, srv
}

func TestSendSMS_Success(t *testing.T) {
	var gotTo, gotFrom, gotBody string
	s, _ := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2010-04-01/Accounts/AC123/Messages.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "AC123" || pass != "secret" {
			t.Error("expected basic auth with account credentials")
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotTo = r.PostFormValue("To")
		gotFrom = r.PostFormValue("From")
		gotBody = r.PostFormValue("Body")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM1","status":"queued"}`))
	})

	if err := s.SendSMS(context.Background(), "+14155550100", "your appointment is booked"); err != nil {
		t.Fatalf("send sms: %v", err)
	}
	if gotTo != "+14155550100" || gotFrom != "+15005550006" {
		t.Errorf("unexpected to/from: %s %s", gotTo, gotFrom)
	}
	if gotBody != "your appointment is booked" {
		t.Errorf("unexpected body %q", gotBody)
	}
}

func TestSendWhatsApp_PrefixesNumbers(t *testing.T) {
	var gotTo, gotFrom string
	s, _ := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotTo = r.PostFormValue("To")
		gotFrom = r.PostFormValue("From")
		w.WriteHeader(http.StatusCreated)
	})

	if err := s.SendWhatsApp(context.Background(), "+14155550100", "hello"); err != nil {
		t.Fatalf("send whatsapp: %v", err)
	}
	if gotTo != "whatsapp:+14155550100" {
		t.Errorf("expected whatsapp-prefixed to, got %q", gotTo)
	}
	if gotFrom != "whatsapp:+15005550006" {
		t.Errorf("expected whatsapp-prefixed from, got %q", gotFrom)
	}
}

func TestSendWhatsApp_DoesNotDoublePrefix(t *testing.T) {
	var gotTo string
	s, _ := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotTo = r.PostFormValue("To")
		w.WriteHeader(http.StatusCreated)
	})

	if err := s.SendWhatsApp(context.Background(), "whatsapp:+14155550100", "hello"); err != nil {
		t.Fatalf("send whatsapp: %v", err)
	}
	if gotTo != "whatsapp:+14155550100" {
		t.Errorf("expected single prefix, got %q", gotTo)
	}
}

func TestSend_NoRetryOnFailure(t *testing.T) {
	var calls int
	s, _ := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"code":20500,"message":"internal error"}`))
	})

	err := s.SendSMS(context.Background(), "+14155550100", "hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected exactly one attempt, got %d", calls)
	}
}

func TestSend_MissingCredentials(t *testing.T) {
	s := NewTwilioSender("", "", "+15005550006", "", nil)
	if err := s.SendSMS(context.Background(), "+14155550100", "hello"); err == nil {
		t.Fatal("expected credentials error")
	}
	if s.Configured() {
		t.Error("expected Configured to be false")
	}
}

func TestSend_MissingRecipient(t *testing.T) {
	s := NewTwilioSender("AC123", "secret", "+15005550006", "", nil)
	if err := s.SendSMS(context.Background(), "", "hello"); err == nil {
		t.Fatal("expected error for empty recipient")
	}
}

func TestFormatTwilioError(t *testing.T) {
	got := formatTwilioError(400, []byte(`{"code":21211,"message":"invalid 'To' number"}`))
	want := "status 400 code 21211: invalid 'To' number"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	got = formatTwilioError(502, []byte("<html>bad gateway</html>"))
	if got != "status 502: <html>bad gateway</html>" {
		t.Errorf("unexpected fallback format: %q", got)
	}
}
