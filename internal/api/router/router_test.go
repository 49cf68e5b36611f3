package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dermassist/skin-triage-platform/internal/appointments"
	httpmiddleware "github.com/dermassist/skin-triage-platform/internal/http/middleware"
	"github.com/dermassist/skin-triage-platform/internal/predictions"
	"github.com/dermassist/skin-triage-platform/internal/triage"
	"github.com/dermassist/skin-triage-platform/internal/users"
	"github.com/dermassist/skin-triage-platform/pkg/logging"
)

const testSecret = "router-test-secret"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	usersRepo := users.NewInMemoryRepository()
	predRepo := predictions.NewInMemoryRepository()
	apptRepo := appointments.NewInMemoryRepository()

	usersHandler := users.NewHandler(
		usersRepo,
		users.NewVerificationTokens("verify-secret", time.Hour),
		nil,
		testSecret,
		"http://localhost:8080",
		logging.NewText("error"),
	)

	svc := triage.NewService(nil, nil, predRepo, apptRepo, nil, nil, nil, nil, nil, nil)
	triageHandler := triage.NewHandler(svc, usersRepo, predRepo, apptRepo, nil, t.TempDir(), 0, nil)

	return New(&Config{
		UsersHandler:  usersHandler,
		TriageHandler: triageHandler,
		AuthSecret:    testSecret,
	})
}

func bearer(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := httpmiddleware.IssueToken(testSecret, userID, role, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + token
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestRegisterRouteWired(t *testing.T) {
	r := newTestRouter(t)
	body := strings.NewReader(`{"username":"pat","email":"pat@example.com","password":"longenough"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/register", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter(t)
	for _, target := range []string{"/api/history", "/api/appointments"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401 without token, got %d", target, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/predict", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("/api/predict: expected 401 without token, got %d", rec.Code)
	}
}

func TestHistoryWithToken(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set("Authorization", bearer(t, "u1", users.RolePatient))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAdminRoutesEnforceRoles(t *testing.T) {
	r := newTestRouter(t)

	// A patient may not read the clinical overview.
	req := httptest.NewRequest(http.MethodGet, "/admin/overview", nil)
	req.Header.Set("Authorization", bearer(t, "u1", users.RolePatient))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("patient overview: expected 403, got %d", rec.Code)
	}

	// A doctor may.
	req = httptest.NewRequest(http.MethodGet, "/admin/overview", nil)
	req.Header.Set("Authorization", bearer(t, "d1", users.RoleDoctor))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("doctor overview: expected 200, got %d", rec.Code)
	}

	// Model management is admin only.
	req = httptest.NewRequest(http.MethodPost, "/admin/models", nil)
	req.Header.Set("Authorization", bearer(t, "d1", users.RoleDoctor))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("doctor model upload: expected 403, got %d", rec.Code)
	}
}
