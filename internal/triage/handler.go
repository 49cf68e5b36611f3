package triage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dermassist/skin-triage-platform/internal/appointments"
	"github.com/dermassist/skin-triage-platform/internal/http/middleware"
	"github.com/dermassist/skin-triage-platform/internal/predictions"
	"github.com/dermassist/skin-triage-platform/internal/users"
	"github.com/dermassist/skin-triage-platform/pkg/logging"
)

// DefaultMaxUploadBytes caps lesion image uploads.
const DefaultMaxUploadBytes = 12 << 20

const (
	historyLimit  = 50
	overviewLimit = 200
)

// allowedExtensions is the upload allowlist.
var allowedExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// ModelSwapper hot-swaps the classifier model from an artifact path.
type ModelSwapper interface {
	LoadModel(path string) error
	ModelVersion() string
}

// Handler exposes the triage pipeline and its listings over HTTP.
type Handler struct {
	service        *Service
	usersRepo      users.Repository
	predictions    predictions.Repository
	appointments   appointments.Repository
	swapper        ModelSwapper
	modelDir       string
	maxUploadBytes int64
	logger         *logging.Logger
}

// NewHandler creates the triage HTTP handler.
func NewHandler(
	service *Service,
	usersRepo users.Repository,
	predRepo predictions.Repository,
	apptRepo appointments.Repository,
	swapper ModelSwapper,
	modelDir string,
	maxUploadBytes int64,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{
		service:        service,
		usersRepo:      usersRepo,
		predictions:    predRepo,
		appointments:   apptRepo,
		swapper:        swapper,
		modelDir:       modelDir,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Predict handles POST /api/predict: multipart image upload through the full
// triage pipeline.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart upload", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "image file required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		http.Error(w, "unsupported image type, expected png or jpeg", http.StatusBadRequest)
		return
	}

	imageBytes, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read upload", http.StatusBadRequest)
		return
	}

	outcome, err := h.service.ProcessImage(
		r.Context(),
		h.currentUser(r),
		imageBytes,
		contentType,
		r.FormValue("phone"),
		r.FormValue("language"),
	)
	if err != nil {
		h.logger.Error("classification failed", "error", err)
		http.Error(w, "classification failed", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, outcome)
}

// History handles GET /api/history: the caller's recent predictions.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	rows, err := h.predictions.ListByUser(r.Context(), identity.UserID, historyLimit)
	if err != nil {
		h.logger.Error("failed to list predictions", "error", err, "user_id", identity.UserID)
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"predictions": rows})
}

// Appointments handles GET /api/appointments: the caller's recent bookings.
func (h *Handler) Appointments(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	rows, err := h.appointments.ListByUser(r.Context(), identity.UserID, historyLimit)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err, "user_id", identity.UserID)
		http.Error(w, "failed to load appointments", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"appointments": rows})
}

// UploadModel handles POST /admin/models: stores the uploaded artifact and
// hot-swaps the classifier onto it.
func (h *Handler) UploadModel(w http.ResponseWriter, r *http.Request) {
	if h.swapper == nil {
		http.Error(w, "model management not configured", http.StatusServiceUnavailable)
		return
	}

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart upload", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("model")
	if err != nil {
		http.Error(w, "model file required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if err := os.MkdirAll(h.modelDir, 0o755); err != nil {
		h.logger.Error("failed to create model dir", "error", err)
		http.Error(w, "model upload failed", http.StatusInternalServerError)
		return
	}

	path := filepath.Join(h.modelDir, filepath.Base(header.Filename))
	dst, err := os.Create(path)
	if err != nil {
		h.logger.Error("failed to create model file", "error", err, "path", path)
		http.Error(w, "model upload failed", http.StatusInternalServerError)
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		http.Error(w, "model upload failed", http.StatusInternalServerError)
		return
	}
	if err := dst.Close(); err != nil {
		http.Error(w, "model upload failed", http.StatusInternalServerError)
		return
	}

	if err := h.swapper.LoadModel(path); err != nil {
		h.logger.Error("model swap failed", "error", err, "path", path)
		http.Error(w, fmt.Sprintf("model load failed: %v", err), http.StatusUnprocessableEntity)
		return
	}

	h.logger.Info("model swapped", "path", path)
	respondJSON(w, http.StatusOK, map[string]string{"model_version": h.swapper.ModelVersion()})
}

// Overview handles GET /admin/overview: recent predictions and appointments
// across all users.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	preds, err := h.predictions.ListRecent(r.Context(), overviewLimit)
	if err != nil {
		h.logger.Error("failed to list recent predictions", "error", err)
		http.Error(w, "failed to load overview", http.StatusInternalServerError)
		return
	}
	appts, err := h.appointments.ListRecent(r.Context(), overviewLimit)
	if err != nil {
		h.logger.Error("failed to list recent appointments", "error", err)
		http.Error(w, "failed to load overview", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"predictions":  preds,
		"appointments": appts,
	})
}

// currentUser resolves the authenticated user record, nil for anonymous or
// unresolvable callers. Triage works without a user; the appointment then
// carries the placeholder patient name.
func (h *Handler) currentUser(r *http.Request) *users.User {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok || h.usersRepo == nil {
		return nil
	}
	user, err := h.usersRepo.GetByID(r.Context(), identity.UserID)
	if err != nil {
		if !errors.Is(err, users.ErrUserNotFound) {
			h.logger.Warn("failed to resolve user", "error", err, "user_id", identity.UserID)
		}
		return nil
	}
	return user
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
