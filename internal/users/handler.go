package users

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/dermassist/skin-triage-platform/internal/http/middleware"
	"github.com/dermassist/skin-triage-platform/pkg/logging"
)

const tokenTTL = 24 * time.Hour

// Handler handles registration, login and email verification.
type Handler struct {
	repo          Repository
	tokens        *VerificationTokens
	mailer        VerificationMailer
	jwtSecret     string
	publicBaseURL string
	logger        *logging.Logger
}

// NewHandler creates a users handler. mailer may be nil; verification email is
// then skipped with a logged reason and accounts stay unverified until an
// operator flips them.
func NewHandler(repo Repository, tokens *VerificationTokens, mailer VerificationMailer, jwtSecret, publicBaseURL string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:          repo,
		tokens:        tokens,
		mailer:        mailer,
		jwtSecret:     jwtSecret,
		publicBaseURL: publicBaseURL,
		logger:        logger,
	}
}

// Register handles POST /api/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}

	user, err := h.repo.Create(r.Context(), &User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Phone:        req.Phone,
		Role:         RolePatient,
	})
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		h.logger.Error("failed to create user", "error", err)
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}

	// Verification mail is best-effort; a provider outage must not block
	// registration.
	if h.mailer != nil {
		verifyURL := fmt.Sprintf("%s/api/verify/%s", h.publicBaseURL, h.tokens.Sign(user.Email))
		if err := h.mailer.SendVerification(r.Context(), user, verifyURL); err != nil {
			h.logger.Error("verification email failed", "error", err, "email", user.Email)
		}
	} else {
		h.logger.Warn("verification mailer not configured, skipping email", "email", user.Email)
	}

	h.logger.Info("user registered", "id", user.ID, "username", user.Username)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

// LoginResponse carries the issued JWT.
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Login handles POST /api/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.repo.GetByLogin(r.Context(), req.Login)
	if err != nil {
		http.Error(w, ErrInvalidCredentials.Error(), http.StatusUnauthorized)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		http.Error(w, ErrInvalidCredentials.Error(), http.StatusUnauthorized)
		return
	}
	if !user.Verified {
		http.Error(w, ErrNotVerified.Error(), http.StatusForbidden)
		return
	}

	token, err := middleware.IssueToken(h.jwtSecret, user.ID, user.Role, tokenTTL)
	if err != nil {
		h.logger.Error("failed to issue token", "error", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(LoginResponse{Token: token, User: user})
}

// Verify handles GET /api/verify/{token}.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	email, err := h.tokens.Verify(chi.URLParam(r, "token"))
	if err != nil {
		http.Error(w, ErrInvalidToken.Error(), http.StatusBadRequest)
		return
	}

	if err := h.repo.MarkVerified(r.Context(), email); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to mark verified", "error", err, "email", email)
		http.Error(w, "verification failed", http.StatusInternalServerError)
		return
	}

	h.logger.Info("email verified", "email", email)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"verified": true})
}
