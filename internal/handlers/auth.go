package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleetflow/internal/auth"
	"github.com/ukydev/fleetflow/internal/db"
	"github.com/ukydev/fleetflow/internal/models"
)

// AuditRecorder appends audit trail entries. Failures are logged, not
// surfaced: auditing never blocks an operation.
type AuditRecorder interface {
	InsertAuditLog(ctx context.Context, entry *models.AuditLog) error
}

// AuthHandler handles authentication requests.
type AuthHandler struct {
	authService *auth.Service
	users       db.UserCollection
	audit       AuditRecorder
}

// NewAuthHandler creates a new authentication handler.
func NewAuthHandler(authService *auth.Service, users db.UserCollection, audit AuditRecorder) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		users:       users,
		audit:       audit,
	}
}

// Login handles user login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.FindUserByEmail(r.Context(), req.Email)
	if err != nil {
		h.recordAudit(r, models.AuditEventFailedLogin, models.AuditStatusFailure, "", "unknown email "+req.Email)
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if !h.authService.CheckPassword(req.Password, user.PasswordHash) {
		h.recordAudit(r, models.AuditEventFailedLogin, models.AuditStatusFailure, user.ID.Hex(), "wrong password")
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	h.recordAudit(r, models.AuditEventLogin, models.AuditStatusSuccess, user.ID.Hex(), "")
	respondJSON(w, http.StatusOK, "login successful", models.LoginResponse{Token: token, User: *user})
}

// Register handles user registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !models.IsValidRole(req.Role) {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid role '%s'", req.Role))
		return
	}
	if err := h.authService.ValidatePassword(req.Password); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.users.FindUserByEmail(r.Context(), req.Email); err == nil {
		respondError(w, http.StatusConflict, "email already registered")
		return
	}

	hash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         req.Role,
	}
	if err := h.users.InsertUser(r.Context(), user); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	h.recordAudit(r, models.AuditEventRegistration, models.AuditStatusSuccess, user.ID.Hex(), "")
	respondJSON(w, http.StatusCreated, "user registered", user)
}

func (h *AuthHandler) recordAudit(r *http.Request, event, status, userID, detail string) {
	if h.audit == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:    userID,
		Event:     event,
		Status:    status,
		Detail:    detail,
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
		Timestamp: time.Now(),
	}
	if err := h.audit.InsertAuditLog(r.Context(), entry); err != nil {
		log.WithError(err).Error("Failed to save audit log")
	}
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
