// Package handler provides HTTP handlers for the chapterlink API.
package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"chapterlink/internal/auth"
	"chapterlink/internal/middleware"
	"chapterlink/pkg/errors"
	"chapterlink/pkg/logger"
	"chapterlink/pkg/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	service   *auth.Service
	validator *validator.Validator
	logger    logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service *auth.Service, val *validator.Validator, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		service:   service,
		validator: val,
		logger:    log,
	}
}

// Register handles account registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		if err == io.EOF {
			respondError(w, http.StatusBadRequest, "Request body is required")
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if respondValidation(w, h.validator.ValidateStructured(&req)) {
		return
	}

	response, err := h.service.Register(r.Context(), &req)
	if err != nil {
		if err == errors.ErrUserAlreadyExists {
			respondError(w, http.StatusConflict, "User already exists")
			return
		}

		h.logger.Error("Registration failed", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	respondJSON(w, http.StatusCreated, response)
}

// Login authenticates an account and returns a token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		if err == io.EOF {
			respondError(w, http.StatusBadRequest, "Request body is required")
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if respondValidation(w, h.validator.ValidateStructured(&req)) {
		return
	}

	response, err := h.service.Login(r.Context(), &req)
	if err != nil {
		if err == errors.ErrTOTPRequired {
			respondError(w, http.StatusUnauthorized, "TOTP code required")
			return
		}
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// EnrollTOTP starts TOTP enrolment for the authenticated user.
func (h *AuthHandler) EnrollTOTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	url, err := h.service.EnrollTOTP(r.Context(), userID)
	if err != nil {
		h.logger.Error("TOTP enrolment failed", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "TOTP enrolment failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"provisioning_url": url})
}

// ActivateTOTP verifies the first code and enables TOTP enforcement.
func (h *AuthHandler) ActivateTOTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		Code string `json:"code" validate:"required,len=6"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if respondValidation(w, h.validator.ValidateStructured(&req)) {
		return
	}

	if err := h.service.ActivateTOTP(r.Context(), userID, req.Code); err != nil {
		if err == errors.ErrInvalidTOTPCode {
			respondError(w, http.StatusBadRequest, "Invalid TOTP code")
			return
		}
		h.logger.Error("TOTP activation failed", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "TOTP activation failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "enabled"})
}
