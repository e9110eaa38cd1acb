package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/lumichat/otp-api/internal/application/registration"
	"github.com/lumichat/otp-api/internal/domain"
	"github.com/lumichat/otp-api/internal/pkg/validate"
)

// RegistrationHandler serves the verify-otp endpoint.
type RegistrationHandler struct {
	svc registration.Service
}

func NewRegistrationHandler(svc registration.Service) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

func (h *RegistrationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req domain.VerificationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	u, err := h.svc.Register(r.Context(), req)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrConflict):
		writeFailure(w, http.StatusBadRequest, "Email already registered")
		return
	case errors.Is(err, domain.ErrTooManyAttempts):
		writeFailure(w, http.StatusBadRequest, "Too many attempts")
		return
	case errors.Is(err, domain.ErrExpiredOTP):
		writeFailure(w, http.StatusBadRequest, "Invalid or expired OTP")
		return
	case errors.Is(err, domain.ErrInvalidOTP):
		writeFailure(w, http.StatusBadRequest, "Invalid OTP")
		return
	default:
		slog.Error("register user failed", "email", req.Email, "err", err)
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, RegistrationEnvelope{
		Success: true,
		Message: "User registered successfully",
		User:    u,
	})
}

func (h *RegistrationHandler) MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeFailure(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, RegistrationEnvelope{Error: msg})
}
