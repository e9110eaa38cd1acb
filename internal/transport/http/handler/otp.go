package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/lumichat/otp-api/internal/application/otp"
	"github.com/lumichat/otp-api/internal/domain"
	"github.com/lumichat/otp-api/internal/pkg/validate"
)

// OTPHandler serves the send-otp endpoint.
type OTPHandler struct {
	svc        otp.Service
	revealCode bool
}

// NewOTPHandler returns the issued code in the response body when revealCode is set.
func NewOTPHandler(svc otp.Service, revealCode bool) *OTPHandler {
	return &OTPHandler{svc: svc, revealCode: revealCode}
}

func (h *OTPHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req domain.RegistrationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Email and name required")
		return
	}

	issued, err := h.svc.Issue(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrDelivery) {
			writeJSON(w, http.StatusBadGateway, OTPEnvelope{Error: "Failed to send OTP email"})
			return
		}
		slog.Error("send otp failed", "email", req.Email, "err", err)
		writeJSON(w, http.StatusInternalServerError, OTPEnvelope{Error: err.Error()})
		return
	}

	resp := OTPEnvelope{Success: true, Message: "OTP sent successfully"}
	if h.revealCode {
		code := issued.Code
		resp.OTP = &code
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OTPHandler) MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}
