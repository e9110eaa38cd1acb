package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/lumichat/otp-api/internal/domain"
)

const maxBodyBytes = 1 << 20

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OTPEnvelope wraps send-otp responses.
type OTPEnvelope struct {
	Success bool   `json:"success"`
	OTP     *int   `json:"otp,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RegistrationEnvelope wraps verify-otp responses.
type RegistrationEnvelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	User    *domain.User `json:"user,omitempty"`
	Error   string       `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// decodeJSON reads exactly one JSON object into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
