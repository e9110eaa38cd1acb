package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RegistrationRequest asks for a code to be sent to an address.
type RegistrationRequest struct {
	Email string `json:"email" validate:"required"`
	Name  string `json:"name" validate:"required"`
}

// VerificationRequest completes a registration.
type VerificationRequest struct {
	Email    string   `json:"email" validate:"required"`
	OTP      OTPValue `json:"otp" validate:"required"`
	Name     string   `json:"name" validate:"required"`
	Password string   `json:"password" validate:"required"`
}

// OTPValue is a code submitted either as a JSON string or a JSON number.
// A numeric zero decodes to the empty value and therefore counts as missing.
type OTPValue string

func (v *OTPValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = OTPValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("otp must be a string or a number: %w", ErrBadRequest)
	}
	if f, err := n.Float64(); err == nil && f == 0 {
		*v = ""
		return nil
	}
	*v = OTPValue(n.String())
	return nil
}

// IssuedOTP is the result of sending a code.
type IssuedOTP struct {
	Code int
	// Delivered is false when no provider is configured or a non-fatal provider failure was swallowed.
	Delivered bool
}
