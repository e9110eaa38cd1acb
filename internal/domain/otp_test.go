package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTPValue_Unmarshal(t *testing.T) {
	cases := []struct {
		name string
		body string
		want OTPValue
	}{
		{"string", `{"otp":"123456"}`, "123456"},
		{"number", `{"otp":654321}`, "654321"},
		{"zero number counts as missing", `{"otp":0}`, ""},
		{"null", `{"otp":null}`, ""},
		{"empty string", `{"otp":""}`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var req VerificationRequest
			require.NoError(t, json.Unmarshal([]byte(tc.body), &req))
			assert.Equal(t, tc.want, req.OTP)
		})
	}
}

func TestOTPValue_RejectsOtherTypes(t *testing.T) {
	var req VerificationRequest
	err := json.Unmarshal([]byte(`{"otp":true}`), &req)
	assert.Error(t, err)
}

func TestOTPRecord_Expired(t *testing.T) {
	now := time.Now()
	assert.False(t, (&OTPRecord{ExpiresAt: now.Add(time.Minute).Unix()}).Expired(now))
	assert.True(t, (&OTPRecord{ExpiresAt: now.Add(-time.Minute).Unix()}).Expired(now))
}
