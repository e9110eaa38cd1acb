package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, OTPModeLegacy, cfg.OTPMode)
	assert.False(t, cfg.Strict())
	assert.True(t, cfg.OTPReturnCode)
	assert.Equal(t, EmailFailSilent, cfg.EmailFailureMode)
	assert.Equal(t, "brevo", cfg.EmailProvider)
	assert.Equal(t, "LumiChat AI", cfg.SenderName)
	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	assert.Equal(t, "*", cfg.AllowOrigin)
	assert.False(t, cfg.TrustProxyHeaders)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("OTP_MODE", OTPModeStrict)
	t.Setenv("OTP_TTL", "90s")
	t.Setenv("OTP_RETURN_CODE", "false")
	t.Setenv("RATE_LIMIT_RPS", "0")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg := Load()

	assert.True(t, cfg.Strict())
	assert.Equal(t, 90*time.Second, cfg.OTPTTL)
	assert.False(t, cfg.OTPReturnCode)
	assert.Zero(t, cfg.RateLimitRPS)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_TrustProxyHeaders(t *testing.T) {
	t.Setenv("TRUST_PROXY_HEADERS", "true")

	assert.True(t, Load().TrustProxyHeaders)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("OTP_MAX_ATTEMPTS", "many")
	t.Setenv("EMAIL_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 5, cfg.OTPMaxAttempts)
	assert.Equal(t, 10*time.Second, cfg.EmailTimeout)
}

func TestValidate_StrictDefaultsPass(t *testing.T) {
	t.Setenv("OTP_MODE", "strict")
	t.Setenv("OTP_STORE", "redis")
	t.Setenv("EMAIL_FAILURE_MODE", "loud")

	assert.NoError(t, Load().Validate())
}

func TestValidate_RejectsUnknownValues(t *testing.T) {
	cases := []struct {
		key, value string
	}{
		{"OTP_MODE", "Strict"},
		{"EMAIL_FAILURE_MODE", "LOUD"},
		{"EMAIL_PROVIDER", "mailgun"},
		{"USER_STORE", "sqlite"},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)

			err := Load().Validate()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.key)
			assert.Contains(t, err.Error(), tc.value)
		})
	}
}

func TestValidate_StrictChecksCodeStore(t *testing.T) {
	t.Setenv("OTP_MODE", OTPModeStrict)
	t.Setenv("OTP_STORE", "memcached")
	t.Setenv("OTP_MAX_ATTEMPTS", "0")

	err := Load().Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "OTP_STORE")
	assert.Contains(t, err.Error(), "OTP_MAX_ATTEMPTS")
}

func TestValidate_LegacyIgnoresCodeStore(t *testing.T) {
	t.Setenv("OTP_STORE", "memcached")

	assert.NoError(t, Load().Validate())
}
