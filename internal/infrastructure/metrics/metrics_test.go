package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.OTPIssued()
	m.OTPIssued()
	m.EmailSend("brevo", "sent")
	m.Registration("duplicate")
	m.OTPCheck("invalid")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OTPIssuedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmailSendTotal.WithLabelValues("brevo", "sent")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.EmailSendTotal.WithLabelValues("brevo", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RegistrationsTotal.WithLabelValues("duplicate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OTPChecksTotal.WithLabelValues("invalid")))
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.OTPIssued()

	assert.Equal(t, 0.0, testutil.ToFloat64(b.OTPIssuedTotal))
}

func TestHandler(t *testing.T) {
	m := New()
	m.Registration("created")
	m.ObserveEndpointLatency("/v1/verify-otp", "200", 0.01)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `otpapi_registrations_total{result="created"} 1`)
	assert.Contains(t, string(body), "otpapi_endpoint_latency_seconds_bucket")
}
