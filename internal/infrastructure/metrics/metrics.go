package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	OTPIssuedTotal     prometheus.Counter
	EmailSendTotal     *prometheus.CounterVec
	RegistrationsTotal *prometheus.CounterVec
	OTPChecksTotal     *prometheus.CounterVec
	EndpointLatency    *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		OTPIssuedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "otpapi_otp_issued_total",
			Help: "Total number of verification codes generated",
		}),
		EmailSendTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "otpapi_email_send_total",
			Help: "Verification email attempts by provider and result",
		}, []string{"provider", "result"}),
		RegistrationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "otpapi_registrations_total",
			Help: "Registration attempts by result",
		}, []string{"result"}),
		OTPChecksTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "otpapi_otp_checks_total",
			Help: "Stored code checks by result",
		}, []string{"result"}),
		EndpointLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "otpapi_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint", "status"}),
	}
}

func (m *Metrics) OTPIssued() {
	m.OTPIssuedTotal.Inc()
}

func (m *Metrics) EmailSend(provider, result string) {
	m.EmailSendTotal.WithLabelValues(provider, result).Inc()
}

func (m *Metrics) Registration(result string) {
	m.RegistrationsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) OTPCheck(result string) {
	m.OTPChecksTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveEndpointLatency(endpoint, status string, durationSeconds float64) {
	m.EndpointLatency.WithLabelValues(endpoint, status).Observe(durationSeconds)
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
