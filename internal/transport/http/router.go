package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/lumichat/otp-api/internal/application/otp"
	"github.com/lumichat/otp-api/internal/application/registration"
	"github.com/lumichat/otp-api/internal/config"
	"github.com/lumichat/otp-api/internal/infrastructure/metrics"
	"github.com/lumichat/otp-api/internal/transport/http/handler"
	appmiddleware "github.com/lumichat/otp-api/internal/transport/http/middleware"
)

// Deps holds all infrastructure dependencies for the router.
// CodeStore is required in strict mode only; Mailer, Events and Metrics may be nil.
// Checks are run by the readiness probe.
type Deps struct {
	UserStore UserStore
	CodeStore CodeStore
	Mailer    Mailer
	Events    EventPublisher
	Metrics   *metrics.Metrics
	Checks    map[string]handler.Check
}

// NewRouter builds and returns the application router. Background work started
// here, such as rate limiter cleanup, stops when ctx is cancelled.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:     cfg.AllowedOrigins,
		AllowedMethods:     []string{"POST", "OPTIONS"},
		AllowedHeaders:     []string{"Content-Type"},
		AllowCredentials:   false,
		OptionsPassthrough: true,
		MaxAge:             300,
	}))
	r.Use(appmiddleware.Headers(cfg.AllowOrigin))

	otpDeps := otp.ServiceDeps{
		CodeStore: deps.CodeStore,
		Mailer:    deps.Mailer,
		Strict:    cfg.Strict(),
		TTL:       cfg.OTPTTL,
		FailLoud:  cfg.EmailFailureMode == config.EmailFailLoud,
		Brand:     cfg.SenderName,
	}
	regDeps := registration.ServiceDeps{
		UserRepo:    deps.UserStore,
		CodeStore:   deps.CodeStore,
		Events:      deps.Events,
		Strict:      cfg.Strict(),
		MaxAttempts: cfg.OTPMaxAttempts,
	}
	if deps.Metrics != nil {
		r.Use(appmiddleware.Latency(deps.Metrics))
		otpDeps.Metrics = deps.Metrics
		regDeps.Metrics = deps.Metrics
		r.Get("/metrics", deps.Metrics.Handler().ServeHTTP)
	}

	limit := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimitRPS > 0 {
		limit = appmiddleware.NewRateLimiter(ctx, rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst).Limit
	}

	healthH := handler.NewHealthHandler(deps.Checks)
	otpH := handler.NewOTPHandler(otp.NewService(otpDeps), cfg.OTPReturnCode)
	regH := handler.NewRegistrationHandler(registration.NewService(regDeps))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		r.Route("/send-otp", func(r chi.Router) {
			r.MethodNotAllowed(otpH.MethodNotAllowed)
			r.With(limit).Post("/", otpH.Send)
		})
		r.Route("/verify-otp", func(r chi.Router) {
			r.MethodNotAllowed(regH.MethodNotAllowed)
			r.With(limit).Post("/", regH.Verify)
		})
	})

	return r
}
