package otp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/lumichat/otp-api/internal/domain"
	"github.com/lumichat/otp-api/internal/pkg/otpcode"
)

const emailSubjectFormat = "%s - Email Verification Code"

// Send results reported to metrics.
const (
	resultSent     = "sent"
	resultRejected = "rejected"
	resultError    = "error"
	resultSkipped  = "skipped"
)

type Service interface {
	Issue(ctx context.Context, req domain.RegistrationRequest) (*domain.IssuedOTP, error)
}

type mailer interface {
	Name() string
	Send(ctx context.Context, msg domain.Email) error
}

type codeStore interface {
	Put(ctx context.Context, rec *domain.OTPRecord) error
}

type recorder interface {
	OTPIssued()
	EmailSend(provider, result string)
}

type noopRecorder struct{}

func (noopRecorder) OTPIssued()                {}
func (noopRecorder) EmailSend(string, string) {}

type service struct {
	codes    codeStore
	mailer   mailer
	metrics  recorder
	strict   bool
	ttl      time.Duration
	failLoud bool
	brand    string
	now      func() time.Time
}

// ServiceDeps configures the issuer. Mailer may be nil, in which case no email is attempted.
// CodeStore is only required when Strict is set.
type ServiceDeps struct {
	CodeStore codeStore
	Mailer    mailer
	Metrics   recorder
	Strict    bool
	TTL       time.Duration
	FailLoud  bool
	Brand     string
	Now       func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		codes:    deps.CodeStore,
		mailer:   deps.Mailer,
		metrics:  deps.Metrics,
		strict:   deps.Strict,
		ttl:      deps.TTL,
		failLoud: deps.FailLoud,
		brand:    deps.Brand,
		now:      deps.Now,
	}
	if s.metrics == nil {
		s.metrics = noopRecorder{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.ttl <= 0 {
		s.ttl = 10 * time.Minute
	}
	return s
}

func (s *service) Issue(ctx context.Context, req domain.RegistrationRequest) (*domain.IssuedOTP, error) {
	code, err := otpcode.New()
	if err != nil {
		return nil, err
	}
	now := s.now()

	if s.strict {
		rec := &domain.OTPRecord{
			Email:     req.Email,
			Code:      strconv.Itoa(code),
			ExpiresAt: now.Add(s.ttl).Unix(),
		}
		if err := s.codes.Put(ctx, rec); err != nil {
			return nil, fmt.Errorf("store otp: %w", err)
		}
	}
	s.metrics.OTPIssued()

	issued := &domain.IssuedOTP{Code: code}
	if s.mailer == nil {
		s.metrics.EmailSend("none", resultSkipped)
		return issued, nil
	}

	data := emailData{
		Brand:        s.brand,
		Name:         req.Name,
		Code:         code,
		ValidMinutes: validMinutes(s.ttl),
		Year:         now.Year(),
	}
	html, err := renderEmail(data)
	if err != nil {
		return nil, err
	}
	err = s.mailer.Send(ctx, domain.Email{
		ToEmail: req.Email,
		ToName:  req.Name,
		Subject: fmt.Sprintf(emailSubjectFormat, s.brand),
		HTML:    html,
		Text:    plainText(data),
	})
	if err == nil {
		s.metrics.EmailSend(s.mailer.Name(), resultSent)
		issued.Delivered = true
		return issued, nil
	}

	var statusErr *domain.ProviderStatusError
	rejected := errors.As(err, &statusErr)
	if rejected {
		s.metrics.EmailSend(s.mailer.Name(), resultRejected)
	} else {
		s.metrics.EmailSend(s.mailer.Name(), resultError)
	}

	if s.failLoud {
		slog.Error("otp email failed", "provider", s.mailer.Name(), "email", req.Email, "err", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrDelivery, err)
	}
	if rejected {
		// Provider answered but refused the message; the caller still gets the code.
		slog.Error("otp email rejected by provider", "provider", s.mailer.Name(), "status", statusErr.StatusCode, "email", req.Email)
		return issued, nil
	}
	return nil, fmt.Errorf("send otp email: %w", err)
}
