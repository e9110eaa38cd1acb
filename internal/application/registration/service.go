package registration

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lumichat/otp-api/internal/domain"
	"github.com/lumichat/otp-api/internal/pkg/id"
)

// Results reported to metrics.
const (
	resultCreated   = "created"
	resultDuplicate = "duplicate"
	resultError     = "error"

	checkPassed  = "passed"
	checkMissing = "missing"
	checkExpired = "expired"
	checkLocked  = "locked"
	checkInvalid = "invalid"
)

type Service interface {
	Register(ctx context.Context, req domain.VerificationRequest) (*domain.User, error)
}

// userStore must report a missing email as domain.ErrNotFound and a taken
// email on Create as domain.ErrConflict.
type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
}

// codeStore must apply RecordAttempt atomically: the count only grows while the
// record exists and is below max, otherwise it reports domain.ErrNotFound or
// domain.ErrTooManyAttempts. Delete reports domain.ErrNotFound when nothing was removed.
type codeStore interface {
	Get(ctx context.Context, email string) (*domain.OTPRecord, error)
	RecordAttempt(ctx context.Context, email string, max int) (int, error)
	Delete(ctx context.Context, email string) error
}

type eventPublisher interface {
	PublishRegistered(ctx context.Context, evt domain.RegisteredEvent) error
}

type recorder interface {
	Registration(result string)
	OTPCheck(result string)
}

type noopRecorder struct{}

func (noopRecorder) Registration(string) {}
func (noopRecorder) OTPCheck(string)     {}

type service struct {
	users       userStore
	codes       codeStore
	events      eventPublisher
	metrics     recorder
	strict      bool
	maxAttempts int
	now         func() time.Time
}

// ServiceDeps configures the verifier. CodeStore is only used when Strict is set;
// Events may be nil.
type ServiceDeps struct {
	UserRepo    userStore
	CodeStore   codeStore
	Events      eventPublisher
	Metrics     recorder
	Strict      bool
	MaxAttempts int
	Now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		users:       deps.UserRepo,
		codes:       deps.CodeStore,
		events:      deps.Events,
		metrics:     deps.Metrics,
		strict:      deps.Strict,
		maxAttempts: deps.MaxAttempts,
		now:         deps.Now,
	}
	if s.metrics == nil {
		s.metrics = noopRecorder{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.maxAttempts < 1 {
		s.maxAttempts = 5
	}
	return s
}

func (s *service) Register(ctx context.Context, req domain.VerificationRequest) (*domain.User, error) {
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		s.metrics.Registration(resultDuplicate)
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		s.metrics.Registration(resultError)
		return nil, err
	}

	if s.strict {
		if err := s.checkCode(ctx, req.Email, string(req.OTP)); err != nil {
			return nil, err
		}
	}

	u := &domain.User{
		UserID:    id.New(),
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		CreatedAt: s.now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			s.metrics.Registration(resultDuplicate)
			return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
		}
		s.metrics.Registration(resultError)
		return nil, err
	}
	s.metrics.Registration(resultCreated)

	if s.events != nil {
		evt := domain.RegisteredEvent{
			Type:       domain.EventUserRegistered,
			UserID:     u.UserID,
			Email:      u.Email,
			OccurredAt: u.CreatedAt,
		}
		if err := s.events.PublishRegistered(ctx, evt); err != nil {
			slog.Warn("failed to publish registration event", "user_id", u.UserID, "err", err)
		}
	}
	return u, nil
}

// checkCode consumes the stored code for email. Every guess spends one of
// maxAttempts before it is compared, and a matching record is usable once.
func (s *service) checkCode(ctx context.Context, email, code string) error {
	rec, err := s.codes.Get(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		s.metrics.OTPCheck(checkMissing)
		return domain.ErrExpiredOTP
	}
	if err != nil {
		return fmt.Errorf("load otp: %w", err)
	}
	if rec.Expired(s.now()) {
		s.metrics.OTPCheck(checkExpired)
		s.discard(ctx, email)
		return domain.ErrExpiredOTP
	}

	attempts, err := s.codes.RecordAttempt(ctx, email, s.maxAttempts)
	switch {
	case errors.Is(err, domain.ErrTooManyAttempts):
		s.metrics.OTPCheck(checkLocked)
		s.discard(ctx, email)
		return domain.ErrTooManyAttempts
	case errors.Is(err, domain.ErrNotFound):
		s.metrics.OTPCheck(checkMissing)
		return domain.ErrExpiredOTP
	case err != nil:
		return fmt.Errorf("record otp attempt: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(code)) != 1 {
		s.metrics.OTPCheck(checkInvalid)
		slog.Debug("otp mismatch", "email", email, "attempts", attempts)
		return domain.ErrInvalidOTP
	}

	if err := s.codes.Delete(ctx, email); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Another request consumed it first.
			s.metrics.OTPCheck(checkMissing)
			return domain.ErrExpiredOTP
		}
		return fmt.Errorf("consume otp: %w", err)
	}
	s.metrics.OTPCheck(checkPassed)
	return nil
}

func (s *service) discard(ctx context.Context, email string) {
	if err := s.codes.Delete(ctx, email); err != nil && !errors.Is(err, domain.ErrNotFound) {
		slog.Warn("failed to delete otp record", "email", email, "err", err)
	}
}
