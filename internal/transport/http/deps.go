package http

import (
	"context"

	"github.com/lumichat/otp-api/internal/domain"
)

// UserStore is the minimal interface the router requires from a user store.
// GetByEmail reports a missing user as domain.ErrNotFound; Create reports a taken
// email as domain.ErrConflict.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
}

// CodeStore is the minimal interface the router requires from an OTP record store.
// RecordAttempt must increment atomically and refuse once max is reached.
type CodeStore interface {
	Put(ctx context.Context, rec *domain.OTPRecord) error
	Get(ctx context.Context, email string) (*domain.OTPRecord, error)
	RecordAttempt(ctx context.Context, email string, max int) (int, error)
	Delete(ctx context.Context, email string) error
}

// Mailer delivers verification emails.
type Mailer interface {
	Name() string
	Send(ctx context.Context, msg domain.Email) error
}

// EventPublisher announces completed registrations.
type EventPublisher interface {
	PublishRegistered(ctx context.Context, evt domain.RegisteredEvent) error
}
