package domain

import "time"

const EventUserRegistered = "user.registered"

// RegisteredEvent is published after a user row is created.
type RegisteredEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}
