package models

import (
	"time"

	"github.com/google/uuid"
)

// Invite is a pending registration invitation. The token doubles as the
// registration link parameter.
type Invite struct {
	Token     uuid.UUID `json:"token"`
	Email     string    `json:"email"`
	Used      bool      `json:"used"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Valid reports whether the invite can still be redeemed at the given time.
func (i *Invite) Valid(now time.Time) bool {
	return !i.Used && now.Before(i.ExpiresAt)
}
