package domain

import (
	"time"

	"github.com/google/uuid"
)

// Invite resolves an unguessable token to a trip for join purposes.
// Tokens are durable and reusable: they never expire and are not consumed
// by joining. Joining is idempotent per identity instead.
type Invite struct {
	Token     string    `json:"token"`
	TripID    uuid.UUID `json:"trip_id"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}
