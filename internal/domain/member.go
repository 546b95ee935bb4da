package domain

import "time"

// Role distinguishes the trip creator from everyone who joined later.
// There is no ownership escalation: joining always yields RoleMember.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// Member is one identity's membership in a trip, keyed by
// (tripID, identity). At most one row exists per identity per trip;
// writes are upserts, never appends.
type Member struct {
	Identity    string    `json:"identity"`
	Role        Role      `json:"role"`
	Phone       string    `json:"phone,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	JoinedAt    time.Time `json:"joined_at"`
}
