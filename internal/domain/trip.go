// Package domain contains the core data types for TripSync.
// This package has no business logic and is imported by every other
// internal package (repo, service, handler, client).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Location is a plain coordinate+address record. Map-provider integration
// is external; the core only stores and returns these values.
type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

// Trip is the top-level aggregate. Members, events, tasks, the shared note
// and invites all hang off a trip id.
type Trip struct {
	ID                  uuid.UUID  `json:"id"`
	Name                string     `json:"name"`
	Location            *Location  `json:"location,omitempty"`
	StartDate           Date       `json:"start_date"`
	EndDate             Date       `json:"end_date"`
	NotificationEnabled bool       `json:"notification_enabled"`
	OwnerIdentity       string     `json:"owner_identity"` // identity of the creator; not transferable
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           *time.Time `json:"updated_at,omitempty"` // nil until the first update
}

// TripPatch is a partial update for a trip. Nil fields are left untouched
// (merge semantics, not replace).
type TripPatch struct {
	Name                *string   `json:"name,omitempty"`
	Location            *Location `json:"location,omitempty"`
	StartDate           *Date     `json:"start_date,omitempty"`
	EndDate             *Date     `json:"end_date,omitempty"`
	NotificationEnabled *bool     `json:"notification_enabled,omitempty"`
}

// IsEmpty reports whether the patch would change nothing.
func (p TripPatch) IsEmpty() bool {
	return p.Name == nil && p.Location == nil && p.StartDate == nil &&
		p.EndDate == nil && p.NotificationEnabled == nil
}

// Apply merges the patch into a copy of trip and returns it.
// The trip's id, owner and creation timestamp are never touched.
func (p TripPatch) Apply(trip Trip) Trip {
	if p.Name != nil {
		trip.Name = *p.Name
	}
	if p.Location != nil {
		trip.Location = p.Location
	}
	if p.StartDate != nil {
		trip.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		trip.EndDate = *p.EndDate
	}
	if p.NotificationEnabled != nil {
		trip.NotificationEnabled = *p.NotificationEnabled
	}
	return trip
}
