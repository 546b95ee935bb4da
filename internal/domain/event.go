package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event is one itinerary entry on a single day of a trip.
// Within a day, events order by Time ascending; ties keep insertion order
// (Time need not be unique).
type Event struct {
	ID        uuid.UUID `json:"id"`
	TripID    uuid.UUID `json:"trip_id"`
	Day       Date      `json:"day"`
	Title     string    `json:"title"`
	Time      string    `json:"time"` // "HH:mm", 24-hour
	Notes     string    `json:"notes,omitempty"`
	Location  *Location `json:"location,omitempty"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidEventTime reports whether s is a well-formed "HH:mm" clock time.
func ValidEventTime(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}
