package domain

import "time"

// Note is the single shared free-text note of a trip. Last writer wins;
// no history is kept. A trip with no note yet reads as the zero Note.
type Note struct {
	Content   string     `json:"content"`
	UpdatedBy string     `json:"updated_by,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}
