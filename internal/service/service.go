// Package service contains the business logic for TripSync.
// Services validate inputs, enforce business rules, assign ids and
// timestamps, orchestrate repo calls, and publish change topics so every
// live subscriber — including the writer — observes each mutation.
// No storage access or HTTP lives here.
package service

import "time"

// Publisher receives change-topic notifications after successful mutations.
// *realtime.Hub satisfies it; tests substitute a recorder.
type Publisher interface {
	Publish(topics ...string)
}

// now returns the current UTC time. Timestamps are assigned here, at the
// gateway, so both storage backends persist identical rows.
func now() time.Time {
	return time.Now().UTC()
}
