package realtime

import "github.com/google/uuid"

// Topic names mirror the collection paths of the document store so the
// server and every client agree on what changed without sharing types.

// TopicTrips covers creation of trips and metadata changes visible in
// owner-filtered trip lists.
const TopicTrips = "trips"

// TopicTrip is the single-trip document topic.
func TopicTrip(tripID uuid.UUID) string { return "trips/" + tripID.String() }

// TopicMembers covers a trip's membership collection.
func TopicMembers(tripID uuid.UUID) string { return "trips/" + tripID.String() + "/members" }

// TopicEvents covers a trip's itinerary events.
func TopicEvents(tripID uuid.UUID) string { return "trips/" + tripID.String() + "/events" }

// TopicTasks covers a trip's task collection, including derived
// checked_by changes.
func TopicTasks(tripID uuid.UUID) string { return "trips/" + tripID.String() + "/tasks" }

// TopicChecks covers one task's completion set.
func TopicChecks(tripID, taskID uuid.UUID) string {
	return "trips/" + tripID.String() + "/tasks/" + taskID.String() + "/checks"
}

// TopicNotes covers a trip's singleton note.
func TopicNotes(tripID uuid.UUID) string { return "trips/" + tripID.String() + "/notes" }

// TopicInvite covers a single invite token document.
func TopicInvite(token string) string { return "invites/" + token }
