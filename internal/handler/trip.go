package handler

import (
	"net/http"

	"github.com/pkordes/tripsync/internal/domain"
)

// createTripRequest is the body of POST /api/trips.
type createTripRequest struct {
	Name                string           `json:"name"`
	Location            *domain.Location `json:"location,omitempty"`
	StartDate           domain.Date      `json:"start_date"`
	EndDate             domain.Date      `json:"end_date"`
	NotificationEnabled bool             `json:"notification_enabled"`
}

// CreateTrip handles POST /api/trips. The calling identity becomes the
// trip's owner.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req createTripRequest
	if err := decodeBody(r, &req); err != nil {
		writeRequestError(w, "invalid request body")
		return
	}

	trip := domain.Trip{
		Name:                req.Name,
		Location:            req.Location,
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		NotificationEnabled: req.NotificationEnabled,
	}
	created, err := s.trips.Create(r.Context(), identityFrom(r), trip)
	if err != nil {
		writeServiceError(w, err, "trip")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// ListTrips handles GET /api/trips: the trips owned by the calling identity.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.trips.ListByOwner(r.Context(), identityFrom(r))
	if err != nil {
		writeServiceError(w, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, trips)
}

// GetTrip handles GET /api/trips/{tripID}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, err := tripIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "trip not found")
		return
	}
	trip, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// PatchTrip handles PATCH /api/trips/{tripID}. Fields absent from the body
// are left untouched.
func (s *Server) PatchTrip(w http.ResponseWriter, r *http.Request) {
	id, err := tripIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "trip not found")
		return
	}

	var patch domain.TripPatch
	if err := decodeBody(r, &patch); err != nil {
		writeRequestError(w, "invalid request body")
		return
	}

	updated, err := s.trips.Patch(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
