package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/tripsync/internal/domain"
)

// createEventRequest is the body of POST /api/trips/{tripID}/events.
type createEventRequest struct {
	Day      domain.Date      `json:"day"`
	Title    string           `json:"title"`
	Time     string           `json:"time"`
	Notes    string           `json:"notes,omitempty"`
	Location *domain.Location `json:"location,omitempty"`
}

// CreateEvent handles POST /api/trips/{tripID}/events.
func (s *Server) CreateEvent(w http.ResponseWriter, r *http.Request) {
	tripID, err := tripIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "trip not found")
		return
	}

	var req createEventRequest
	if err := decodeBody(r, &req); err != nil {
		writeRequestError(w, "invalid request body")
		return
	}

	e := domain.Event{
		Day:      req.Day,
		Title:    req.Title,
		Time:     req.Time,
		Notes:    req.Notes,
		Location: req.Location,
	}
	created, err := s.events.Create(r.Context(), tripID, identityFrom(r), e)
	if err != nil {
		writeServiceError(w, err, "trip")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListEvents handles GET /api/trips/{tripID}/events. Events come back
// ordered by day, then time ascending, equal times in insertion order.
func (s *Server) ListEvents(w http.ResponseWriter, r *http.Request) {
	tripID, err := tripIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "trip not found")
		return
	}
	events, err := s.events.List(r.Context(), tripID)
	if err != nil {
		writeServiceError(w, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// DeleteEvent handles DELETE /api/trips/{tripID}/events/{eventID}.
// An event id under the wrong trip is rejected with a scope error, not
// silently rescoped.
func (s *Server) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	tripID, err := tripIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "trip not found")
		return
	}
	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "event not found")
		return
	}

	if err := s.events.Delete(r.Context(), tripID, eventID); err != nil {
		writeServiceError(w, err, "event")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
