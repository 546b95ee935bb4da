package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// joinResponse is the body returned by POST /api/invites/{token}/join.
type joinResponse struct {
	TripID uuid.UUID `json:"trip_id"`
}

// CreateInvite handles POST /api/trips/{tripID}/invites.
func (s *Server) CreateInvite(w http.ResponseWriter, r *http.Request) {
	tripID, err := tripIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "trip not found")
		return
	}
	inv, err := s.invites.Create(r.Context(), tripID, identityFrom(r))
	if err != nil {
		writeServiceError(w, err, "trip")
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

// ResolveInvite handles GET /api/invites/{token}. 404 is the expected
// answer for an unknown or mistyped token — clients render it as an
// informative message, not a failure.
func (s *Server) ResolveInvite(w http.ResponseWriter, r *http.Request) {
	inv, err := s.invites.Resolve(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeServiceError(w, err, "invite")
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// JoinInvite handles POST /api/invites/{token}/join. Joining twice with
// the same identity, or joining one's own trip, is a no-op that still
// returns the trip id.
func (s *Server) JoinInvite(w http.ResponseWriter, r *http.Request) {
	tripID, err := s.invites.Join(r.Context(), chi.URLParam(r, "token"), identityFrom(r))
	if err != nil {
		writeServiceError(w, err, "invite")
		return
	}
	writeJSON(w, http.StatusOK, joinResponse{TripID: tripID})
}
