package handler

import (
	"net/http"

	"github.com/pkordes/tripsync/internal/domain"
)

// addMemberRequest is the body of POST /api/trips/{tripID}/members.
// Identity defaults to the caller when omitted.
type addMemberRequest struct {
	Identity    string      `json:"identity"`
	Role        domain.Role `json:"role,omitempty"`
	Phone       string      `json:"phone,omitempty"`
	DisplayName string      `json:"display_name,omitempty"`
}

// AddMember handles POST /api/trips/{tripID}/members. Membership is keyed
// by (trip, identity): posting twice updates the row, never duplicates it.
func (s *Server) AddMember(w http.ResponseWriter, r *http.Request) {
	tripID, err := tripIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "trip not found")
		return
	}

	var req addMemberRequest
	if err := decodeBody(r, &req); err != nil {
		writeRequestError(w, "invalid request body")
		return
	}
	if req.Identity == "" {
		req.Identity = identityFrom(r)
	}

	m := domain.Member{
		Identity:    req.Identity,
		Role:        req.Role,
		Phone:       req.Phone,
		DisplayName: req.DisplayName,
	}
	added, err := s.members.Add(r.Context(), tripID, m)
	if err != nil {
		writeServiceError(w, err, "trip")
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// ListMembers handles GET /api/trips/{tripID}/members.
func (s *Server) ListMembers(w http.ResponseWriter, r *http.Request) {
	tripID, err := tripIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "trip not found")
		return
	}
	members, err := s.members.List(r.Context(), tripID)
	if err != nil {
		writeServiceError(w, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, members)
}
