package handler

import (
	"net/http"
)

// putNoteRequest is the body of PUT /api/trips/{tripID}/notes.
type putNoteRequest struct {
	Content string `json:"content"`
}

// GetNote handles GET /api/trips/{tripID}/notes. A trip whose note was
// never written returns an empty note, not 404.
func (s *Server) GetNote(w http.ResponseWriter, r *http.Request) {
	tripID, err := tripIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "trip not found")
		return
	}
	note, err := s.notes.Get(r.Context(), tripID)
	if err != nil {
		writeServiceError(w, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// PutNote handles PUT /api/trips/{tripID}/notes. Whole-note replace, last
// writer wins.
func (s *Server) PutNote(w http.ResponseWriter, r *http.Request) {
	tripID, err := tripIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "trip not found")
		return
	}

	var req putNoteRequest
	if err := decodeBody(r, &req); err != nil {
		writeRequestError(w, "invalid request body")
		return
	}

	note, err := s.notes.Put(r.Context(), tripID, identityFrom(r), req.Content)
	if err != nil {
		writeServiceError(w, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, note)
}
