package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/tripsync/internal/domain"
)

// createTaskRequest is the body of POST /api/trips/{tripID}/tasks.
type createTaskRequest struct {
	Title string     `json:"title"`
	Notes string     `json:"notes,omitempty"`
	DueAt *time.Time `json:"due_at,omitempty"`
}

// checkTaskRequest is the body of PATCH /api/trips/{tripID}/tasks/{taskID}/check.
type checkTaskRequest struct {
	Checked bool `json:"checked"`
}

// CreateTask handles POST /api/trips/{tripID}/tasks.
func (s *Server) CreateTask(w http.ResponseWriter, r *http.Request) {
	tripID, err := tripIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "trip not found")
		return
	}

	var req createTaskRequest
	if err := decodeBody(r, &req); err != nil {
		writeRequestError(w, "invalid request body")
		return
	}

	t := domain.Task{Title: req.Title, Notes: req.Notes, DueAt: req.DueAt}
	created, err := s.tasks.Create(r.Context(), tripID, identityFrom(r), t)
	if err != nil {
		writeServiceError(w, err, "trip")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListTasks handles GET /api/trips/{tripID}/tasks. Each task carries its
// derived checked_by identity list.
func (s *Server) ListTasks(w http.ResponseWriter, r *http.Request) {
	tripID, err := tripIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "trip not found")
		return
	}
	tasks, err := s.tasks.List(r.Context(), tripID)
	if err != nil {
		writeServiceError(w, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// CheckTask handles PATCH /api/trips/{tripID}/tasks/{taskID}/check.
// It toggles only the calling identity's own completion row; other
// members' checks are untouched. Returns the task with its refreshed
// checked_by list.
func (s *Server) CheckTask(w http.ResponseWriter, r *http.Request) {
	tripID, taskID, ok := s.taskPath(w, r)
	if !ok {
		return
	}

	var req checkTaskRequest
	if err := decodeBody(r, &req); err != nil {
		writeRequestError(w, "invalid request body")
		return
	}

	task, err := s.tasks.SetChecked(r.Context(), tripID, taskID, identityFrom(r), req.Checked)
	if err != nil {
		writeServiceError(w, err, "task")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/trips/{tripID}/tasks/{taskID}.
func (s *Server) DeleteTask(w http.ResponseWriter, r *http.Request) {
	tripID, taskID, ok := s.taskPath(w, r)
	if !ok {
		return
	}
	if err := s.tasks.Delete(r.Context(), tripID, taskID); err != nil {
		writeServiceError(w, err, "task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// taskPath parses the {tripID} and {taskID} path parameters, writing the
// error response itself when either is malformed.
func (s *Server) taskPath(w http.ResponseWriter, r *http.Request) (tripID, taskID uuid.UUID, ok bool) {
	tripID, err := tripIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "trip not found")
		return uuid.Nil, uuid.Nil, false
	}
	taskID, err = uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "task not found")
		return uuid.Nil, uuid.Nil, false
	}
	return tripID, taskID, true
}
