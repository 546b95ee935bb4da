// Package handler implements the HTTP surface of the TripSync gateway.
// All handlers are methods on Server and are split into domain-specific
// files (trip.go, task.go, watch.go, …) that share the same struct so they
// can access its dependencies. The JSON endpoints form the poll binding;
// the websocket watch endpoint carries the push binding's change stream.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/tripsync/internal/domain"
	"github.com/pkordes/tripsync/internal/middleware"
	"github.com/pkordes/tripsync/internal/realtime"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining interfaces here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the service layer or storage.
type TripServicer interface {
	Create(ctx context.Context, identity string, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	ListByOwner(ctx context.Context, identity string) ([]domain.Trip, error)
	Patch(ctx context.Context, id uuid.UUID, patch domain.TripPatch) (domain.Trip, error)
}

// MemberServicer defines the membership operations the handlers depend on.
type MemberServicer interface {
	Add(ctx context.Context, tripID uuid.UUID, m domain.Member) (domain.Member, error)
	List(ctx context.Context, tripID uuid.UUID) ([]domain.Member, error)
}

// EventServicer defines the itinerary operations the handlers depend on.
type EventServicer interface {
	Create(ctx context.Context, tripID uuid.UUID, identity string, e domain.Event) (domain.Event, error)
	List(ctx context.Context, tripID uuid.UUID) ([]domain.Event, error)
	Delete(ctx context.Context, tripID, eventID uuid.UUID) error
}

// TaskServicer defines the task and completion-set operations the handlers
// depend on.
type TaskServicer interface {
	Create(ctx context.Context, tripID uuid.UUID, identity string, t domain.Task) (domain.Task, error)
	List(ctx context.Context, tripID uuid.UUID) ([]domain.Task, error)
	SetChecked(ctx context.Context, tripID, taskID uuid.UUID, identity string, checked bool) (domain.Task, error)
	Delete(ctx context.Context, tripID, taskID uuid.UUID) error
}

// NoteServicer defines the shared-note operations the handlers depend on.
type NoteServicer interface {
	Get(ctx context.Context, tripID uuid.UUID) (domain.Note, error)
	Put(ctx context.Context, tripID uuid.UUID, identity, content string) (domain.Note, error)
}

// InviteServicer defines the invite/join operations the handlers depend on.
type InviteServicer interface {
	Create(ctx context.Context, tripID uuid.UUID, identity string) (domain.Invite, error)
	Resolve(ctx context.Context, token string) (domain.Invite, error)
	Join(ctx context.Context, token, identity string) (uuid.UUID, error)
}

// WatchMetrics counts open watch streams. The metrics package satisfies it.
type WatchMetrics interface {
	WatchOpened()
	WatchClosed()
}

// Server implements every gateway endpoint.
type Server struct {
	trips   TripServicer
	members MemberServicer
	events  EventServicer
	tasks   TaskServicer
	notes   NoteServicer
	invites InviteServicer
	hub     *realtime.Hub
	watch   WatchMetrics

	// gateHash is the expected sha256 hex of the app password.
	// Empty means the gate allows everyone (observed reference posture).
	gateHash string
}

// NewServer constructs the Server with all its dependencies.
func NewServer(
	trips TripServicer,
	members MemberServicer,
	events EventServicer,
	tasks TaskServicer,
	notes NoteServicer,
	invites InviteServicer,
	hub *realtime.Hub,
	gateHash string,
) *Server {
	return &Server{
		trips:    trips,
		members:  members,
		events:   events,
		tasks:    tasks,
		notes:    notes,
		invites:  invites,
		hub:      hub,
		watch:    noWatchMetrics{},
		gateHash: gateHash,
	}
}

// SetWatchMetrics attaches a watch-stream counter. Optional; the default
// discards the counts.
func (s *Server) SetWatchMetrics(m WatchMetrics) { s.watch = m }

type noWatchMetrics struct{}

func (noWatchMetrics) WatchOpened() {}
func (noWatchMetrics) WatchClosed() {}

// Routes returns the gateway's route tree. Cross-cutting middleware
// (request id, logging, CORS, identity, limits) is applied by the caller.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.Health)
	r.Post("/api/gate", s.CheckGate)
	r.Get("/api/watch", s.Watch)

	r.Route("/api/trips", func(r chi.Router) {
		r.Post("/", s.CreateTrip)
		r.Get("/", s.ListTrips)

		r.Route("/{tripID}", func(r chi.Router) {
			r.Get("/", s.GetTrip)
			r.Patch("/", s.PatchTrip)

			r.Get("/members", s.ListMembers)
			r.Post("/members", s.AddMember)

			r.Get("/events", s.ListEvents)
			r.Post("/events", s.CreateEvent)
			r.Delete("/events/{eventID}", s.DeleteEvent)

			r.Get("/tasks", s.ListTasks)
			r.Post("/tasks", s.CreateTask)
			r.Patch("/tasks/{taskID}/check", s.CheckTask)
			r.Delete("/tasks/{taskID}", s.DeleteTask)

			r.Get("/notes", s.GetNote)
			r.Put("/notes", s.PutNote)

			r.Post("/invites", s.CreateInvite)
		})
	})

	r.Route("/api/invites/{token}", func(r chi.Router) {
		r.Get("/", s.ResolveInvite)
		r.Post("/join", s.JoinInvite)
	})

	return r
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// tripIDParam parses the {tripID} path parameter. A malformed id behaves
// like a missing trip.
func tripIDParam(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "tripID"))
}

// identityFrom returns the caller's identity placed in the request context
// by the identity middleware.
func identityFrom(r *http.Request) string {
	return middleware.IdentityFrom(r.Context())
}
