package repo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/pkordes/tripsync/internal/domain"
)

// memStore is the in-memory reference backend: a process-lifetime store of
// every collection, passed by reference to the per-collection repos rather
// than held in package globals, so the gateway can swap it for Postgres
// without touching handler or service logic.
//
// A single RWMutex guards everything. The store serves one gateway process;
// contention is between request handlers, and the critical sections are
// short map operations.
type memStore struct {
	mu        sync.RWMutex
	trips     map[uuid.UUID]domain.Trip
	members   map[uuid.UUID][]domain.Member         // trip id → members in join order
	events    map[uuid.UUID][]domain.Event          // trip id → events in insertion order
	tasks     map[uuid.UUID][]domain.Task           // trip id → tasks in creation order
	checks    map[uuid.UUID]map[string]domain.Check // task id → identity → check
	notes     map[uuid.UUID]domain.Note             // trip id → note
	invites   map[string]domain.Invite              // token → invite
	taskTrip  map[uuid.UUID]uuid.UUID               // task id → trip id
	eventTrip map[uuid.UUID]uuid.UUID               // event id → trip id
}

// NewMemory returns a Repos bundle backed by a fresh in-memory store.
// State lives for the lifetime of the process and is shared by every repo
// in the bundle.
func NewMemory() Repos {
	s := &memStore{
		trips:     make(map[uuid.UUID]domain.Trip),
		members:   make(map[uuid.UUID][]domain.Member),
		events:    make(map[uuid.UUID][]domain.Event),
		tasks:     make(map[uuid.UUID][]domain.Task),
		checks:    make(map[uuid.UUID]map[string]domain.Check),
		notes:     make(map[uuid.UUID]domain.Note),
		invites:   make(map[string]domain.Invite),
		taskTrip:  make(map[uuid.UUID]uuid.UUID),
		eventTrip: make(map[uuid.UUID]uuid.UUID),
	}
	return Repos{
		Trips:   &memTripRepo{s: s},
		Members: &memMemberRepo{s: s},
		Events:  &memEventRepo{s: s},
		Tasks:   &memTaskRepo{s: s},
		Checks:  &memCheckRepo{s: s},
		Notes:   &memNoteRepo{s: s},
		Invites: &memInviteRepo{s: s},
	}
}

// ---- trips -----------------------------------------------------------------

type memTripRepo struct {
	s *memStore
}

func (r *memTripRepo) Create(_ context.Context, trip domain.Trip) (domain.Trip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.trips[trip.ID] = trip
	// Provision the trip's child collections up front, matching the
	// reference gateway's behavior.
	r.s.members[trip.ID] = []domain.Member{}
	r.s.events[trip.ID] = []domain.Event{}
	r.s.tasks[trip.ID] = []domain.Task{}
	return trip, nil
}

func (r *memTripRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Trip, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	trip, ok := r.s.trips[id]
	if !ok {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", domain.ErrNotFound)
	}
	return trip, nil
}

func (r *memTripRepo) ListByOwner(_ context.Context, ownerIdentity string) ([]domain.Trip, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var trips []domain.Trip
	for _, t := range r.s.trips {
		if t.OwnerIdentity == ownerIdentity {
			trips = append(trips, t)
		}
	}
	sort.SliceStable(trips, func(i, j int) bool {
		if !trips[i].StartDate.Equal(trips[j].StartDate) {
			return trips[i].StartDate.Before(trips[j].StartDate)
		}
		return trips[i].CreatedAt.Before(trips[j].CreatedAt)
	})
	return trips, nil
}

func (r *memTripRepo) Update(_ context.Context, trip domain.Trip) (domain.Trip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.trips[trip.ID]; !ok {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", domain.ErrNotFound)
	}
	r.s.trips[trip.ID] = trip
	return trip, nil
}

// ---- members ---------------------------------------------------------------

type memMemberRepo struct {
	s *memStore
}

func (r *memMemberRepo) Upsert(_ context.Context, tripID uuid.UUID, m domain.Member) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	list := r.s.members[tripID]
	for i, existing := range list {
		if existing.Identity == m.Identity {
			// Keep the original join timestamp on upsert.
			m.JoinedAt = existing.JoinedAt
			list[i] = m
			return nil
		}
	}
	r.s.members[tripID] = append(list, m)
	return nil
}

func (r *memMemberRepo) InsertIfAbsent(_ context.Context, tripID uuid.UUID, m domain.Member) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.members[tripID] {
		if existing.Identity == m.Identity {
			return false, nil
		}
	}
	r.s.members[tripID] = append(r.s.members[tripID], m)
	return true, nil
}

func (r *memMemberRepo) ListByTrip(_ context.Context, tripID uuid.UUID) ([]domain.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := r.s.members[tripID]
	out := make([]domain.Member, len(list))
	copy(out, list)
	return out, nil
}

// ---- events ----------------------------------------------------------------

type memEventRepo struct {
	s *memStore
}

func (r *memEventRepo) Create(_ context.Context, e domain.Event) (domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.events[e.TripID] = append(r.s.events[e.TripID], e)
	r.s.eventTrip[e.ID] = e.TripID
	return e, nil
}

func (r *memEventRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	tripID, ok := r.s.eventTrip[id]
	if !ok {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.GetByID: %w", domain.ErrNotFound)
	}
	for _, e := range r.s.events[tripID] {
		if e.ID == id {
			return e, nil
		}
	}
	return domain.Event{}, fmt.Errorf("repo.EventRepo.GetByID: %w", domain.ErrNotFound)
}

func (r *memEventRepo) ListByTrip(_ context.Context, tripID uuid.UUID) ([]domain.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := r.s.events[tripID]
	out := make([]domain.Event, len(list))
	copy(out, list)
	// The slice is in insertion order; a stable sort by (day, time) keeps
	// that order for equal times.
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Day.Equal(out[j].Day) {
			return out[i].Day.Before(out[j].Day)
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (r *memEventRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tripID, ok := r.s.eventTrip[id]
	if !ok {
		return fmt.Errorf("repo.EventRepo.Delete: %w", domain.ErrNotFound)
	}
	list := r.s.events[tripID]
	for i, e := range list {
		if e.ID == id {
			r.s.events[tripID] = append(list[:i:i], list[i+1:]...)
			delete(r.s.eventTrip, id)
			return nil
		}
	}
	return fmt.Errorf("repo.EventRepo.Delete: %w", domain.ErrNotFound)
}

// ---- tasks -----------------------------------------------------------------

type memTaskRepo struct {
	s *memStore
}

func (r *memTaskRepo) Create(_ context.Context, t domain.Task) (domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t.CheckedBy = []string{}
	r.s.tasks[t.TripID] = append(r.s.tasks[t.TripID], t)
	r.s.taskTrip[t.ID] = t.TripID
	return t, nil
}

func (r *memTaskRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	tripID, ok := r.s.taskTrip[id]
	if !ok {
		return domain.Task{}, fmt.Errorf("repo.TaskRepo.GetByID: %w", domain.ErrNotFound)
	}
	for _, t := range r.s.tasks[tripID] {
		if t.ID == id {
			t.CheckedBy = r.s.checkedIdentities(id)
			return t, nil
		}
	}
	return domain.Task{}, fmt.Errorf("repo.TaskRepo.GetByID: %w", domain.ErrNotFound)
}

func (r *memTaskRepo) ListByTrip(_ context.Context, tripID uuid.UUID) ([]domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := r.s.tasks[tripID]
	out := make([]domain.Task, len(list))
	for i, t := range list {
		t.CheckedBy = r.s.checkedIdentities(t.ID)
		out[i] = t
	}
	return out, nil
}

func (r *memTaskRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tripID, ok := r.s.taskTrip[id]
	if !ok {
		return fmt.Errorf("repo.TaskRepo.Delete: %w", domain.ErrNotFound)
	}
	list := r.s.tasks[tripID]
	for i, t := range list {
		if t.ID == id {
			r.s.tasks[tripID] = append(list[:i:i], list[i+1:]...)
			delete(r.s.taskTrip, id)
			delete(r.s.checks, id)
			return nil
		}
	}
	return fmt.Errorf("repo.TaskRepo.Delete: %w", domain.ErrNotFound)
}

// checkedIdentities returns a task's checked identities ordered by
// checked_at, ties broken by identity. Callers must hold s.mu.
func (s *memStore) checkedIdentities(taskID uuid.UUID) []string {
	rows := s.checks[taskID]
	checks := make([]domain.Check, 0, len(rows))
	for _, c := range rows {
		checks = append(checks, c)
	}
	sort.Slice(checks, func(i, j int) bool {
		if !checks[i].CheckedAt.Equal(checks[j].CheckedAt) {
			return checks[i].CheckedAt.Before(checks[j].CheckedAt)
		}
		return checks[i].Identity < checks[j].Identity
	})
	out := make([]string, len(checks))
	for i, c := range checks {
		out[i] = c.Identity
	}
	return out
}

// ---- checks ----------------------------------------------------------------

type memCheckRepo struct {
	s *memStore
}

func (r *memCheckRepo) Set(_ context.Context, c domain.Check) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rows := r.s.checks[c.TaskID]
	if rows == nil {
		rows = make(map[string]domain.Check)
		r.s.checks[c.TaskID] = rows
	}
	if _, ok := rows[c.Identity]; ok {
		// Already checked: keep the original checked_at.
		return nil
	}
	rows[c.Identity] = c
	return nil
}

func (r *memCheckRepo) Unset(_ context.Context, taskID uuid.UUID, identity string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.checks[taskID], identity)
	return nil
}

func (r *memCheckRepo) ListByTask(_ context.Context, taskID uuid.UUID) ([]domain.Check, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := r.s.checks[taskID]
	checks := make([]domain.Check, 0, len(rows))
	for _, c := range rows {
		checks = append(checks, c)
	}
	sort.Slice(checks, func(i, j int) bool {
		if !checks[i].CheckedAt.Equal(checks[j].CheckedAt) {
			return checks[i].CheckedAt.Before(checks[j].CheckedAt)
		}
		return checks[i].Identity < checks[j].Identity
	})
	return checks, nil
}

// ---- notes -----------------------------------------------------------------

type memNoteRepo struct {
	s *memStore
}

func (r *memNoteRepo) Get(_ context.Context, tripID uuid.UUID) (domain.Note, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.notes[tripID], nil
}

func (r *memNoteRepo) Put(_ context.Context, tripID uuid.UUID, n domain.Note) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.notes[tripID] = n
	return nil
}

// ---- invites ---------------------------------------------------------------

type memInviteRepo struct {
	s *memStore
}

func (r *memInviteRepo) Create(_ context.Context, inv domain.Invite) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.invites[inv.Token] = inv
	return nil
}

func (r *memInviteRepo) GetByToken(_ context.Context, token string) (domain.Invite, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	inv, ok := r.s.invites[token]
	if !ok {
		return domain.Invite{}, fmt.Errorf("repo.InviteRepo.GetByToken: %w", domain.ErrNotFound)
	}
	return inv, nil
}
