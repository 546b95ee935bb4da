package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripsync/internal/domain"
	"github.com/pkordes/tripsync/internal/handler"
	"github.com/pkordes/tripsync/internal/middleware"
	"github.com/pkordes/tripsync/internal/realtime"
	"github.com/pkordes/tripsync/internal/repo"
	"github.com/pkordes/tripsync/internal/service"
)

// newTestHandler wires the full gateway over the memory backend, mirroring
// how main.go wires it in production: memory repos, real services, the
// realtime hub and the identity middleware. Handler tests exercise real
// semantics end to end rather than mock plumbing.
func newTestHandler() (http.Handler, *realtime.Hub) {
	repos := repo.NewMemory()
	hub := realtime.NewHub()

	srv := handler.NewServer(
		service.NewTripService(repos.Trips, hub),
		service.NewMemberService(repos.Trips, repos.Members, hub),
		service.NewEventService(repos.Trips, repos.Events, hub),
		service.NewTaskService(repos.Trips, repos.Tasks, repos.Checks, hub),
		service.NewNoteService(repos.Trips, repos.Notes, hub),
		service.NewInviteService(repos.Trips, repos.Members, repos.Invites, hub),
		hub,
		"",
	)
	return middleware.NewIdentity()(srv.Routes()), hub
}

// doJSON performs one request against h as the given identity and returns
// the response recorder.
func doJSON(t *testing.T, h http.Handler, method, path, identity string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if identity != "" {
		req.Header.Set(middleware.IdentityHeader, identity)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

// createTrip makes a trip owned by identity and returns it.
func createTrip(t *testing.T, h http.Handler, identity, name string) domain.Trip {
	t.Helper()

	rec := doJSON(t, h, http.MethodPost, "/api/trips", identity, map[string]any{
		"name":       name,
		"start_date": "2026-04-01",
		"end_date":   "2026-04-10",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var trip domain.Trip
	decodeInto(t, rec, &trip)
	return trip
}

// ---- identity middleware ---------------------------------------------------

func TestIdentity_MintedWhenAbsent(t *testing.T) {
	h, _ := newTestHandler()

	rec := doJSON(t, h, http.MethodGet, "/health", "", nil)

	minted := rec.Header().Get(middleware.IdentityHeader)
	require.NotEmpty(t, minted)
	_, err := uuid.Parse(minted)
	assert.NoError(t, err)
}

func TestIdentity_EchoedWhenPresent(t *testing.T) {
	h, _ := newTestHandler()

	rec := doJSON(t, h, http.MethodGet, "/health", "my-identity", nil)

	assert.Equal(t, "my-identity", rec.Header().Get(middleware.IdentityHeader))
}

// ---- trips -----------------------------------------------------------------

func TestTrips_CreateAndGet(t *testing.T) {
	h, _ := newTestHandler()

	trip := createTrip(t, h, "owner-1", "Japan")
	assert.Equal(t, "owner-1", trip.OwnerIdentity)
	assert.NotEqual(t, uuid.Nil, trip.ID)

	rec := doJSON(t, h, http.MethodGet, "/api/trips/"+trip.ID.String(), "owner-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.Trip
	decodeInto(t, rec, &got)
	assert.Equal(t, trip.ID, got.ID)
	assert.Equal(t, "Japan", got.Name)
}

func TestTrips_GetUnknown404(t *testing.T) {
	h, _ := newTestHandler()

	rec := doJSON(t, h, http.MethodGet, "/api/trips/"+uuid.NewString(), "owner-1", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}

func TestTrips_GetMalformedID404(t *testing.T) {
	h, _ := newTestHandler()

	rec := doJSON(t, h, http.MethodGet, "/api/trips/not-a-uuid", "owner-1", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTrips_CreateInvalid422(t *testing.T) {
	h, _ := newTestHandler()

	rec := doJSON(t, h, http.MethodPost, "/api/trips", "owner-1", map[string]any{
		"name":       "Backwards",
		"start_date": "2026-04-10",
		"end_date":   "2026-04-01",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_error")
}

func TestTrips_ListScopedToOwner(t *testing.T) {
	h, _ := newTestHandler()

	createTrip(t, h, "owner-1", "Japan")
	createTrip(t, h, "owner-2", "Norway")

	rec := doJSON(t, h, http.MethodGet, "/api/trips", "owner-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var trips []domain.Trip
	decodeInto(t, rec, &trips)
	require.Len(t, trips, 1)
	assert.Equal(t, "Japan", trips[0].Name)
}

func TestTrips_PatchMerges(t *testing.T) {
	h, _ := newTestHandler()
	trip := createTrip(t, h, "owner-1", "Japan")

	rec := doJSON(t, h, http.MethodPatch, "/api/trips/"+trip.ID.String(), "owner-1", map[string]any{
		"name": "Japan 2026",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.Trip
	decodeInto(t, rec, &got)
	assert.Equal(t, "Japan 2026", got.Name)
	// Fields absent from the patch keep their values.
	assert.True(t, got.StartDate.Equal(trip.StartDate))
	assert.NotNil(t, got.UpdatedAt)
}

// ---- events ----------------------------------------------------------------

func createEvent(t *testing.T, h http.Handler, tripID uuid.UUID, title, day, at string) domain.Event {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/trips/"+tripID.String()+"/events", "owner-1", map[string]any{
		"title": title,
		"day":   day,
		"time":  at,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var e domain.Event
	decodeInto(t, rec, &e)
	return e
}

func TestEvents_OrderedByTimeWithinDay(t *testing.T) {
	h, _ := newTestHandler()
	trip := createTrip(t, h, "owner-1", "Japan")

	// Inserted out of order: the listing must still come back sorted.
	createEvent(t, h, trip.ID, "Temple", "2026-04-02", "13:00")
	createEvent(t, h, trip.ID, "Breakfast", "2026-04-02", "09:00")

	rec := doJSON(t, h, http.MethodGet, "/api/trips/"+trip.ID.String()+"/events", "owner-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var events []domain.Event
	decodeInto(t, rec, &events)
	require.Len(t, events, 2)
	assert.Equal(t, "Breakfast", events[0].Title)
	assert.Equal(t, "Temple", events[1].Title)
}

func TestEvents_DayOutsideTripDates422(t *testing.T) {
	h, _ := newTestHandler()
	trip := createTrip(t, h, "owner-1", "Japan")

	rec := doJSON(t, h, http.MethodPost, "/api/trips/"+trip.ID.String()+"/events", "owner-1", map[string]any{
		"title": "Too late",
		"day":   "2026-05-01",
		"time":  "09:00",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestEvents_DeleteWrongTrip409(t *testing.T) {
	h, _ := newTestHandler()
	tripA := createTrip(t, h, "owner-1", "Japan")
	tripB := createTrip(t, h, "owner-1", "Norway")
	e := createEvent(t, h, tripA.ID, "Breakfast", "2026-04-02", "09:00")

	// The event exists, but under trip A: deleting it through trip B is a
	// scope conflict, not a 404 and not a silent success.
	rec := doJSON(t, h, http.MethodDelete,
		"/api/trips/"+tripB.ID.String()+"/events/"+e.ID.String(), "owner-1", nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "scope_error")

	// And the event is still there.
	rec = doJSON(t, h, http.MethodGet, "/api/trips/"+tripA.ID.String()+"/events", "owner-1", nil)
	var events []domain.Event
	decodeInto(t, rec, &events)
	assert.Len(t, events, 1)
}

func TestEvents_Delete204(t *testing.T) {
	h, _ := newTestHandler()
	trip := createTrip(t, h, "owner-1", "Japan")
	e := createEvent(t, h, trip.ID, "Breakfast", "2026-04-02", "09:00")

	rec := doJSON(t, h, http.MethodDelete,
		"/api/trips/"+trip.ID.String()+"/events/"+e.ID.String(), "owner-1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/trips/"+trip.ID.String()+"/events", "owner-1", nil)
	var events []domain.Event
	decodeInto(t, rec, &events)
	assert.Empty(t, events)
}

// ---- tasks and completion sets ---------------------------------------------

func createTask(t *testing.T, h http.Handler, tripID uuid.UUID, title string) domain.Task {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/trips/"+tripID.String()+"/tasks", "owner-1", map[string]any{
		"title": title,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var task domain.Task
	decodeInto(t, rec, &task)
	return task
}

func checkTask(t *testing.T, h http.Handler, tripID, taskID uuid.UUID, identity string, checked bool) domain.Task {
	t.Helper()
	rec := doJSON(t, h, http.MethodPatch,
		"/api/trips/"+tripID.String()+"/tasks/"+taskID.String()+"/check", identity,
		map[string]any{"checked": checked})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var task domain.Task
	decodeInto(t, rec, &task)
	return task
}

func TestTasks_EachMemberChecksIndependently(t *testing.T) {
	h, _ := newTestHandler()
	trip := createTrip(t, h, "owner-1", "Japan")
	task := createTask(t, h, trip.ID, "Pack bags")
	assert.Empty(t, task.CheckedBy)

	// Three members check the same task: three entries, one per identity.
	for _, member := range []string{"m-1", "m-2", "m-3"} {
		task = checkTask(t, h, trip.ID, task.ID, member, true)
	}
	assert.Len(t, task.CheckedBy, 3)

	// One member unchecking removes only their own completion.
	task = checkTask(t, h, trip.ID, task.ID, "m-2", false)
	assert.ElementsMatch(t, []string{"m-1", "m-3"}, task.CheckedBy)
}

func TestTasks_CheckIsIdempotent(t *testing.T) {
	h, _ := newTestHandler()
	trip := createTrip(t, h, "owner-1", "Japan")
	task := createTask(t, h, trip.ID, "Pack bags")

	task = checkTask(t, h, trip.ID, task.ID, "m-1", true)
	task = checkTask(t, h, trip.ID, task.ID, "m-1", true)
	assert.Equal(t, []string{"m-1"}, task.CheckedBy)

	// Unchecking an already unchecked task is equally harmless.
	task = checkTask(t, h, trip.ID, task.ID, "m-1", false)
	task = checkTask(t, h, trip.ID, task.ID, "m-1", false)
	assert.Empty(t, task.CheckedBy)
}

func TestTasks_CheckWrongTrip409(t *testing.T) {
	h, _ := newTestHandler()
	tripA := createTrip(t, h, "owner-1", "Japan")
	tripB := createTrip(t, h, "owner-1", "Norway")
	task := createTask(t, h, tripA.ID, "Pack bags")

	rec := doJSON(t, h, http.MethodPatch,
		"/api/trips/"+tripB.ID.String()+"/tasks/"+task.ID.String()+"/check", "m-1",
		map[string]any{"checked": true})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTasks_Delete204(t *testing.T) {
	h, _ := newTestHandler()
	trip := createTrip(t, h, "owner-1", "Japan")
	task := createTask(t, h, trip.ID, "Pack bags")

	rec := doJSON(t, h, http.MethodDelete,
		"/api/trips/"+trip.ID.String()+"/tasks/"+task.ID.String(), "owner-1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/trips/"+trip.ID.String()+"/tasks", "owner-1", nil)
	var tasks []domain.Task
	decodeInto(t, rec, &tasks)
	assert.Empty(t, tasks)
}

// ---- notes -----------------------------------------------------------------

func TestNotes_UnwrittenReadsEmpty(t *testing.T) {
	h, _ := newTestHandler()
	trip := createTrip(t, h, "owner-1", "Japan")

	rec := doJSON(t, h, http.MethodGet, "/api/trips/"+trip.ID.String()+"/notes", "owner-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var note domain.Note
	decodeInto(t, rec, &note)
	assert.Empty(t, note.Content)
}

func TestNotes_LastWriterWins(t *testing.T) {
	h, _ := newTestHandler()
	trip := createTrip(t, h, "owner-1", "Japan")
	path := "/api/trips/" + trip.ID.String() + "/notes"

	doJSON(t, h, http.MethodPut, path, "m-1", map[string]any{"content": "bring snacks"})
	rec := doJSON(t, h, http.MethodPut, path, "m-2", map[string]any{"content": "bring MORE snacks"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, path, "m-1", nil)
	var note domain.Note
	decodeInto(t, rec, &note)
	assert.Equal(t, "bring MORE snacks", note.Content)
	assert.Equal(t, "m-2", note.UpdatedBy)
}

// ---- invites and join ------------------------------------------------------

func TestInvites_FullJoinFlow(t *testing.T) {
	h, _ := newTestHandler()
	trip := createTrip(t, h, "owner-1", "Japan")

	rec := doJSON(t, h, http.MethodPost, "/api/trips/"+trip.ID.String()+"/invites", "owner-1", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var inv domain.Invite
	decodeInto(t, rec, &inv)
	require.NotEmpty(t, inv.Token)

	// Resolving shows the trip without joining.
	rec = doJSON(t, h, http.MethodGet, "/api/invites/"+inv.Token, "m-2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resolved domain.Invite
	decodeInto(t, rec, &resolved)
	assert.Equal(t, trip.ID, resolved.TripID)

	// Joining twice with the same identity yields exactly one member row.
	for i := 0; i < 2; i++ {
		rec = doJSON(t, h, http.MethodPost, "/api/invites/"+inv.Token+"/join", "m-2", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var join struct {
			TripID uuid.UUID `json:"trip_id"`
		}
		decodeInto(t, rec, &join)
		assert.Equal(t, trip.ID, join.TripID)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/trips/"+trip.ID.String()+"/members", "owner-1", nil)
	var members []domain.Member
	decodeInto(t, rec, &members)
	require.Len(t, members, 1)
	assert.Equal(t, "m-2", members[0].Identity)
	assert.Equal(t, domain.RoleMember, members[0].Role)
}

func TestInvites_ResolveUnknownToken404(t *testing.T) {
	h, _ := newTestHandler()

	rec := doJSON(t, h, http.MethodGet, "/api/invites/no-such-token", "m-2", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "invite not found")
}

func TestInvites_JoinUnknownToken404(t *testing.T) {
	h, _ := newTestHandler()

	rec := doJSON(t, h, http.MethodPost, "/api/invites/no-such-token/join", "m-2", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ---- members ---------------------------------------------------------------

func TestMembers_AddTwiceKeepsOneRow(t *testing.T) {
	h, _ := newTestHandler()
	trip := createTrip(t, h, "owner-1", "Japan")
	path := "/api/trips/" + trip.ID.String() + "/members"

	rec := doJSON(t, h, http.MethodPost, path, "owner-1", map[string]any{
		"identity": "m-1", "display_name": "Alice",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, path, "owner-1", map[string]any{
		"identity": "m-1", "display_name": "Alice B",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodGet, path, "owner-1", nil)
	var members []domain.Member
	decodeInto(t, rec, &members)
	require.Len(t, members, 1)
	assert.Equal(t, "Alice B", members[0].DisplayName)
}

func TestMembers_AddDefaultsToCaller(t *testing.T) {
	h, _ := newTestHandler()
	trip := createTrip(t, h, "owner-1", "Japan")

	rec := doJSON(t, h, http.MethodPost, "/api/trips/"+trip.ID.String()+"/members", "owner-1",
		map[string]any{"role": "owner"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var m domain.Member
	decodeInto(t, rec, &m)
	assert.Equal(t, "owner-1", m.Identity)
	assert.Equal(t, domain.RoleOwner, m.Role)
}
