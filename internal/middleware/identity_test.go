package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripsync/internal/middleware"
)

func identityProbe() (http.Handler, *string) {
	var seen string
	h := middleware.NewIdentity()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.IdentityFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	return h, &seen
}

func TestNewIdentity_MintsWhenHeaderAbsent(t *testing.T) {
	h, seen := identityProbe()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	// The minted identity is a uuid, placed in the context and echoed in
	// the response header so the client can persist it.
	_, err := uuid.Parse(*seen)
	require.NoError(t, err)
	assert.Equal(t, *seen, rec.Header().Get(middleware.IdentityHeader))
}

func TestNewIdentity_PassesThroughExisting(t *testing.T) {
	h, seen := identityProbe()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.IdentityHeader, "my-identity")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "my-identity", *seen)
	assert.Equal(t, "my-identity", rec.Header().Get(middleware.IdentityHeader))
}

func TestIdentityFrom_EmptyWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	assert.Empty(t, middleware.IdentityFrom(req.Context()))
}
