package identity_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripsync/internal/identity"
)

func TestProvider_StableAcrossCalls(t *testing.T) {
	p := identity.NewProviderAt(filepath.Join(t.TempDir(), "identity"))

	first := p.Current()

	require.NotEmpty(t, first)
	assert.Equal(t, first, p.Current())
	assert.Equal(t, first, p.Current())
}

func TestProvider_StableAcrossSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity")

	first := identity.NewProviderAt(path).Current()

	// A new Provider on the same path models a process restart.
	second := identity.NewProviderAt(path).Current()

	assert.Equal(t, first, second)
}

func TestProvider_ReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity")
	require.NoError(t, os.WriteFile(path, []byte("existing-id\n"), 0o600))

	p := identity.NewProviderAt(path)

	assert.Equal(t, "existing-id", p.Current())
}

func TestProvider_MintsUUID(t *testing.T) {
	p := identity.NewProviderAt(filepath.Join(t.TempDir(), "identity"))

	_, err := uuid.Parse(p.Current())

	assert.NoError(t, err)
}

func TestProvider_DegradedModeMintsPerCall(t *testing.T) {
	dir := t.TempDir()
	// A file where the parent dir should be makes MkdirAll fail.
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	p := identity.NewProviderAt(filepath.Join(blocker, "sub", "identity"))

	first := p.Current()
	second := p.Current()

	// Persistence is impossible, so every call mints a fresh identity
	// rather than silently caching an unsaved one.
	require.NotEmpty(t, first)
	require.NotEmpty(t, second)
	assert.NotEqual(t, first, second)
}
