// Package identity issues the stable anonymous identity of one device or
// session. An identity is a client-local opaque string: obtaining one never
// requires a network call, and nothing in the system ever destroys one.
package identity

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Provider mints an identity on first use and persists it to a small state
// file so later sessions keep the same one.
//
// Degraded mode: when the file can neither be read nor written, a fresh
// identity is minted on every call and a warning is logged. That is the
// documented fallback, not hidden behavior — callers sharing state across
// sessions need working persistence.
type Provider struct {
	path string

	mu     sync.Mutex
	cached string
}

// NewProvider returns a Provider storing its identity under the user
// config dir (e.g. ~/.config/tripsync/identity).
func NewProvider() (*Provider, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return NewProviderAt(filepath.Join(dir, "tripsync", "identity")), nil
}

// NewProviderAt returns a Provider storing its identity at path.
func NewProviderAt(path string) *Provider {
	return &Provider{path: path}
}

// Current returns this session's identity, minting and persisting one on
// first call. Idempotent while persistence works: every call returns the
// same value.
func (p *Provider) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != "" {
		return p.cached
	}

	if b, err := os.ReadFile(p.path); err == nil {
		if id := strings.TrimSpace(string(b)); id != "" {
			p.cached = id
			return id
		}
	}

	id := uuid.NewString()
	if err := p.persist(id); err != nil {
		// Degraded mode: do not cache, so the failure stays visible and
		// the next call retries persistence.
		slog.Warn("identity persistence unavailable; minting per call", "path", p.path, "error", err)
		return id
	}
	p.cached = id
	return id
}

func (p *Provider) persist(id string) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(p.path, []byte(id+"\n"), 0o600)
}
