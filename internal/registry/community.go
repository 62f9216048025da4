package registry

import (
	"context"
	"sync"

	"github.com/deephaven/mcp-systems-server/internal/config"
	"github.com/deephaven/mcp-systems-server/internal/mcperr"
	"github.com/deephaven/mcp-systems-server/internal/session"
)

// CommunityRegistry is the Community Session Registry (spec §4.6): on
// Initialize, reads community.sessions and creates one CommunityManager per
// entry.
type CommunityRegistry struct {
	mu          sync.RWMutex
	initialized bool
	managers    map[string]*session.CommunityManager
	build       session.Builder
}

func NewCommunityRegistry(build session.Builder) *CommunityRegistry {
	return &CommunityRegistry{build: build}
}

func (r *CommunityRegistry) Initialize(store *config.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.initialized {
		return nil
	}
	names, err := store.GetCommunitySessionNames()
	if err != nil {
		return err
	}
	managers := make(map[string]*session.CommunityManager, len(names))
	for _, name := range names {
		cfg, err := store.GetCommunitySessionConfig(name)
		if err != nil {
			return err
		}
		managers[name] = session.NewCommunityManager("community", name, *cfg, r.build)
	}
	r.managers = managers
	r.initialized = true
	return nil
}

func (r *CommunityRegistry) requireInitialized() error {
	if !r.initialized {
		return mcperr.New(mcperr.KindNotInitialized, "community registry is not initialized")
	}
	return nil
}

func (r *CommunityRegistry) Get(name string) (*session.CommunityManager, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.requireInitialized(); err != nil {
		return nil, err
	}
	m, ok := r.managers[name]
	if !ok {
		return nil, mcperr.Newf(mcperr.KindNotFound, "community session %q not found", name)
	}
	return m, nil
}

// GetAll returns a mutation-safe copy of the manager map.
func (r *CommunityRegistry) GetAll() (map[string]*session.CommunityManager, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.requireInitialized(); err != nil {
		return nil, err
	}
	cp := make(map[string]*session.CommunityManager, len(r.managers))
	for k, v := range r.managers {
		cp[k] = v
	}
	return cp, nil
}

func (r *CommunityRegistry) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.initialized {
		return mcperr.New(mcperr.KindNotInitialized, "community registry is not initialized")
	}
	for _, m := range r.managers {
		_ = m.Close(ctx)
	}
	r.managers = nil
	r.initialized = false
	return nil
}

func (r *CommunityRegistry) IsInitialized() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.initialized
}
