package registry

import (
	"context"
	"sync"

	"github.com/deephaven/mcp-systems-server/internal/config"
	"github.com/deephaven/mcp-systems-server/internal/mcperr"
	"github.com/deephaven/mcp-systems-server/internal/session"
)

// EnterpriseFactoryRegistry is the Enterprise Factory Registry (spec
// §4.6): on Initialize, reads enterprise.systems and creates one
// FactoryManager per entry. If EnterpriseSupported is false and
// enterprise.systems is non-empty, Initialize fails with a *configuration*
// error.
type EnterpriseFactoryRegistry struct {
	mu                  sync.RWMutex
	initialized         bool
	managers            map[string]*session.FactoryManager
	build               session.FactoryBuilder
	EnterpriseSupported bool
}

func NewEnterpriseFactoryRegistry(build session.FactoryBuilder, enterpriseSupported bool) *EnterpriseFactoryRegistry {
	return &EnterpriseFactoryRegistry{build: build, EnterpriseSupported: enterpriseSupported}
}

func (r *EnterpriseFactoryRegistry) Initialize(store *config.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.initialized {
		return nil
	}
	names, err := store.GetAllEnterpriseSystemNames()
	if err != nil {
		return err
	}
	if len(names) > 0 && !r.EnterpriseSupported {
		return mcperr.New(mcperr.KindConfiguration,
			"enterprise.systems is configured but enterprise support is not available in this build; install the enterprise extra to use it")
	}
	managers := make(map[string]*session.FactoryManager, len(names))
	for _, name := range names {
		cfg, err := store.GetEnterpriseSystemConfig(name)
		if err != nil {
			return err
		}
		managers[name] = session.NewFactoryManager(name, *cfg, r.build)
	}
	r.managers = managers
	r.initialized = true
	return nil
}

func (r *EnterpriseFactoryRegistry) requireInitialized() error {
	if !r.initialized {
		return mcperr.New(mcperr.KindNotInitialized, "enterprise factory registry is not initialized")
	}
	return nil
}

func (r *EnterpriseFactoryRegistry) Get(name string) (*session.FactoryManager, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.requireInitialized(); err != nil {
		return nil, err
	}
	m, ok := r.managers[name]
	if !ok {
		return nil, mcperr.Newf(mcperr.KindNotFound, "enterprise system %q not found", name)
	}
	return m, nil
}

func (r *EnterpriseFactoryRegistry) GetAll() (map[string]*session.FactoryManager, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.requireInitialized(); err != nil {
		return nil, err
	}
	cp := make(map[string]*session.FactoryManager, len(r.managers))
	for k, v := range r.managers {
		cp[k] = v
	}
	return cp, nil
}

func (r *EnterpriseFactoryRegistry) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.initialized {
		return mcperr.New(mcperr.KindNotInitialized, "enterprise factory registry is not initialized")
	}
	for _, m := range r.managers {
		_ = m.Close(ctx)
	}
	r.managers = nil
	r.initialized = false
	return nil
}

func (r *EnterpriseFactoryRegistry) IsInitialized() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.initialized
}
