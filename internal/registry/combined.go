package registry

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/deephaven/mcp-systems-server/internal/config"
	"github.com/deephaven/mcp-systems-server/internal/instance"
	"github.com/deephaven/mcp-systems-server/internal/mcperr"
	"github.com/deephaven/mcp-systems-server/internal/mcplog"
	"github.com/deephaven/mcp-systems-server/internal/session"
	"github.com/deephaven/mcp-systems-server/internal/worker"
)

// ManagerLike is the common surface shared by every Session Manager
// variant this registry holds - satisfied automatically by embedding
// *itemmgr.Manager[worker.Session] (spec §9's "polymorphism over
// inheritance" design note).
type ManagerLike interface {
	FullName() string
	Get(ctx context.Context) (worker.Session, error)
	IsAlive(ctx context.Context) bool
	Close(ctx context.Context) error
}

// Snapshot is an immutable Registry Snapshot (spec §3, §4.6): mutation-safe
// copy of the item map plus phase plus per-source initialization errors.
type Snapshot struct {
	Items  map[string]ManagerLike
	Phase  Phase
	Errors map[string]string
}

// CombinedRegistry is the Combined Session Registry (spec §4.6, §4.7's
// source of truth): fuses the community and enterprise-factory registries,
// drives asynchronous enterprise discovery, and supports dynamic session
// registration.
type CombinedRegistry struct {
	community *CommunityRegistry
	factories *EnterpriseFactoryRegistry
	tracker   *instance.Tracker

	mu                   sync.Mutex
	phase                Phase
	errors               map[string]string
	enterpriseDiscovered map[string]*session.EnterpriseManager // fqname -> manager, auto-discovered, not counted
	added                map[string]ManagerLike                // fqname -> manager, via AddSession, counted
	discoveryDone         chan struct{}
}

func NewCombinedRegistry(community *CommunityRegistry, factories *EnterpriseFactoryRegistry, tracker *instance.Tracker) *CombinedRegistry {
	return &CombinedRegistry{
		community:            community,
		factories:             factories,
		tracker:               tracker,
		phase:                 PhaseNotStarted,
		errors:                make(map[string]string),
		enterpriseDiscovered:  make(map[string]*session.EnterpriseManager),
		added:                 make(map[string]ManagerLike),
	}
}

// Initialize brings the community and factory leaf registries up
// synchronously (SIMPLE), then launches asynchronous enterprise-factory
// discovery (LOADING -> COMPLETED|PARTIAL). Initialize returns once SIMPLE
// is reached; it does not block on discovery (spec §9).
func (r *CombinedRegistry) Initialize(ctx context.Context, store *config.Store, buildEnterpriseSession session.CreationFunc) error {
	if err := r.community.Initialize(store); err != nil {
		return err
	}
	if err := r.factories.Initialize(store); err != nil {
		return err
	}

	r.mu.Lock()
	r.phase = PhaseSimple
	r.discoveryDone = make(chan struct{})
	r.mu.Unlock()

	go r.discoverEnterpriseSessions(ctx, buildEnterpriseSession)
	return nil
}

func (r *CombinedRegistry) discoverEnterpriseSessions(ctx context.Context, buildEnterpriseSession session.CreationFunc) {
	defer close(r.discoveryDone)

	r.mu.Lock()
	r.phase = PhaseLoading
	r.mu.Unlock()

	factoryManagers, err := r.factories.GetAll()
	if err != nil {
		// no enterprise support configured at all; nothing to discover
		r.mu.Lock()
		r.phase = PhaseCompleted
		r.mu.Unlock()
		return
	}

	var mu sync.Mutex
	errs := make(map[string]string)

	g, gctx := errgroup.WithContext(ctx)
	for source, factoryMgr := range factoryManagers {
		source, factoryMgr := source, factoryMgr
		g.Go(func() error {
			if err := r.discoverOneFactory(gctx, source, factoryMgr, buildEnterpriseSession); err != nil {
				mu.Lock()
				errs[source] = err.Error()
				mu.Unlock()
			}
			return nil // never fail the group; each factory's error is isolated
		})
	}
	_ = g.Wait()

	r.mu.Lock()
	for source, msg := range errs {
		r.errors[source] = msg
	}
	if len(errs) > 0 {
		r.phase = PhasePartial
	} else {
		r.phase = PhaseCompleted
	}
	r.mu.Unlock()
}

func (r *CombinedRegistry) discoverOneFactory(ctx context.Context, source string, factoryMgr *session.FactoryManager, buildEnterpriseSession session.CreationFunc) error {
	factory, err := factoryMgr.Get(ctx)
	if err != nil {
		return err
	}
	if err := factory.Ping(ctx); err != nil {
		return mcperr.Wrapf(mcperr.KindConnection, err, "enterprise factory %q unreachable", source)
	}
	names, err := factory.EnumerateSessions(ctx)
	if err != nil {
		return mcperr.Wrapf(mcperr.KindConnection, err, "enumerating sessions for enterprise factory %q", source)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range names {
		fqname := fmt.Sprintf("%s:%s:%s", session.SystemTypeEnterprise, source, name)
		r.enterpriseDiscovered[fqname] = session.NewEnterpriseManager(source, name, buildEnterpriseSession)
	}
	return nil
}

// WaitForDiscovery blocks until asynchronous enterprise discovery has
// completed (COMPLETED or PARTIAL), or ctx is done. Used by tests and by
// callers that need a stable snapshot.
func (r *CombinedRegistry) WaitForDiscovery(ctx context.Context) error {
	r.mu.Lock()
	done := r.discoveryDone
	r.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Get resolves fqname in order: community entries by simple name, added
// (dynamic) entries by fqname, then auto-discovered enterprise entries by
// fqname (spec §4.6). A community entry may be addressed either by its
// simple name ("local") or its full fqname ("community:community:local").
func (r *CombinedRegistry) Get(fqname string) (ManagerLike, error) {
	if err := r.requireInitialized(); err != nil {
		return nil, err
	}
	if m, err := r.community.Get(communitySimpleName(fqname)); err == nil {
		return m, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.added[fqname]; ok {
		return m, nil
	}
	if m, ok := r.enterpriseDiscovered[fqname]; ok {
		return m, nil
	}
	return nil, mcperr.Newf(mcperr.KindNotFound, "session %q not found", fqname)
}

// GetAll returns an immutable Registry Snapshot (invariant 4: mutating the
// returned map never affects subsequent snapshots).
func (r *CombinedRegistry) GetAll() (Snapshot, error) {
	if err := r.requireInitialized(); err != nil {
		return Snapshot{}, err
	}
	communityManagers, err := r.community.GetAll()
	if err != nil {
		return Snapshot{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	items := make(map[string]ManagerLike, len(communityManagers)+len(r.added)+len(r.enterpriseDiscovered))
	for name, m := range communityManagers {
		items[session.FullNameCommunity(name)] = m
	}
	for fqname, m := range r.added {
		items[fqname] = m
	}
	for fqname, m := range r.enterpriseDiscovered {
		items[fqname] = m
	}

	errs := make(map[string]string, len(r.errors))
	for k, v := range r.errors {
		errs[k] = v
	}

	return Snapshot{Items: items, Phase: r.phase, Errors: errs}, nil
}

// AddSession registers a dynamically created session (community or
// enterprise). Fails if fqname already exists anywhere in the namespace.
func (r *CombinedRegistry) AddSession(fqname string, m ManagerLike) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.community.Get(communitySimpleName(fqname)); err == nil {
		return mcperr.Newf(mcperr.KindConfiguration, "session %q already exists", fqname)
	}
	if _, ok := r.added[fqname]; ok {
		return mcperr.Newf(mcperr.KindConfiguration, "session %q already exists", fqname)
	}
	if _, ok := r.enterpriseDiscovered[fqname]; ok {
		return mcperr.Newf(mcperr.KindConfiguration, "session %q already exists", fqname)
	}
	r.added[fqname] = m
	mcplog.Infof("registered dynamic session %s", fqname)
	return nil
}

// RemoveSession atomically removes a dynamic entry; no-op when absent.
func (r *CombinedRegistry) RemoveSession(fqname string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.added, fqname)
}

// CountAddedSessions returns the number of dynamically created entries
// currently registered - never counts configured leaves or auto-discovered
// enterprise sessions (spec §9's resolution of the Open Question).
func (r *CombinedRegistry) CountAddedSessions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.added)
}

func (r *CombinedRegistry) requireInitialized() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase == PhaseNotStarted {
		return mcperr.New(mcperr.KindNotInitialized, "combined session registry is not initialized")
	}
	return nil
}

// Close closes every constituent registry and resets discovery state.
func (r *CombinedRegistry) Close(ctx context.Context) error {
	if err := r.requireInitialized(); err != nil {
		return err
	}
	r.mu.Lock()
	for _, m := range r.added {
		_ = m.Close(ctx)
	}
	for _, m := range r.enterpriseDiscovered {
		_ = m.Close(ctx)
	}
	r.added = make(map[string]ManagerLike)
	r.enterpriseDiscovered = make(map[string]*session.EnterpriseManager)
	r.errors = make(map[string]string)
	r.phase = PhaseNotStarted
	r.mu.Unlock()

	if err := r.community.Close(ctx); err != nil {
		return err
	}
	if r.factories.IsInitialized() {
		return r.factories.Close(ctx)
	}
	return nil
}

const communityFQNamePrefix = "community:community:"

// communitySimpleName strips the "community:community:" prefix if present,
// so Get accepts either the simple name or the full fqname for a
// configured (non-dynamic) community session.
func communitySimpleName(fqname string) string {
	if len(fqname) > len(communityFQNamePrefix) && fqname[:len(communityFQNamePrefix)] == communityFQNamePrefix {
		return fqname[len(communityFQNamePrefix):]
	}
	return fqname
}

func (r *CombinedRegistry) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}
