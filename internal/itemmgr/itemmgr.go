// Package itemmgr is the generic Item Manager (spec §4.4): a single-slot,
// lock-guarded, lazily constructed, liveness-verified holder of a resource
// with an async close. Parameterised on the item type and two
// function-typed fields (creator, prober) per spec §9's design note,
// rather than on inheritance. Grounded on the cache-check /
// liveness-probe-with-exception-swallow / lock / recreate-if-needed shape
// of original_source/src/deephaven_mcp/sessions/_sessions.py's
// get_or_create_session.
package itemmgr

import (
	"context"
	"fmt"
	"sync"

	"github.com/deephaven/mcp-systems-server/internal/mcperr"
)

// Creator constructs a fresh item. Its failure surfaces to the caller as a
// *creation* error (spec §4.4 failure semantics).
type Creator[T any] func(ctx context.Context) (T, error)

// Prober reports whether a cached item is still alive. Implementations
// must not panic; Manager additionally recovers from a panicking prober
// and treats it as "not alive" (probe exceptions are swallowed per spec).
type Prober[T any] func(ctx context.Context, item T) bool

// Closer asynchronously releases a cached item.
type Closer[T any] func(ctx context.Context, item T) error

// Manager is one cache slot: type tag, source, name, creator, prober,
// closer, and the lock serializing get/close/construction.
type Manager[T any] struct {
	systemType string
	source     string
	name       string
	create     Creator[T]
	isAlive    Prober[T]
	closeItem  Closer[T]

	mu      sync.Mutex
	cached  T
	hasItem bool
}

// New builds a Manager. systemType/source/name compose the canonical
// FullName ("{type}:{source}:{name}").
func New[T any](systemType, source, name string, create Creator[T], isAlive Prober[T], closeItem Closer[T]) *Manager[T] {
	return &Manager[T]{
		systemType: systemType,
		source:     source,
		name:       name,
		create:     create,
		isAlive:    isAlive,
		closeItem:  closeItem,
	}
}

// FullName returns the canonical "{type}:{source}:{name}" identifier.
func FullName(systemType, source, name string) string {
	return fmt.Sprintf("%s:%s:%s", systemType, source, name)
}

func (m *Manager[T]) FullName() string {
	return FullName(m.systemType, m.source, m.name)
}

// Get returns the cached item if present and alive; otherwise it acquires
// the lock, re-checks under lock, (re)creates if needed, caches the new
// item, and returns it. A freshly created item is cached without a
// liveness probe. Concurrent callers observe at most one construction
// (invariant 2).
func (m *Manager[T]) Get(ctx context.Context) (T, error) {
	if item, ok := m.fastPath(ctx); ok {
		return item, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.hasItem && m.probeSafe(ctx, m.cached) {
		return m.cached, nil
	}

	item, err := m.create(ctx)
	if err != nil {
		var zero T
		m.hasItem = false
		m.cached = zero
		return zero, mcperr.Wrapf(mcperr.KindCreation, err, "failed to create %s", m.FullName())
	}

	m.cached = item
	m.hasItem = true
	return item, nil
}

// fastPath avoids taking the lock when a live item is already cached - the
// lock is only needed to serialize construction, not every read.
func (m *Manager[T]) fastPath(ctx context.Context) (T, bool) {
	m.mu.Lock()
	hasItem := m.hasItem
	item := m.cached
	m.mu.Unlock()

	if hasItem && m.probeSafe(ctx, item) {
		return item, true
	}
	var zero T
	return zero, false
}

func (m *Manager[T]) probeSafe(ctx context.Context, item T) (alive bool) {
	defer func() {
		if r := recover(); r != nil {
			alive = false
		}
	}()
	return m.isAlive(ctx, item)
}

// IsAlive reports whether an item is cached and its liveness probe passes.
func (m *Manager[T]) IsAlive(ctx context.Context) bool {
	m.mu.Lock()
	hasItem := m.hasItem
	item := m.cached
	m.mu.Unlock()
	if !hasItem {
		return false
	}
	return m.probeSafe(ctx, item)
}

// Close closes the cached item (if any) and drops the cache slot.
// Idempotent.
func (m *Manager[T]) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasItem {
		return nil
	}
	item := m.cached
	var zero T
	m.cached = zero
	m.hasItem = false

	if m.closeItem == nil {
		return nil
	}
	if err := m.closeItem(ctx, item); err != nil {
		return mcperr.Wrapf(mcperr.KindInternal, err, "closing %s", m.FullName())
	}
	return nil
}
