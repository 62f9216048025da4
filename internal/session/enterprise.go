package session

import (
	"context"

	"github.com/deephaven/mcp-systems-server/internal/config"
	"github.com/deephaven/mcp-systems-server/internal/itemmgr"
	"github.com/deephaven/mcp-systems-server/internal/worker"
)

const (
	SystemTypeEnterprise        = "enterprise"
	SystemTypeEnterpriseFactory = "enterprise-factory"
)

// CreationFunc mints a session given a (source, name) pair, typically bound
// to a live Factory. Exists so an enterprise session can be registered into
// the Combined Registry before there is any live factory RPC (spec §4.5).
type CreationFunc func(ctx context.Context, source, name string) (worker.Session, error)

// EnterpriseManager is the Enterprise Session Manager (spec §4.5).
type EnterpriseManager struct {
	*itemmgr.Manager[worker.Session]
	source string
	name   string
}

func NewEnterpriseManager(source, name string, create CreationFunc) *EnterpriseManager {
	creator := func(ctx context.Context) (worker.Session, error) {
		return create(ctx, source, name)
	}
	isAlive := func(ctx context.Context, sess worker.Session) bool { return sess.IsAlive(ctx) }
	closeItem := func(ctx context.Context, sess worker.Session) error { return sess.Close(ctx) }
	return &EnterpriseManager{
		Manager: itemmgr.New(SystemTypeEnterprise, source, name, creator, isAlive, closeItem),
		source:  source,
		name:    name,
	}
}

func (m *EnterpriseManager) Name() string { return m.name }

// FactoryBuilder constructs a live worker.Factory from a validated
// enterprise system config. Concrete connection is the remote wire
// protocol, out of scope per spec §1; callers inject a Builder.
type FactoryBuilder func(ctx context.Context, cfg config.EnterpriseSystemConfig) (worker.Factory, error)

// FactoryManager is the Enterprise Session Factory Manager (spec §4.5):
// item is an enterprise factory; liveness = factory Ping.
type FactoryManager struct {
	*itemmgr.Manager[worker.Factory]
	source string
}

func NewFactoryManager(source string, cfg config.EnterpriseSystemConfig, build FactoryBuilder) *FactoryManager {
	create := func(ctx context.Context) (worker.Factory, error) {
		return build(ctx, cfg)
	}
	isAlive := func(ctx context.Context, f worker.Factory) bool {
		return f.Ping(ctx) == nil
	}
	closeItem := func(ctx context.Context, f worker.Factory) error {
		return f.Close(ctx)
	}
	return &FactoryManager{
		Manager: itemmgr.New(SystemTypeEnterpriseFactory, source, source, create, isAlive, closeItem),
		source:  source,
	}
}

func (m *FactoryManager) Source() string { return m.source }
