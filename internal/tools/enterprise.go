package tools

import (
	"context"

	"github.com/deephaven/mcp-systems-server/internal/mcperr"
	"github.com/deephaven/mcp-systems-server/internal/registry"
	"github.com/deephaven/mcp-systems-server/internal/session"
)

// EnterpriseSystemsStatus implements `enterprise_systems_status` (spec
// §4.7): reports, per configured enterprise system, whether its factory is
// reachable (false for a factory not connected yet) and the current
// asynchronous-discovery phase/errors (spec §5's "Initialize returns
// before discovery completes" design).
func (c *Context) EnterpriseSystemsStatus(ctx context.Context) map[string]interface{} {
	return guard(func() map[string]interface{} {
		snap, err := c.Registry.GetAll()
		if err != nil {
			return mcperr.ToolResult(err)
		}

		systems := map[string]interface{}{}
		if c.Factories != nil {
			if factoryMgrs, err := c.Factories.GetAll(); err == nil {
				for source, fm := range factoryMgrs {
					systems[source] = map[string]interface{}{"source": source, "session_count": 0, "alive": fm.IsAlive(ctx)}
				}
			}
		}
		for fqname := range snap.Items {
			sysType, source, _ := splitFQName(fqname)
			if sysType != session.SystemTypeEnterprise {
				continue
			}
			entry, _ := systems[source].(map[string]interface{})
			if entry == nil {
				entry = map[string]interface{}{"source": source, "session_count": 0}
				systems[source] = entry
			}
			entry["session_count"] = entry["session_count"].(int) + 1
		}
		for source, msg := range snap.Errors {
			entry, _ := systems[source].(map[string]interface{})
			if entry == nil {
				entry = map[string]interface{}{"source": source, "session_count": 0}
				systems[source] = entry
			}
			entry["discovery_error"] = msg
		}

		return mcperr.Success(map[string]interface{}{
			"initialization_phase": snap.Phase.String(),
			"systems":               systems,
		})
	})
}

// SessionEnterpriseCreate implements `session_enterprise_create` (spec
// §4.7): asks the named enterprise system's factory to mint a session,
// then registers an Enterprise Session Manager under the new name. The
// manager connects through Context.BuildEnt on first use; the session
// value returned by the factory is not kept.
func (c *Context) SessionEnterpriseCreate(ctx context.Context, source, sessionName string, params map[string]string) map[string]interface{} {
	return guard(func() map[string]interface{} {
		factoryMgr, err := c.factoryRegistry().Get(source)
		if err != nil {
			return mcperr.ToolResult(err)
		}
		factory, err := factoryMgr.Get(ctx)
		if err != nil {
			return mcperr.ToolResult(err)
		}
		if _, err := factory.CreateSession(ctx, sessionName, params); err != nil {
			return mcperr.ToolResult(err)
		}

		fqname := session.SystemTypeEnterprise + ":" + source + ":" + sessionName
		mgr := session.NewEnterpriseManager(source, sessionName, c.BuildEnt)
		if err := c.Registry.AddSession(fqname, mgr); err != nil {
			return mcperr.ToolResult(err)
		}
		return mcperr.Success(map[string]interface{}{"session_id": fqname})
	})
}

// SessionEnterpriseDelete implements `session_enterprise_delete` (spec
// §4.7): closes and deregisters a dynamically created enterprise session.
func (c *Context) SessionEnterpriseDelete(ctx context.Context, source, sessionName string) map[string]interface{} {
	return guard(func() map[string]interface{} {
		fqname := session.SystemTypeEnterprise + ":" + source + ":" + sessionName
		m, err := c.Registry.Get(fqname)
		if err == nil {
			_ = m.Close(ctx)
		}
		c.Registry.RemoveSession(fqname)
		return mcperr.Success(nil)
	})
}

// factoryRegistry is a narrow accessor the Combined Registry doesn't
// expose directly; tools needs it to route session_enterprise_create to
// the right factory without duplicating the combined registry's lookup
// rules. It is the Factories field, set from NewContext's factories
// argument, so tests can inject their own registry.
func (c *Context) factoryRegistry() *registry.EnterpriseFactoryRegistry {
	return c.Factories
}

// CatalogUnsupported implements the `catalog_*` tool family (spec §4.7):
// enterprise catalog browsing is not built in this server; every call
// returns the same *unsupported* result.
func (c *Context) CatalogUnsupported(ctx context.Context, toolName string) map[string]interface{} {
	return guard(func() map[string]interface{} {
		return mcperr.ToolResult(mcperr.Newf(mcperr.KindUnsupported, "%s: enterprise catalog support not built", toolName))
	})
}

// PQUnsupported implements the `pq_*` tool family (spec §4.7): enterprise
// persistent-query management is not built in this server.
func (c *Context) PQUnsupported(ctx context.Context, toolName string) map[string]interface{} {
	return guard(func() map[string]interface{} {
		return mcperr.ToolResult(mcperr.Newf(mcperr.KindUnsupported, "%s: enterprise persistent query support not built", toolName))
	})
}
