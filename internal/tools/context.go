// Package tools implements the Tool Handlers (spec §4.7): stateless
// functions of the shape (context, args) -> result map, each reading a
// ConfigManager and a CombinedSessionRegistry from Context and never
// propagating an exception. Grounded on
// original_source/src/deephaven_mcp/mcp_systems_server/_tools/session.py's
// sessions_list / session_details handler shapes.
package tools

import (
	"context"
	"sync"

	"github.com/deephaven/mcp-systems-server/internal/config"
	"github.com/deephaven/mcp-systems-server/internal/instance"
	"github.com/deephaven/mcp-systems-server/internal/registry"
	"github.com/deephaven/mcp-systems-server/internal/session"
	"github.com/deephaven/mcp-systems-server/internal/sysexec"
)

// DocsClient is the minimal surface docs_chat depends on (spec §4.8);
// implemented by internal/docschat.Client.
type DocsClient interface {
	Chat(ctx context.Context, prompt string, history []map[string]string, systemPrompts []string) (string, error)
}

// Context is the shared per-server state every tool handler reads (spec
// §6 "wire protocol for tool invocations"): config_manager, session_registry,
// instance_tracker, and (docs side) a DocsClient. There are no module
// globals for core state (spec §9); everything is reached via this struct,
// which is both the dependency-injection seam for tests and the story for
// multiple isolated servers in one process.
type Context struct {
	Config     *config.Store
	Registry   *registry.CombinedRegistry
	Factories  *registry.EnterpriseFactoryRegistry
	Tracker    *instance.Tracker
	Docs       DocsClient
	Runner     sysexec.Runner
	Build      session.Builder
	BuildEnt   session.CreationFunc

	refreshMu sync.Mutex
}

func NewContext(store *config.Store, reg *registry.CombinedRegistry, factories *registry.EnterpriseFactoryRegistry, tracker *instance.Tracker, runner sysexec.Runner, build session.Builder, buildEnt session.CreationFunc) *Context {
	return &Context{
		Config:    store,
		Registry:  reg,
		Factories: factories,
		Tracker:   tracker,
		Runner:    runner,
		Build:     build,
		BuildEnt:  buildEnt,
	}
}

// guard recovers from any panic in fn and converts it into the uniform
// {success:false, error, isError:true} shape, the one edge-catch point
// required by spec §4.7 / §7 - the Go analogue of the Python
// "bare try/except Exception" boundary.
func guard(fn func() map[string]interface{}) (result map[string]interface{}) {
	defer func() {
		if r := recover(); r != nil {
			result = map[string]interface{}{
				"success": false,
				"error":   toErrorString(r),
				"isError": true,
			}
		}
	}()
	return fn()
}

func toErrorString(r interface{}) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	if s, ok := r.(string); ok {
		return s
	}
	return "internal error"
}
