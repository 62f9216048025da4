package tools

import (
	"context"

	"github.com/deephaven/mcp-systems-server/internal/mcperr"
	"github.com/deephaven/mcp-systems-server/internal/mcplog"
)

// Refresh implements `refresh` / `mcp_reload` (spec §4.7): acquires the
// process-wide refresh lock (serializes concurrent reloads, spec §5),
// clears the config cache and re-reads the file, closes every session by
// closing the combined registry, then re-initializes. If the fresh file
// cannot be loaded or validated, the error is returned before anything is
// closed, so the registry keeps serving the previous configuration's
// sessions; the config cache stays empty and the next GetConfig reads the
// file again. A failure inside Initialize happens after Close and leaves
// the registry closed.
func (c *Context) Refresh(ctx context.Context) map[string]interface{} {
	return guard(func() map[string]interface{} {
		c.refreshMu.Lock()
		defer c.refreshMu.Unlock()

		c.Config.ClearConfigCache()
		if _, err := c.Config.GetConfig(); err != nil {
			return mcperr.ToolResult(err)
		}

		if err := c.Registry.Close(ctx); err != nil && !mcperr.Is(err, mcperr.KindNotInitialized) {
			mcplog.Warnf("refresh: closing registry: %v", err)
		}

		if err := c.Registry.Initialize(ctx, c.Config, c.BuildEnt); err != nil {
			return mcperr.ToolResult(err)
		}
		return mcperr.Success(nil)
	})
}

// DefaultWorker implements `default_worker` (spec §4.7).
func (c *Context) DefaultWorker(ctx context.Context) map[string]interface{} {
	return guard(func() map[string]interface{} {
		name, err := c.Config.GetWorkerNameDefault()
		if err != nil {
			return mcperr.ToolResult(err)
		}
		return mcperr.Success(map[string]interface{}{"result": name})
	})
}
