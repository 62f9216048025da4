package tools

import (
	"context"
	"strings"

	"github.com/deephaven/mcp-systems-server/internal/mcperr"
	"github.com/deephaven/mcp-systems-server/internal/registry"
	"github.com/deephaven/mcp-systems-server/internal/session"
)

// SessionsList implements `worker_names` / `sessions_list` (spec §4.7).
// Grounded on _tools/session.py's sessions_list: iterate the snapshot,
// build a per-entry dict, and let one entry's failure degrade to a
// per-entry error without failing the whole call.
func (c *Context) SessionsList(ctx context.Context) map[string]interface{} {
	return guard(func() map[string]interface{} {
		snap, err := c.Registry.GetAll()
		if err != nil {
			return mcperr.ToolResult(err)
		}

		sessions := make([]map[string]interface{}, 0, len(snap.Items))
		for fqname, m := range snap.Items {
			entry := func() (out map[string]interface{}) {
				defer func() {
					if r := recover(); r != nil {
						out = map[string]interface{}{"session_id": fqname, "error": toErrorString(r)}
					}
				}()
				sysType, source, name := splitFQName(fqname)
				return map[string]interface{}{
					"session_id":   fqname,
					"type":         sysType,
					"source":       source,
					"session_name": name,
				}
			}()
			sessions = append(sessions, entry)
		}

		result := map[string]interface{}{"sessions": sessions}
		if snap.Phase != registry.PhaseCompleted {
			result["initialization_phase"] = snap.Phase.String()
			if len(snap.Errors) > 0 {
				result["initialization_errors"] = snap.Errors
			}
		}
		return mcperr.Success(result)
	})
}

// splitFQName splits "{type}:{source}:{name}" into its three parts.
func splitFQName(fqname string) (sysType, source, name string) {
	parts := strings.SplitN(fqname, ":", 3)
	if len(parts) != 3 {
		return "", "", fqname
	}
	return parts[0], parts[1], parts[2]
}

// SessionDetails implements `session_details` (spec §4.7): returns type,
// source, name, availability, liveness, and (for dynamic sessions) the
// launch-view fields. attemptToConnect=false must not open a cold session.
func (c *Context) SessionDetails(ctx context.Context, sessionID string, attemptToConnect bool) map[string]interface{} {
	return guard(func() map[string]interface{} {
		m, err := c.Registry.Get(sessionID)
		if err != nil {
			return mcperr.ToolResult(err)
		}

		sysType, source, name := splitFQName(sessionID)
		out := map[string]interface{}{
			"type":         strings.ToUpper(sysType),
			"source":       source,
			"session_name": name,
		}

		if !attemptToConnect {
			out["available"] = m.IsAlive(ctx)
			return mcperr.Success(map[string]interface{}{"session": out})
		}

		sess, err := m.Get(ctx)
		if err != nil {
			out["available"] = false
			out["liveness_status"] = "creation_failed"
			out["liveness_detail"] = err.Error()
			return mcperr.Success(map[string]interface{}{"session": out})
		}

		out["available"] = true
		if lang, langErr := sess.ProgrammingLanguage(ctx); langErr == nil {
			out["programming_language"] = lang
		}
		if sess.IsAlive(ctx) {
			out["liveness_status"] = "alive"
		} else {
			out["liveness_status"] = "not_alive"
		}

		if dyn, ok := m.(interface{ View() session.ViewFields }); ok {
			view := dyn.View()
			out["launch_method"] = view.LaunchMethod
			out["port"] = view.Port
			out["connection_url"] = view.ConnectionURL
			out["connection_url_with_auth"] = view.ConnectionURLWithAuth
			if view.ContainerID != "" {
				out["container_id"] = view.ContainerID
			}
			if view.ProcessID != 0 {
				out["process_id"] = view.ProcessID
			}
		}

		return mcperr.Success(map[string]interface{}{"session": out})
	})
}
