package tools

import (
	"context"
	"os"

	"github.com/deephaven/mcp-systems-server/internal/mcperr"
)

// SessionScriptRun implements `session_script_run` (spec §4.7): exactly
// one of script / scriptPath must be given. Invariant 10: when neither is
// given, returns the validation error without touching the session
// registry.
func (c *Context) SessionScriptRun(ctx context.Context, sessionID, script, scriptPath string) map[string]interface{} {
	return guard(func() map[string]interface{} {
		if script == "" && scriptPath == "" {
			return mcperr.ToolResult(mcperr.New(mcperr.KindConfiguration, "one of script or script_path is required"))
		}
		if script != "" && scriptPath != "" {
			return mcperr.ToolResult(mcperr.New(mcperr.KindConfiguration, "script and script_path are mutually exclusive"))
		}

		body := script
		if scriptPath != "" {
			data, err := os.ReadFile(scriptPath)
			if err != nil {
				return mcperr.ToolResult(mcperr.Wrapf(mcperr.KindConfiguration, err, "cannot read script_path %q", scriptPath))
			}
			body = string(data)
		}

		sess, errResult := c.resolveSession(ctx, sessionID)
		if errResult != nil {
			return errResult
		}
		if err := sess.RunScript(ctx, body); err != nil {
			return mcperr.ToolResult(err)
		}
		return mcperr.Success(nil)
	})
}

// SessionPipList implements `session_pip_list` (spec §4.7): requires a
// Python-kind session; surfaces the underlying *unsupported* error
// otherwise (FakeSession.PipList / a real session implement this check).
func (c *Context) SessionPipList(ctx context.Context, sessionID string) map[string]interface{} {
	return guard(func() map[string]interface{} {
		sess, errResult := c.resolveSession(ctx, sessionID)
		if errResult != nil {
			return errResult
		}
		pkgs, err := sess.PipList(ctx)
		if err != nil {
			return mcperr.ToolResult(err)
		}
		result := make([]map[string]string, len(pkgs))
		for i, p := range pkgs {
			result[i] = map[string]string{"package": p.Package, "version": p.Version}
		}
		return mcperr.Success(map[string]interface{}{"result": result})
	})
}
