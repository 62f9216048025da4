package tools

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/deephaven/mcp-systems-server/internal/config"
	"github.com/deephaven/mcp-systems-server/internal/launch"
	"github.com/deephaven/mcp-systems-server/internal/mcperr"
	"github.com/deephaven/mcp-systems-server/internal/mcplog"
	"github.com/deephaven/mcp-systems-server/internal/session"
)

// SessionCommunityCreate implements `session_community_create` (spec
// §4.7): launches a fresh container or local-runtime worker, registers a
// Dynamic Community Session Manager for it, and returns its connection
// details. Enforces the max-concurrent-dynamic-sessions cap, auto-
// generates a session name when none is given, rejects duplicates, and
// on readiness failure best-effort stops the subprocess and returns
// success:false.
func (c *Context) SessionCommunityCreate(ctx context.Context, sessionName string, launchMethod string, authTokenEnvVar string, heapMB int) map[string]interface{} {
	return guard(func() map[string]interface{} {
		doc, err := c.Config.GetConfig()
		if err != nil {
			return mcperr.ToolResult(err)
		}
		defaults := doc.SessionCreation

		if defaults.MaxConcurrent > 0 && c.Registry.CountAddedSessions() >= defaults.MaxConcurrent {
			return mcperr.ToolResult(mcperr.Newf(mcperr.KindConfiguration,
				"maximum concurrent dynamic sessions (%d) reached", defaults.MaxConcurrent))
		}

		if sessionName == "" {
			sessionName = "s-" + uuid.NewString()[:8]
		}
		fqname := session.FullNameDynamicCommunity(sessionName)
		if _, err := c.Registry.Get(fqname); err == nil {
			return mcperr.ToolResult(mcperr.Newf(mcperr.KindConfiguration, "session %q already exists", sessionName))
		}

		method := launch.DefaultLaunchMethod(defaults)
		if launchMethod != "" {
			method = launch.Method(launchMethod)
		}

		token := ""
		if authTokenEnvVar != "" {
			token, err = session.ResolveAuthToken(ctx, "", authTokenEnvVar, true, os.LookupEnv)
			if err != nil {
				return mcperr.ToolResult(err)
			}
		}

		port, err := launch.AllocateFreePort()
		if err != nil {
			return mcperr.ToolResult(err)
		}

		instanceID := ""
		if c.Tracker != nil {
			instanceID = c.Tracker.ID()
		}

		opts := launch.ResolveDefaults(launch.Options{
			SessionName: sessionName,
			Port:        port,
			AuthToken:   token,
			HeapMB:      heapMB,
			InstanceID:  instanceID,
		}, defaults)

		var handle *launch.Handle
		switch method {
		case launch.MethodContainer:
			handle, err = launch.LaunchContainer(ctx, c.Runner, opts)
		default:
			handle, err = launch.LaunchLocal(ctx, opts)
		}
		if err != nil {
			return mcperr.ToolResult(err)
		}

		timeout := time.Duration(defaults.StartupTimeoutSec) * time.Second
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		interval := time.Duration(defaults.StartupCheckInterval) * time.Millisecond
		if interval <= 0 {
			interval = 500 * time.Millisecond
		}
		if !handle.WaitUntilReady(ctx, timeout, interval) {
			handle.Stop(ctx)
			return mcperr.ToolResult(mcperr.Newf(mcperr.KindCreation, "session %q did not become ready within %s", sessionName, timeout))
		}

		if handle.Method == launch.MethodLocal && c.Tracker != nil {
			if err := c.Tracker.TrackChild(sessionName, handle.PID); err != nil {
				mcplog.Warnf("tracking dynamic session %q: %v", sessionName, err)
			}
		}

		mgr := session.NewDynamicCommunityManager(sessionName, handle, config.CommunitySessionConfig{
			Host: "localhost", Port: handle.Port, AuthToken: handle.AuthToken,
		}, c.Build, c.Tracker)

		if err := c.Registry.AddSession(fqname, mgr); err != nil {
			handle.Stop(ctx)
			return mcperr.ToolResult(err)
		}

		result := map[string]interface{}{
			"session_id":               fqname,
			"connection_url":           handle.ConnectionURL,
			"connection_url_with_auth": handle.ConnectionURLWithAuth,
			"auth_type":                "token",
			"port":                     handle.Port,
			"launch_method":            string(handle.Method),
		}
		if handle.AuthToken != "" {
			result["auth_token"] = handle.AuthToken
		}
		if handle.Method == launch.MethodContainer {
			result["container_id"] = handle.ContainerID
		} else {
			result["process_id"] = handle.PID
		}
		return mcperr.Success(result)
	})
}

// SessionCommunityDelete implements `session_community_delete` (spec
// §4.7): closes the manager and removes it from the registry; no-op on an
// unknown name.
func (c *Context) SessionCommunityDelete(ctx context.Context, sessionName string) map[string]interface{} {
	return guard(func() map[string]interface{} {
		fqname := session.FullNameDynamicCommunity(sessionName)
		m, err := c.Registry.Get(fqname)
		if err == nil {
			_ = m.Close(ctx)
		}
		c.Registry.RemoveSession(fqname)
		return mcperr.Success(nil)
	})
}

// SessionCommunityCredentials implements `session_community_credentials`
// (spec §4.7): gated by security.community.credential_retrieval_mode.
func (c *Context) SessionCommunityCredentials(ctx context.Context, sessionName string) map[string]interface{} {
	return guard(func() map[string]interface{} {
		doc, err := c.Config.GetConfig()
		if err != nil {
			return mcperr.ToolResult(err)
		}
		if doc.Security.Community.CredentialRetrievalMode != "enabled" {
			return mcperr.ToolResult(mcperr.New(mcperr.KindConfiguration,
				"credential retrieval is disabled; set security.community.credential_retrieval_mode to \"enabled\""))
		}

		fqname := session.FullNameDynamicCommunity(sessionName)
		m, err := c.Registry.Get(fqname)
		if err != nil {
			return mcperr.ToolResult(err)
		}
		dyn, ok := m.(interface{ View() session.ViewFields })
		if !ok {
			return mcperr.ToolResult(mcperr.Newf(mcperr.KindNotFound, "session %q has no retrievable credentials", sessionName))
		}
		view := dyn.View()
		return mcperr.Success(map[string]interface{}{
			"connection_url":           view.ConnectionURL,
			"connection_url_with_auth": view.ConnectionURLWithAuth,
			"auth_token":               view.AuthToken,
		})
	})
}
