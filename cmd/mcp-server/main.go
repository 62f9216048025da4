// Command mcp-server is the systems server's entrypoint: parses flags,
// loads the environment, builds the Config Store / Instance Tracker /
// Combined Session Registry, registers every tool handler on an MCP
// server, and runs until a shutdown signal arrives. Grounded on the
// teacher's main.go (flag parsing -> load config -> build server -> run
// with graceful shutdown), adapted from flag to cobra per this project's
// CLI convention.
package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpsdk "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/deephaven/mcp-systems-server/internal/config"
	"github.com/deephaven/mcp-systems-server/internal/docschat"
	"github.com/deephaven/mcp-systems-server/internal/instance"
	"github.com/deephaven/mcp-systems-server/internal/mcperr"
	"github.com/deephaven/mcp-systems-server/internal/mcplog"
	"github.com/deephaven/mcp-systems-server/internal/registry"
	"github.com/deephaven/mcp-systems-server/internal/sysexec"
	"github.com/deephaven/mcp-systems-server/internal/tools"
	"github.com/deephaven/mcp-systems-server/internal/worker"
)

// Version is the semantic version of the server, set via -ldflags at
// build time; "dev" otherwise.
var Version = "dev"

func main() {
	var (
		envFile  string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Deephaven MCP systems server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(envFile, logLevel)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", "", "path to a .env file to load before startup")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.Version = Version

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(envFile, logLevel string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			mcplog.Warnf("loading env file %q: %v", envFile, err)
		}
	}
	if err := mcplog.SetLevel(logLevel); err != nil {
		mcplog.Warnf("invalid log level %q: %v", logLevel, err)
	}

	runner := sysexec.DefaultRunner{}

	instance.CleanupOrphanedResources(context.Background(), runner)

	tracker, err := instance.CreateAndRegister()
	if err != nil {
		mcplog.Errorf("registering instance: %v", err)
		return err
	}
	defer tracker.Unregister()

	store := config.NewStore()

	build := unconfiguredSessionBuilder
	buildEnt := unconfiguredEnterpriseBuilder
	buildFactory := unconfiguredFactoryBuilder

	community := registry.NewCommunityRegistry(build)
	factories := registry.NewEnterpriseFactoryRegistry(buildFactory, false)
	combined := registry.NewCombinedRegistry(community, factories, tracker)

	ctx := context.Background()
	if err := combined.Initialize(ctx, store, buildEnt); err != nil {
		mcplog.Errorf("initializing session registry: %v", err)
		return err
	}

	docsClient := docschat.New(docschat.Config{
		APIKey:  os.Getenv("DH_MCP_DOCS_API_KEY"),
		BaseURL: os.Getenv("DH_MCP_DOCS_BASE_URL"),
	})
	defer docsClient.Close()

	toolCtx := tools.NewContext(store, combined, factories, tracker, runner, build, buildEnt)
	toolCtx.Docs = docsClient

	mcpServer := server.NewMCPServer("deephaven-mcp-systems-server", Version)
	registerTools(mcpServer, toolCtx)

	return runWithShutdown(ctx, mcpServer, combined, tracker)
}

// unconfiguredSessionBuilder / unconfiguredEnterpriseBuilder /
// unconfiguredFactoryBuilder are the dial-a-real-worker collaborators
// (spec §1): the remote worker wire protocol lives outside this server,
// so every attempt to actually connect fails with a distinguished
// *connection* error until a concrete implementation is wired in.
func unconfiguredSessionBuilder(ctx context.Context, cfg config.CommunitySessionConfig) (worker.Session, error) {
	return nil, mcperr.Newf(mcperr.KindConnection, "no remote worker protocol implementation is wired in for community session %s", cfg.Host)
}

func unconfiguredEnterpriseBuilder(ctx context.Context, source, name string) (worker.Session, error) {
	return nil, mcperr.Newf(mcperr.KindConnection, "no remote worker protocol implementation is wired in for enterprise session %s/%s", source, name)
}

func unconfiguredFactoryBuilder(ctx context.Context, cfg config.EnterpriseSystemConfig) (worker.Factory, error) {
	return nil, mcperr.Newf(mcperr.KindConnection, "no remote worker protocol implementation is wired in for enterprise factory %s", cfg.ConnectionURL)
}

func runWithShutdown(ctx context.Context, mcpServer *server.MCPServer, combined *registry.CombinedRegistry, tracker *instance.Tracker) error {
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ServeStdio(mcpServer); err != nil {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		mcplog.Infof("received shutdown signal %s", sig)
	case err := <-serverErr:
		mcplog.Errorf("server failed: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := combined.Close(shutdownCtx); err != nil {
		mcplog.Warnf("closing session registry during shutdown: %v", err)
	}
	tracker.Unregister()
	return nil
}

// argString / argInt / argBool extract typed arguments from an MCP tool
// call, defaulting the zero value when absent (spec §4.7: handlers never
// raise on a missing optional argument).
func argString(req mcpsdk.CallToolRequest, name string) string {
	v, _ := req.Params.Arguments[name].(string)
	return v
}

func argBool(req mcpsdk.CallToolRequest, name string) bool {
	v, _ := req.Params.Arguments[name].(bool)
	return v
}

func argInt(req mcpsdk.CallToolRequest, name string, def int) int {
	switch v := req.Params.Arguments[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

func argStringSlice(req mcpsdk.CallToolRequest, name string) []string {
	raw, ok := req.Params.Arguments[name].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// toolResult converts a tool handler's uniform {success, error, isError}
// map into the wire CallToolResult shape: an error response for isError,
// otherwise the full map JSON-encoded as the result's text content.
func toolResult(m map[string]interface{}) (*mcpsdk.CallToolResult, error) {
	if isErr, _ := m["isError"].(bool); isErr {
		msg, _ := m["error"].(string)
		return mcpsdk.NewToolResultError(msg), nil
	}
	body, err := json.Marshal(m)
	if err != nil {
		return mcpsdk.NewToolResultError(err.Error()), nil
	}
	return mcpsdk.NewToolResultText(string(body)), nil
}

func registerTools(s *server.MCPServer, c *tools.Context) {
	add := func(name, desc string, handler func(context.Context, mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error)) {
		s.AddTool(mcpsdk.NewTool(name, mcpsdk.WithDescription(desc)), handler)
	}

	add("sessions_list", "List every known session across every source", func(ctx context.Context, req mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		return toolResult(c.SessionsList(ctx))
	})
	add("session_details", "Describe one session's type, source, and liveness", func(ctx context.Context, req mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		return toolResult(c.SessionDetails(ctx, argString(req, "session_id"), argBool(req, "attempt_to_connect")))
	})
	add("session_tables_list", "List the tables visible in a session", func(ctx context.Context, req mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		return toolResult(c.SessionTablesList(ctx, argString(req, "session_id")))
	})
	add("session_tables_schema", "Fetch the schema of one or more tables", func(ctx context.Context, req mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		return toolResult(c.SessionTablesSchema(ctx, argString(req, "session_id"), argStringSlice(req, "table_names")))
	})
	add("session_table_data", "Fetch table row data, subject to a response-size gate", func(ctx context.Context, req mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		maxRows := argInt(req, "max_rows", 1000)
		return toolResult(c.SessionTableData(ctx, argString(req, "session_id"), argString(req, "table"), maxRows, argBool(req, "head")))
	})
	add("session_script_run", "Run a script in a session", func(ctx context.Context, req mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		return toolResult(c.SessionScriptRun(ctx, argString(req, "session_id"), argString(req, "script"), argString(req, "script_path")))
	})
	add("session_pip_list", "List installed pip packages in a Python session", func(ctx context.Context, req mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		return toolResult(c.SessionPipList(ctx, argString(req, "session_id")))
	})
	add("session_community_create", "Launch a new community worker and register its session", func(ctx context.Context, req mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		return toolResult(c.SessionCommunityCreate(ctx, argString(req, "session_name"), argString(req, "launch_method"), argString(req, "auth_token_env_var"), argInt(req, "heap_mb", 0)))
	})
	add("session_community_delete", "Stop and deregister a dynamically created community session", func(ctx context.Context, req mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		return toolResult(c.SessionCommunityDelete(ctx, argString(req, "session_name")))
	})
	add("session_community_credentials", "Retrieve a dynamic community session's connection credentials", func(ctx context.Context, req mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		return toolResult(c.SessionCommunityCredentials(ctx, argString(req, "session_name")))
	})
	add("enterprise_systems_status", "Report enterprise factory reachability and discovery phase", func(ctx context.Context, req mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		return toolResult(c.EnterpriseSystemsStatus(ctx))
	})
	add("session_enterprise_create", "Create a new enterprise session via its factory", func(ctx context.Context, req mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		return toolResult(c.SessionEnterpriseCreate(ctx, argString(req, "source"), argString(req, "session_name"), nil))
	})
	add("session_enterprise_delete", "Close and deregister an enterprise session", func(ctx context.Context, req mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		return toolResult(c.SessionEnterpriseDelete(ctx, argString(req, "source"), argString(req, "session_name")))
	})
	add("refresh", "Reload configuration and reinitialize every session registry", func(ctx context.Context, req mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		return toolResult(c.Refresh(ctx))
	})
	add("default_worker", "Return the configured default worker name", func(ctx context.Context, req mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		return toolResult(c.DefaultWorker(ctx))
	})
	add("docs_chat", "Ask a documentation question", func(ctx context.Context, req mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		return toolResult(c.DocsChat(ctx, argString(req, "prompt"), nil, argStringSlice(req, "system_prompts")))
	})

	for _, name := range []string{"catalog_list", "catalog_describe"} {
		name := name
		add(name, "Enterprise catalog support is not built in this server", func(ctx context.Context, req mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
			return toolResult(c.CatalogUnsupported(ctx, name))
		})
	}
	for _, name := range []string{"pq_list", "pq_describe"} {
		name := name
		add(name, "Enterprise persistent-query support is not built in this server", func(ctx context.Context, req mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
			return toolResult(c.PQUnsupported(ctx, name))
		})
	}
}
