package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deephaven/mcp-systems-server/internal/config"
	"github.com/deephaven/mcp-systems-server/internal/registry"
	"github.com/deephaven/mcp-systems-server/internal/session"
	"github.com/deephaven/mcp-systems-server/internal/worker"
)

type fakeRunner struct {
	calls [][]string
}

func (f *fakeRunner) Run(ctx context.Context, cmd string, args ...string) (string, error) {
	f.calls = append(f.calls, append([]string{cmd}, args...))
	return "container-123\n", nil
}

func writeConfig(t *testing.T, body string) *config.Store {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv(config.EnvConfigFile, path)
	return config.NewStore()
}

func newTestContext(t *testing.T, body string) (*Context, *worker.FakeSession) {
	t.Helper()
	store := writeConfig(t, body)
	fake := worker.NewFakeSession()
	build := func(ctx context.Context, cfg config.CommunitySessionConfig) (worker.Session, error) {
		return fake, nil
	}
	community := registry.NewCommunityRegistry(build)
	factories := registry.NewEnterpriseFactoryRegistry(nil, false)
	combined := registry.NewCombinedRegistry(community, factories, nil)
	require.NoError(t, combined.Initialize(context.Background(), store, nil))
	require.NoError(t, combined.WaitForDiscovery(context.Background()))

	c := NewContext(store, combined, factories, nil, &fakeRunner{}, build, nil)
	return c, fake
}

func TestSessionsListReturnsConfiguredSession(t *testing.T) {
	c, _ := newTestContext(t, `
community:
  sessions:
    local:
      host: localhost
      port: 10000
`)
	result := c.SessionsList(context.Background())
	assert.True(t, result["success"].(bool))
	sessions := result["sessions"].([]map[string]interface{})
	require.Len(t, sessions, 1)
	assert.Equal(t, "community:community:local", sessions[0]["session_id"])
}

func TestSessionDetailsWithoutConnectReportsAvailability(t *testing.T) {
	c, _ := newTestContext(t, `
community:
  sessions:
    local:
      host: localhost
      port: 10000
`)
	result := c.SessionDetails(context.Background(), "community:community:local", false)
	require.True(t, result["success"].(bool))
	session := result["session"].(map[string]interface{})
	assert.Contains(t, session, "available")
	assert.NotContains(t, session, "programming_language")
}

func TestSessionDetailsWithConnectPopulatesLanguage(t *testing.T) {
	c, fake := newTestContext(t, `
community:
  sessions:
    local:
      host: localhost
      port: 10000
`)
	fake.SetLanguage("python")
	result := c.SessionDetails(context.Background(), "community:community:local", true)
	require.True(t, result["success"].(bool))
	session := result["session"].(map[string]interface{})
	assert.Equal(t, "python", session["programming_language"])
	assert.Equal(t, "alive", session["liveness_status"])
}

func TestSessionTableDataRefusesOversizedResponse(t *testing.T) {
	c, fake := newTestContext(t, `
community:
  sessions:
    local:
      host: localhost
      port: 10000
`)
	cols := make([]worker.ColumnMeta, 200)
	for i := range cols {
		cols[i] = worker.ColumnMeta{Name: "c", Type: "string"}
	}
	fake.SetTable("big", &worker.Table{Columns: cols})

	result := c.SessionTableData(context.Background(), "community:community:local", "big", 3_000_000, true)
	assert.Equal(t, false, result["success"])
	assert.Equal(t, true, result["isError"])
	assert.Contains(t, result["error"].(string), "Response would be ~")
	assert.Contains(t, result["error"].(string), "max 50MB")
}

func TestSessionScriptRunRejectsBothArgs(t *testing.T) {
	c, _ := newTestContext(t, `
community:
  sessions:
    local:
      host: localhost
      port: 10000
`)
	result := c.SessionScriptRun(context.Background(), "community:community:local", "print(1)", "/tmp/x.py")
	assert.Equal(t, false, result["success"])
}

func TestSessionScriptRunRejectsNeitherArg(t *testing.T) {
	c, _ := newTestContext(t, `
community:
  sessions:
    local:
      host: localhost
      port: 10000
`)
	result := c.SessionScriptRun(context.Background(), "community:community:local", "", "")
	assert.Equal(t, false, result["success"])
}

func TestSessionScriptRunExecutesOnSession(t *testing.T) {
	c, fake := newTestContext(t, `
community:
  sessions:
    local:
      host: localhost
      port: 10000
`)
	result := c.SessionScriptRun(context.Background(), "community:community:local", "print(1)", "")
	require.Equal(t, true, result["success"])
	assert.Equal(t, []string{"print(1)"}, fake.ScriptsRun())
}

func TestSessionCommunityCreateRejectsWhenMaxConcurrentReached(t *testing.T) {
	c, _ := newTestContext(t, `
session_creation:
  max_concurrent: 1
`)
	existing := session.NewCommunityManager("dynamic", "already-there", config.CommunitySessionConfig{}, func(ctx context.Context, cfg config.CommunitySessionConfig) (worker.Session, error) {
		return worker.NewFakeSession(), nil
	})
	require.NoError(t, c.Registry.AddSession(existing.FullName(), existing))

	result := c.SessionCommunityCreate(context.Background(), "", "docker", "", 0)
	assert.Equal(t, false, result["success"])
	assert.Contains(t, result["error"].(string), "maximum concurrent")
}

func TestSessionCommunityCreateFailsReadinessTimeoutAndIsStoppedBestEffort(t *testing.T) {
	c, _ := newTestContext(t, `
session_creation:
  startup_timeout_seconds: 1
  startup_check_interval_ms: 100
`)
	result := c.SessionCommunityCreate(context.Background(), "s1", "docker", "", 0)
	assert.Equal(t, false, result["success"])
	assert.Contains(t, result["error"].(string), "did not become ready")
	assert.Equal(t, 0, c.Registry.CountAddedSessions())
	assert.Contains(t, c.Runner.(*fakeRunner).calls, []string{"docker", "stop", "container-123"})
}

func TestSessionCommunityCreateRejectsUnsetAuthTokenEnvVar(t *testing.T) {
	c, _ := newTestContext(t, `
session_creation:
  startup_timeout_seconds: 1
`)
	result := c.SessionCommunityCreate(context.Background(), "s1", "docker", "SOME_UNSET_AUTH_TOKEN_VAR_XYZ", 0)
	assert.Equal(t, false, result["success"])
	assert.Contains(t, result["error"].(string), "is not set in the environment")
}

func TestSessionCommunityDeleteIsNoOpOnUnknownName(t *testing.T) {
	c, _ := newTestContext(t, `community: {}`)
	result := c.SessionCommunityDelete(context.Background(), "nope")
	assert.Equal(t, true, result["success"])
}

func TestSessionCommunityCredentialsGatedByConfig(t *testing.T) {
	c, _ := newTestContext(t, `community: {}`)
	result := c.SessionCommunityCredentials(context.Background(), "local")
	assert.Equal(t, false, result["success"])
	assert.Contains(t, result["error"].(string), "credential retrieval is disabled")
}

func TestRefreshReInitializesRegistry(t *testing.T) {
	c, _ := newTestContext(t, `
community:
  sessions:
    local:
      host: localhost
      port: 10000
`)
	result := c.Refresh(context.Background())
	require.Equal(t, true, result["success"])
	assert.True(t, c.Registry.Phase() != registry.PhaseNotStarted)

	list := c.SessionsList(context.Background())
	assert.True(t, list["success"].(bool))
}

func TestDefaultWorkerReturnsConfiguredDefault(t *testing.T) {
	c, _ := newTestContext(t, `
community:
  sessions:
    local:
      host: localhost
      port: 10000
default_worker: local
`)
	result := c.DefaultWorker(context.Background())
	require.Equal(t, true, result["success"])
	assert.Equal(t, "local", result["result"])
}

func TestCatalogAndPQAreUnsupported(t *testing.T) {
	c, _ := newTestContext(t, `community: {}`)
	result := c.CatalogUnsupported(context.Background(), "catalog_list")
	assert.Equal(t, false, result["success"])
	result = c.PQUnsupported(context.Background(), "pq_list")
	assert.Equal(t, false, result["success"])
}

func TestDocsChatFailsWithoutConfiguredClient(t *testing.T) {
	c, _ := newTestContext(t, `community: {}`)
	result := c.DocsChat(context.Background(), "what is a table?", nil, nil)
	assert.Equal(t, false, result["success"])
}
