package instance

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withFakeHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	return dir
}

func TestCreateAndRegisterWritesRecord(t *testing.T) {
	home := withFakeHome(t)
	tr, err := CreateAndRegister()
	require.NoError(t, err)

	path := filepath.Join(home, ".deephaven-mcp", "instances", tr.ID()+".json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var rec Record
	require.NoError(t, json.Unmarshal(data, &rec))
	assert.Equal(t, os.Getpid(), rec.PID)
	assert.Equal(t, tr.ID(), rec.InstanceID)
}

func TestTrackUntrackChildIsIdempotent(t *testing.T) {
	withFakeHome(t)
	tr, err := CreateAndRegister()
	require.NoError(t, err)

	require.NoError(t, tr.TrackChild("s1", 1234))
	snap := tr.Snapshot()
	assert.Equal(t, 1234, snap.PythonProcesses["s1"])

	require.NoError(t, tr.UntrackChild("s1"))
	require.NoError(t, tr.UntrackChild("s1")) // idempotent
	snap = tr.Snapshot()
	_, ok := snap.PythonProcesses["s1"]
	assert.False(t, ok)
}

func TestUnregisterRemovesFile(t *testing.T) {
	home := withFakeHome(t)
	tr, err := CreateAndRegister()
	require.NoError(t, err)
	path := filepath.Join(home, ".deephaven-mcp", "instances", tr.ID()+".json")

	tr.Unregister()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	tr.Unregister() // best-effort, no panic on missing file
}

type fakeRunner struct {
	calls [][]string
}

func (f *fakeRunner) Run(ctx context.Context, cmd string, args ...string) (string, error) {
	f.calls = append(f.calls, append([]string{cmd}, args...))
	if cmd == "docker" && len(args) > 0 && args[0] == "ps" {
		return "", nil // no containers in this scenario
	}
	return "", nil
}

func TestCleanupOrphanedResourcesRemovesDeadInstance(t *testing.T) {
	home := withFakeHome(t)
	dir := filepath.Join(home, ".deephaven-mcp", "instances")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	dead := Record{
		InstanceID:      "dead-1",
		PID:             999999, // guaranteed dead in test environments
		StartedAt:       "2020-01-01T00:00:00Z",
		PythonProcesses: map[string]int{"worker": 999998},
	}
	data, err := json.Marshal(dead)
	require.NoError(t, err)
	recordPath := filepath.Join(dir, "dead-1.json")
	require.NoError(t, os.WriteFile(recordPath, data, 0o644))

	runner := &fakeRunner{}
	CleanupOrphanedResources(context.Background(), runner)

	_, err = os.Stat(recordPath)
	assert.True(t, os.IsNotExist(err))
}

func TestCleanupOrphanedResourcesSkipsLiveInstance(t *testing.T) {
	home := withFakeHome(t)
	dir := filepath.Join(home, ".deephaven-mcp", "instances")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	live := Record{
		InstanceID: "live-1",
		PID:        os.Getpid(), // this test process, definitely alive
		StartedAt:  "2020-01-01T00:00:00Z",
	}
	data, err := json.Marshal(live)
	require.NoError(t, err)
	recordPath := filepath.Join(dir, "live-1.json")
	require.NoError(t, os.WriteFile(recordPath, data, 0o644))

	CleanupOrphanedResources(context.Background(), &fakeRunner{})

	_, err = os.Stat(recordPath)
	require.NoError(t, err) // untouched
}
