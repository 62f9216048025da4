package instance

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/deephaven/mcp-systems-server/internal/mcplog"
	"github.com/deephaven/mcp-systems-server/internal/sysexec"
)

// CleanupOrphanedResources scans the instances directory, and for every
// record whose pid is dead: stops and removes every container labeled with
// its instance id, signals every tracked child pid still alive, and deletes
// the record file. All errors are logged and swallowed - orphan reaping
// must never prevent startup (spec §4.2, invariant 7).
func CleanupOrphanedResources(ctx context.Context, runner sysexec.Runner) {
	dir, err := instancesDir()
	if err != nil {
		mcplog.Warnf("orphan cleanup: cannot resolve instances dir: %v", err)
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			mcplog.Warnf("orphan cleanup: cannot read instances dir: %v", err)
		}
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		rec, err := loadRecord(path)
		if err != nil {
			mcplog.Warnf("orphan cleanup: skipping unreadable record %s: %v", path, err)
			continue
		}
		if isAlive(rec.PID) {
			continue // live instance, untouched
		}
		reapOne(ctx, runner, path, rec)
	}
}

func loadRecord(path string) (Record, error) {
	var rec Record
	data, err := os.ReadFile(path)
	if err != nil {
		return rec, err
	}
	err = json.Unmarshal(data, &rec)
	return rec, err
}

func reapOne(ctx context.Context, runner sysexec.Runner, path string, rec Record) {
	reapContainers(ctx, runner, rec.InstanceID)
	for name, pid := range rec.PythonProcesses {
		if !isAlive(pid) {
			continue
		}
		if err := terminate(pid); err != nil {
			mcplog.Warnf("orphan cleanup: signalling pid %d (session %q) of dead instance %s: %v", pid, name, rec.InstanceID, err)
		} else {
			mcplog.Infof("orphan cleanup: terminated pid %d (session %q) of dead instance %s", pid, name, rec.InstanceID)
		}
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		mcplog.Warnf("orphan cleanup: failed to delete record %s: %v", path, err)
	} else {
		mcplog.Infof("orphan cleanup: removed dead instance record %s", rec.InstanceID)
	}
}

func reapContainers(ctx context.Context, runner sysexec.Runner, instanceID string) {
	labelFilter := ContainerLabelKey + "=" + instanceID
	out, err := runner.Run(ctx, "docker", "ps", "-aq", "--filter", "label="+labelFilter)
	if err != nil {
		mcplog.Warnf("orphan cleanup: listing containers for instance %s: %v", instanceID, err)
		return
	}
	ids := strings.Fields(out)
	for _, id := range ids {
		if _, err := runner.Run(ctx, "docker", "stop", id); err != nil {
			mcplog.Warnf("orphan cleanup: stopping container %s: %v", id, err)
		}
		if _, err := runner.Run(ctx, "docker", "rm", id); err != nil {
			mcplog.Warnf("orphan cleanup: removing container %s: %v", id, err)
		} else {
			mcplog.Infof("orphan cleanup: removed container %s of dead instance %s", id, instanceID)
		}
	}
}

// isAlive probes whether pid names a live process, using signal 0 (no
// actual signal delivered). A permission error means the process exists
// but is not ours: it is reported as alive, so an instance record whose pid
// is in that state is skipped rather than reaped.
func isAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	if err == syscall.EPERM {
		return true
	}
	return false
}

func terminate(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Signal(syscall.SIGTERM)
}
