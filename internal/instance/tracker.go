// Package instance is the Instance Tracker (spec §4.2): gives this process
// a stable id, persists liveness metadata under
// ~/.deephaven-mcp/instances/{id}.json, and on startup reaps orphaned
// child resources belonging to dead instances. Grounded on
// original_source/src/deephaven_mcp/resource_manager/_instance_tracker.py.
package instance

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/deephaven/mcp-systems-server/internal/mcplog"
)

// ContainerLabelKey is the label every dynamic-session container carries,
// used by the orphan reaper to find containers belonging to a dead instance.
const ContainerLabelKey = "deephaven-mcp-server-instance"

// Record is the on-disk shape of one instance's metadata.
type Record struct {
	InstanceID      string           `json:"instance_id"`
	PID             int              `json:"pid"`
	StartedAt       string           `json:"started_at"`
	PythonProcesses map[string]int   `json:"python_processes"`
}

// Tracker owns this process's instance record and serializes writes to it.
type Tracker struct {
	mu       sync.Mutex
	dir      string
	record   Record
}

func instancesDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".deephaven-mcp", "instances"), nil
}

// CreateAndRegister generates a fresh instance id, records pid and start
// time, and atomically writes the record file.
func CreateAndRegister() (*Tracker, error) {
	dir, err := instancesDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	t := &Tracker{
		dir: dir,
		record: Record{
			InstanceID:      uuid.NewString(),
			PID:             os.Getpid(),
			StartedAt:       time.Now().UTC().Format(time.RFC3339),
			PythonProcesses: make(map[string]int),
		},
	}
	if err := t.persist(); err != nil {
		return nil, err
	}
	mcplog.Infof("instance %s registered (pid=%d)", t.record.InstanceID, t.record.PID)
	return t, nil
}

// ID returns this instance's id.
func (t *Tracker) ID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.record.InstanceID
}

// Snapshot returns a copy of the current record, for tests and diagnostics.
func (t *Tracker) Snapshot() Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	cp := t.record
	cp.PythonProcesses = make(map[string]int, len(t.record.PythonProcesses))
	for k, v := range t.record.PythonProcesses {
		cp.PythonProcesses[k] = v
	}
	return cp
}

// TrackChild records a dynamic session's child pid; idempotent.
func (t *Tracker) TrackChild(sessionName string, pid int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record.PythonProcesses[sessionName] = pid
	return t.persistLocked()
}

// UntrackChild removes a dynamic session's child pid; idempotent.
func (t *Tracker) UntrackChild(sessionName string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.record.PythonProcesses[sessionName]; !ok {
		return nil
	}
	delete(t.record.PythonProcesses, sessionName)
	return t.persistLocked()
}

// Unregister best-effort deletes this instance's record file.
func (t *Tracker) Unregister() {
	t.mu.Lock()
	defer t.mu.Unlock()
	path := t.recordPathLocked()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		mcplog.Warnf("failed to remove instance record %s: %v", path, err)
	}
}

func (t *Tracker) recordPathLocked() string {
	return filepath.Join(t.dir, t.record.InstanceID+".json")
}

func (t *Tracker) persist() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.persistLocked()
}

// persistLocked writes the record via temp-file-then-rename so a concurrent
// reader (the orphan reaper of another process) never observes a partial
// write. Caller must hold t.mu.
func (t *Tracker) persistLocked() error {
	data, err := json.MarshalIndent(t.record, "", "  ")
	if err != nil {
		return err
	}
	target := t.recordPathLocked()
	tmp, err := os.CreateTemp(t.dir, ".tmp-instance-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("atomic rename of instance record failed: %w", err)
	}
	return nil
}
