package session

import (
	"context"
	"sync"

	"github.com/deephaven/mcp-systems-server/internal/config"
	"github.com/deephaven/mcp-systems-server/internal/instance"
	"github.com/deephaven/mcp-systems-server/internal/itemmgr"
	"github.com/deephaven/mcp-systems-server/internal/launch"
	"github.com/deephaven/mcp-systems-server/internal/mcplog"
)

const SystemTypeDynamicCommunity = "dynamic"

// FullNameDynamicCommunity builds the fqname of a dynamically-created
// community session: "community:dynamic:{name}" (spec §8 scenario C).
func FullNameDynamicCommunity(name string) string {
	return itemmgr.FullName(SystemTypeCommunity, SystemTypeDynamicCommunity, name)
}

// DynamicCommunityManager wraps a Launched Subprocess handle plus a
// Community Session Manager pointing at it (spec §4.5, §9). Close order is
// strict: session-level close, then subprocess stop (spec §9 "Ownership of
// launched subprocesses").
type DynamicCommunityManager struct {
	*CommunityManager
	mu      sync.Mutex
	handle  *launch.Handle
	tracker *instance.Tracker
	name    string
}

// NewDynamicCommunityManager builds a manager owning handle; closing the
// manager closes the session then stops the subprocess and untracks the
// child from the Instance Tracker.
func NewDynamicCommunityManager(name string, handle *launch.Handle, cfg config.CommunitySessionConfig, build Builder, tracker *instance.Tracker) *DynamicCommunityManager {
	inner := NewCommunityManager("dynamic", name, cfg, build)
	return &DynamicCommunityManager{
		CommunityManager: inner,
		handle:           handle,
		tracker:          tracker,
		name:             name,
	}
}

// Close stops the session, then the subprocess, then untracks the child.
// Subprocess stop is best-effort and never raises (spec §4.5).
func (m *DynamicCommunityManager) Close(ctx context.Context) error {
	err := m.CommunityManager.Manager.Close(ctx)

	m.mu.Lock()
	handle := m.handle
	m.mu.Unlock()
	if handle != nil {
		handle.Stop(ctx)
	}

	if m.tracker != nil {
		if untrackErr := m.tracker.UntrackChild(m.name); untrackErr != nil {
			mcplog.Warnf("untracking dynamic session %q: %v", m.name, untrackErr)
		}
	}
	return err
}

// ViewFields exposes the additional fields session_details needs for a
// dynamic session (spec §4.5): launch method, port, connection URLs,
// container id or pid, auth token.
type ViewFields struct {
	LaunchMethod          string
	Port                  int
	ConnectionURL         string
	ConnectionURLWithAuth string
	ContainerID           string
	ProcessID             int
	AuthToken             string
}

func (m *DynamicCommunityManager) View() ViewFields {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ViewFields{
		LaunchMethod:          string(m.handle.Method),
		Port:                  m.handle.Port,
		ConnectionURL:         m.handle.ConnectionURL,
		ConnectionURLWithAuth: m.handle.ConnectionURLWithAuth,
		ContainerID:           m.handle.ContainerID,
		ProcessID:             m.handle.PID,
		AuthToken:             m.handle.AuthToken,
	}
}
