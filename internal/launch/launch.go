// Package launch implements the Subprocess Launchers (spec §4.3): two
// variants (container-based, local-runtime-based) that start a worker,
// expose its endpoint, and poll for readiness. Grounded on the teacher's
// DockerCmdRunner (pkg/infrastructure/container/dockerclient.go) for the
// shell-out-via-CommandRunner idiom, adapted from image build/push to
// container run/stop for a long-lived worker process.
package launch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/deephaven/mcp-systems-server/internal/instance"
	"github.com/deephaven/mcp-systems-server/internal/mcperr"
	"github.com/deephaven/mcp-systems-server/internal/mcplog"
	"github.com/deephaven/mcp-systems-server/internal/sysexec"
)

// Method is the launch method tag carried on a Handle.
type Method string

const (
	MethodContainer Method = "docker"
	MethodLocal     Method = "python"
)

// Handle is a Launched Subprocess handle (spec §3): exactly one of
// ContainerID / PID is populated.
type Handle struct {
	Method               Method
	Port                 int
	AuthToken            string
	ConnectionURL         string
	ConnectionURLWithAuth string
	ContainerID           string
	PID                   int
	InstanceID            string

	runner sysexec.Runner
}

// Options are the common inputs to either launcher variant (spec §4.3).
type Options struct {
	SessionName string
	Port        int
	AuthToken   string
	HeapMB      int
	ExtraArgs   []string
	Env         map[string]string
	InstanceID  string
	Image       string // container variant
	Runtime     string // local-runtime variant: executable name
}

// AllocateFreePort probes for a free TCP port. Narrow race between probe
// and use is acknowledged (spec §4.3, §9) - callers allocating many ports
// concurrently in tests must serialize themselves.
func AllocateFreePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, mcperr.Wrap(mcperr.KindInternal, err, "failed to allocate a free port")
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// LaunchContainer starts a worker in a container, labeled with the
// instance id so the orphan reaper (internal/instance) can find it later.
func LaunchContainer(ctx context.Context, runner sysexec.Runner, opts Options) (*Handle, error) {
	image := opts.Image
	if image == "" {
		image = "deephaven/server:latest"
	}
	args := []string{
		"run", "-d",
		"--name", "dh-mcp-" + opts.SessionName,
		"--label", instance.ContainerLabelKey + "=" + opts.InstanceID,
		"-p", fmt.Sprintf("%d:10000", opts.Port),
	}
	if opts.HeapMB > 0 {
		args = append(args, "--memory", strconv.Itoa(opts.HeapMB)+"m")
	}
	for k, v := range opts.Env {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, v))
	}
	args = append(args, image)
	args = append(args, opts.ExtraArgs...)

	out, err := runner.Run(ctx, "docker", args...)
	if err != nil {
		return nil, mcperr.Wrapf(mcperr.KindCreation, err, "failed to launch container for session %q", opts.SessionName)
	}

	h := &Handle{
		Method:      MethodContainer,
		Port:        opts.Port,
		AuthToken:   opts.AuthToken,
		ContainerID: firstLine(out),
		InstanceID:  opts.InstanceID,
		runner:      runner,
	}
	h.ConnectionURL = fmt.Sprintf("http://localhost:%d", h.Port)
	h.ConnectionURLWithAuth = withAuth(h.ConnectionURL, h.AuthToken)
	mcplog.Infof("launched container %s for session %q on port %d", h.ContainerID, opts.SessionName, h.Port)
	return h, nil
}

// LaunchLocal spawns a local-runtime subprocess (e.g. a python worker).
// Callers are responsible for tracking h.PID via the Instance Tracker on
// success and untracking it on graceful stop (spec §4.3).
func LaunchLocal(ctx context.Context, opts Options) (*Handle, error) {
	runtime := opts.Runtime
	if runtime == "" {
		runtime = "python"
	}
	args := append([]string{"-m", "deephaven_mcp.worker", "--port", strconv.Itoa(opts.Port)}, opts.ExtraArgs...)
	cmd := exec.CommandContext(ctx, runtime, args...)
	if err := cmd.Start(); err != nil {
		return nil, mcperr.Wrapf(mcperr.KindCreation, err, "failed to launch local runtime for session %q", opts.SessionName)
	}

	h := &Handle{
		Method:     MethodLocal,
		Port:       opts.Port,
		AuthToken:  opts.AuthToken,
		PID:        cmd.Process.Pid,
		InstanceID: opts.InstanceID,
	}
	h.ConnectionURL = fmt.Sprintf("http://localhost:%d", h.Port)
	h.ConnectionURLWithAuth = withAuth(h.ConnectionURL, h.AuthToken)
	mcplog.Infof("launched local process pid=%d for session %q on port %d", h.PID, opts.SessionName, h.Port)
	return h, nil
}

// WaitUntilReady polls an HTTP liveness endpoint until success or deadline.
// Never raises; returns false on timeout.
func (h *Handle) WaitUntilReady(ctx context.Context, timeout, interval time.Duration) bool {
	deadline := time.Now().Add(timeout)
	b := backoff.NewConstantBackOff(interval)
	client := &http.Client{Timeout: interval}

	for time.Now().Before(deadline) {
		resp, err := client.Get(fmt.Sprintf("http://localhost:%d/health", h.Port))
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode < 500 {
				return true
			}
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(b.NextBackOff()):
		}
	}
	return false
}

// Stop terminates the child, best-effort; safe to call multiple times;
// never raises to the caller.
func (h *Handle) Stop(ctx context.Context) {
	switch h.Method {
	case MethodContainer:
		if h.ContainerID == "" || h.runner == nil {
			return
		}
		if _, err := h.runner.Run(ctx, "docker", "stop", h.ContainerID); err != nil {
			mcplog.Warnf("stopping container %s: %v", h.ContainerID, err)
		}
		if _, err := h.runner.Run(ctx, "docker", "rm", h.ContainerID); err != nil {
			mcplog.Warnf("removing container %s: %v", h.ContainerID, err)
		}
	case MethodLocal:
		if h.PID == 0 {
			return
		}
		p, err := os.FindProcess(h.PID)
		if err != nil {
			return
		}
		if err := p.Kill(); err != nil {
			mcplog.Warnf("killing local process pid=%d: %v", h.PID, err)
		}
	}
}

func withAuth(url, token string) string {
	if token == "" {
		return url
	}
	return url + "?auth_token=" + token
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
