// Package sysexec is the shell-command abstraction shared by the
// container launcher and the orphan reaper, grounded on the teacher's
// core/runner.CommandRunner (pkg/infrastructure/core/runner/command.go):
// a thin os/exec wrapper swappable for a fake in tests.
package sysexec

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// Runner runs external commands (docker, the local worker runtime).
type Runner interface {
	Run(ctx context.Context, cmd string, args ...string) (string, error)
}

// DefaultRunner shells out via os/exec.
type DefaultRunner struct{}

func (DefaultRunner) Run(ctx context.Context, cmd string, args ...string) (string, error) {
	c := exec.CommandContext(ctx, cmd, args...)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if err := c.Run(); err != nil {
		return "", &CommandError{Cmd: cmd, Args: args, Stderr: stderr.String(), Err: err}
	}
	return strings.TrimSpace(stdout.String()), nil
}

// CommandError carries the captured stderr of a failed external command.
type CommandError struct {
	Cmd    string
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	return e.Cmd + ": " + e.Err.Error() + ": " + e.Stderr
}

func (e *CommandError) Unwrap() error { return e.Err }
