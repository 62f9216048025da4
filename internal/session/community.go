// Package session implements the Session Manager variants (spec §4.5):
// typed specializations of the generic Item Manager for community
// sessions (config-driven), enterprise sessions (creation-function-
// driven), enterprise session factories, and dynamic community sessions.
// Grounded on original_source/src/deephaven_mcp/sessions/_lifecycle/
// community.py's create-impl / redacted-config-on-failure shape.
package session

import (
	"context"

	"github.com/deephaven/mcp-systems-server/internal/config"
	"github.com/deephaven/mcp-systems-server/internal/itemmgr"
	"github.com/deephaven/mcp-systems-server/internal/mcperr"
	"github.com/deephaven/mcp-systems-server/internal/mcplog"
	"github.com/deephaven/mcp-systems-server/internal/worker"
)

// Builder constructs a live worker.Session from a validated community
// session config. The real implementation (dialing host:port, loading TLS
// material) is the remote worker wire protocol, out of scope per spec §1;
// tests and cmd/mcp-server inject concrete Builders.
type Builder func(ctx context.Context, cfg config.CommunitySessionConfig) (worker.Session, error)

const SystemTypeCommunity = "community"

// CommunityManager is the Community Session Manager (spec §4.5): item is a
// community session; create calls the builder with the validated config;
// liveness delegates to the session's IsAlive.
type CommunityManager struct {
	*itemmgr.Manager[worker.Session]
	source string
	name   string
}

// NewCommunityManager builds a manager for one configured community
// session. source is conventionally "community" (spec's fqname scheme).
func NewCommunityManager(source, name string, cfg config.CommunitySessionConfig, build Builder) *CommunityManager {
	create := func(ctx context.Context) (worker.Session, error) {
		redactedHost := cfg.Host
		sess, err := build(ctx, cfg)
		if err != nil {
			mcplog.Warnf("failed to create community session %q at %s:%d: %v", name, redactedHost, cfg.Port, err)
			return nil, err
		}
		return sess, nil
	}
	isAlive := func(ctx context.Context, sess worker.Session) bool {
		return sess.IsAlive(ctx)
	}
	closeItem := func(ctx context.Context, sess worker.Session) error {
		return sess.Close(ctx)
	}
	return &CommunityManager{
		Manager: itemmgr.New(SystemTypeCommunity, source, name, create, isAlive, closeItem),
		source:  source,
		name:    name,
	}
}

// Name returns the session's configured name (not the fqname).
func (m *CommunityManager) Name() string { return m.name }

// FullNameCommunity builds the fqname of a configured (non-dynamic)
// community session: "community:community:{name}".
func FullNameCommunity(name string) string {
	return itemmgr.FullName(SystemTypeCommunity, SystemTypeCommunity, name)
}

// ResolveAuthToken implements the auth_token / auth_token_env_var
// indirection. Strict mode (used by the session_community_create tool
// handler, spec §4.7) fails when the named env var is unset; lenient mode
// (grounded on _lifecycle/community.py's behaviour) falls back to an empty
// token and logs a warning instead of failing. CommunityManager does not
// call it: a config-driven session's Builder receives the config as is.
func ResolveAuthToken(ctx context.Context, token, envVar string, strict bool, getenv func(string) (string, bool)) (string, error) {
	if token != "" {
		return token, nil
	}
	if envVar == "" {
		return "", nil
	}
	val, ok := getenv(envVar)
	if !ok || val == "" {
		if strict {
			return "", mcperr.Newf(mcperr.KindConfiguration, "auth_token_env_var %q is not set in the environment", envVar)
		}
		mcplog.Warnf("auth_token_env_var %q is not set; falling back to an empty token", envVar)
		return "", nil
	}
	return val, nil
}
