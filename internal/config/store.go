package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/deephaven/mcp-systems-server/internal/mcperr"
	"github.com/deephaven/mcp-systems-server/internal/mcplog"
)

// EnvConfigFile is the required environment variable naming the
// configuration document's path (spec §6).
const EnvConfigFile = "DH_MCP_CONFIG_FILE"

// Store is the Config Store (spec §4.1): thread-safe lazy load, schema
// validation, and atomic invalidation of a single cached Document.
type Store struct {
	mu     sync.Mutex
	cached *Document
}

func NewStore() *Store {
	return &Store{}
}

// GetConfig returns the cached document, loading and validating it from
// DH_MCP_CONFIG_FILE on first call or after ClearConfigCache.
func (s *Store) GetConfig() (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil {
		mcplog.Debug("config cache hit")
		return s.cached, nil
	}

	path := os.Getenv(EnvConfigFile)
	if path == "" {
		err := mcperr.New(mcperr.KindConfiguration, fmt.Sprintf("environment variable %s is not set", EnvConfigFile))
		mcplog.Errorf("config load failed: %v", err)
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		wrapped := mcperr.Wrapf(mcperr.KindConfiguration, err, "cannot read config file %q", path)
		mcplog.Errorf("config load failed: %v", wrapped)
		return nil, wrapped
	}

	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(raw, &rawMap); err != nil {
		wrapped := mcperr.Wrapf(mcperr.KindConfiguration, err, "cannot parse config file %q", path)
		mcplog.Errorf("config load failed: %v", wrapped)
		return nil, wrapped
	}

	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		wrapped := mcperr.Wrapf(mcperr.KindConfiguration, err, "cannot decode config file %q", path)
		mcplog.Errorf("config load failed: %v", wrapped)
		return nil, wrapped
	}

	validated, err := validate(rawMap, &doc)
	if err != nil {
		mcplog.Errorf("config validation failed for %q: %v", path, err)
		return nil, err
	}

	s.cached = validated
	mcplog.Infof("config loaded from %s", path)
	return s.cached, nil
}

// ClearConfigCache drops the cached document; the next GetConfig re-reads.
func (s *Store) ClearConfigCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = nil
}

// GetCommunitySessionConfig looks up one community session by name.
func (s *Store) GetCommunitySessionConfig(name string) (*CommunitySessionConfig, error) {
	doc, err := s.GetConfig()
	if err != nil {
		return nil, err
	}
	cfg, ok := doc.Community.Sessions[name]
	if !ok {
		return nil, mcperr.Newf(mcperr.KindConfiguration, "community session %q not found", name)
	}
	return &cfg, nil
}

// GetEnterpriseSystemConfig looks up one enterprise system by name.
func (s *Store) GetEnterpriseSystemConfig(name string) (*EnterpriseSystemConfig, error) {
	doc, err := s.GetConfig()
	if err != nil {
		return nil, err
	}
	cfg, ok := doc.Enterprise.Systems[name]
	if !ok {
		return nil, mcperr.Newf(mcperr.KindConfiguration, "enterprise system %q not found", name)
	}
	return &cfg, nil
}

// GetCommunitySessionNames lists the configured community session names.
func (s *Store) GetCommunitySessionNames() ([]string, error) {
	doc, err := s.GetConfig()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(doc.Community.Sessions))
	for name := range doc.Community.Sessions {
		names = append(names, name)
	}
	return names, nil
}

// GetAllEnterpriseSystemNames lists the configured enterprise system names.
func (s *Store) GetAllEnterpriseSystemNames() ([]string, error) {
	doc, err := s.GetConfig()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(doc.Enterprise.Systems))
	for name := range doc.Enterprise.Systems {
		names = append(names, name)
	}
	return names, nil
}

// GetWorkerNameDefault returns the configured default_worker, if any.
func (s *Store) GetWorkerNameDefault() (string, error) {
	doc, err := s.GetConfig()
	if err != nil {
		return "", err
	}
	return doc.DefaultWorker, nil
}

// ResolveWorkerName returns name if non-empty, else the configured default;
// fails with *configuration* if neither is available.
func (s *Store) ResolveWorkerName(name string) (string, error) {
	if name != "" {
		return name, nil
	}
	def, err := s.GetWorkerNameDefault()
	if err != nil {
		return "", err
	}
	if def == "" {
		return "", mcperr.New(mcperr.KindConfiguration, "no session name given and no default_worker configured")
	}
	return def, nil
}
