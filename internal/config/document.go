// Package config is the Config Store (spec §4.1): a single authoritative,
// lazily-loaded, validated configuration document with atomic invalidation.
// Shaped after the teacher's ConfigManager
// (pkg/mcp/internal/config/manager.go) - load-from-file, then env
// override, then validate - narrowed to the spec's single required
// DH_MCP_CONFIG_FILE path and exact top-level allow-list.
package config

// CommunitySessionConfig is one entry under community.sessions.
type CommunitySessionConfig struct {
	Host             string `yaml:"host"`
	Port             int    `yaml:"port"`
	AuthType         string `yaml:"auth_type"`
	AuthToken        string `yaml:"auth_token,omitempty"`
	AuthTokenEnvVar  string `yaml:"auth_token_env_var,omitempty"`
	NeverTimeout     bool   `yaml:"never_timeout"`
	SessionType      string `yaml:"session_type"`
	UseTLS           bool   `yaml:"use_tls"`
	TLSRootCerts     string `yaml:"tls_root_certs,omitempty"`
	ClientCertChain  string `yaml:"client_cert_chain,omitempty"`
	ClientPrivateKey string `yaml:"client_private_key,omitempty"`
}

// EnterpriseSystemConfig is one entry under enterprise.systems.
type EnterpriseSystemConfig struct {
	ConnectionURL       string            `yaml:"connection_url"`
	AuthType            string            `yaml:"auth_type"` // api-key | password | private-key | interactive
	AuthTokenEnvVar      string            `yaml:"auth_token_env_var,omitempty"`
	PasswordEnvVar       string            `yaml:"password_env_var,omitempty"`
	PrivateKeyEnvVar     string            `yaml:"private_key_env_var,omitempty"`
	Username             string            `yaml:"username,omitempty"`
	DefaultSessionParams map[string]string `yaml:"default_session_params,omitempty"`
}

// SessionCreationDefaults supplies defaults for dynamic-session creation.
type SessionCreationDefaults struct {
	MaxConcurrent        int    `yaml:"max_concurrent"`
	DefaultLaunchMethod  string `yaml:"default_launch_method"`
	DefaultImage         string `yaml:"default_image"`
	DefaultRuntime       string `yaml:"default_runtime"`
	DefaultHeapMB        int    `yaml:"default_heap_mb"`
	StartupTimeoutSec    int    `yaml:"startup_timeout_seconds"`
	StartupCheckInterval int    `yaml:"startup_check_interval_ms"`
	StartupRetries       int    `yaml:"startup_retries"`
}

// SecurityConfig gates sensitive tools.
type SecurityConfig struct {
	Community struct {
		CredentialRetrievalMode string `yaml:"credential_retrieval_mode,omitempty"`
	} `yaml:"community"`
}

// Document is the top-level configuration document (spec §3, §6). Only
// the fields below may appear; unknown top-level keys fail validation.
type Document struct {
	Community struct {
		Sessions map[string]CommunitySessionConfig `yaml:"sessions"`
	} `yaml:"community,omitempty"`
	Enterprise struct {
		Systems map[string]EnterpriseSystemConfig `yaml:"systems"`
	} `yaml:"enterprise,omitempty"`
	DefaultWorker   string                  `yaml:"default_worker,omitempty"`
	SessionCreation SessionCreationDefaults `yaml:"session_creation,omitempty"`
	Security        SecurityConfig          `yaml:"security,omitempty"`
}

// allowedTopLevelKeys mirrors the yaml tags above; validated against the
// raw document so an unknown key is rejected rather than silently dropped.
var allowedTopLevelKeys = map[string]bool{
	"community":        true,
	"enterprise":        true,
	"default_worker":    true,
	"session_creation":  true,
	"security":          true,
}
