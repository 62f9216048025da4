package config

import (
	"github.com/deephaven/mcp-systems-server/internal/mcperr"
)

// validate enforces spec §4.1's rules against the raw (untyped) document
// so unknown keys are caught, then returns the typed Document unchanged.
// validate is deterministic and idempotent (invariant 8): re-validating an
// already-valid *Document always yields the same *Document.
func validate(raw map[string]interface{}, doc *Document) (*Document, error) {
	for key := range raw {
		if !allowedTopLevelKeys[key] {
			return nil, mcperr.Newf(mcperr.KindConfiguration, "unknown top-level config key %q", key)
		}
	}

	if communityRaw, ok := raw["community"]; ok {
		if err := validateCommunitySection(communityRaw, doc); err != nil {
			return nil, err
		}
	}

	if enterpriseRaw, ok := raw["enterprise"]; ok {
		if err := validateEnterpriseSection(enterpriseRaw, doc); err != nil {
			return nil, err
		}
	}

	for name, sess := range doc.Community.Sessions {
		if sess.AuthToken != "" && sess.AuthTokenEnvVar != "" {
			return nil, mcperr.Newf(mcperr.KindConfiguration,
				"community session %q: auth_token and auth_token_env_var are mutually exclusive", name)
		}
	}

	if doc.DefaultWorker != "" {
		if _, ok := doc.Community.Sessions[doc.DefaultWorker]; !ok {
			return nil, mcperr.Newf(mcperr.KindConfiguration,
				"default_worker %q does not name a defined community session", doc.DefaultWorker)
		}
	}

	return doc, nil
}

func validateCommunitySection(raw interface{}, doc *Document) error {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return mcperr.New(mcperr.KindConfiguration, "community must be a mapping")
	}
	sessionsRaw, ok := m["sessions"]
	if !ok {
		return nil
	}
	sessions, ok := sessionsRaw.(map[string]interface{})
	if !ok {
		return mcperr.New(mcperr.KindConfiguration, "community.sessions must be a mapping")
	}
	if len(sessions) == 0 {
		return mcperr.New(mcperr.KindConfiguration, "community.sessions must have at least one entry when present")
	}
	allowed := map[string]bool{
		"host": true, "port": true, "auth_type": true, "auth_token": true,
		"auth_token_env_var": true, "never_timeout": true, "session_type": true,
		"use_tls": true, "tls_root_certs": true, "client_cert_chain": true,
		"client_private_key": true,
	}
	for name, entryRaw := range sessions {
		entry, ok := entryRaw.(map[string]interface{})
		if !ok {
			return mcperr.Newf(mcperr.KindConfiguration, "community.sessions.%s must be a mapping", name)
		}
		for field := range entry {
			if !allowed[field] {
				return mcperr.Newf(mcperr.KindConfiguration, "community.sessions.%s: unknown field %q", name, field)
			}
		}
		if err := checkFieldType(entry, name, "host", fieldString); err != nil {
			return err
		}
		if err := checkFieldType(entry, name, "port", fieldInt); err != nil {
			return err
		}
		if err := checkFieldType(entry, name, "never_timeout", fieldBool); err != nil {
			return err
		}
		if err := checkFieldType(entry, name, "use_tls", fieldBool); err != nil {
			return err
		}
	}
	return nil
}

func validateEnterpriseSection(raw interface{}, doc *Document) error {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return mcperr.New(mcperr.KindConfiguration, "enterprise must be a mapping")
	}
	systemsRaw, ok := m["systems"]
	if !ok {
		return nil
	}
	systems, ok := systemsRaw.(map[string]interface{})
	if !ok {
		return mcperr.New(mcperr.KindConfiguration, "enterprise.systems must be a mapping")
	}
	for name, entryRaw := range systems {
		if _, ok := entryRaw.(map[string]interface{}); !ok {
			return mcperr.Newf(mcperr.KindConfiguration, "enterprise.systems.%s must be a mapping", name)
		}
	}
	return nil
}

type fieldKind int

const (
	fieldString fieldKind = iota
	fieldInt
	fieldBool
)

func checkFieldType(entry map[string]interface{}, sessionName, field string, kind fieldKind) error {
	v, ok := entry[field]
	if !ok {
		return nil
	}
	switch kind {
	case fieldString:
		if _, ok := v.(string); !ok {
			return mcperr.Newf(mcperr.KindConfiguration, "community.sessions.%s.%s must be a string", sessionName, field)
		}
	case fieldInt:
		switch v.(type) {
		case int, int64, float64:
		default:
			return mcperr.Newf(mcperr.KindConfiguration, "community.sessions.%s.%s must be an integer", sessionName, field)
		}
	case fieldBool:
		if _, ok := v.(bool); !ok {
			return mcperr.Newf(mcperr.KindConfiguration, "community.sessions.%s.%s must be a boolean", sessionName, field)
		}
	}
	return nil
}
