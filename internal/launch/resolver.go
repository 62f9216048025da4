package launch

import "github.com/deephaven/mcp-systems-server/internal/config"

// ResolveDefaults fills zero-valued Options fields from the config's
// session_creation defaults (spec §9's config-defaulted resolution of the
// image/heap/timeout Open Question).
func ResolveDefaults(opts Options, defaults config.SessionCreationDefaults) Options {
	if opts.Image == "" {
		opts.Image = defaults.DefaultImage
	}
	if opts.Runtime == "" {
		opts.Runtime = defaults.DefaultRuntime
	}
	if opts.HeapMB == 0 {
		opts.HeapMB = defaults.DefaultHeapMB
	}
	return opts
}

// DefaultLaunchMethod returns the configured default, or MethodContainer
// when unset.
func DefaultLaunchMethod(defaults config.SessionCreationDefaults) Method {
	switch defaults.DefaultLaunchMethod {
	case string(MethodLocal):
		return MethodLocal
	default:
		return MethodContainer
	}
}
