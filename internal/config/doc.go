// Package config loads the size-check TOML configuration file, applies
// defaults and validates the result. Command-line flags are merged on top
// by the caller.
package config
