// Package config loads and validates logsweep configuration from TOML.
//
// Load resolves the file (explicit path, then ~/.config/logsweep/config.toml,
// then ./logsweep.toml), decodes it over the defaults, normalizes paths, and
// validates the result. The returned Config is an explicit value passed to
// collaborators; there is no package-level mutable state.
package config
