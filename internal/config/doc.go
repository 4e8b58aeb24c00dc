// Package config holds the runtime configuration for a11yaudit: CLI
// flag values, defaults, the optional YAML config file, and validation.
package config
