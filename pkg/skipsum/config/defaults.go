// Package config provides configuration management for skipsum.
package config

// Default configuration values for skipsum.
const (
	// AppName names the XDG subdirectories and the environment prefix.
	AppName = "skipsum"

	// EnvPrefix prefixes environment overrides (e.g., SKIPSUM_OUTPUT).
	EnvPrefix = "SKIPSUM"

	// DefaultOutput is the check result format.
	DefaultOutput = "plain"

	// DefaultLogLevel is the file log level.
	DefaultLogLevel = "info"

	// DefaultConsoleLevel is the stderr log level without --verbose.
	DefaultConsoleLevel = "warn"

	// DefaultRetentionDays is how long journal entries are kept.
	DefaultRetentionDays = 30
)
