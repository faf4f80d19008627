package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Components map[string]string `mapstructure:"components"`
}

// JournalConfig configures the run history.
type JournalConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// Config represents the application configuration.
//
// The comment marker is not part of it: whether -s is given decides between
// explicit and auto-detect check modes, so it only comes from the command line.
type Config struct {
	Output   string        `mapstructure:"output"`
	Template string        `mapstructure:"template"`
	Quiet    bool          `mapstructure:"quiet"`
	Verbose  bool          `mapstructure:"verbose"`
	Logging  LoggingConfig `mapstructure:"logging"`
	Journal  JournalConfig `mapstructure:"journal"`
}

// Configure points v at the config file and enables SKIPSUM_ environment
// overrides. An empty cfgFile searches the XDG config directories.
func Configure(v *viper.Viper, cfgFile string) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := ConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
		for _, dir := range xdg.ConfigDirs {
			v.AddConfigPath(filepath.Join(dir, AppName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("template", "")
	v.SetDefault("quiet", false)
	v.SetDefault("verbose", false)

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "") // Empty disables the log file
	v.SetDefault("logging.components", map[string]string{})

	v.SetDefault("journal.enabled", false)
	v.SetDefault("journal.path", DefaultJournalDir())
	v.SetDefault("journal.retention_days", DefaultRetentionDays)
}

// Read reads the config file, if any, and unmarshals v into a Config.
// A missing file in the search path is not an error; a missing explicit file is.
func Read(v *viper.Viper) (*Config, error) {
	if explicit := v.ConfigFileUsed(); explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var err error
	if cfg.Journal.Path, err = ExpandPath(cfg.Journal.Path); err != nil {
		return nil, err
	}
	if cfg.Logging.Path, err = ExpandPath(cfg.Logging.Path); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Load loads configuration from file and environment variables into a fresh viper.
// Config file locations (in order of precedence):
//   - cfgFile, when non-empty
//   - $XDG_CONFIG_HOME/skipsum/config.yaml
//   - $HOME/.config/skipsum/config.yaml
//
// Environment variables are prefixed with SKIPSUM_ (e.g., SKIPSUM_JOURNAL_ENABLED).
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	Configure(v, cfgFile)
	SetDefaults(v)
	return Read(v)
}

// ConfigDir returns the configuration directory path.
// XDG_CONFIG_HOME is read on every call so that it can be changed at runtime.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, AppName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", AppName), nil
}

// ConfigFilePath returns the default config file path.
func ConfigFilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// StateDir returns $XDG_STATE_HOME/skipsum/.
func StateDir() string {
	if xdgStateHome := os.Getenv("XDG_STATE_HOME"); xdgStateHome != "" {
		return filepath.Join(xdgStateHome, AppName)
	}
	return filepath.Join(xdg.StateHome, AppName)
}

// DefaultJournalDir returns the default journal directory.
func DefaultJournalDir() string {
	return filepath.Join(StateDir(), "journal")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}

// WriteDefault writes a commented default config file to path.
// It returns created=false without touching anything if the file exists.
func WriteDefault(path string) (created bool, err error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# skipsum configuration

# Check result format: plain, pretty, json, yaml, template
output: %s

# fasttemplate used with "output: template", e.g. "{{path}}: {{status}}"
template: ""

# Suppress per-file OK/FAILED lines
quiet: false

# Logging configuration
logging:
  # Log level for the log file: debug, info, warn, error
  level: %s
  # Log file path (empty disables file logging)
  path: ""
  # Per-component log levels (digest, verify, runner, journal, output)
  components: {}

# Run history
journal:
  enabled: false
  path: %s
  retention_days: %d
`, DefaultOutput, DefaultLogLevel, DefaultJournalDir(), DefaultRetentionDays)

	if err := os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
		return false, fmt.Errorf("failed to write default config: %w", err)
	}

	return true, nil
}
