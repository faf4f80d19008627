package main

import (
	"fmt"

	"github.com/jamesainslie/skipsum/pkg/skipsum/config"
	"github.com/jamesainslie/skipsum/pkg/skipsum/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// initializeLogging loads the configuration and sets up logging. It runs as
// the root PersistentPreRunE hook, so every subcommand sees appConfig.
func initializeLogging(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Read(viper.GetViper())
	if err != nil {
		return err
	}
	appConfig = cfg

	logCfg := loggingConfig(cfg)
	if cmd != nil {
		logCfg.Console = cmd.ErrOrStderr()
	}
	if err := logging.Init(logCfg); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	if used := viper.ConfigFileUsed(); used != "" {
		logging.Get("config").Debug("configuration loaded", "file", used)
	}
	return nil
}

// loggingConfig maps the configuration onto logging.Config. Console output
// shows warnings, or everything with --verbose.
func loggingConfig(cfg *config.Config) logging.Config {
	consoleLevel := config.DefaultConsoleLevel
	if cfg.Verbose {
		consoleLevel = "debug"
	}
	return logging.Config{
		Level:        cfg.Logging.Level,
		Path:         cfg.Logging.Path,
		Components:   cfg.Logging.Components,
		ConsoleLevel: consoleLevel,
	}
}

// shutdownLogging closes the log file.
func shutdownLogging() {
	_ = logging.Close()
}
