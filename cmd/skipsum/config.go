package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"

	"github.com/jamesainslie/skipsum/pkg/skipsum/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage skipsum configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/skipsum/config.yaml (if set)
  2. ~/.config/skipsum/config.yaml

Environment variables can override config file settings using the SKIPSUM_ prefix:
  SKIPSUM_OUTPUT=json
  SKIPSUM_QUIET=true
  SKIPSUM_JOURNAL_ENABLED=true

The comment marker is never read from configuration; pass it with -s.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration settings from all sources.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long: `Open the configuration file in your default editor.

The editor is determined by:
  1. $VISUAL environment variable
  2. $EDITOR environment variable
  3. Falls back to 'vi'

If the config file doesn't exist, a default one will be created first.`,
	Args: cobra.NoArgs,
	RunE: runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// configEnvVars lists the environment variables shown by config show.
var configEnvVars = []string{
	"SKIPSUM_OUTPUT",
	"SKIPSUM_TEMPLATE",
	"SKIPSUM_QUIET",
	"SKIPSUM_VERBOSE",
	"SKIPSUM_LOGGING_LEVEL",
	"SKIPSUM_LOGGING_PATH",
	"SKIPSUM_JOURNAL_ENABLED",
	"SKIPSUM_JOURNAL_PATH",
	"SKIPSUM_JOURNAL_RETENTION_DAYS",
}

// runConfigShow displays the current configuration.
func runConfigShow(cmd *cobra.Command, _ []string) error {
	writeConfig(cmd.OutOrStdout(), appConfig, viper.ConfigFileUsed())
	return nil
}

// writeConfig prints cfg and any environment overrides.
func writeConfig(w io.Writer, cfg *config.Config, configFile string) {
	if configFile != "" {
		fmt.Fprintf(w, "Config file: %s\n\n", configFile)
	} else {
		fmt.Fprintln(w, "Config file: (using defaults, no file found)")
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Current Configuration:")
	fmt.Fprintln(w, "----------------------")
	fmt.Fprintf(w, "output:                 %s\n", cfg.Output)
	fmt.Fprintf(w, "template:               %q\n", cfg.Template)
	fmt.Fprintf(w, "quiet:                  %t\n", cfg.Quiet)
	fmt.Fprintf(w, "logging.level:          %s\n", cfg.Logging.Level)
	fmt.Fprintf(w, "logging.path:           %s\n", displayPath(cfg.Logging.Path))

	components := make([]string, 0, len(cfg.Logging.Components))
	for name := range cfg.Logging.Components {
		components = append(components, name)
	}
	sort.Strings(components)
	for _, name := range components {
		fmt.Fprintf(w, "logging.components.%-4s %s\n", name+":", cfg.Logging.Components[name])
	}

	fmt.Fprintf(w, "journal.enabled:        %t\n", cfg.Journal.Enabled)
	fmt.Fprintf(w, "journal.path:           %s\n", cfg.Journal.Path)
	fmt.Fprintf(w, "journal.retention:      %d days\n", cfg.Journal.RetentionDays)

	fmt.Fprintln(w, "\nEnvironment Overrides:")
	fmt.Fprintln(w, "----------------------")
	anyOverrides := false
	for _, name := range configEnvVars {
		if val := os.Getenv(name); val != "" {
			fmt.Fprintf(w, "%s=%s\n", name, val)
			anyOverrides = true
		}
	}
	if !anyOverrides {
		fmt.Fprintln(w, "(none)")
	}
}

func displayPath(path string) string {
	if path == "" {
		return "(disabled)"
	}
	return path
}

// runConfigEdit opens the config file in an editor.
func runConfigEdit(_ *cobra.Command, _ []string) error {
	configPath, err := config.ConfigFilePath()
	if err != nil {
		return fmt.Errorf("failed to get config file path: %w", err)
	}

	if _, err := config.WriteDefault(configPath); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	printVerbose("Opening %s with %s", configPath, editor)

	editorCmd := exec.Command(editor, configPath) //nolint:gosec // editor is chosen by the user
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor command failed: %w", err)
	}

	return nil
}

// runConfigInit creates a default config file.
func runConfigInit(cmd *cobra.Command, _ []string) error {
	configPath, err := config.ConfigFilePath()
	if err != nil {
		return fmt.Errorf("failed to get config file path: %w", err)
	}

	created, err := config.WriteDefault(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	w := cmd.OutOrStdout()
	if !created {
		fmt.Fprintf(w, "Config file already exists: %s\n", configPath)
		fmt.Fprintln(w, "Use 'skipsum config edit' to modify it.")
		return nil
	}

	fmt.Fprintf(w, "Created default config file: %s\n", configPath)
	return nil
}

// runConfigPath shows the config file path.
func runConfigPath(cmd *cobra.Command, _ []string) error {
	configPath, err := config.ConfigFilePath()
	if err != nil {
		return fmt.Errorf("failed to get config file path: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), configPath)

	if _, err := os.Stat(configPath); err == nil {
		printVerbose("File exists")
	} else if os.IsNotExist(err) {
		printVerbose("File does not exist (will use defaults)")
	}

	return nil
}
