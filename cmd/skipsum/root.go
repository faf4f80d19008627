package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jamesainslie/skipsum/pkg/skipsum/config"
	"github.com/jamesainslie/skipsum/pkg/skipsum/digest"
	"github.com/jamesainslie/skipsum/pkg/skipsum/journal"
	"github.com/jamesainslie/skipsum/pkg/skipsum/output"
	"github.com/jamesainslie/skipsum/pkg/skipsum/runner"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string

	// appConfig is loaded by initializeLogging before any command runs.
	appConfig *config.Config

	rootCmd = &cobra.Command{
		Use:   "skipsum [flags] FILE...",
		Short: "SHA-256 checksums that skip comment lines",
		Long: `skipsum computes and verifies SHA-256 checksums like sha256sum, optionally
leaving out every line that starts with a comment marker.

When generating with -s, each manifest entry is preceded by a "# -s <marker>"
line. Checking without -s reads those lines to pick the marker per entry.

Examples:
  skipsum -s '#' app.conf db.conf > SHA256SUMS   # Generate, ignoring # lines
  skipsum -c SHA256SUMS                          # Check, marker auto-detected
  skipsum -c -s '//' SHA256SUMS                  # Check with a fixed marker
  skipsum -c -o json SHA256SUMS                  # Structured results
  skipsum history                                # Past runs (journal.enabled)`,
		Args:              cobra.MinimumNArgs(1),
		PersistentPreRunE: initializeLogging,
		RunE:              runRoot,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/skipsum/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug logging on stderr")

	rootCmd.Flags().BoolP("check", "c", false, "read SHA256 sums from the FILEs and check them")
	rootCmd.Flags().StringP("skip", "s", "", "start of line characters to consider as a comment")
	rootCmd.Flags().BoolP("quiet", "q", false, "don't print OK for each successfully verified file")
	rootCmd.Flags().Bool("strict", false, "accepted for compatibility with sha256sum; no effect")
	rootCmd.Flags().StringP("output", "o", config.DefaultOutput, "check result format: plain, pretty, json, jsonl, yaml, template")
	rootCmd.Flags().String("template", "", "fasttemplate for check results, e.g. '{{path}}: {{status}}'")
	rootCmd.Flags().Bool("journal", false, "record this run in the history journal")

	// Bind flags to viper. The marker is deliberately not bound: whether -s
	// was given selects the check mode.
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("quiet", rootCmd.Flags().Lookup("quiet"))
	_ = viper.BindPFlag("output", rootCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("template", rootCmd.Flags().Lookup("template"))
	_ = viper.BindPFlag("journal.enabled", rootCmd.Flags().Lookup("journal"))
}

// initConfig points viper at the config file and registers defaults.
func initConfig() {
	v := viper.GetViper()
	config.Configure(v, cfgFile)
	config.SetDefaults(v)
}

// Execute runs the root command. The log file is closed on every path,
// including failed runs, which skip cobra's post-run hooks.
func Execute() error {
	defer shutdownLogging()
	return rootCmd.Execute()
}

// runRoot generates a manifest, or checks manifests with -c.
func runRoot(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions(cmd, appConfig)
	if err != nil {
		return err
	}

	check, _ := cmd.Flags().GetBool("check")
	r := runner.New(opts)

	var status runner.Status
	if check {
		status, err = r.Check(args)
	} else {
		if cmd.Flags().Changed("output") || cmd.Flags().Changed("template") {
			printVerbose("--output and --template only apply to -c")
		}
		status, err = r.Generate(args)
	}
	if err != nil {
		return err
	}

	if code := status.Code(); code != 0 {
		return &exitError{code: code}
	}
	return nil
}

// buildOptions resolves flags and configuration into runner options.
func buildOptions(cmd *cobra.Command, cfg *config.Config) (runner.Options, error) {
	opts := runner.Options{
		Filter: digest.None(),
		Quiet:  cfg.Quiet,
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	}

	if cmd.Flags().Changed("skip") {
		marker, err := cmd.Flags().GetString("skip")
		if err != nil {
			return opts, err
		}
		opts.Filter = digest.Skip(marker)
		opts.Explicit = true
	}

	formatter, err := selectFormatter(cfg.Output, cfg.Template)
	if err != nil {
		return opts, err
	}
	opts.Formatter = formatter

	if cfg.Journal.Enabled {
		j, err := journal.New(cfg.Journal.Path)
		if err != nil {
			return opts, fmt.Errorf("failed to initialize journal: %w", err)
		}
		opts.Journal = j
	}

	return opts, nil
}

// selectFormatter returns the formatter for name. A non-empty template
// always selects the template formatter.
func selectFormatter(name, tmpl string) (output.Formatter, error) {
	if tmpl != "" {
		f := output.NewTemplateFormatter(tmpl)
		if err := f.Validate(); err != nil {
			return nil, err
		}
		return f, nil
	}

	f, err := output.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: available formats are %v", err, output.Available())
	}
	return f, nil
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message to w if quiet mode is not enabled.
func printInfo(w io.Writer, format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Fprintf(w, format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
