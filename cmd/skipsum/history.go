package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/skipsum/pkg/skipsum/config"
	"github.com/jamesainslie/skipsum/pkg/skipsum/journal"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View run history",
	Long: `View the history of generate and check runs.

Runs are recorded only when journal.enabled is set in the configuration,
SKIPSUM_JOURNAL_ENABLED=true, or --journal is passed.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show details of a specific run",
	Long:  `Display detailed information about a specific run by its ID.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean up old history entries",
	Long:  `Remove history entries older than the retention period.`,
	Args:  cobra.NoArgs,
	RunE:  runHistoryClean,
}

var (
	historyLimit int
)

// showFileLimit caps the files listed by history show.
const showFileLimit = 50

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// getJournal returns the journal at the configured directory.
func getJournal() (*journal.Journal, error) {
	dir := config.DefaultJournalDir()
	if appConfig != nil && appConfig.Journal.Path != "" {
		dir = appConfig.Journal.Path
	}
	return journal.New(dir)
}

// runHistory lists recent runs.
func runHistory(cmd *cobra.Command, _ []string) error {
	j, err := getJournal()
	if err != nil {
		return fmt.Errorf("failed to initialize journal: %w", err)
	}

	entries, err := j.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(entries) == 0 {
		printInfo(cmd.OutOrStdout(), "No history entries found.")
		printInfo(cmd.OutOrStdout(), "Enable journal.enabled or pass --journal to record runs.")
		return nil
	}

	writeHistory(cmd.OutOrStdout(), entries)
	return nil
}

// writeHistory prints the history table.
func writeHistory(w io.Writer, entries []journal.Entry) {
	fmt.Fprintf(w, "\n%-40s  %-8s  %-6s  %-6s  %-10s  %s\n", "ID", "TYPE", "FILES", "FAILED", "SIZE", "EXIT")
	fmt.Fprintln(w, strings.Repeat("-", 84))

	for _, entry := range entries {
		fmt.Fprintf(w, "%-40s  %-8s  %-6d  %-6d  %-10s  %d\n",
			truncateString(entry.ID, 40),
			entry.Operation,
			entry.Summary.TotalFiles,
			entry.Summary.Failed,
			humanize.IBytes(uint64(entry.Summary.TotalBytes)),
			entry.Summary.ExitCode,
		)
	}

	fmt.Fprintln(w, strings.Repeat("-", 84))
	fmt.Fprintf(w, "\nShowing %d entries. Use --limit to see more.\n", len(entries))
	fmt.Fprintln(w, "Use 'skipsum history show <id>' for details on a specific entry.")
}

// runHistoryShow displays details of a specific run.
func runHistoryShow(cmd *cobra.Command, args []string) error {
	j, err := getJournal()
	if err != nil {
		return fmt.Errorf("failed to initialize journal: %w", err)
	}

	entry, err := j.Get(args[0])
	if err != nil {
		return fmt.Errorf("failed to get entry: %w", err)
	}

	writeHistoryEntry(cmd.OutOrStdout(), entry)
	return nil
}

// writeHistoryEntry prints one entry with up to showFileLimit files.
func writeHistoryEntry(w io.Writer, entry *journal.Entry) {
	fmt.Fprintln(w, "\nRun Details")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "ID:         %s\n", entry.ID)
	fmt.Fprintf(w, "Timestamp:  %s (%s)\n", entry.Timestamp.Format("2006-01-02 15:04:05 MST"), humanize.Time(entry.Timestamp))
	fmt.Fprintf(w, "Operation:  %s\n", entry.Operation)
	switch {
	case entry.AutoDetect:
		fmt.Fprintln(w, "Marker:     (auto-detected)")
	case entry.Marker != "":
		fmt.Fprintf(w, "Marker:     %q\n", entry.Marker)
	default:
		fmt.Fprintln(w, "Marker:     (none)")
	}
	fmt.Fprintf(w, "Sources:    %s\n", strings.Join(entry.Sources, ", "))
	fmt.Fprintf(w, "Files:      %d (%d failed)\n", entry.Summary.TotalFiles, entry.Summary.Failed)
	fmt.Fprintf(w, "Total Size: %s\n", humanize.IBytes(uint64(entry.Summary.TotalBytes)))
	fmt.Fprintf(w, "Exit Code:  %d\n", entry.Summary.ExitCode)

	if len(entry.Files) == 0 {
		return
	}

	fmt.Fprintln(w, "\nFiles:")
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintf(w, "%-10s  %-10s  %s\n", "STATUS", "SIZE", "PATH")
	fmt.Fprintln(w, strings.Repeat("-", 60))

	limit := showFileLimit
	if len(entry.Files) < limit {
		limit = len(entry.Files)
	}

	for _, file := range entry.Files[:limit] {
		fmt.Fprintf(w, "%-10s  %-10s  %s\n", file.Status, humanize.IBytes(uint64(file.Size)), file.Path)
	}

	if len(entry.Files) > limit {
		fmt.Fprintf(w, "\n... and %d more files\n", len(entry.Files)-limit)
	}
}

// runHistoryClean removes old history entries.
func runHistoryClean(cmd *cobra.Command, _ []string) error {
	j, err := getJournal()
	if err != nil {
		return fmt.Errorf("failed to initialize journal: %w", err)
	}

	retentionDays := config.DefaultRetentionDays
	if appConfig != nil && appConfig.Journal.RetentionDays > 0 {
		retentionDays = appConfig.Journal.RetentionDays
	}

	printVerbose("Cleaning history entries older than %d days", retentionDays)

	removed, err := j.Cleanup(retentionDays)
	if err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d history entries older than %d days.\n", removed, retentionDays)
	return nil
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
