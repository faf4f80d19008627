// Package runner drives skipsum's two operations: generating a manifest from
// a list of files, and checking one or more manifests. It tallies the
// outcome into a Status whose Code is the process exit status.
package runner

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/skipsum/pkg/skipsum/digest"
	"github.com/jamesainslie/skipsum/pkg/skipsum/journal"
	"github.com/jamesainslie/skipsum/pkg/skipsum/logging"
	"github.com/jamesainslie/skipsum/pkg/skipsum/manifest"
	"github.com/jamesainslie/skipsum/pkg/skipsum/output"
	"github.com/jamesainslie/skipsum/pkg/skipsum/verify"
)

// logger is the package-level logger for the runner.
var logger = logging.Get("runner")

// Exit codes.
const (
	// ExitMissingArg is returned when a file named on the command line
	// cannot be opened.
	ExitMissingArg = 127

	// MaxFailureCode caps the failure tally so it never wraps to 0 as an
	// 8-bit exit status and never collides with ExitMissingArg.
	MaxFailureCode = 126
)

// Status aggregates the outcome of a run.
type Status struct {
	// Verified counts files hashed when generating, or entries that matched
	// when checking.
	Verified int

	// Failures counts mismatches, missing or unreadable targets and
	// malformed or unreadable manifests.
	Failures int

	// MissingArgs counts command-line files that could not be opened.
	MissingArgs int

	// Bytes is the number of file bytes read.
	Bytes int64
}

// Code returns the exit status: 127 if any argument was missing, otherwise
// the failure count capped at MaxFailureCode.
func (s Status) Code() int {
	if s.MissingArgs > 0 {
		return ExitMissingArg
	}
	if s.Failures > MaxFailureCode {
		return MaxFailureCode
	}
	return s.Failures
}

// Options configures a Runner.
type Options struct {
	// Filter is the comment filter used when generating, and when checking
	// with Explicit set.
	Filter digest.Filter

	// Explicit holds Filter fixed while checking. When false, check runs
	// auto-detect the filter from directive lines.
	Explicit bool

	// Quiet suppresses per-entry and per-manifest lines.
	Quiet bool

	// Formatter renders check results. Nil selects the plain formatter.
	Formatter output.Formatter

	// Stdout receives manifests and check results. Nil means os.Stdout.
	Stdout io.Writer

	// Stderr receives generate-mode diagnostics. Nil means os.Stderr.
	Stderr io.Writer

	// Hasher hashes files. Nil selects digest.New().
	Hasher *digest.Hasher

	// Journal, when set, records each run.
	Journal *journal.Journal
}

// Runner executes generate and check runs.
type Runner struct {
	opts   Options
	engine *verify.Engine
}

// New creates a Runner, filling in defaults for unset options.
func New(opts Options) *Runner {
	if opts.Formatter == nil {
		opts.Formatter = &output.PlainFormatter{}
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Hasher == nil {
		opts.Hasher = digest.New()
	}
	return &Runner{
		opts:   opts,
		engine: verify.New(verify.WithHasher(opts.Hasher)),
	}
}

// Generate hashes each file in order and writes a manifest entry for it.
// A missing file is counted in MissingArgs and the remaining files are
// still processed. The error is non-nil only if writing the manifest fails.
func (r *Runner) Generate(files []string) (Status, error) {
	var status Status
	var records []journal.FileRecord
	w := manifest.NewWriter(r.opts.Stdout)

	for _, path := range files {
		sum, err := r.opts.Hasher.SumFile(path, r.opts.Filter)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				status.MissingArgs++
				r.diagnostic("File not found: %s", path)
			} else {
				status.Failures++
				r.diagnostic("Read error: %s: %v", path, err)
			}
			logger.Debug("cannot hash file", "path", path, "error", err)
			records = append(records, journal.FileRecord{Path: path, Status: failureLabel(err)})
			continue
		}

		if err := w.WriteEntry(r.opts.Filter, sum.Hex(), path); err != nil {
			return status, err
		}
		status.Verified++
		status.Bytes += sum.Bytes
		records = append(records, journal.FileRecord{
			Path:   path,
			Digest: sum.Hex(),
			Status: verify.StatusOK.String(),
			Size:   sum.Bytes,
		})
	}

	logger.Info("manifest generated",
		"files", status.Verified, "missing", status.MissingArgs, "bytes", humanize.IBytes(uint64(status.Bytes)))
	r.record(journal.OpGenerate, files, records, status)
	return status, nil
}

// Check verifies every manifest in order. A manifest that cannot be opened
// is counted in MissingArgs; a malformed one stops at the bad line and
// counts as one failure. Either way the remaining manifests are checked.
// The error is non-nil only if the formatter fails.
func (r *Runner) Check(manifests []string) (Status, error) {
	var status Status
	var records []journal.FileRecord

	mode := verify.AutoDetect()
	if r.opts.Explicit {
		mode = verify.Explicit(r.opts.Filter)
	}
	logger.Debug("checking manifests", "count", len(manifests), "mode", mode.String())

	for _, name := range manifests {
		recs, err := r.checkManifest(name, mode, &status)
		records = append(records, recs...)
		if err != nil {
			return status, err
		}
	}

	if err := r.opts.Formatter.Finish(r.opts.Stdout, output.Summary{
		Verified:    status.Verified,
		Failed:      status.Failures,
		MissingArgs: status.MissingArgs,
		Bytes:       status.Bytes,
		ExitCode:    status.Code(),
	}); err != nil {
		return status, fmt.Errorf("writing summary: %w", err)
	}

	logger.Info("check complete",
		"verified", status.Verified, "failed", status.Failures, "missing", status.MissingArgs)
	r.record(journal.OpCheck, manifests, records, status)
	return status, nil
}

func (r *Runner) checkManifest(name string, mode verify.Mode, status *Status) ([]journal.FileRecord, error) {
	f, err := os.Open(name) //nolint:gosec // manifest names come from the command line
	if err != nil {
		status.MissingArgs++
		kind := output.ProblemUnreadable
		if errors.Is(err, fs.ErrNotExist) {
			kind = output.ProblemNotFound
		}
		logger.Debug("cannot open manifest", "manifest", name, "error", err)
		return nil, r.problem(output.Problem{Manifest: name, Kind: kind, Err: err})
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			logger.Warn("closing manifest", "manifest", name, "error", closeErr)
		}
	}()

	var records []journal.FileRecord
	v := r.engine.Verify(f, mode)
	for v.Next() {
		res := v.Result()
		status.Bytes += res.Bytes
		if res.OK() {
			status.Verified++
		} else {
			status.Failures++
		}
		records = append(records, journal.FileRecord{
			Path:     res.Path,
			Manifest: name,
			Digest:   res.Actual,
			Status:   res.Status.String(),
			Size:     res.Bytes,
		})

		if !r.opts.Quiet {
			if err := r.opts.Formatter.Entry(r.opts.Stdout, output.Entry{Manifest: name, Result: res}); err != nil {
				return records, fmt.Errorf("writing result: %w", err)
			}
		}
	}

	if err := v.Err(); err != nil {
		status.Failures++
		kind := output.ProblemUnreadable
		if errors.Is(err, manifest.ErrMalformedLine) {
			kind = output.ProblemMalformed
		}
		logger.Debug("manifest aborted", "manifest", name, "line", v.Lines(), "error", err)
		return records, r.problem(output.Problem{Manifest: name, Kind: kind, Err: err})
	}

	logger.Debug("manifest checked", "manifest", name, "lines", v.Lines())
	return records, nil
}

func (r *Runner) problem(p output.Problem) error {
	if r.opts.Quiet {
		return nil
	}
	if err := r.opts.Formatter.Problem(r.opts.Stdout, p); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}
	return nil
}

// diagnostic writes a generate-mode message to stderr, keeping stdout a
// clean manifest.
func (r *Runner) diagnostic(format string, args ...interface{}) {
	if r.opts.Quiet {
		return
	}
	fmt.Fprintf(r.opts.Stderr, format+"\n", args...)
}

// record writes a journal entry when the journal is enabled. Journal
// failures are logged and never change the run's outcome.
func (r *Runner) record(op journal.OperationType, sources []string, files []journal.FileRecord, status Status) {
	if r.opts.Journal == nil {
		return
	}
	if err := r.opts.Journal.EnsureDir(); err != nil {
		logger.Warn("journal unavailable", "dir", r.opts.Journal.Dir(), "error", err)
		return
	}

	rec := journal.Record{
		Operation: op,
		Sources:   sources,
		Files:     files,
		Failed:    status.Failures + status.MissingArgs,
		ExitCode:  status.Code(),
	}
	if op == journal.OpCheck && !r.opts.Explicit {
		rec.AutoDetect = true
	} else if r.opts.Filter.Active() {
		rec.Marker = r.opts.Filter.String()
	}

	entry, err := r.opts.Journal.Log(rec)
	if err != nil {
		logger.Warn("failed to record run", "error", err)
		return
	}
	logger.Debug("run recorded", "id", entry.ID)
}

func failureLabel(err error) string {
	if errors.Is(err, fs.ErrNotExist) {
		return verify.StatusNotFound.String()
	}
	return verify.StatusUnreadable.String()
}
