// Package verify re-checks the files listed in a checksum manifest.
//
// Basic usage:
//
//	v := verify.New().Verify(manifestFile, verify.AutoDetect())
//	for v.Next() {
//	    r := v.Result()
//	    fmt.Println(r.Path, r.Status)
//	}
//	if err := v.Err(); err != nil {
//	    // the manifest was aborted, e.g. by a malformed line
//	}
package verify

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/jamesainslie/skipsum/pkg/skipsum/digest"
	"github.com/jamesainslie/skipsum/pkg/skipsum/logging"
	"github.com/jamesainslie/skipsum/pkg/skipsum/manifest"
)

// logger is the package-level logger for verification.
var logger = logging.Get("verify")

// OpenFunc opens a target file named in a manifest.
type OpenFunc func(name string) (io.ReadCloser, error)

func openFile(name string) (io.ReadCloser, error) {
	return os.Open(name) //nolint:gosec // manifest paths are caller-provided by design
}

// Engine verifies manifests.
type Engine struct {
	hasher *digest.Hasher
	open   OpenFunc
}

// Option configures an Engine.
type Option func(*Engine)

// WithHasher sets the hasher used for targets.
func WithHasher(h *digest.Hasher) Option {
	return func(e *Engine) {
		if h != nil {
			e.hasher = h
		}
	}
}

// WithOpener sets how targets are opened. The default is os.Open, which
// resolves relative paths against the working directory.
func WithOpener(fn OpenFunc) Option {
	return func(e *Engine) {
		if fn != nil {
			e.open = fn
		}
	}
}

// New creates an Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		hasher: digest.New(),
		open:   openFile,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Verify returns a Verifier reading manifest lines from r. Nothing is read
// until the first call to Next.
func (e *Engine) Verify(r io.Reader, mode Mode) *Verifier {
	return &Verifier{
		engine: e,
		r:      bufio.NewReader(r),
		mode:   mode,
		active: mode.Filter(),
	}
}

// Check opens and hashes one entry under f.
func (e *Engine) Check(entry manifest.Entry, f digest.Filter) Result {
	res := Result{
		Path:     entry.Path,
		Expected: entry.Expected,
		Filter:   f,
	}

	rc, err := e.open(entry.Path)
	if err != nil {
		res.Status = StatusUnreadable
		if errors.Is(err, fs.ErrNotExist) {
			res.Status = StatusNotFound
		}
		res.Err = err
		return res
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil {
			logger.Warn("closing target", "path", entry.Path, "error", closeErr)
		}
	}()

	sum, err := e.hasher.Sum(rc, f)
	if err != nil {
		res.Status = StatusUnreadable
		res.Err = err
		return res
	}

	res.Actual = sum.Hex()
	res.Bytes = sum.Bytes
	res.Status = StatusFailed
	if res.Actual == res.Expected {
		res.Status = StatusOK
	}
	return res
}

// Verifier walks one manifest. It is a lazy iterator in the style of
// bufio.Scanner: call Next until it returns false, then Err.
//
// The active filter is the only state carried from line to line. In
// auto-detect mode it starts inactive and each directive replaces it.
type Verifier struct {
	engine *Engine
	r      *bufio.Reader
	mode   Mode
	active digest.Filter
	line   int
	result Result
	err    error
	done   bool
}

// Next advances to the next entry result. It returns false when the manifest
// is exhausted or processing was aborted.
func (v *Verifier) Next() bool {
	for !v.done {
		line, err := v.r.ReadBytes('\n')
		if err != nil {
			v.done = true
			if !errors.Is(err, io.EOF) {
				v.err = fmt.Errorf("reading manifest: %w", err)
				return false
			}
		}
		if len(line) == 0 {
			continue
		}
		v.line++

		res, ok, err := v.step(line)
		if err != nil {
			v.done = true
			v.err = err
			return false
		}
		if ok {
			v.result = res
			return true
		}
	}
	return false
}

// step handles one line. ok is false for comment and directive lines.
func (v *Verifier) step(line []byte) (Result, bool, error) {
	switch manifest.Classify(line) {
	case manifest.KindDirective:
		if v.mode.Auto() {
			marker, _ := manifest.ParseDirective(line)
			v.active = digest.SkipBytes(marker)
			logger.Debug("comment marker changed", "line", v.line, "marker", v.active.String())
		}
		return Result{}, false, nil
	case manifest.KindComment:
		return Result{}, false, nil
	}

	entry, err := manifest.ParseEntry(line)
	if err != nil {
		var mErr *manifest.MalformedLineError
		if errors.As(err, &mErr) {
			mErr.Line = v.line
		}
		return Result{}, false, err
	}

	res := v.engine.Check(entry, v.active)
	res.Line = v.line
	logger.Debug("verified entry", "path", res.Path, "status", res.Status.String(), "line", res.Line)
	return res, true, nil
}

// Result returns the most recent result produced by Next.
func (v *Verifier) Result() Result {
	return v.result
}

// Err returns the error that stopped the verifier, or nil if the manifest
// was read to the end. Malformed lines yield a *manifest.MalformedLineError.
func (v *Verifier) Err() error {
	return v.err
}

// Filter returns the currently active filter.
func (v *Verifier) Filter() digest.Filter {
	return v.active
}

// Lines returns the number of manifest lines read so far.
func (v *Verifier) Lines() int {
	return v.line
}
