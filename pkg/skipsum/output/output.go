// Package output provides formatters for displaying skipsum check results
// in various output formats (plain, pretty, json, yaml, template).
//
// The package uses a registry pattern to allow registration of multiple
// formatter implementations that can be selected at runtime.
//
// Formatters receive events as a check run progresses. Line-oriented
// formatters write each event immediately; structured formatters collect
// them and emit a single document from Finish.
//
// Basic usage:
//
//	formatter, err := output.Get("plain")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = formatter.Entry(os.Stdout, output.Entry{Manifest: "SHA256SUMS", Result: res})
//	_ = formatter.Finish(os.Stdout, summary)
package output

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/jamesainslie/skipsum/pkg/skipsum/logging"
	"github.com/jamesainslie/skipsum/pkg/skipsum/verify"
)

// logger is the package-level logger for output operations.
var logger = logging.Get("output")

// ErrUnknownFormat is returned by Get for an unregistered formatter name.
var ErrUnknownFormat = errors.New("unknown output format")

// Entry is one verified manifest entry.
type Entry struct {
	// Manifest is the manifest the entry was read from, as named on the command line.
	Manifest string

	verify.Result
}

// ProblemKind classifies a manifest-level error.
type ProblemKind int

const (
	// ProblemNotFound means the manifest itself does not exist.
	ProblemNotFound ProblemKind = iota
	// ProblemMalformed means a malformed line aborted the manifest.
	ProblemMalformed
	// ProblemUnreadable means the manifest could not be opened or read.
	ProblemUnreadable
)

// String returns the name of the kind.
func (k ProblemKind) String() string {
	switch k {
	case ProblemNotFound:
		return "not_found"
	case ProblemMalformed:
		return "malformed"
	case ProblemUnreadable:
		return "unreadable"
	default:
		return "unknown"
	}
}

// Problem is a manifest-level error.
type Problem struct {
	Manifest string
	Kind     ProblemKind
	Err      error
}

// Summary contains the run totals handed to Finish.
type Summary struct {
	// Verified is the number of entries whose digest matched.
	Verified int

	// Failed is the failure tally: mismatches, missing or unreadable targets
	// and malformed manifests.
	Failed int

	// MissingArgs is the number of manifests that could not be opened.
	MissingArgs int

	// Bytes is the total number of target bytes read.
	Bytes int64

	// ExitCode is the process status derived from the totals.
	ExitCode int
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Entry reports one verified manifest entry.
	Entry(w io.Writer, e Entry) error

	// Problem reports a manifest-level error.
	Problem(w io.Writer, p Problem) error

	// Finish is called once after the last manifest.
	Finish(w io.Writer, s Summary) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
// The error wraps ErrUnknownFormat if the formatter is not found.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}

// errString returns err's message, or "" for nil.
func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
