package verify

import (
	"github.com/jamesainslie/skipsum/pkg/skipsum/digest"
)

// Status is the outcome of verifying one manifest entry.
type Status int

const (
	// StatusOK means the recomputed digest matches.
	StatusOK Status = iota
	// StatusFailed means the recomputed digest differs.
	StatusFailed
	// StatusNotFound means the target file does not exist.
	StatusNotFound
	// StatusUnreadable means the target file exists but could not be read.
	StatusUnreadable
)

// String returns the label printed for the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusFailed:
		return "FAILED"
	case StatusNotFound:
		return "NOT FOUND"
	case StatusUnreadable:
		return "UNREADABLE"
	default:
		return "UNKNOWN"
	}
}

// Result describes one verified manifest entry.
type Result struct {
	// Path is the target path as written in the manifest.
	Path string

	// Status is the verification outcome.
	Status Status

	// Expected is the digest recorded in the manifest.
	Expected string

	// Actual is the recomputed hex digest, empty if the file was not hashed.
	Actual string

	// Filter is the comment filter that was active for this entry.
	Filter digest.Filter

	// Line is the 1-based manifest line of the entry.
	Line int

	// Bytes is the number of bytes read from the target.
	Bytes int64

	// Err holds the open or read error for StatusNotFound and StatusUnreadable.
	Err error
}

// OK reports whether the entry verified.
func (r Result) OK() bool {
	return r.Status == StatusOK
}
