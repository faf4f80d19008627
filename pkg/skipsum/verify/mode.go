package verify

import (
	"fmt"

	"github.com/jamesainslie/skipsum/pkg/skipsum/digest"
)

// Mode selects how the comment filter is chosen while reading a manifest.
type Mode struct {
	auto   bool
	filter digest.Filter
}

// Explicit holds f fixed for the whole manifest. Directive lines are treated
// as plain comments.
func Explicit(f digest.Filter) Mode {
	return Mode{filter: f}
}

// AutoDetect starts with no filter and takes the active filter from directive
// lines. Each directive replaces the previous filter; nothing resets it.
func AutoDetect() Mode {
	return Mode{auto: true}
}

// Auto reports whether directives drive the filter.
func (m Mode) Auto() bool {
	return m.auto
}

// Filter returns the initial filter.
func (m Mode) Filter() digest.Filter {
	return m.filter
}

// String describes the mode for logs.
func (m Mode) String() string {
	switch {
	case m.auto:
		return "auto-detect"
	case m.filter.Active():
		return fmt.Sprintf("explicit %q", m.filter.String())
	default:
		return "explicit none"
	}
}
