// Package digest computes SHA-256 digests of byte streams while optionally
// excluding lines that start with a comment marker.
//
// Basic usage:
//
//	h := digest.New()
//	sum, err := h.SumFile("config.ini", digest.Skip("#"))
//	if err != nil {
//	    return err
//	}
//	fmt.Println(sum.Hex())
package digest

import "bytes"

// Filter selects the lines excluded from a digest.
// The zero value is inactive and includes every line.
type Filter struct {
	marker []byte
	active bool
}

// None returns an inactive filter.
func None() Filter {
	return Filter{}
}

// Skip returns a filter excluding lines that start with marker.
// An empty marker is still active and excludes every line.
func Skip(marker string) Filter {
	return SkipBytes([]byte(marker))
}

// SkipBytes is like Skip but takes the marker as raw bytes.
func SkipBytes(marker []byte) Filter {
	m := make([]byte, len(marker))
	copy(m, marker)
	return Filter{marker: m, active: true}
}

// Active reports whether the filter excludes anything.
func (f Filter) Active() bool {
	return f.active
}

// Excludes reports whether line is left out of the digest.
func (f Filter) Excludes(line []byte) bool {
	return f.active && bytes.HasPrefix(line, f.marker)
}

// String returns the marker as text, or "" when inactive.
func (f Filter) String() string {
	if !f.active {
		return ""
	}
	return string(f.marker)
}
