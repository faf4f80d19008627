// Package manifest reads and writes checksum manifests in the sha256sum
// format, extended with "# -s <marker>" directive lines that record which
// comment marker was skipped while hashing the entry that follows.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
)

// Line prefixes and separators of the manifest format.
const (
	// CommentPrefix starts a line that is never an entry.
	CommentPrefix = "#"

	// DirectivePrefix starts a line that sets the active comment marker.
	DirectivePrefix = "# -s "

	// TextSeparator separates digest and path in text mode.
	TextSeparator = "  "

	// BinarySeparator separates digest and path in binary mode.
	BinarySeparator = " *"
)

// trailingSpace is stripped from paths and directive values.
const trailingSpace = " \t\r\n\v\f"

// ErrMalformedLine is wrapped by every MalformedLineError.
var ErrMalformedLine = errors.New("malformed manifest line")

// MalformedLineError reports an entry line without a recognised separator.
type MalformedLineError struct {
	// Line is the 1-based line number within the manifest, 0 if unknown.
	Line int

	// Text is the offending line with its terminator removed.
	Text []byte
}

// Error implements error.
func (e *MalformedLineError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: no %q or %q separator in %q", e.Line, TextSeparator, BinarySeparator, e.Text)
	}
	return fmt.Sprintf("no %q or %q separator in %q", TextSeparator, BinarySeparator, e.Text)
}

// Unwrap returns ErrMalformedLine.
func (e *MalformedLineError) Unwrap() error {
	return ErrMalformedLine
}

// Kind classifies a manifest line.
type Kind int

const (
	// KindEntry is a "<digest><sep><path>" line.
	KindEntry Kind = iota
	// KindComment is a "#" line that is not a directive.
	KindComment
	// KindDirective is a "# -s <marker>" line.
	KindDirective
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindEntry:
		return "entry"
	case KindComment:
		return "comment"
	case KindDirective:
		return "directive"
	default:
		return "unknown"
	}
}

// Classify returns the kind of line. The directive check takes precedence
// over the plain comment check.
func Classify(line []byte) Kind {
	switch {
	case bytes.HasPrefix(line, []byte(DirectivePrefix)):
		return KindDirective
	case bytes.HasPrefix(line, []byte(CommentPrefix)):
		return KindComment
	default:
		return KindEntry
	}
}

// ParseDirective returns the marker recorded by a directive line: the rest of
// the line after DirectivePrefix with trailing whitespace stripped.
// ok is false if line is not a directive.
func ParseDirective(line []byte) (marker []byte, ok bool) {
	rest, found := bytes.CutPrefix(line, []byte(DirectivePrefix))
	if !found {
		return nil, false
	}
	return bytes.TrimRight(rest, trailingSpace), true
}

// Entry is one parsed manifest entry.
type Entry struct {
	// Expected is the digest exactly as written in the manifest.
	Expected string

	// Path is the target file path with trailing whitespace stripped.
	Path string

	// Binary is true when the entry used the " *" separator.
	Binary bool
}

// ParseEntry splits line at the first TextSeparator or, failing that, at the
// first BinarySeparator. A path that itself contains the separator is split at
// its first occurrence only, as sha256sum does.
func ParseEntry(line []byte) (Entry, error) {
	if expected, path, found := bytes.Cut(line, []byte(TextSeparator)); found {
		return newEntry(expected, path, false), nil
	}
	if expected, path, found := bytes.Cut(line, []byte(BinarySeparator)); found {
		return newEntry(expected, path, true), nil
	}
	return Entry{}, &MalformedLineError{Text: bytes.TrimRight(line, "\r\n")}
}

func newEntry(expected, path []byte, binary bool) Entry {
	return Entry{
		Expected: string(expected),
		Path:     string(bytes.TrimRight(path, trailingSpace)),
		Binary:   binary,
	}
}
