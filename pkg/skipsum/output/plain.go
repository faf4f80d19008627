package output

import (
	"fmt"
	"io"

	"github.com/jamesainslie/skipsum/pkg/skipsum/verify"
)

// PlainFormatter writes one unstyled line per event, in the form scripts
// and the sha256sum family expect. It is the default.
type PlainFormatter struct{}

// Entry writes "<path> OK", "<path> FAILED", "File not found: <path>" or
// "Read error: <path>: <err>".
func (f *PlainFormatter) Entry(w io.Writer, e Entry) error {
	_, err := io.WriteString(w, plainEntry(e)+"\n")
	return err
}

// Problem writes the manifest-level message.
func (f *PlainFormatter) Problem(w io.Writer, p Problem) error {
	_, err := io.WriteString(w, plainProblem(p)+"\n")
	return err
}

// Finish writes nothing; the exit status carries the totals.
func (f *PlainFormatter) Finish(io.Writer, Summary) error {
	return nil
}

func plainEntry(e Entry) string {
	switch e.Status {
	case verify.StatusNotFound:
		return "File not found: " + e.Path
	case verify.StatusUnreadable:
		return fmt.Sprintf("Read error: %s: %v", e.Path, e.Err)
	default:
		return e.Path + " " + e.Status.String()
	}
}

func plainProblem(p Problem) string {
	switch p.Kind {
	case ProblemNotFound:
		return "File not found: " + p.Manifest
	case ProblemMalformed:
		return fmt.Sprintf("Malformed line in %s: %v", p.Manifest, p.Err)
	default:
		return fmt.Sprintf("Read error: %s: %v", p.Manifest, p.Err)
	}
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
