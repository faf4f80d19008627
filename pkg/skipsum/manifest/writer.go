package manifest

import (
	"fmt"
	"io"

	"github.com/jamesainslie/skipsum/pkg/skipsum/digest"
)

// Writer emits manifest lines.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteEntry writes the entry line for path. When f is active a directive line
// is written first. The directive is repeated before every entry, so each
// entry carries its own marker and auto-detection works line by line.
func (w *Writer) WriteEntry(f digest.Filter, hex, path string) error {
	if f.Active() {
		if _, err := io.WriteString(w.w, FormatDirective(f)); err != nil {
			return fmt.Errorf("writing directive: %w", err)
		}
	}
	if _, err := io.WriteString(w.w, FormatEntry(hex, path)); err != nil {
		return fmt.Errorf("writing entry: %w", err)
	}
	return nil
}

// FormatDirective returns the directive line for f, including the newline.
func FormatDirective(f digest.Filter) string {
	return DirectivePrefix + f.String() + "\n"
}

// FormatEntry returns "<hex>  <path>\n".
func FormatEntry(hex, path string) string {
	return hex + TextSeparator + path + "\n"
}
