package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/skipsum/pkg/skipsum/verify"
)

// statusWidth fits the longest status label, "UNREADABLE".
const statusWidth = 10

// PrettyFormatter formats output with colors and styling using lipgloss.
// It produces a visually appealing output suitable for terminal display.
type PrettyFormatter struct{}

// Entry writes a styled status column followed by the path.
func (f *PrettyFormatter) Entry(w io.Writer, e Entry) error {
	line := fmt.Sprintf("  %s  %s", f.formatStatus(e.Status), PathStyle.Render(e.Path))
	if e.Err != nil {
		line += "  " + MutedStyle.Render(e.Err.Error())
	}
	_, err := io.WriteString(w, line+"\n")
	return err
}

// Problem writes a styled manifest-level error.
func (f *PrettyFormatter) Problem(w io.Writer, p Problem) error {
	_, err := io.WriteString(w, ErrorStyle.Render(plainProblem(p))+"\n")
	return err
}

// Finish writes the summary footer.
func (f *PrettyFormatter) Finish(w io.Writer, s Summary) error {
	_, err := io.WriteString(w, f.formatFooter(s)+"\n")
	return err
}

// formatStatus renders the status label padded to a fixed width.
func (f *PrettyFormatter) formatStatus(s verify.Status) string {
	label := padRight(s.String(), statusWidth)
	switch s {
	case verify.StatusOK:
		return SuccessStyle.Render(label)
	case verify.StatusFailed:
		return ErrorStyle.Render(label)
	default:
		return WarningStyle.Render(label)
	}
}

// formatFooter builds the footer box with summary information.
func (f *PrettyFormatter) formatFooter(s Summary) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("%s %s",
		LabelStyle.Render("Verified:"), CountStyle.Render(fmt.Sprintf("%d", s.Verified))))

	failed := ValueStyle.Render("0")
	if s.Failed > 0 {
		failed = ErrorStyle.Render(fmt.Sprintf("%d", s.Failed))
	}
	parts = append(parts, fmt.Sprintf("%s %s", LabelStyle.Render("Failed:"), failed))

	if s.MissingArgs > 0 {
		parts = append(parts, fmt.Sprintf("%s %s",
			LabelStyle.Render("Missing:"), WarningStyle.Render(fmt.Sprintf("%d", s.MissingArgs))))
	}

	parts = append(parts, fmt.Sprintf("%s %s",
		LabelStyle.Render("Read:"), ValueStyle.Render(humanize.IBytes(uint64(s.Bytes)))))

	parts = append(parts, MutedStyle.Render("Use -o plain for unformatted output"))

	return FooterBox.Render(strings.Join(parts, "  "))
}

// padRight pads a string with spaces on the right to achieve the desired width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
