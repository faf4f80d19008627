package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/valyala/fasttemplate"
)

// Template delimiters.
const (
	TagStart = "{{"
	TagEnd   = "}}"
)

// DefaultTemplate is the template used when no custom template is provided.
const DefaultTemplate = "{{path}} {{status}}"

// TemplateFormatter renders each result through a fasttemplate template,
// one line per result. Tags are written {{name}}; the available names are
// listed in TemplateTags. Manifest errors are written as plain text.
type TemplateFormatter struct {
	templateStr string
	template    *fasttemplate.Template
	mu          sync.Mutex
}

// TemplateTags lists the tags a template may use.
var TemplateTags = []string{"path", "status", "expected", "actual", "manifest", "line", "marker", "bytes", "error"}

// NewTemplateFormatter creates a new template formatter with the given template string.
func NewTemplateFormatter(templateStr string) *TemplateFormatter {
	return &TemplateFormatter{
		templateStr: templateStr,
	}
}

// SetTemplate sets or updates the template string.
func (f *TemplateFormatter) SetTemplate(templateStr string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.templateStr = templateStr
	f.template = nil // Reset compiled template
}

// compile parses the template on first use. Callers hold f.mu.
func (f *TemplateFormatter) compile() error {
	if f.template != nil {
		return nil
	}
	tmpl, err := fasttemplate.NewTemplate(f.templateStr, TagStart, TagEnd)
	if err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}
	f.template = tmpl
	return nil
}

// Validate reports whether the template parses.
func (f *TemplateFormatter) Validate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.compile()
}

// Entry renders e followed by a newline.
func (f *TemplateFormatter) Entry(w io.Writer, e Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.compile(); err != nil {
		return err
	}

	values := entryValues(e)
	if _, err := f.template.ExecuteFunc(w, func(w io.Writer, tag string) (int, error) {
		v, ok := values[strings.TrimSpace(tag)]
		if !ok {
			return 0, fmt.Errorf("unknown template tag %q", tag)
		}
		return io.WriteString(w, v)
	}); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Problem writes the plain manifest-level message.
func (f *TemplateFormatter) Problem(w io.Writer, p Problem) error {
	_, err := io.WriteString(w, plainProblem(p)+"\n")
	return err
}

// Finish writes nothing.
func (f *TemplateFormatter) Finish(io.Writer, Summary) error {
	return nil
}

func entryValues(e Entry) map[string]string {
	return map[string]string{
		"path":     e.Path,
		"status":   e.Status.String(),
		"expected": e.Expected,
		"actual":   e.Actual,
		"manifest": e.Manifest,
		"line":     strconv.Itoa(e.Line),
		"marker":   e.Filter.String(),
		"bytes":    strconv.FormatInt(e.Bytes, 10),
		"error":    errString(e.Err),
	}
}

func init() {
	Register("template", func() Formatter {
		return NewTemplateFormatter(DefaultTemplate)
	})
}

// Ensure TemplateFormatter implements Formatter.
var _ Formatter = (*TemplateFormatter)(nil)
