package output

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter formats output as YAML.
// It produces the same structure as JSONFormatter but in YAML format.
type YAMLFormatter struct {
	collector
}

// Entry records e for the final document.
func (f *YAMLFormatter) Entry(_ io.Writer, e Entry) error {
	f.addEntry(e)
	return nil
}

// Problem records p for the final document.
func (f *YAMLFormatter) Problem(_ io.Writer, p Problem) error {
	f.addProblem(p)
	return nil
}

// Finish writes the document.
func (f *YAMLFormatter) Finish(w io.Writer, s Summary) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(f.finish(s)); err != nil {
		return err
	}
	return encoder.Close()
}

func init() {
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

// Ensure YAMLFormatter implements Formatter.
var _ Formatter = (*YAMLFormatter)(nil)
