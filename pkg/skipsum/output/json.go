package output

import (
	"io"

	json "github.com/goccy/go-json"
)

// JSONFormatter formats output as a single indented JSON object.
// It produces a complete JSON document with results, errors and summary
// sections once the run is finished.
type JSONFormatter struct {
	collector
}

// Entry records e for the final document.
func (f *JSONFormatter) Entry(_ io.Writer, e Entry) error {
	f.addEntry(e)
	return nil
}

// Problem records p for the final document.
func (f *JSONFormatter) Problem(_ io.Writer, p Problem) error {
	f.addProblem(p)
	return nil
}

// Finish writes the document.
func (f *JSONFormatter) Finish(w io.Writer, s Summary) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(f.finish(s))
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)

// JSONLFormatter writes each result as a compact JSON object on its own
// line as it arrives. Manifest errors are written the same way, with a
// "kind" field, and the summary is the final line.
type JSONLFormatter struct{}

// Entry writes e as one line.
func (f *JSONLFormatter) Entry(w io.Writer, e Entry) error {
	var c collector
	c.addEntry(e)
	return writeJSONLine(w, c.doc.Results[0])
}

// Problem writes p as one line.
func (f *JSONLFormatter) Problem(w io.Writer, p Problem) error {
	var c collector
	c.addProblem(p)
	return writeJSONLine(w, c.doc.Errors[0])
}

// Finish writes the summary line.
func (f *JSONLFormatter) Finish(w io.Writer, s Summary) error {
	var c collector
	return writeJSONLine(w, struct {
		Summary summaryRecord `json:"summary"`
	}{c.finish(s).Summary})
}

func writeJSONLine(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func init() {
	Register("jsonl", func() Formatter {
		return &JSONLFormatter{}
	})
}

// Ensure JSONLFormatter implements Formatter.
var _ Formatter = (*JSONLFormatter)(nil)
