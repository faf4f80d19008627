package output

import (
	"sync"
)

// document is the structure emitted by the json and yaml formatters.
type document struct {
	Results []resultRecord  `json:"results" yaml:"results"`
	Errors  []problemRecord `json:"errors" yaml:"errors"`
	Summary summaryRecord   `json:"summary" yaml:"summary"`
}

// resultRecord represents one verified entry.
type resultRecord struct {
	Manifest string `json:"manifest" yaml:"manifest"`
	Line     int    `json:"line" yaml:"line"`
	Path     string `json:"path" yaml:"path"`
	Status   string `json:"status" yaml:"status"`
	Expected string `json:"expected" yaml:"expected"`
	Actual   string `json:"actual,omitempty" yaml:"actual,omitempty"`

	// Marker is nil when no comment marker was active. An empty marker
	// excludes every line, so it is kept distinct from nil.
	Marker *string `json:"marker,omitempty" yaml:"marker,omitempty"`

	Bytes int64  `json:"bytes" yaml:"bytes"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// problemRecord represents one manifest-level error.
type problemRecord struct {
	Manifest string `json:"manifest" yaml:"manifest"`
	Kind     string `json:"kind" yaml:"kind"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// summaryRecord represents the run totals.
type summaryRecord struct {
	Verified    int   `json:"verified" yaml:"verified"`
	Failed      int   `json:"failed" yaml:"failed"`
	MissingArgs int   `json:"missing_arguments" yaml:"missing_arguments"`
	Bytes       int64 `json:"bytes" yaml:"bytes"`
	ExitCode    int   `json:"exit_code" yaml:"exit_code"`
}

// collector accumulates events for formatters that write one document.
type collector struct {
	mu  sync.Mutex
	doc document
}

func (c *collector) addEntry(e Entry) {
	rec := resultRecord{
		Manifest: e.Manifest,
		Line:     e.Line,
		Path:     e.Path,
		Status:   e.Status.String(),
		Expected: e.Expected,
		Actual:   e.Actual,
		Bytes:    e.Bytes,
		Error:    errString(e.Err),
	}
	if e.Filter.Active() {
		marker := e.Filter.String()
		rec.Marker = &marker
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.doc.Results = append(c.doc.Results, rec)
}

func (c *collector) addProblem(p Problem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.doc.Errors = append(c.doc.Errors, problemRecord{
		Manifest: p.Manifest,
		Kind:     p.Kind.String(),
		Error:    errString(p.Err),
	})
}

// finish returns the completed document and resets the collector.
func (c *collector) finish(s Summary) document {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc := c.doc
	c.doc = document{}

	if doc.Results == nil {
		doc.Results = []resultRecord{}
	}
	if doc.Errors == nil {
		doc.Errors = []problemRecord{}
	}
	doc.Summary = summaryRecord{
		Verified:    s.Verified,
		Failed:      s.Failed,
		MissingArgs: s.MissingArgs,
		Bytes:       s.Bytes,
		ExitCode:    s.ExitCode,
	}

	logger.Debug("document complete", "results", len(doc.Results), "errors", len(doc.Errors))
	return doc
}
