package report

import (
	"encoding/json"
	"io"

	"github.com/TheGhostMoon/linisreport/internal/model"
)

// JSONWriter outputs audit reports in JSON format for tool integration.
//
// The serialized shape is the model.AuditReport structure itself plus the
// derived category grouping; its field names and nesting are stable across
// versions so external consumers can rely on them.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed output.
	indent bool

	// indentPrefix and indentString control the indentation produced when
	// indent is set.
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output with the given prefix and
// per-level indent string.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// Convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Envelope wraps the report with derived data and tool metadata so a
// consumer gets the categories without re-deriving them.
type Envelope struct {
	// Version is the linisreport version that produced this document.
	Version string `json:"version,omitempty"`

	// Report is the full audit report.
	Report *model.AuditReport `json:"report"`

	// Categories maps category names to the findings in that category.
	// Derived from the report; included for consumer convenience.
	Categories map[string][]model.Finding `json:"categories"`
}

// Write renders the report as a JSON document.
func (w *JSONWriter) Write(report *model.AuditReport) (int, error) {
	return w.writeJSON(&Envelope{
		Report:     report,
		Categories: report.Categories(),
	})
}

// WriteVersioned renders the report with the tool version stamped into
// the envelope.
func (w *JSONWriter) WriteVersioned(report *model.AuditReport, version string) (int, error) {
	return w.writeJSON(&Envelope{
		Version:    version,
		Report:     report,
		Categories: report.Categories(),
	})
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	// Trailing newline for terminal output
	data = append(data, '\n')
	return w.output.Write(data)
}
