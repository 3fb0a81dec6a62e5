package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/jobcrawl/internal/model"
)

// JSONWriter outputs records in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. The record schema is flat and tagged with omitempty for sparse fields
// 2. It's sufficient for our needs
// 3. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// summary, when set, wraps the records in a JSONReport.
	summary *model.CrawlSummary
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithSummary wraps the records together with the crawl summary.
func WithSummary(summary model.CrawlSummary) JSONWriterOption {
	return func(w *JSONWriter) {
		w.summary = &summary
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONReport is the wrapped form of a crawl result.
//
// Design decision: We wrap the records rather than adding fields to
// JobRecord so the record schema stays the same in every output.
type JSONReport struct {
	// Summary is the crawl outcome.
	Summary model.CrawlSummary `json:"summary"`

	// Records are the job records in crawl order.
	Records []model.JobRecord `json:"records"`
}

// Write outputs the records as a JSON array, or as a JSONReport when a
// summary was configured. A nil slice is written as an empty array.
func (w *JSONWriter) Write(records []model.JobRecord) error {
	if records == nil {
		records = []model.JobRecord{}
	}
	if w.summary != nil {
		return w.writeJSON(JSONReport{Summary: *w.summary, Records: records})
	}
	return w.writeJSON(records)
}

// WriteSummary outputs only the crawl summary.
func (w *JSONWriter) WriteSummary(summary model.CrawlSummary) error {
	return w.writeJSON(summary)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) error {
	var (
		data []byte
		err  error
	)

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	_, err = w.output.Write(data)
	return err
}
