package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/jobcrawl/internal/model"
)

// Format names an output format.
type Format string

const (
	// FormatJSON writes records as a JSON array.
	FormatJSON Format = "json"
	// FormatCSV writes records as CSV rows.
	FormatCSV Format = "csv"
	// FormatMarkdown writes a Markdown report.
	FormatMarkdown Format = "markdown"
	// FormatText writes a plain text listing.
	FormatText Format = "text"
)

// ErrUnknownFormat is returned for an unsupported output format name.
var ErrUnknownFormat = errors.New("unknown output format")

// Formats returns every supported format.
func Formats() []Format {
	return []Format{FormatJSON, FormatCSV, FormatMarkdown, FormatText}
}

// ParseFormat converts a format name into a Format. Matching is case
// insensitive and "md" is accepted for Markdown.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Sink persists an ordered sequence of job records.
//
// Design decision: A sink receives the whole sequence at once because
// tabular formats need every record to compute their header.
type Sink interface {
	Write(records []model.JobRecord) error
}

// SummaryWriter reports the outcome of a crawl.
type SummaryWriter interface {
	WriteSummary(summary model.CrawlSummary) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(records []model.JobRecord) error

// Write calls f(records).
func (f SinkFunc) Write(records []model.JobRecord) error {
	return f(records)
}

// MultiSink writes to multiple Sinks in order.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because sinks write records, not raw bytes, and
// some of them (databases) have no io.Writer at all.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink creates a Sink that writes to all provided Sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Write outputs the records to every sink and stops on the first error.
func (m *MultiSink) Write(records []model.JobRecord) error {
	for _, s := range m.sinks {
		if err := s.Write(records); err != nil {
			return err
		}
	}
	return nil
}

// NewSink creates the sink for format writing to output. A non-nil summary
// is embedded by the formats that support it (JSON and Markdown).
func NewSink(format Format, output io.Writer, summary *model.CrawlSummary) (Sink, error) {
	switch format {
	case FormatJSON:
		opts := []JSONWriterOption{WithPrettyPrint()}
		if summary != nil {
			opts = append(opts, WithSummary(*summary))
		}
		return NewJSONWriter(output, opts...), nil
	case FormatCSV:
		return NewCSVWriter(output), nil
	case FormatMarkdown:
		var opts []MarkdownWriterOption
		if summary != nil {
			opts = append(opts, WithCrawlSummary(*summary))
		}
		return NewMarkdownWriter(output, opts...), nil
	case FormatText:
		return NewSimpleWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
