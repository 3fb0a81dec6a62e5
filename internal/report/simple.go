package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/jobcrawl/internal/model"
)

// SimpleWriter outputs human-readable text.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. The summary is usually printed to stderr next to log output
type SimpleWriter struct {
	baseWriter

	// verbose adds the description and apply details of every record.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs one block per record.
func (w *SimpleWriter) Write(records []model.JobRecord) error {
	var sb strings.Builder

	writeRule(&sb, "JOBS")
	if len(records) == 0 {
		sb.WriteString("  No job records\n\n")
	}
	for i, r := range records {
		w.writeRecord(&sb, i+1, r)
	}

	_, err := io.WriteString(w.output, sb.String())
	return err
}

// WriteSummary outputs the crawl summary.
func (w *SimpleWriter) WriteSummary(s model.CrawlSummary) error {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          CRAWL SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "Base URL:         %s\n", s.BaseURL)
	fmt.Fprintf(&sb, "Started:          %s\n", s.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&sb, "Duration:         %s\n", s.Duration().Round(time.Millisecond))
	fmt.Fprintf(&sb, "Pages visited:    %d\n", s.PagesVisited)
	fmt.Fprintf(&sb, "Links discovered: %d\n", s.LinksDiscovered)
	if s.LinksKnown > 0 {
		fmt.Fprintf(&sb, "Already stored:   %d\n", s.LinksKnown)
	}
	fmt.Fprintf(&sb, "Records produced: %d\n", s.RecordsProduced)
	fmt.Fprintf(&sb, "Records skipped:  %d\n", s.RecordsSkipped)
	fmt.Fprintf(&sb, "Termination:      %s\n", s.Reason)
	sb.WriteString("\n")

	_, err := io.WriteString(w.output, sb.String())
	return err
}

// writeRecord writes a single record block.
func (w *SimpleWriter) writeRecord(sb *strings.Builder, n int, r model.JobRecord) {
	title := r.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintf(sb, "[%d] %s\n", n, title)

	line := func(label, value string) {
		if value != "" {
			fmt.Fprintf(sb, "    %-10s %s\n", label+":", value)
		}
	}
	line("Company", r.Company)
	line("Location", r.Location)
	if r.SalaryMin != "" {
		line("Salary", salaryText(r))
	}
	line("Category", r.Category)
	line("URL", r.SourceURL)
	if w.verbose {
		line("Apply", string(r.ApplyType))
		line("Apply URL", r.ApplyURL)
		line("Email", r.ApplyEmail)
		if r.Description != "" {
			sb.WriteString("    Description:\n")
			for _, p := range strings.Split(r.Description, "\n\n") {
				fmt.Fprintf(sb, "      %s\n", p)
			}
		}
	}
	sb.WriteString("\n")
}

// writeRule writes a section heading between horizontal rules.
func writeRule(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}
