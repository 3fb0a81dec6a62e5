package report

import (
	"cmp"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/jobcrawl/internal/model"
)

// uncategorized labels records without a category in the chart.
const uncategorized = "Uncategorized"

// MarkdownWriter outputs a crawl report in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter

	// summary, when set, is rendered before the jobs table.
	summary *model.CrawlSummary
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithCrawlSummary adds a summary section to the report.
func WithCrawlSummary(summary model.CrawlSummary) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.summary = &summary
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report with one table row per record.
func (w *MarkdownWriter) Write(records []model.JobRecord) error {
	md := markdown.NewMarkdown(w.output)

	md.H1("Job Crawl Report")
	md.PlainText("")

	if w.summary != nil {
		w.writeSummary(md, *w.summary)
	}
	w.writeCategories(md, records)
	w.writeJobs(md, records)
	w.writeFooter(md)

	return md.Build()
}

// WriteSummary outputs only the summary section.
func (w *MarkdownWriter) WriteSummary(summary model.CrawlSummary) error {
	md := markdown.NewMarkdown(w.output)
	w.writeSummary(md, summary)
	return md.Build()
}

// writeSummary writes the crawl outcome table and an alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, s model.CrawlSummary) {
	md.H2("Summary")
	md.PlainText("")

	rows := [][]string{
		{"Base URL", "`" + s.BaseURL + "`"},
		{"Started", s.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"Duration", s.Duration().Round(time.Millisecond).String()},
		{"Pages Visited", strconv.Itoa(s.PagesVisited)},
		{"Links Discovered", strconv.Itoa(s.LinksDiscovered)},
	}
	if s.LinksKnown > 0 {
		rows = append(rows, []string{"Already Stored", strconv.Itoa(s.LinksKnown)})
	}
	rows = append(rows,
		[]string{"Records Produced", strconv.Itoa(s.RecordsProduced)},
		[]string{"Records Skipped", strconv.Itoa(s.RecordsSkipped)},
		[]string{"Termination", s.Reason.String()},
	)

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	switch {
	case s.Reason == model.ReasonCancelled:
		md.Importantf("The crawl was cancelled. %d record(s) were saved before it stopped.", s.RecordsProduced)
	case s.RecordsSkipped > 0:
		md.Warningf("%d detail page(s) could not be fetched and were skipped.", s.RecordsSkipped)
	case s.RecordsProduced == 0:
		md.Note("No job records were produced.")
	default:
		md.Tip("All discovered job pages were extracted.")
	}
	md.PlainText("")
}

// writeCategories writes a mermaid pie chart of records per category.
func (w *MarkdownWriter) writeCategories(md *markdown.Markdown, records []model.JobRecord) {
	if len(records) == 0 {
		return
	}

	counts := make(map[string]int)
	for _, r := range records {
		c := r.Category
		if c == "" {
			c = uncategorized
		}
		counts[c]++
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Jobs by Category"),
		piechart.WithShowData(true),
	)
	for _, name := range names {
		chart.LabelAndIntValue(name, uint64(counts[name]))
	}

	md.H2("Categories")
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeJobs writes the jobs table.
func (w *MarkdownWriter) writeJobs(md *markdown.Markdown, records []model.JobRecord) {
	md.H2("Jobs")
	md.PlainText("")

	if len(records) == 0 {
		md.PlainText("No job records.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(records))
	for i, r := range records {
		title := r.Title
		if title == "" {
			title = r.SourceURL
		}
		rows[i] = []string{
			strconv.Itoa(i + 1),
			"[" + cell(truncateString(title, 60)) + "](" + r.SourceURL + ")",
			cell(orDash(truncateString(r.Company, 40))),
			cell(orDash(truncateString(r.Location, 40))),
			cell(salaryText(r)),
			cell(orDash(string(r.ApplyType))),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"#", "Title", "Company", "Location", "Salary", "Apply"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [jobcrawl](https://github.com/nao1215/jobcrawl)*")
}

// salaryText renders the salary columns of a record.
func salaryText(r model.JobRecord) string {
	if r.SalaryMin == "" {
		return "-"
	}
	s := r.SalaryMin
	if r.SalaryMax != "" {
		s += " - " + r.SalaryMax
	}
	if r.SalaryType != "" {
		s += " (" + r.SalaryType + ")"
	}
	return s
}

// cell keeps a value on one line and free of column delimiters.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", "/")
	return strings.Join(strings.Fields(s), " ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
