package report

import (
	"encoding/csv"
	"io"
	"slices"

	"github.com/nao1215/jobcrawl/internal/model"
)

// utf8BOM lets spreadsheet applications detect the encoding.
const utf8BOM = "\ufeff"

// CSVWriter outputs one CSV row per record.
//
// The header is the sorted union of the columns present in any record, so
// records with missing fields produce empty cells instead of failing.
type CSVWriter struct {
	baseWriter

	bom bool
}

// CSVWriterOption configures a CSVWriter.
type CSVWriterOption func(*CSVWriter)

// WithBOM controls whether a UTF-8 byte order mark precedes the header.
// It is enabled by default.
func WithBOM(enabled bool) CSVWriterOption {
	return func(w *CSVWriter) {
		w.bom = enabled
	}
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer, opts ...CSVWriterOption) *CSVWriter {
	w := &CSVWriter{
		baseWriter: newBaseWriter(output),
		bom:        true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the records. Nothing is written for an empty slice.
func (w *CSVWriter) Write(records []model.JobRecord) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]map[string]string, len(records))
	var header []string
	for i := range records {
		rows[i] = records[i].Fields()
		for k := range rows[i] {
			if !slices.Contains(header, k) {
				header = append(header, k)
			}
		}
	}
	slices.Sort(header)

	if w.bom {
		if _, err := io.WriteString(w.output, utf8BOM); err != nil {
			return err
		}
	}

	cw := csv.NewWriter(w.output)
	if err := cw.Write(header); err != nil {
		return err
	}
	line := make([]string, len(header))
	for _, row := range rows {
		for i, k := range header {
			line[i] = row[k]
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
