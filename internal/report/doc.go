// Package report writes crawl results.
//
// This package contains sinks for different output formats:
//   - JSONWriter: records as a JSON array, optionally wrapped with the crawl summary
//   - CSVWriter: one row per record, spreadsheet friendly
//   - MarkdownWriter: crawl summary and a jobs table for sharing
//   - SimpleWriter: human-readable text for terminal display
//
// Design decision: Record structures live in the model package and sinks
// only render them, so a new output format never touches extraction code.
//
// Every sink tolerates a sparse schema: records may carry any subset of
// fields.
package report
