package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/jobcrawl/internal/model"
)

// createTestRecords creates records with a sparse schema for testing.
func createTestRecords() []model.JobRecord {
	return []model.JobRecord{
		{
			SourceURL:  "https://cr.computrabajo.com/ofertas-de-trabajo/a",
			Title:      "Cajero | Turno noche",
			Company:    "Super Uno",
			Category:   "Ventas",
			Location:   "San José",
			SalaryType: "mensual",
			SalaryMin:  "₡450,000",
			SalaryMax:  "₡500,000",
			ApplyType:  model.ApplyInternal,
			PhotoURLs:  []string{"https://img/1.jpg", "https://img/2.jpg"},
			IsUrgent:   true,
		},
		{
			SourceURL:   "https://cr.computrabajo.com/ofertas-de-trabajo/b",
			Title:       "Contador",
			Category:    "Contabilidad",
			Description: "Primera parte.\n\nSegunda parte.",
			ApplyType:   model.ApplyExternal,
			ApplyURL:    "https://empresa.cr/aplicar",
		},
		{
			SourceURL: "https://cr.computrabajo.com/ofertas-de-trabajo/c",
			Category:  "Ventas",
		},
	}
}

func createTestSummary() model.CrawlSummary {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return model.CrawlSummary{
		BaseURL:         "https://cr.computrabajo.com/empleos-en-san-jose",
		PagesVisited:    3,
		LinksDiscovered: 4,
		RecordsProduced: 3,
		RecordsSkipped:  1,
		Reason:          model.ReasonConsecutiveEmptyPages,
		StartedAt:       start,
		FinishedAt:      start.Add(90 * time.Second),
	}
}

// TestParseFormat tests format name parsing.
func TestParseFormat(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{name: "json", want: FormatJSON},
		{name: "CSV", want: FormatCSV},
		{name: "md", want: FormatMarkdown},
		{name: "markdown", want: FormatMarkdown},
		{name: " text ", want: FormatText},
		{name: "xml", wantErr: true},
		{name: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFormat(tc.name)
			if tc.wantErr {
				if !errors.Is(err, ErrUnknownFormat) {
					t.Errorf("expected ErrUnknownFormat, got %v", err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Errorf("ParseFormat(%q) = %q, %v; want %q", tc.name, got, err, tc.want)
			}
		})
	}
}

// TestNewSink tests sink construction per format.
func TestNewSink(t *testing.T) {
	t.Parallel()

	for _, f := range Formats() {
		t.Run(string(f), func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			sink, err := NewSink(f, &buf, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := sink.Write(createTestRecords()); err != nil {
				t.Fatalf("unexpected write error: %v", err)
			}
			if buf.Len() == 0 {
				t.Error("expected output")
			}
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()
		if _, err := NewSink("xml", &bytes.Buffer{}, nil); !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("expected ErrUnknownFormat, got %v", err)
		}
	})
}

// TestJSONWriter tests the JSON sink.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes records as an array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := NewJSONWriter(&buf).Write(createTestRecords()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got []map[string]any
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 records, got %d", len(got))
		}
		if _, ok := got[2]["title"]; ok {
			t.Error("null title must be omitted")
		}
		if got[0]["is_urgent"] != true {
			t.Error("expected is_urgent flag")
		}
		if !strings.HasSuffix(buf.String(), "\n") {
			t.Error("expected trailing newline")
		}
	})

	t.Run("empty input is an empty array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := NewJSONWriter(&buf).Write(nil); err != nil {
			t.Fatal(err)
		}
		if got := strings.TrimSpace(buf.String()); got != "[]" {
			t.Errorf("got %q, expected []", got)
		}
	})

	t.Run("wraps with summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint(), WithSummary(createTestSummary()))
		if err := w.Write(createTestRecords()); err != nil {
			t.Fatal(err)
		}

		var got JSONReport
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.Summary.Reason != model.ReasonConsecutiveEmptyPages {
			t.Errorf("unexpected reason %s", got.Summary.Reason)
		}
		if len(got.Records) != 3 {
			t.Errorf("expected 3 records, got %d", len(got.Records))
		}
		if !strings.Contains(buf.String(), "\n  ") {
			t.Error("expected indented output")
		}
	})

	t.Run("custom indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := NewJSONWriter(&buf, WithIndent(">", "\t")).WriteSummary(createTestSummary()); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "\n>\t\"pages_visited\": 3") {
			t.Errorf("unexpected output:\n%s", buf.String())
		}
	})
}

// TestCSVWriter tests the CSV sink.
func TestCSVWriter(t *testing.T) {
	t.Parallel()

	t.Run("sparse records share a sorted header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := NewCSVWriter(&buf).Write(createTestRecords()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		if !strings.HasPrefix(out, "\ufeff") {
			t.Fatal("expected UTF-8 BOM")
		}
		rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, "\ufeff"))).ReadAll()
		if err != nil {
			t.Fatalf("invalid CSV: %v", err)
		}
		if len(rows) != 4 {
			t.Fatalf("expected header and 3 rows, got %d", len(rows))
		}

		header := rows[0]
		if !slices.IsSorted(header) {
			t.Errorf("header is not sorted: %v", header)
		}
		for _, col := range []string{"apply_url", "description", "photo_urls", "salary_max", "source_url", "title"} {
			if !slices.Contains(header, col) {
				t.Errorf("header misses %s", col)
			}
		}
		if slices.Contains(header, "address") {
			t.Error("column absent from every record must not appear")
		}

		col := func(name string) int { return slices.Index(header, name) }
		if rows[1][col("title")] != "Cajero | Turno noche" {
			t.Errorf("unexpected title %q", rows[1][col("title")])
		}
		if rows[1][col("photo_urls")] != "https://img/1.jpg,https://img/2.jpg" {
			t.Errorf("unexpected photos %q", rows[1][col("photo_urls")])
		}
		if rows[3][col("title")] != "" || rows[3][col("is_urgent")] != "0" {
			t.Errorf("unexpected sparse row %v", rows[3])
		}
		if rows[2][col("description")] != "Primera parte.\n\nSegunda parte." {
			t.Errorf("multi-line value not preserved: %q", rows[2][col("description")])
		}
	})

	t.Run("without BOM", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := NewCSVWriter(&buf, WithBOM(false)).Write(createTestRecords()[2:]); err != nil {
			t.Fatal(err)
		}
		first, _, _ := strings.Cut(buf.String(), "\n")
		if first != "category,is_featured,is_filled,is_urgent,source_url" {
			t.Errorf("unexpected header %q", first)
		}
	})

	t.Run("no records", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := NewCSVWriter(&buf).Write(nil); err != nil {
			t.Fatal(err)
		}
		if buf.Len() != 0 {
			t.Errorf("expected no output, got %q", buf.String())
		}
	})
}

// TestMarkdownWriter tests the Markdown sink.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("summary and jobs", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf, WithCrawlSummary(createTestSummary()))
		if err := w.Write(createTestRecords()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# Job Crawl Report",
			"## Summary",
			"consecutive_empty_pages",
			"1m30s",
			"[!WARNING]",
			"## Categories",
			"pie",
			"Ventas",
			"## Jobs",
			"Cajero / Turno noche",
			"(mensual)",
			"https://cr.computrabajo.com/ofertas-de-trabajo/c",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("without summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := NewMarkdownWriter(&buf).Write(nil); err != nil {
			t.Fatal(err)
		}
		output := buf.String()
		if strings.Contains(output, "## Summary") || strings.Contains(output, "mermaid") {
			t.Error("unexpected summary or chart")
		}
		if !strings.Contains(output, "No job records.") {
			t.Error("expected empty jobs notice")
		}
	})

	t.Run("summary alerts", func(t *testing.T) {
		t.Parallel()

		testCases := []struct {
			name   string
			mutate func(*model.CrawlSummary)
			want   string
		}{
			{"cancelled", func(s *model.CrawlSummary) { s.Reason = model.ReasonCancelled }, "[!IMPORTANT]"},
			{"no records", func(s *model.CrawlSummary) { s.RecordsSkipped, s.RecordsProduced = 0, 0 }, "[!NOTE]"},
			{"clean", func(s *model.CrawlSummary) { s.RecordsSkipped = 0 }, "[!TIP]"},
		}
		for _, tc := range testCases {
			s := createTestSummary()
			tc.mutate(&s)
			var buf bytes.Buffer
			if err := NewMarkdownWriter(&buf).WriteSummary(s); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(buf.String(), tc.want) {
				t.Errorf("%s: expected %s in\n%s", tc.name, tc.want, buf.String())
			}
		}
	})
}

// TestSimpleWriter tests the text sink.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("records", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := NewSimpleWriter(&buf).Write(createTestRecords()); err != nil {
			t.Fatal(err)
		}
		output := buf.String()
		for _, want := range []string{"[1] Cajero | Turno noche", "Super Uno", "[3] (untitled)"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
		if strings.Contains(output, "Segunda parte") {
			t.Error("description is shown only in verbose mode")
		}
	})

	t.Run("verbose records", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := NewSimpleWriter(&buf, WithVerbose(true)).Write(createTestRecords()); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "      Segunda parte.") {
			t.Error("expected description paragraphs")
		}
	})

	t.Run("summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := NewSimpleWriter(&buf).WriteSummary(createTestSummary()); err != nil {
			t.Fatal(err)
		}
		output := buf.String()
		for _, want := range []string{"CRAWL SUMMARY", "Pages visited:    3", "Records skipped:  1", "consecutive_empty_pages"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
		if strings.Contains(output, "Already stored") {
			t.Error("known links line must be hidden when zero")
		}
	})
}

// TestMultiSink tests fan-out and error propagation.
func TestMultiSink(t *testing.T) {
	t.Parallel()

	var calls []string
	first := SinkFunc(func([]model.JobRecord) error {
		calls = append(calls, "first")
		return nil
	})
	failing := SinkFunc(func([]model.JobRecord) error {
		calls = append(calls, "failing")
		return errors.New("disk full")
	})
	never := SinkFunc(func([]model.JobRecord) error {
		calls = append(calls, "never")
		return nil
	})

	err := NewMultiSink(first, failing, never).Write(createTestRecords())
	if err == nil || err.Error() != "disk full" {
		t.Errorf("expected disk full error, got %v", err)
	}
	if !slices.Equal(calls, []string{"first", "failing"}) {
		t.Errorf("unexpected calls %v", calls)
	}
}

// TestTruncateString tests rune-aware truncation.
func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is a long string", 10, "this is..."},
		{"añoñoño", 5, "añ..."},
		{"abc", 2, "ab"},
	}

	for _, tt := range tests {
		if got := truncateString(tt.input, tt.maxLen); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}
