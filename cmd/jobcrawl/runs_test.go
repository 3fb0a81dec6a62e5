package main

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/jobcrawl/internal/database"
	"github.com/nao1215/jobcrawl/internal/model"
)

// seedRuns stores two runs in a new database under dir.
func seedRuns(t *testing.T, dir string) {
	t.Helper()
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	runs := []model.CrawlSummary{
		{
			BaseURL:         "https://jobs.test/empleos-en-san-jose",
			PagesVisited:    3,
			RecordsProduced: 40,
			Reason:          model.ReasonConsecutiveEmptyPages,
			StartedAt:       start,
			FinishedAt:      start.Add(time.Minute),
		},
		{
			BaseURL:         "https://jobs.test/empleos-en-heredia",
			PagesVisited:    1,
			RecordsProduced: 5,
			RecordsSkipped:  1,
			Reason:          model.ReasonMaxJobsReached,
			StartedAt:       start.Add(24 * time.Hour),
			FinishedAt:      start.Add(24*time.Hour + time.Minute),
		},
	}
	for _, r := range runs {
		if _, err := db.SaveRun(context.Background(), r); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
	}
}

func TestRunsCommand(t *testing.T) {
	t.Parallel()

	t.Run("no history", func(t *testing.T) {
		t.Parallel()
		out, err := executeRoot(t, "runs", "--db-dir", filepath.Join(t.TempDir(), "none"))
		if err != nil {
			t.Fatalf("runs error = %v", err)
		}
		if !strings.Contains(out, "No crawl history found") {
			t.Errorf("unexpected output: %q", out)
		}
	})

	t.Run("table newest first", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		seedRuns(t, dir)

		out, err := executeRoot(t, "runs", "--db-dir", dir)
		if err != nil {
			t.Fatalf("runs error = %v", err)
		}
		if !strings.Contains(out, "Crawl runs (2)") {
			t.Errorf("expected run count header:\n%s", out)
		}
		heredia := strings.Index(out, "empleos-en-heredia")
		sanJose := strings.Index(out, "empleos-en-san-jose")
		if heredia < 0 || sanJose < 0 || heredia > sanJose {
			t.Errorf("expected newest run first:\n%s", out)
		}
		if !strings.Contains(out, "max_jobs_reached") {
			t.Errorf("expected termination reason:\n%s", out)
		}
	})

	t.Run("json with limit", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		seedRuns(t, dir)

		out, err := executeRoot(t, "runs", "--db-dir", dir, "--json", "--limit", "1")
		if err != nil {
			t.Fatalf("runs error = %v", err)
		}

		var views []runView
		if err := json.Unmarshal([]byte(out), &views); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		if len(views) != 1 {
			t.Fatalf("expected 1 run, got %d", len(views))
		}
		if views[0].ID == 0 || views[0].RecordsProduced != 5 {
			t.Errorf("unexpected run: %+v", views[0])
		}
		if views[0].Reason != model.ReasonMaxJobsReached {
			t.Errorf("reason = %s", views[0].Reason)
		}
	})
}
