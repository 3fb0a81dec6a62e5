package database

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/nao1215/jobcrawl/internal/model"
)

// postgresDSN returns the test database DSN or skips the test.
func postgresDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("JOBCRAWL_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("JOBCRAWL_TEST_POSTGRES_DSN is not set")
	}
	return dsn
}

// TestPostgresSink tests upserts against a real PostgreSQL server.
func TestPostgresSink(t *testing.T) {
	dsn := postgresDSN(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	table := fmt.Sprintf("job_records_test_%d", time.Now().UnixNano())
	sink, err := Connect(ctx, dsn, WithTable(table), WithBatchSize(1))
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() {
		_, _ = sink.pool.Exec(context.Background(), "DROP TABLE IF EXISTS "+sink.table)
		sink.Close()
	})

	n, err := sink.Write(ctx, testRecords())
	if err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 rows affected, got %d", n)
	}

	updated := testRecords()[:1]
	updated[0].Title = "Cajero nocturno"
	if _, err := sink.Write(ctx, append(updated, model.JobRecord{})); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}

	var count int
	var title string
	if err := sink.pool.QueryRow(ctx, "SELECT count(*) FROM "+sink.table).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if err := sink.pool.QueryRow(ctx, "SELECT record->>'title' FROM "+sink.table+" WHERE source_url = $1",
		updated[0].SourceURL).Scan(&title); err != nil {
		t.Fatal(err)
	}
	if count != 2 || title != "Cajero nocturno" {
		t.Errorf("unexpected table state: %d rows, title %q", count, title)
	}
}

// TestConnectInvalidDSN tests DSN validation without a server.
func TestConnectInvalidDSN(t *testing.T) {
	t.Parallel()

	if _, err := Connect(context.Background(), "postgres://%zz"); err == nil {
		t.Error("expected error for malformed DSN")
	}
}
