package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nao1215/jobcrawl/internal/model"
)

// DefaultBatchSize is the number of upserts sent per round trip.
const DefaultBatchSize = 200

// PostgresSink writes job records to a PostgreSQL table shared by several
// crawlers.
type PostgresSink struct {
	pool      *pgxpool.Pool
	table     string
	batchSize int
}

// PostgresOption configures a PostgresSink.
type PostgresOption func(*postgresOptions)

type postgresOptions struct {
	table      string
	batchSize  int
	maxConns   int32
	viaBouncer bool
}

// WithTable sets the target table. The default is "job_records".
func WithTable(name string) PostgresOption {
	return func(o *postgresOptions) {
		o.table = name
	}
}

// WithBatchSize sets the number of upserts per batch.
func WithBatchSize(n int) PostgresOption {
	return func(o *postgresOptions) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithMaxConns sets the pool size.
func WithMaxConns(n int32) PostgresOption {
	return func(o *postgresOptions) {
		if n > 0 {
			o.maxConns = n
		}
	}
}

// WithPgBouncer disables prepared statements for transaction poolers.
func WithPgBouncer() PostgresOption {
	return func(o *postgresOptions) {
		o.viaBouncer = true
	}
}

// Connect opens a connection pool to dsn, checks it with a ping and creates
// the target table if needed.
func Connect(ctx context.Context, dsn string, opts ...PostgresOption) (*PostgresSink, error) {
	o := postgresOptions{
		table:     "job_records",
		batchSize: DefaultBatchSize,
		maxConns:  2,
	}
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}
	cfg.MaxConns = o.maxConns
	cfg.MaxConnLifetime = time.Hour
	if o.viaBouncer {
		cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	s := &PostgresSink{
		pool:      pool,
		table:     pgx.Identifier{o.table}.Sanitize(),
		batchSize: o.batchSize,
	}
	if err := s.createTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresSink) createTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS `+s.table+` (
		source_url TEXT PRIMARY KEY,
		title TEXT,
		company TEXT,
		category TEXT,
		location TEXT,
		record JSONB NOT NULL,
		first_seen TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_seen TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Write upserts records by source URL in batches and returns the number
// of rows affected.
func (s *PostgresSink) Write(ctx context.Context, records []model.JobRecord) (int, error) {
	query := `
	INSERT INTO ` + s.table + ` (source_url, title, company, category, location, record)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (source_url) DO UPDATE SET
		title = EXCLUDED.title,
		company = EXCLUDED.company,
		category = EXCLUDED.category,
		location = EXCLUDED.location,
		record = EXCLUDED.record,
		last_seen = now()`

	total := 0
	for start := 0; start < len(records); start += s.batchSize {
		end := min(start+s.batchSize, len(records))

		b := &pgx.Batch{}
		for i := start; i < end; i++ {
			r := &records[i]
			if r.SourceURL == "" {
				continue
			}
			data, err := json.Marshal(r)
			if err != nil {
				return total, fmt.Errorf("failed to serialize record: %w", err)
			}
			b.Queue(query, r.SourceURL, textOrNil(r.Title), textOrNil(r.Company),
				textOrNil(r.Category), textOrNil(r.Location), data)
		}
		if b.Len() == 0 {
			continue
		}

		br := s.pool.SendBatch(ctx, b)
		for range b.Len() {
			tag, err := br.Exec()
			if err != nil {
				_ = br.Close()
				return total, fmt.Errorf("failed to upsert job: %w", err)
			}
			total += int(tag.RowsAffected())
		}
		if err := br.Close(); err != nil {
			return total, err
		}
	}
	return total, nil
}

// Close closes the connection pool.
func (s *PostgresSink) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func textOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
