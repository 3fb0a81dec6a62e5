// Package database stores crawl results.
//
// JobDB is a local SQLite database holding:
//   - every job record ever extracted, keyed by its detail URL
//   - the summary of every crawl run
//
// The stored URLs let a later crawl skip postings it already has
// (incremental mode), and the run history backs the "runs" command.
//
// Design decision: We use SQLite (via modernc.org/sqlite) because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
//
// PostgresSink additionally writes records to a shared PostgreSQL
// database through pgx.
package database
