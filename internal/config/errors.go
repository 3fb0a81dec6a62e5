package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and are the only errors
// that stop a crawl before it starts.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrInvalidBaseURL is returned when the listing URL is missing or is
	// not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid base URL: must be an absolute http or https URL")

	// ErrInvalidMaxPages is returned when the page limit is negative.
	// Use 0 for no limit.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative")

	// ErrInvalidMaxJobs is returned when the record limit is negative.
	// Use 0 for no limit.
	ErrInvalidMaxJobs = errors.New("invalid max jobs: must be non-negative")

	// ErrInvalidConcurrency is returned when fewer than one detail worker
	// is configured.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be at least 1")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDelay is returned when a politeness delay is negative.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidEmptyPageThreshold is returned when the consecutive empty
	// page threshold is below 1, which would never end an unbounded crawl.
	ErrInvalidEmptyPageThreshold = errors.New("invalid empty page threshold: must be at least 1")

	// ErrInvalidOutputFormat is returned for an unsupported output format.
	ErrInvalidOutputFormat = errors.New("invalid output format: must be json, csv, markdown or text")

	// ErrInvalidMaxBodySize is returned when the max body size is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrInvalidDeadlineDays is returned when the deadline offset is negative.
	ErrInvalidDeadlineDays = errors.New("invalid deadline days: must be non-negative")
)
