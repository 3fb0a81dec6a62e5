package model

import "time"

// TerminationReason records why a crawl stopped.
//
// Reaching a limit or running out of pages is not an error; these values
// are normal end-of-crawl signals and are reported in the summary.
type TerminationReason int

const (
	// ReasonNone means the crawl has not terminated yet.
	ReasonNone TerminationReason = iota

	// ReasonMaxJobsReached means the configured record limit was emitted.
	ReasonMaxJobsReached

	// ReasonMaxPagesReached means the configured page limit was visited.
	ReasonMaxPagesReached

	// ReasonConsecutiveEmptyPages means several listing pages in a row
	// produced no usable links, which is taken as end-of-results.
	ReasonConsecutiveEmptyPages

	// ReasonCancelled means the crawl was stopped from outside
	// (signal or context cancellation).
	ReasonCancelled
)

// String returns the snake_case name used in logs and reports.
func (r TerminationReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonMaxJobsReached:
		return "max_jobs_reached"
	case ReasonMaxPagesReached:
		return "max_pages_reached"
	case ReasonConsecutiveEmptyPages:
		return "consecutive_empty_pages"
	case ReasonCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so the reason is
// serialized by name.
func (r TerminationReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *TerminationReason) UnmarshalText(text []byte) error {
	*r = ParseTerminationReason(string(text))
	return nil
}

// ParseTerminationReason converts a name produced by String back into a
// TerminationReason. Unknown names map to ReasonNone.
func ParseTerminationReason(s string) TerminationReason {
	for _, r := range []TerminationReason{
		ReasonMaxJobsReached,
		ReasonMaxPagesReached,
		ReasonConsecutiveEmptyPages,
		ReasonCancelled,
	} {
		if r.String() == s {
			return r
		}
	}
	return ReasonNone
}

// CrawlSummary is the final user-visible report of a crawl.
type CrawlSummary struct {
	// BaseURL is the listing URL the crawl started from.
	BaseURL string `json:"base_url"`

	// PagesVisited counts listing pages requested, including failed ones.
	PagesVisited int `json:"pages_visited"`

	// LinksDiscovered counts unique detail URLs found across all pages.
	LinksDiscovered int `json:"links_discovered"`

	// LinksKnown counts detail URLs skipped because they were already stored.
	LinksKnown int `json:"links_known,omitempty"`

	// RecordsProduced counts assembled job records.
	RecordsProduced int `json:"records_produced"`

	// RecordsSkipped counts detail pages that failed to fetch.
	RecordsSkipped int `json:"records_skipped"`

	// Reason is why the crawl stopped.
	Reason TerminationReason `json:"reason"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Duration returns how long the crawl took.
func (s CrawlSummary) Duration() time.Duration {
	if s.FinishedAt.IsZero() || s.StartedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
