package crawler

import (
	"time"

	"github.com/nao1215/jobcrawl/internal/model"
)

// CrawlState accumulates the progress of one crawl. It is created when a
// crawl starts and mutated only by the controller.
type CrawlState struct {
	// Links are the unique detail URLs discovered so far, in order.
	Links []string

	// Records are the assembled job records, in order.
	Records []model.JobRecord

	// Page is the current listing page number.
	Page int

	// EmptyPages counts consecutive listing pages without usable links.
	EmptyPages int

	// Emitted counts records produced, including those whose page has not
	// been flushed into Records yet.
	Emitted int

	// Skipped counts detail pages that failed to fetch.
	Skipped int

	// Known counts links skipped because they were already stored.
	Known int

	// Reason is set once the crawl terminates.
	Reason model.TerminationReason

	seen      map[string]bool
	startedAt time.Time
}

// NewCrawlState creates an empty state.
func NewCrawlState(start time.Time) *CrawlState {
	return &CrawlState{
		seen:      make(map[string]bool),
		startedAt: start,
	}
}

// Admit registers links discovered on the current page and returns those
// that are usable: new to this crawl and accepted by keep.
func (st *CrawlState) Admit(links []Link, keep func(Link) bool) []Link {
	var usable []Link
	for _, l := range links {
		if st.seen[l.URL] {
			continue
		}
		st.seen[l.URL] = true
		st.Links = append(st.Links, l.URL)
		if keep != nil && !keep(l) {
			continue
		}
		usable = append(usable, l)
	}
	return usable
}

// EmptyPage records a page without usable links and reports whether the
// threshold of consecutive empty pages has been reached.
func (st *CrawlState) EmptyPage(threshold int) bool {
	st.EmptyPages++
	return threshold > 0 && st.EmptyPages >= threshold
}

// ProductivePage resets the consecutive empty page counter.
func (st *CrawlState) ProductivePage() {
	st.EmptyPages = 0
}

// Remaining returns how many records may still be produced under maxJobs,
// or -1 when unlimited.
func (st *CrawlState) Remaining(maxJobs int) int {
	if maxJobs <= 0 {
		return -1
	}
	return max(maxJobs-st.Emitted, 0)
}

// Terminate records the termination reason.
func (st *CrawlState) Terminate(reason model.TerminationReason) {
	st.Reason = reason
}

// Summary builds the user-visible report.
func (st *CrawlState) Summary(baseURL string, finished time.Time) model.CrawlSummary {
	return model.CrawlSummary{
		BaseURL:         baseURL,
		PagesVisited:    st.Page,
		LinksDiscovered: len(st.Links),
		LinksKnown:      st.Known,
		RecordsProduced: st.Emitted,
		RecordsSkipped:  st.Skipped,
		Reason:          st.Reason,
		StartedAt:       st.startedAt,
		FinishedAt:      finished,
	}
}
