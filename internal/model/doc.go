// Package model defines the core data structures shared across jobcrawl.
//
// This package contains the following main types:
//   - JobRecord: One job posting extracted from a detail page
//   - ApplyType: How a candidate applies (internal form or external site)
//   - TerminationReason: Why a crawl stopped
//   - CrawlSummary: Counters reported at the end of a crawl
//
// Models live in their own package because the extractor, the crawler, the
// report writers, and the database all need them, and keeping them here
// prevents import cycles.
package model
