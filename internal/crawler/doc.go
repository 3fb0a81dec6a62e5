// Package crawler walks the paginated listing of the job site and turns
// every discovered detail page into a job record.
//
// # Architecture
//
// The package is built around the Spider type (the crawl controller). For
// each listing page it:
//
//  1. Builds the page URL with PageURL
//  2. Fetches the page and runs the Discoverer over it
//  3. Admits links into the CrawlState (unique within the crawl, not
//     already stored when a KnownFilter is configured)
//  4. Dispatches detail fetches to a bounded worker pool and assembles a
//     record from each page
//  5. Decides whether to continue with the next page or terminate
//
// Design decision: CrawlState is owned by the goroutine running Crawl.
// Workers only fetch and assemble; they hand results back over a channel
// and never touch shared state because:
//  1. Limit and termination checks stay in one place
//  2. No locks are needed around counters and record slices
//  3. The state machine can be tested without a network
//
// # Termination
//
// A crawl ends when the record limit is reached, the page limit is
// reached, a configurable number of consecutive listing pages produce no
// usable link, or the context is cancelled. None of these is an error; the
// reason is reported in the CrawlSummary.
//
// # Politeness
//
// Listing fetches and detail fetches are two request streams, each spaced
// by its own rate limiter. Parallel workers share the detail limiter, so
// concurrency never bypasses the configured delay.
//
// # Usage
//
//	spider := crawler.NewSpider(fetcher, extract.NewAssembler(), crawler.WithMaxJobs(200))
//	result, err := spider.Crawl(ctx, "https://cr.computrabajo.com/empleos-en-san-jose")
package crawler
