package crawler

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/nao1215/jobcrawl/internal/document"
	"github.com/nao1215/jobcrawl/internal/fetch"
	"github.com/nao1215/jobcrawl/internal/model"
)

// Default controller settings.
const (
	DefaultDelay              = 1 * time.Second
	DefaultPageDelay          = 2 * time.Second
	DefaultConcurrency        = 1
	DefaultEmptyPageThreshold = 2
)

// Assembler builds a record from a detail page.
type Assembler interface {
	Assemble(doc *document.Document, card document.Node, sourceURL string) model.JobRecord
}

// KnownFilter reports whether a detail URL has already been stored by a
// previous crawl.
type KnownFilter interface {
	KnownURL(ctx context.Context, url string) (bool, error)
}

// Result is the outcome of a crawl.
type Result struct {
	Records []model.JobRecord
	Summary model.CrawlSummary
}

// Spider is the crawl controller.
//
// Design decision: We call it "Spider" rather than "Crawler" because:
//  1. "Spider" is the traditional term for web crawlers
//  2. Distinguishes the component from the package name
//  3. Clearer in code: crawler.NewSpider() vs crawler.NewCrawler()
type Spider struct {
	fetcher   fetch.Fetcher
	assembler Assembler

	// maxPages limits the listing pages visited. 0 means unlimited.
	maxPages int

	// maxJobs limits the records produced. 0 means unlimited.
	maxJobs int

	// delay spaces consecutive detail fetches.
	delay time.Duration

	// pageDelay spaces consecutive listing fetches.
	pageDelay time.Duration

	// concurrency bounds in-flight detail fetches.
	concurrency int

	// emptyPageThreshold is the number of consecutive pages without usable
	// links that ends the crawl.
	emptyPageThreshold int

	pageParam string
	filter    pathFilter
	known     KnownFilter
	progress  func(model.JobRecord)
	logger    *slog.Logger
	now       func() time.Time
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxPages sets the maximum number of listing pages to visit.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = maxPages
	}
}

// WithMaxJobs sets the maximum number of records to produce.
func WithMaxJobs(maxJobs int) SpiderOption {
	return func(s *Spider) {
		s.maxJobs = maxJobs
	}
}

// WithDelay sets the delay between detail page requests.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.delay = d
	}
}

// WithPageDelay sets the delay between listing page requests.
func WithPageDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.pageDelay = d
	}
}

// WithConcurrency sets how many detail pages may be fetched at once.
// Values below 1 are treated as 1.
func WithConcurrency(n int) SpiderOption {
	return func(s *Spider) {
		s.concurrency = max(n, 1)
	}
}

// WithEmptyPageThreshold sets how many consecutive listing pages without
// usable links end the crawl.
func WithEmptyPageThreshold(n int) SpiderOption {
	return func(s *Spider) {
		s.emptyPageThreshold = n
	}
}

// WithPageParam sets the pagination query parameter.
func WithPageParam(param string) SpiderOption {
	return func(s *Spider) {
		s.pageParam = param
	}
}

// WithIgnorePatterns sets URL path patterns of detail pages to skip.
// Patterns use glob syntax (e.g., "/ofertas-de-trabajo/*-practica-*").
func WithIgnorePatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.filter.ignore = patterns
	}
}

// WithFollowPatterns restricts detail pages to URL paths matching at least
// one pattern. Empty means all paths are allowed.
func WithFollowPatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.filter.follow = patterns
	}
}

// WithKnownFilter skips detail pages already stored, for incremental
// crawls.
func WithKnownFilter(k KnownFilter) SpiderOption {
	return func(s *Spider) {
		s.known = k
	}
}

// WithProgress registers a callback invoked for every record as soon as
// it is assembled. It runs on the controller goroutine.
func WithProgress(fn func(model.JobRecord)) SpiderOption {
	return func(s *Spider) {
		s.progress = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider creates a Spider fetching with fetcher and assembling records
// with assembler.
//
// Design decision: We require an external fetcher because:
//  1. Headers, proxy and timeouts are configuration, owned by the caller
//  2. Tests drive the state machine with an in-memory fetcher
//  3. The same Spider works over any transport
func NewSpider(fetcher fetch.Fetcher, assembler Assembler, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:            fetcher,
		assembler:          assembler,
		delay:              DefaultDelay,
		pageDelay:          DefaultPageDelay,
		concurrency:        DefaultConcurrency,
		emptyPageThreshold: DefaultEmptyPageThreshold,
		pageParam:          DefaultPageParam,
		logger:             slog.Default(),
		now:                time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Crawl walks the listing starting at baseURL until a termination
// condition fires and returns every record produced.
//
// Only an invalid base URL is an error. Fetch failures are logged and
// counted; cancellation of ctx ends the crawl with the records gathered so
// far and the cancelled reason.
func (s *Spider) Crawl(ctx context.Context, baseURL string) (*Result, error) {
	disc, err := NewDiscoverer(baseURL)
	if err != nil {
		return nil, err
	}

	st := NewCrawlState(s.now())
	listing := newLimiter(s.pageDelay)
	detail := newLimiter(s.delay)

	for page := 1; st.Reason == model.ReasonNone; page++ {
		if ctx.Err() != nil || listing.Wait(ctx) != nil {
			st.Terminate(model.ReasonCancelled)
			break
		}

		st.Page = page
		pageURL, err := PageURL(baseURL, page, s.pageParam)
		if err != nil {
			return nil, err
		}

		usable := st.Admit(s.discover(ctx, disc, pageURL), func(l Link) bool { return s.keep(ctx, st, l) })
		s.logger.Info("listing page crawled", "page", page, "url", pageURL, "usable_links", len(usable))

		if len(usable) == 0 {
			if st.EmptyPage(s.emptyPageThreshold) {
				st.Terminate(model.ReasonConsecutiveEmptyPages)
				break
			}
		} else {
			st.ProductivePage()
			if rem := st.Remaining(s.maxJobs); rem >= 0 && len(usable) > rem {
				usable = usable[:rem]
			}
			if reason := s.crawlDetails(ctx, st, usable, detail); reason != model.ReasonNone {
				st.Terminate(reason)
				break
			}
		}

		switch {
		case st.Remaining(s.maxJobs) == 0:
			st.Terminate(model.ReasonMaxJobsReached)
		case s.maxPages > 0 && page >= s.maxPages:
			st.Terminate(model.ReasonMaxPagesReached)
		}
	}

	summary := st.Summary(baseURL, s.now())
	s.logger.Info("crawl finished",
		"pages", summary.PagesVisited,
		"records", summary.RecordsProduced,
		"skipped", summary.RecordsSkipped,
		"reason", summary.Reason.String(),
	)
	return &Result{Records: st.Records, Summary: summary}, nil
}

// discover fetches a listing page and returns its links. A failed fetch
// yields no links, so the page counts as empty.
func (s *Spider) discover(ctx context.Context, disc *Discoverer, pageURL string) []Link {
	body, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		s.logger.Warn("failed to fetch listing page", "url", pageURL, "error", err)
		return nil
	}
	doc, err := document.ParseBytes(body)
	if err != nil {
		s.logger.Warn("failed to parse listing page", "url", pageURL, "error", err)
		return nil
	}
	return disc.Discover(doc)
}

// keep applies the path filter and the known-URL filter to a new link.
func (s *Spider) keep(ctx context.Context, st *CrawlState, l Link) bool {
	if !s.filter.allows(l.URL) {
		return false
	}
	if s.known == nil {
		return true
	}
	known, err := s.known.KnownURL(ctx, l.URL)
	if err != nil {
		s.logger.Warn("failed to check known URL", "url", l.URL, "error", err)
		return true
	}
	if known {
		st.Known++
		return false
	}
	return true
}

// detailResult is what a worker hands back to the controller.
type detailResult struct {
	index  int
	url    string
	record model.JobRecord
	err    error
}

// crawlDetails fetches and assembles the detail pages of one listing page.
// Records are appended to the state in link order once the page is done.
func (s *Spider) crawlDetails(ctx context.Context, st *CrawlState, links []Link, limiter *rate.Limiter) model.TerminationReason {
	results := make(chan detailResult, len(links))
	slots := make([]*model.JobRecord, len(links))
	pending := 0

	collect := func(r detailResult) {
		pending--
		if r.err != nil {
			st.Skipped++
			s.logger.Warn("skipped job", "url", r.url, "timeout", fetch.IsTimeout(r.err), "error", r.err)
			return
		}
		st.Emitted++
		slots[r.index] = &r.record
		if s.progress != nil {
			s.progress(r.record)
		}
	}

	// In-flight fetches are detached from cancellation; they finish or
	// time out on their own.
	fetchCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	reason := model.ReasonNone
dispatch:
	for i, link := range links {
		for drained := false; !drained; {
			select {
			case r := <-results:
				collect(r)
			default:
				drained = true
			}
		}
		for s.maxJobs > 0 && pending > 0 && st.Emitted+pending >= s.maxJobs {
			collect(<-results)
		}
		switch {
		case st.Remaining(s.maxJobs) == 0:
			reason = model.ReasonMaxJobsReached
			break dispatch
		case ctx.Err() != nil:
			reason = model.ReasonCancelled
			break dispatch
		}
		if err := limiter.Wait(ctx); err != nil {
			reason = model.ReasonCancelled
			break dispatch
		}

		pending++
		g.Go(func() error {
			results <- s.fetchDetail(fetchCtx, i, link)
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // workers report through results
	for pending > 0 {
		collect(<-results)
	}

	for _, rec := range slots {
		if rec != nil {
			st.Records = append(st.Records, *rec)
		}
	}
	return reason
}

// fetchDetail fetches one detail page and assembles its record.
func (s *Spider) fetchDetail(ctx context.Context, index int, link Link) detailResult {
	r := detailResult{index: index, url: link.URL}
	body, err := s.fetcher.Fetch(ctx, link.URL)
	if err != nil {
		r.err = err
		return r
	}
	doc, err := document.ParseBytes(body)
	if err != nil {
		r.err = err
		return r
	}
	r.record = s.assembler.Assemble(doc, link.Card, link.URL)
	return r
}

// newLimiter returns a limiter allowing one request per d. A zero delay
// disables spacing.
func newLimiter(d time.Duration) *rate.Limiter {
	if d <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(d), 1)
}
