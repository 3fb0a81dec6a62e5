// Package fetch retrieves pages from the job site.
//
// The Fetcher interface is the only thing the crawler depends on, which
// keeps the crawl controller testable with in-memory fakes. HTTPFetcher is
// the production implementation: a plain net/http client whose transport
// injects the configured identifying headers (User-Agent, Accept-Language,
// cookie) into every request, optionally dialing through a SOCKS5 proxy.
//
// Every failure is reported as *Error with a Kind of network, timeout or
// http_status so callers can count and log them without string matching.
// Response bodies are size-limited and transcoded to UTF-8 based on the
// Content-Type header and <meta charset> sniffing.
package fetch
