// Package main provides the entry point for the jobcrawl CLI.
//
// jobcrawl crawls the paginated job listings of a job board, follows every
// posting to its detail page and extracts a structured record per posting.
//
// Usage:
//
//	jobcrawl crawl [base-url]
//	jobcrawl extract <file-or-url>
//	jobcrawl runs
//
// See --help for all available options.
package main

func main() {
	Execute()
}
