package config

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/jobcrawl/internal/report"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "jobcrawl"

	// DefaultBaseURL is the first listing page of San José job postings.
	DefaultBaseURL = "https://cr.computrabajo.com/empleos-en-san-jose"

	// DefaultPageParam is the query parameter carrying the page number.
	DefaultPageParam = "p"

	// DefaultDelay spaces detail page requests. One second keeps the
	// crawl well below what a person browsing the site would generate.
	DefaultDelay = 1 * time.Second

	// DefaultPageDelay spaces listing page requests.
	DefaultPageDelay = 2 * time.Second

	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second

	// DefaultConcurrency of 1 fetches detail pages one at a time.
	DefaultConcurrency = 1

	// DefaultEmptyPageThreshold is the number of consecutive listing pages
	// without new links taken as the end of results.
	DefaultEmptyPageThreshold = 2

	// DefaultMaxBodySize limits the response body read per page.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultRegionTag is written to every record.
	DefaultRegionTag = "Costa Rica"

	// DefaultDeadlineDays is the offset from the crawl start used for the
	// expiry and application deadline dates.
	DefaultDeadlineDays = 30

	// DefaultUserAgent is a desktop browser User-Agent.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// DefaultAcceptLanguage prefers Spanish content.
	DefaultAcceptLanguage = "es-ES,es;q=0.9,en;q=0.8"

	// DefaultOutputFormat is the record output format.
	DefaultOutputFormat = "json"

	// LockFile is the name of the lock file that keeps two crawls from
	// writing the same database.
	LockFile = "jobcrawl.lock"
)

// Config holds all configuration options for a crawl.
// It is populated from defaults, the configuration file and CLI flags, in
// that order, and passed through the application rather than kept in
// global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., FetchConfig, OutputConfig) for simplicity. The number of options
// is manageable and every option maps to one CLI flag.
type Config struct {
	// BaseURL is the first listing page.
	BaseURL string

	// PageParam is the query parameter used for pagination.
	PageParam string

	// MaxPages limits the listing pages visited. 0 means unlimited.
	MaxPages int

	// MaxJobs limits the records produced. 0 means unlimited.
	MaxJobs int

	// Delay is the minimum spacing between detail page requests.
	Delay time.Duration

	// PageDelay is the minimum spacing between listing page requests.
	PageDelay time.Duration

	// Timeout bounds a single request.
	Timeout time.Duration

	// Concurrency is the number of detail pages fetched at once.
	// Delay still applies between request starts.
	Concurrency int

	// EmptyPageThreshold is the number of consecutive listing pages
	// without usable links that ends the crawl.
	EmptyPageThreshold int

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// RegionTag is written to every record.
	RegionTag string

	// DeadlineDays is the offset from the crawl start for expiry dates.
	DeadlineDays int

	// UserAgent and AcceptLanguage are sent with every request.
	UserAgent      string
	AcceptLanguage string

	// Cookie is sent with every request when set.
	Cookie string

	// Headers are extra request headers.
	Headers map[string]string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	ProxyAddress string

	// IgnorePatterns and FollowPatterns filter detail URLs by path.
	IgnorePatterns []string
	FollowPatterns []string

	// OutputFormat is one of json, csv, markdown or text.
	OutputFormat string

	// OutputFile receives the records. Empty means stdout.
	OutputFile string

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, .jobcrawl is searched in the current directory and then
	// in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds the loaded configuration file, if any.
	SiteConfigs *File

	// DBDir is the directory of the SQLite database and lock file.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB stores records and the run summary in the database.
	SaveToDB bool

	// Incremental skips detail pages already stored in the database.
	Incremental bool

	// PostgresDSN, when set, also writes records to PostgreSQL.
	PostgresDSN string
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (delays, timeout, base
// URL). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		BaseURL:            DefaultBaseURL,
		PageParam:          DefaultPageParam,
		Delay:              DefaultDelay,
		PageDelay:          DefaultPageDelay,
		Timeout:            DefaultTimeout,
		Concurrency:        DefaultConcurrency,
		EmptyPageThreshold: DefaultEmptyPageThreshold,
		MaxBodySize:        DefaultMaxBodySize,
		RegionTag:          DefaultRegionTag,
		DeadlineDays:       DefaultDeadlineDays,
		UserAgent:          DefaultUserAgent,
		AcceptLanguage:     DefaultAcceptLanguage,
		OutputFormat:       DefaultOutputFormat,
		DBDir:              XDGDataDir(),
		SaveToDB:           true,
	}
}

// XDGDataDir returns the XDG data directory for jobcrawl.
// On Linux: ~/.local/share/jobcrawl
// On macOS: ~/Library/Application Support/jobcrawl
// On Windows: %LOCALAPPDATA%\jobcrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for jobcrawl.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Host returns the lower-cased host of BaseURL, or "" when it does not
// parse.
func (c *Config) Host() string {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// ApplySiteConfig overrides the configuration with the non-zero values of
// a site configuration.
func (c *Config) ApplySiteConfig(sc SiteConfig) {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, v int) {
		if v != 0 {
			*dst = v
		}
	}
	setDuration := func(dst *time.Duration, v time.Duration) {
		if v != 0 {
			*dst = v
		}
	}

	setString(&c.PageParam, sc.PageParam)
	setString(&c.Cookie, sc.Cookie)
	setString(&c.UserAgent, sc.UserAgent)
	setString(&c.AcceptLanguage, sc.AcceptLanguage)
	setString(&c.ProxyAddress, sc.Proxy)
	setString(&c.RegionTag, sc.RegionTag)
	setInt(&c.MaxPages, sc.MaxPages)
	setInt(&c.MaxJobs, sc.MaxJobs)
	setInt(&c.Concurrency, sc.Concurrency)
	setDuration(&c.Delay, sc.Delay)
	setDuration(&c.PageDelay, sc.PageDelay)

	if len(sc.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string, len(sc.Headers))
		}
		for k, v := range sc.Headers {
			c.Headers[k] = v
		}
	}
	if len(sc.IgnorePatterns) > 0 {
		c.IgnorePatterns = sc.IgnorePatterns
	}
	if len(sc.FollowPatterns) > 0 {
		c.FollowPatterns = sc.FollowPatterns
	}
}

// Validate checks if the configuration is valid and returns the first
// problem found.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after flags and the config file are merged, before
// any request is sent.
func (c *Config) Validate() error {
	u, err := url.Parse(strings.TrimSpace(c.BaseURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBaseURL
	}
	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}
	if c.MaxJobs < 0 {
		return ErrInvalidMaxJobs
	}
	if c.Concurrency < 1 {
		return ErrInvalidConcurrency
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Delay < 0 || c.PageDelay < 0 {
		return ErrInvalidDelay
	}
	if c.EmptyPageThreshold < 1 {
		return ErrInvalidEmptyPageThreshold
	}
	if _, err := report.ParseFormat(c.OutputFormat); err != nil {
		return ErrInvalidOutputFormat
	}
	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}
	if c.DeadlineDays < 0 {
		return ErrInvalidDeadlineDays
	}
	return nil
}
