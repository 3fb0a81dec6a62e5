package config

import (
	"maps"
	"strings"
	"time"
)

// SiteConfig holds the settings that can differ per job site.
// Zero values mean "not set" and leave the current setting unchanged.
type SiteConfig struct {
	// Cookie is an HTTP cookie to send, e.g. "name=value; name2=value2".
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`

	// AcceptLanguage overrides the Accept-Language header.
	AcceptLanguage string `yaml:"acceptLanguage,omitempty"`

	// Delay overrides the spacing between detail requests (e.g. "1500ms").
	Delay time.Duration `yaml:"delay,omitempty"`

	// PageDelay overrides the spacing between listing requests.
	PageDelay time.Duration `yaml:"pageDelay,omitempty"`

	// PageParam overrides the pagination query parameter.
	PageParam string `yaml:"pageParam,omitempty"`

	// MaxPages and MaxJobs override the crawl limits.
	MaxPages int `yaml:"maxPages,omitempty"`
	MaxJobs  int `yaml:"maxJobs,omitempty"`

	// Concurrency overrides the number of detail workers.
	Concurrency int `yaml:"concurrency,omitempty"`

	// Proxy is a SOCKS5 proxy address in "host:port" format.
	Proxy string `yaml:"proxy,omitempty"`

	// RegionTag overrides the region written to every record.
	RegionTag string `yaml:"regionTag,omitempty"`

	// IgnorePatterns are detail URL path patterns to skip (glob syntax).
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns, when set, restrict detail URLs to matching paths.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`
}

// File represents the structure of the .jobcrawl configuration file.
type File struct {
	// Defaults apply to every site unless overridden below.
	Defaults SiteConfig `yaml:"defaults,omitempty"`

	// Sites maps host names (e.g. "cr.computrabajo.com") to overrides.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`
}

// GetSiteConfig returns the defaults merged with the overrides of host.
// Site values win when non-zero; headers are merged key by key.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults
	result.Headers = maps.Clone(cf.Defaults.Headers)

	site, ok := cf.Sites[strings.ToLower(host)]
	if !ok {
		return result
	}

	pick := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	pick(&result.Cookie, site.Cookie)
	pick(&result.UserAgent, site.UserAgent)
	pick(&result.AcceptLanguage, site.AcceptLanguage)
	pick(&result.PageParam, site.PageParam)
	pick(&result.Proxy, site.Proxy)
	pick(&result.RegionTag, site.RegionTag)

	if site.Delay != 0 {
		result.Delay = site.Delay
	}
	if site.PageDelay != 0 {
		result.PageDelay = site.PageDelay
	}
	if site.MaxPages != 0 {
		result.MaxPages = site.MaxPages
	}
	if site.MaxJobs != 0 {
		result.MaxJobs = site.MaxJobs
	}
	if site.Concurrency != 0 {
		result.Concurrency = site.Concurrency
	}
	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(site.Headers))
		}
		maps.Copy(result.Headers, site.Headers)
	}
	if len(site.IgnorePatterns) > 0 {
		result.IgnorePatterns = site.IgnorePatterns
	}
	if len(site.FollowPatterns) > 0 {
		result.FollowPatterns = site.FollowPatterns
	}
	return result
}
