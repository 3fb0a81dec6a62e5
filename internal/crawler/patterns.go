package crawler

import (
	"net/url"
	"path/filepath"
	"strings"
)

// pathFilter decides which detail URLs are crawled, by glob patterns on
// the URL path.
type pathFilter struct {
	ignore []string
	follow []string
}

// allows checks a URL against the ignore and follow patterns.
//
// Logic:
//  1. If the path matches any ignore pattern, skip it
//  2. If follow patterns are set and the path matches none, skip it
//  3. Otherwise, crawl it
func (f pathFilter) allows(target string) bool {
	if len(f.ignore) == 0 && len(f.follow) == 0 {
		return true
	}
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	path := u.Path
	if path == "" {
		path = "/"
	}

	for _, pattern := range f.ignore {
		if matchPattern(pattern, path) {
			return false
		}
	}
	if len(f.follow) > 0 {
		for _, pattern := range f.follow {
			if matchPattern(pattern, path) {
				return true
			}
		}
		return false
	}
	return true
}

// matchPattern checks if a path matches a glob pattern.
// Patterns can use:
//   - * to match any sequence of non-separator characters
//   - ? to match any single character
//   - a trailing /* to match everything below a prefix
//
// Examples:
//   - "/ofertas-de-trabajo/*" matches every posting
//   - "*-practica-*" matches postings whose slug mentions an internship
func matchPattern(pattern, path string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	matched, err := filepath.Match(pattern, path)
	if err == nil && matched {
		return true
	}

	// Patterns without a slash are matched against the last segment.
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		matched, err := filepath.Match(pattern, filepath.Base(path))
		if err == nil && matched {
			return true
		}
	}
	return false
}
