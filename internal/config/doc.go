// Package config holds the crawl configuration: defaults, validation, the
// optional .jobcrawl YAML file with per-site overrides, and XDG paths.
package config
