package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestNewConfig verifies the default values.
// Changing a default should be intentional, so every value is listed.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.BaseURL != "https://cr.computrabajo.com/empleos-en-san-jose" {
		t.Errorf("unexpected BaseURL %q", cfg.BaseURL)
	}
	if cfg.PageParam != "p" {
		t.Errorf("expected PageParam p, got %q", cfg.PageParam)
	}
	if cfg.MaxPages != 0 || cfg.MaxJobs != 0 {
		t.Errorf("expected unlimited pages and jobs, got %d and %d", cfg.MaxPages, cfg.MaxJobs)
	}
	if cfg.Delay != time.Second || cfg.PageDelay != 2*time.Second {
		t.Errorf("unexpected delays %v and %v", cfg.Delay, cfg.PageDelay)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", cfg.Timeout)
	}
	if cfg.Concurrency != 1 {
		t.Errorf("expected concurrency 1, got %d", cfg.Concurrency)
	}
	if cfg.EmptyPageThreshold != 2 {
		t.Errorf("expected empty page threshold 2, got %d", cfg.EmptyPageThreshold)
	}
	if cfg.MaxBodySize != 10*1024*1024 {
		t.Errorf("expected 10MB body limit, got %d", cfg.MaxBodySize)
	}
	if cfg.RegionTag != "Costa Rica" || cfg.DeadlineDays != 30 {
		t.Errorf("unexpected record defaults %q, %d", cfg.RegionTag, cfg.DeadlineDays)
	}
	if !strings.Contains(cfg.UserAgent, "Mozilla/5.0") || !strings.HasPrefix(cfg.AcceptLanguage, "es") {
		t.Errorf("unexpected request headers %q, %q", cfg.UserAgent, cfg.AcceptLanguage)
	}
	if cfg.OutputFormat != "json" {
		t.Errorf("expected json output, got %q", cfg.OutputFormat)
	}
	if cfg.DBDir != XDGDataDir() || !cfg.SaveToDB || cfg.Incremental {
		t.Errorf("unexpected database settings %q, %v, %v", cfg.DBDir, cfg.SaveToDB, cfg.Incremental)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must be valid: %v", err)
	}
}

// TestConfigValidate tests every validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty base URL", mutate: func(c *Config) { c.BaseURL = "" }, wantErr: ErrInvalidBaseURL},
		{name: "relative base URL", mutate: func(c *Config) { c.BaseURL = "/empleos" }, wantErr: ErrInvalidBaseURL},
		{name: "ftp base URL", mutate: func(c *Config) { c.BaseURL = "ftp://example.com" }, wantErr: ErrInvalidBaseURL},
		{name: "negative max pages", mutate: func(c *Config) { c.MaxPages = -1 }, wantErr: ErrInvalidMaxPages},
		{name: "negative max jobs", mutate: func(c *Config) { c.MaxJobs = -5 }, wantErr: ErrInvalidMaxJobs},
		{name: "zero concurrency", mutate: func(c *Config) { c.Concurrency = 0 }, wantErr: ErrInvalidConcurrency},
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = 0 }, wantErr: ErrInvalidTimeout},
		{name: "negative delay", mutate: func(c *Config) { c.Delay = -time.Second }, wantErr: ErrInvalidDelay},
		{name: "negative page delay", mutate: func(c *Config) { c.PageDelay = -time.Second }, wantErr: ErrInvalidDelay},
		{name: "zero delay is allowed", mutate: func(c *Config) { c.Delay, c.PageDelay = 0, 0 }},
		{name: "zero empty threshold", mutate: func(c *Config) { c.EmptyPageThreshold = 0 }, wantErr: ErrInvalidEmptyPageThreshold},
		{name: "unknown format", mutate: func(c *Config) { c.OutputFormat = "xml" }, wantErr: ErrInvalidOutputFormat},
		{name: "markdown alias", mutate: func(c *Config) { c.OutputFormat = "md" }},
		{name: "zero body size", mutate: func(c *Config) { c.MaxBodySize = 0 }, wantErr: ErrInvalidMaxBodySize},
		{name: "negative deadline", mutate: func(c *Config) { c.DeadlineDays = -1 }, wantErr: ErrInvalidDeadlineDays},
		{name: "base URL checked first", mutate: func(c *Config) { c.BaseURL = ""; c.Timeout = 0 }, wantErr: ErrInvalidBaseURL},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

// TestConfigHost tests host extraction for site lookups.
func TestConfigHost(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.BaseURL = "https://CR.Computrabajo.com:443/empleos?p=2"
	if got := cfg.Host(); got != "cr.computrabajo.com" {
		t.Errorf("got %q", got)
	}
	cfg.BaseURL = "://bad"
	if got := cfg.Host(); got != "" {
		t.Errorf("expected empty host, got %q", got)
	}
}

// TestFileGetSiteConfig tests merging defaults with site overrides.
func TestFileGetSiteConfig(t *testing.T) {
	t.Parallel()

	cf := &File{
		Defaults: SiteConfig{
			Headers:        map[string]string{"X-Default": "1", "X-Shared": "default"},
			Delay:          time.Second,
			IgnorePatterns: []string{"*practica*"},
			UserAgent:      "default-agent",
		},
		Sites: map[string]SiteConfig{
			"cr.computrabajo.com": {
				Cookie:   "ci_session=abc",
				Headers:  map[string]string{"X-Shared": "site"},
				Delay:    3 * time.Second,
				MaxPages: 5,
			},
		},
	}

	t.Run("site overrides", func(t *testing.T) {
		t.Parallel()

		sc := cf.GetSiteConfig("CR.computrabajo.com")
		if sc.Cookie != "ci_session=abc" || sc.Delay != 3*time.Second || sc.MaxPages != 5 {
			t.Errorf("site values not applied: %+v", sc)
		}
		if sc.UserAgent != "default-agent" || len(sc.IgnorePatterns) != 1 {
			t.Errorf("defaults not kept: %+v", sc)
		}
		if sc.Headers["X-Default"] != "1" || sc.Headers["X-Shared"] != "site" {
			t.Errorf("headers not merged: %v", sc.Headers)
		}
	})

	t.Run("unknown site gets defaults", func(t *testing.T) {
		t.Parallel()

		sc := cf.GetSiteConfig("example.com")
		if sc.Cookie != "" || sc.Delay != time.Second || sc.Headers["X-Shared"] != "default" {
			t.Errorf("unexpected config %+v", sc)
		}
	})

	t.Run("defaults are not mutated", func(t *testing.T) {
		t.Parallel()

		_ = cf.GetSiteConfig("cr.computrabajo.com")
		if cf.Defaults.Headers["X-Shared"] != "default" {
			t.Error("merging must not modify the defaults")
		}
	})
}

// TestApplySiteConfig tests applying file settings onto a Config.
func TestApplySiteConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.Headers = map[string]string{"X-Existing": "1"}
	cfg.ApplySiteConfig(SiteConfig{
		Cookie:         "a=b",
		Headers:        map[string]string{"Referer": "https://cr.computrabajo.com/"},
		PageDelay:      5 * time.Second,
		Concurrency:    2,
		Proxy:          "127.0.0.1:9050",
		FollowPatterns: []string{"/ofertas-de-trabajo/*"},
	})

	if cfg.Cookie != "a=b" || cfg.PageDelay != 5*time.Second || cfg.Concurrency != 2 || cfg.ProxyAddress != "127.0.0.1:9050" {
		t.Errorf("site values not applied: %+v", cfg)
	}
	if cfg.Delay != DefaultDelay || cfg.UserAgent != DefaultUserAgent || cfg.PageParam != "p" {
		t.Error("zero site values must keep the current settings")
	}
	if cfg.Headers["X-Existing"] != "1" || cfg.Headers["Referer"] == "" {
		t.Errorf("headers not merged: %v", cfg.Headers)
	}
	if len(cfg.FollowPatterns) != 1 {
		t.Errorf("follow patterns not applied: %v", cfg.FollowPatterns)
	}
}

// TestLoadConfigFile tests YAML parsing.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("valid file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".jobcrawl")
		content := `defaults:
  delay: 1500ms
  headers:
    Accept: text/html
sites:
  CR.Computrabajo.com:
    cookie: "ci_session=abc"
    pageDelay: 3s
    maxJobs: 50
    ignorePatterns:
      - "*practica*"
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Defaults.Delay != 1500*time.Millisecond || cf.Defaults.Headers["Accept"] != "text/html" {
			t.Errorf("unexpected defaults %+v", cf.Defaults)
		}
		sc, ok := cf.Sites["cr.computrabajo.com"]
		if !ok {
			t.Fatalf("site keys must be lower-cased: %v", cf.Sites)
		}
		if sc.Cookie != "ci_session=abc" || sc.PageDelay != 3*time.Second || sc.MaxJobs != 50 || sc.IgnorePatterns[0] != "*practica*" {
			t.Errorf("unexpected site config %+v", sc)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".jobcrawl")
		if err := os.WriteFile(path, []byte("sites: [unclosed"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(path); err == nil || errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected parse error, got %v", err)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".jobcrawl")
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			t.Fatal(err)
		}
		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if cf.Sites == nil {
			t.Error("expected initialized site map")
		}
	})
}

// TestFindConfigFile tests explicit paths. The search in the working, home
// and XDG config directories depends on the environment.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("defaults: {}\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if got := FindConfigFile(path); got != path {
		t.Errorf("expected %q, got %q", path, got)
	}
	if got := FindConfigFile(filepath.Join(dir, "missing.yaml")); got != "" {
		t.Errorf("expected empty result, got %q", got)
	}
	if got := FindConfigFile(dir); got != "" {
		t.Errorf("a directory is not a config file, got %q", got)
	}
}

// TestXDGDirs tests application directory names.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if filepath.Base(XDGDataDir()) != AppName {
		t.Errorf("unexpected data dir %q", XDGDataDir())
	}
	if filepath.Base(XDGConfigDir()) != AppName {
		t.Errorf("unexpected config dir %q", XDGConfigDir())
	}
}
