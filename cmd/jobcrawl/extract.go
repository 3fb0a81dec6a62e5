package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/jobcrawl/internal/config"
	"github.com/nao1215/jobcrawl/internal/document"
	"github.com/nao1215/jobcrawl/internal/extract"
	applog "github.com/nao1215/jobcrawl/internal/log"
	"github.com/nao1215/jobcrawl/internal/model"
	"github.com/nao1215/jobcrawl/internal/report"
)

// NewExtractCmd creates the extract command.
func NewExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <file-or-url>",
		Short: "Extract the job record of a single detail page",
		Long: `Extract runs the field extractors on one job detail page and prints the
resulting record. The page is read from a local HTML file, or fetched when
the argument starts with http:// or https://. Cookies, headers, proxy and
region are taken from the configuration file entry of the page's host, as
for crawl.

Examples:
  # Extract from a saved page
  jobcrawl extract oferta.html

  # Extract from a live posting
  jobcrawl extract https://cr.computrabajo.com/ofertas-de-trabajo/oferta-de-trabajo-de-cajero-ABC123`,
		Args: cobra.ExactArgs(1),
		RunE: runExtractCmd,
	}

	cmd.Flags().StringP("format", "f", config.DefaultOutputFormat,
		"Output format: json, csv, markdown or text")
	cmd.Flags().String("source-url", "",
		"Source URL recorded for a local file (default: the argument for URLs)")
	cmd.Flags().String("region-tag", config.DefaultRegionTag,
		"Region written to the record")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for fetching a URL")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (host:port)")
	cmd.Flags().String("cookie", "",
		"Cookie header sent with the request")
	cmd.Flags().StringP("config", "c", "",
		"Path to the configuration file (default: ./.jobcrawl, then the XDG config dir)")

	return cmd
}

// runExtractCmd executes the extract command.
func runExtractCmd(cmd *cobra.Command, args []string) error {
	target := args[0]
	flags := cmd.Flags()

	formatName, err := flags.GetString("format")
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return err
	}
	sourceURL, err := flags.GetString("source-url")
	if err != nil {
		return err
	}
	remote := isRemote(target)
	if remote && sourceURL == "" {
		sourceURL = target
	}

	cfg, err := extractConfig(cmd, sourceURL)
	if err != nil {
		return err
	}
	logger := applog.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)

	var body []byte
	if remote {
		f, err := newFetcher(cfg, logger)
		if err != nil {
			return err
		}
		if body, err = f.Fetch(cmd.Context(), target); err != nil {
			return err
		}
	} else {
		body, err = os.ReadFile(target) //nolint:gosec // user-provided input file
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", target, err)
		}
	}

	doc, err := document.ParseBytes(body)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", target, err)
	}

	record := extract.NewAssembler(
		extract.WithRegionTag(cfg.RegionTag),
		extract.WithDeadlineDays(cfg.DeadlineDays),
		extract.WithLogger(logger),
	).Assemble(doc, document.Node{}, sourceURL)

	return writeRecord(cmd.OutOrStdout(), format, record)
}

// extractConfig merges the configuration file entry of the host of
// sourceURL with the flags the user set, the same way crawl does.
func extractConfig(cmd *cobra.Command, sourceURL string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.BaseURL = sourceURL
	flags := cmd.Flags()

	var err error
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if err := loadSiteConfig(cfg); err != nil {
		return nil, err
	}

	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	stringFlags := map[string]*string{
		"region-tag": &cfg.RegionTag,
		"proxy":      &cfg.ProxyAddress,
		"cookie":     &cfg.Cookie,
	}
	for name, dst := range stringFlags {
		if flags.Changed(name) {
			if *dst, err = flags.GetString(name); err != nil {
				return nil, err
			}
		}
	}

	cfg.Verbose = getVerboseFlag(cmd)
	return cfg, nil
}

// writeRecord prints one record. JSON is written as a single object rather
// than an array of one.
func writeRecord(w io.Writer, format report.Format, record model.JobRecord) error {
	if format == report.FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	}
	sink, err := report.NewSink(format, w, nil)
	if err != nil {
		return err
	}
	return sink.Write([]model.JobRecord{record})
}

func isRemote(target string) bool {
	lower := strings.ToLower(target)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
