package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for jobcrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobcrawl",
		Short: "Crawler and field extractor for job listing sites",
		Long: `jobcrawl walks the paginated listing pages of a job board, visits every
job posting it discovers and extracts a structured record (title, company,
salary, location, contact details and more) from each one.

Records are written as JSON, CSV, Markdown or plain text. Every crawl is
also stored in a local SQLite history so later runs can skip postings that
were already collected (--incremental).`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewExtractCmd())
	cmd.AddCommand(NewRunsCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}
