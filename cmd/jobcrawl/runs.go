package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/jobcrawl/internal/config"
	"github.com/nao1215/jobcrawl/internal/database"
	"github.com/nao1215/jobcrawl/internal/model"
)

// defaultRunsLimit is the number of runs listed when --limit is not set.
const defaultRunsLimit = 20

// NewRunsCmd creates the runs command.
func NewRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List previous crawl runs",
		Long: `Runs lists the crawls stored in the history database, newest first, with
the pages visited, records produced and why each crawl stopped.

Examples:
  # Show the last 20 runs
  jobcrawl runs

  # Show every run as JSON
  jobcrawl runs --limit 0 --json`,
		Args: cobra.NoArgs,
		RunE: runRunsCmd,
	}

	cmd.Flags().IntP("limit", "l", defaultRunsLimit,
		"Maximum number of runs to list (0 = all)")
	cmd.Flags().BoolP("json", "j", false,
		"Output runs as JSON")
	cmd.Flags().String("db-dir", "",
		"Directory of the crawl history database (default: XDG data directory)")

	return cmd
}

// runView is the JSON form of a stored run.
type runView struct {
	ID int64 `json:"id"`
	model.CrawlSummary
}

// runRunsCmd executes the runs command.
func runRunsCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	out := cmd.OutOrStdout()

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(dbDir, opts)
	if err != nil {
		if errors.Is(err, database.ErrDatabaseNotFound) {
			fmt.Fprintln(out, "No crawl history found.")
			return nil
		}
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		views := make([]runView, 0, len(runs))
		for _, r := range runs {
			views = append(views, runView{ID: r.ID, CrawlSummary: r.CrawlSummary})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}

	printRuns(out, runs)
	return nil
}

// printRuns writes runs as an aligned table.
func printRuns(w io.Writer, runs []database.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No crawl history found.")
		return
	}

	fmt.Fprintf(w, "Crawl runs (%d):\n\n", len(runs))
	fmt.Fprintf(w, "  %-6s  %-20s  %6s  %7s  %7s  %-24s  %s\n",
		"ID", "Started", "Pages", "Records", "Skipped", "Reason", "Base URL")
	for _, r := range runs {
		fmt.Fprintf(w, "  %-6d  %-20s  %6d  %7d  %7d  %-24s  %s\n",
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			r.PagesVisited,
			r.RecordsProduced,
			r.RecordsSkipped,
			r.Reason.String(),
			r.BaseURL,
		)
	}
}
