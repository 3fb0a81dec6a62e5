package main

import (
	"slices"
	"testing"

	"github.com/spf13/cobra"
)

// TestNewRootCmd tests the root command creation.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "jobcrawl" {
			t.Errorf("expected use 'jobcrawl', got %q", cmd.Use)
		}
	})

	t.Run("has descriptions and version", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" || cmd.Long == "" {
			t.Error("expected non-empty descriptions")
		}
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("has verbose flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.PersistentFlags().Lookup("verbose")
		if flag == nil {
			t.Fatal("expected verbose flag")
		}
		if flag.Shorthand != "v" {
			t.Errorf("expected shorthand 'v', got %q", flag.Shorthand)
		}
		if flag.DefValue != "false" {
			t.Errorf("expected default 'false', got %q", flag.DefValue)
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()
		var names []string
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		for _, want := range []string{"crawl", "extract", "runs", "init", "version"} {
			if !slices.Contains(names, want) {
				t.Errorf("expected %s subcommand, got %v", want, names)
			}
		}
	})

	t.Run("silences usage and errors", func(t *testing.T) {
		t.Parallel()
		if !cmd.SilenceUsage {
			t.Error("expected SilenceUsage to be true")
		}
		if !cmd.SilenceErrors {
			t.Error("expected SilenceErrors to be true")
		}
	})
}

// TestGetVerboseFlag tests reading the persistent verbose flag.
func TestGetVerboseFlag(t *testing.T) {
	t.Parallel()

	t.Run("defaults to false without the flag", func(t *testing.T) {
		t.Parallel()
		if getVerboseFlag(&cobra.Command{Use: "bare"}) {
			t.Error("expected false")
		}
	})

	t.Run("reads the root persistent flag", func(t *testing.T) {
		t.Parallel()
		root := NewRootCmd()
		if err := root.PersistentFlags().Set("verbose", "true"); err != nil {
			t.Fatalf("failed to set flag: %v", err)
		}
		crawl, _, err := root.Find([]string{"crawl"})
		if err != nil {
			t.Fatalf("failed to find crawl: %v", err)
		}
		if !getVerboseFlag(crawl) {
			t.Error("expected true")
		}
	})
}
