package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vvl-tools/vvlci/internal/config"
	"github.com/vvl-tools/vvlci/internal/history"
)

var (
	historyLimit          int
	historyPurgeOlderThan time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.List(historyLimit)
		if err != nil {
			return fmt.Errorf("listing runs: %w", err)
		}

		if len(runs) == 0 {
			fmt.Println("no recorded runs")
			return nil
		}

		for _, run := range runs {
			status := color.GreenString("ok")
			if !run.Succeeded() {
				status = color.RedString("exit %d", run.ExitCode)
			}
			osx := run.OSX
			if osx == "" {
				osx = "-"
			}
			fmt.Printf("%s  %-14s osx=%-7s %-8s %s\n",
				run.StartedAt.Local().Format("2006-01-02 15:04:05"),
				run.Configuration,
				osx,
				status,
				run.Duration.Round(time.Second))
		}
		return nil
	},
}

var historyPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete runs older than a cutoff",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		deleted, err := store.Purge(historyPurgeOlderThan)
		if err != nil {
			return fmt.Errorf("purging runs: %w", err)
		}

		fmt.Printf("deleted %d run(s)\n", deleted)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list (0 for all)")
	historyPurgeCmd.Flags().DurationVar(&historyPurgeOlderThan, "older-than", 30*24*time.Hour, "Delete runs older than this duration")
	historyCmd.AddCommand(historyPurgeCmd)
}

// openHistory opens the configured run-history store.
func openHistory() (*history.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	path := cfg.History.Path
	if path == "" {
		path = history.DefaultPath()
	}

	store, err := history.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening run history: %w", err)
	}
	return store, nil
}
