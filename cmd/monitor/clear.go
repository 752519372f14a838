package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"latency-monitor/internal/database"
)

var (
	clearResults bool
	clearPlots   bool
	clearLogs    bool
	clearYes     bool
	pruneOlder   time.Duration
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete result, plot and log directories",
	Long:  "clear removes the selected data directories. Without a selection all three are removed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(nil, nil)
		if err != nil {
			return err
		}

		var dirs []string
		all := !clearResults && !clearPlots && !clearLogs
		if all || clearResults {
			dirs = append(dirs, cfg.ResultsDir)
		}
		if all || clearPlots {
			dirs = append(dirs, cfg.PlotsDir)
		}
		if all || clearLogs {
			dirs = append(dirs, cfg.LogDir)
		}

		out := cmd.OutOrStdout()
		if !clearYes {
			fmt.Fprintf(out, "Delete %s? [y/N] ", strings.Join(dirs, ", "))
			answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
				fmt.Fprintln(out, "Aborted")
				return nil
			}
		}

		for _, dir := range dirs {
			if dir == "" {
				continue
			}
			if err := os.RemoveAll(dir); err != nil {
				return fmt.Errorf("failed to remove %s: %w", dir, err)
			}
			fmt.Fprintf(out, "Removed %s\n", dir)
		}
		return nil
	},
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old runs from the history database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Flags(), nil)
		if err != nil {
			return err
		}
		if cfg.DatabasePath == "" {
			return fmt.Errorf("no database configured")
		}
		if pruneOlder <= 0 {
			return fmt.Errorf("--older-than must be positive")
		}

		db, err := database.Open(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.PruneRuns(time.Now().Add(-pruneOlder))
		if err != nil {
			return err
		}
		if err := db.Vacuum(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d runs older than %s\n", n, pruneOlder)
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVar(&clearResults, "results", false, "Remove the results directory")
	clearCmd.Flags().BoolVar(&clearPlots, "plots", false, "Remove the plots directory")
	clearCmd.Flags().BoolVar(&clearLogs, "logs", false, "Remove the log directory")
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Do not ask for confirmation")

	pruneCmd.Flags().DurationVar(&pruneOlder, "older-than", 30*24*time.Hour, "Age of runs to delete")
	pruneCmd.Flags().String("db", "", "SQLite history database path")
}
