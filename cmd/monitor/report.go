package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"latency-monitor/internal/aggregate"
	"latency-monitor/internal/config"
	"latency-monitor/internal/database"
	"latency-monitor/internal/models"
	"latency-monitor/internal/rawlog"
	"latency-monitor/internal/report"
)

var (
	reportFile string
	reportDir  string
	reportRun  string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build charts and a summary from stored results",
	Long: `report regenerates the aggregated statistics, charts and summary of a
finished run. The data comes from a single raw log (--file), a results
directory (--dir) or the history database (--run).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		set := 0
		for _, v := range []string{reportFile, reportDir, reportRun} {
			if v != "" {
				set++
			}
		}
		if set != 1 {
			return errors.New("exactly one of --file, --dir or --run is required")
		}

		cfg, err := loadConfig(cmd.Flags(), nil)
		if err != nil {
			return err
		}
		log, closer, err := newLogger(cfg, false)
		if err != nil {
			return err
		}
		defer closer.Close()

		var inputs []report.Input
		switch {
		case reportFile != "":
			inputs, err = inputsFromFile(cfg, reportFile)
		case reportDir != "":
			inputs, err = inputsFromDir(cfg, reportDir)
		default:
			inputs, err = inputsFromRun(cfg, log, reportRun)
		}
		if err != nil {
			return err
		}

		return writeReport(cfg, log, inputs)
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportFile, "file", "", "Raw log file of one target")
	reportCmd.Flags().StringVar(&reportDir, "dir", "", "Results directory with raw logs")
	reportCmd.Flags().StringVar(&reportRun, "run", "", "Run ID in the history database")
	reportCmd.Flags().DurationP("interval", "i", config.Default().Interval, "Probe interval the logs were written with")
	reportCmd.Flags().Int("aggregation-interval", config.Default().AggregationInterval, "Number of probes per aggregated interval")
	reportCmd.Flags().Bool("no-aggregation", false, "Disable interval aggregation")
	reportCmd.Flags().Float64("latency-threshold", config.Default().LatencyThresholdMS, "Latency threshold in ms")
	reportCmd.Flags().String("plots-dir", config.Default().PlotsDir, "Directory for generated reports")
	reportCmd.Flags().String("db", "", "SQLite history database path")
}

// offlineInput aggregates a loaded log when the run it came from was long
// enough
func offlineInput(cfg config.Config, target string, outcomes []models.Outcome) report.Input {
	in := report.Input{Target: target, Outcomes: outcomes}
	runLength := time.Duration(len(outcomes)) * cfg.Interval
	if cfg.ShouldAggregate(runLength) {
		in.Intervals = aggregate.ScaleMidpoints(aggregate.Aggregate(outcomes, cfg.AggregationInterval), cfg.Interval)
	}
	return in
}

func inputsFromFile(cfg config.Config, path string) ([]report.Input, error) {
	outcomes, err := rawlog.Load(path)
	if err != nil {
		return nil, err
	}
	target, ok, err := rawlog.TargetForFile(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		target = filepath.Base(path)
	}
	return []report.Input{offlineInput(cfg, target, outcomes)}, nil
}

func inputsFromDir(cfg config.Config, dir string) ([]report.Input, error) {
	logs, targets, err := rawlog.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no raw logs found in %s", dir)
	}
	inputs := make([]report.Input, 0, len(targets))
	for _, target := range targets {
		inputs = append(inputs, offlineInput(cfg, target, logs[target]))
	}
	return inputs, nil
}

func inputsFromRun(cfg config.Config, log *logrus.Entry, runID string) ([]report.Input, error) {
	if cfg.DatabasePath == "" {
		return nil, errors.New("--run needs a database (--db or database in the config)")
	}
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	run, err := db.GetRun(runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	if run.Interval > 0 {
		cfg.Interval = time.Duration(run.Interval * float64(time.Second))
	}

	inputs := make([]report.Input, 0, len(run.Targets))
	for _, target := range run.Targets {
		outcomes, err := db.LoadOutcomes(runID, target)
		if err != nil {
			return nil, err
		}
		in := report.Input{Target: target, Outcomes: outcomes}
		in.Intervals, err = db.GetIntervals(runID, target)
		if err != nil {
			return nil, err
		}
		if len(in.Intervals) == 0 {
			in = offlineInput(cfg, target, outcomes)
		}
		log.WithFields(logrus.Fields{"target": target, "records": len(outcomes)}).Debug("Loaded run data")
		inputs = append(inputs, in)
	}
	return inputs, nil
}
