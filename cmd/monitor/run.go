package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"latency-monitor/internal/aggregate"
	"latency-monitor/internal/config"
	"latency-monitor/internal/database"
	"latency-monitor/internal/models"
	"latency-monitor/internal/monitor"
	"latency-monitor/internal/ping"
	"latency-monitor/internal/rawlog"
	"latency-monitor/internal/report"
	"latency-monitor/internal/telemetry"
	"latency-monitor/internal/web"
)

var runCmd = &cobra.Command{
	Use:   "run [targets...]",
	Short: "Probe the targets for the configured duration and report",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Flags(), args)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		log, closer, err := newLogger(cfg, true)
		if err != nil {
			return err
		}
		defer closer.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		return runMonitor(ctx, cfg, log)
	},
}

func init() {
	config.RegisterFlags(runCmd.Flags())
}

func runMonitor(ctx context.Context, cfg config.Config, log *logrus.Entry) error {
	runID := uuid.New().String()
	log = log.WithField("run_id", runID[:8])

	started := time.Now()
	resultsDir := filepath.Join(cfg.ResultsDir,
		fmt.Sprintf("results_%s_%s", started.Format("2006-01-02_15-04-05"), runID[:8]))
	if err := os.MkdirAll(resultsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create results directory: %w", err)
	}
	if err := rawlog.WriteManifest(resultsDir, cfg.Targets); err != nil {
		return err
	}

	executor, err := ping.New(cfg.Method, cfg.Privileged)
	if err != nil {
		return err
	}

	var db *database.DB
	if cfg.DatabasePath != "" {
		db, err = database.Open(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		err = db.SaveRun(models.Run{
			ID:         runID,
			StartedAt:  started,
			Targets:    cfg.Targets,
			Duration:   cfg.Duration.Seconds(),
			Interval:   cfg.Interval.Seconds(),
			ResultsDir: resultsDir,
		})
		if err != nil {
			return err
		}
	}

	paths := make(map[string]string, len(cfg.Targets))
	sinks := func(target string) (models.RecordSink, error) {
		w, err := rawlog.Open(resultsDir, target, cfg.FlushEvery)
		if err != nil {
			return nil, err
		}
		paths[target] = w.Path()
		if db == nil {
			return w, nil
		}
		return rawlog.MultiSink{w, db.Sink(runID)}, nil
	}

	store := telemetry.NewStore(cfg.Targets, cfg.WindowSize, cfg.DisplayCapMS)
	mon, err := monitor.New(cfg, monitor.Deps{
		Log:      log,
		Executor: executor,
		Sinks:    sinks,
		Store:    store,
	})
	if err != nil {
		return err
	}

	webCtx, stopWeb := context.WithCancel(ctx)
	webDone := make(chan struct{})
	if cfg.Listen != "" {
		var history web.History
		if db != nil {
			history = db
		}
		srv := web.New(cfg.Listen, store, history, log)
		go func() {
			defer close(webDone)
			if err := srv.Start(webCtx); err != nil {
				log.WithError(err).Error("Web server failed")
			}
		}()
	} else {
		close(webDone)
	}
	defer func() {
		stopWeb()
		<-webDone
	}()

	log.WithField("results_dir", resultsDir).Info("Monitor started")
	result, err := mon.Run(ctx)
	if err != nil {
		return err
	}

	if db != nil {
		if err := db.FinishRun(runID, time.Now(), result.Interrupted); err != nil {
			log.WithError(err).Warn("Failed to finish run in database")
		}
	}
	for _, l := range result.Failed() {
		log.WithError(l.Err).WithField("target", l.Target).Error("Probe loop failed")
	}

	inputs := make([]report.Input, 0, len(cfg.Targets))
	aggregateRun := cfg.ShouldAggregate(result.End.Sub(result.Start))
	if !aggregateRun {
		log.Info("Run too short or aggregation disabled, skipping interval statistics")
	}
	for _, target := range cfg.Targets {
		outcomes, err := rawlog.Load(paths[target])
		if err != nil {
			log.WithError(err).WithField("target", target).Error("Failed to read raw log")
			continue
		}
		in := report.Input{Target: target, Outcomes: outcomes}
		if aggregateRun {
			in.Intervals = aggregate.ScaleMidpoints(aggregate.Aggregate(outcomes, cfg.AggregationInterval), cfg.Interval)
			if db != nil {
				if err := db.SaveIntervals(runID, target, in.Intervals); err != nil {
					log.WithError(err).WithField("target", target).Warn("Failed to store intervals")
				}
			}
		}
		inputs = append(inputs, in)
	}

	return writeReport(cfg, log, inputs)
}

func writeReport(cfg config.Config, log *logrus.Entry, inputs []report.Input) error {
	if len(inputs) == 0 {
		return fmt.Errorf("no data to report")
	}
	gen := report.NewGenerator(log, cfg.LatencyThresholdMS, cfg.Interval)
	report.WriteSummaryTable(os.Stdout, gen.Summaries(inputs))
	if _, err := gen.GenerateReport(cfg.PlotsDir, inputs); err != nil {
		return err
	}
	return nil
}
