package config

import (
	"strings"

	"github.com/spf13/pflag"
)

// RegisterFlags adds the run flags to fs with defaults taken from Default()
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.DurationP("duration", "d", d.Duration, "Total monitoring duration")
	fs.DurationP("interval", "i", d.Interval, "Ping interval")
	fs.Duration("timeout", d.Timeout, "Per-probe timeout (capped at the interval)")
	fs.String("method", d.Method, "Probe method: command or icmp")
	fs.Bool("privileged", d.Privileged, "Use raw sockets for icmp probes")
	fs.Int("window", d.WindowSize, "Number of recent values kept for the live view")
	fs.Float64("display-cap", d.DisplayCapMS, "Cap for live latency values in ms (0 disables)")
	fs.Float64("latency-threshold", d.LatencyThresholdMS, "Latency threshold in ms used in reports")
	fs.Int("aggregation-interval", d.AggregationInterval, "Number of probes per aggregated interval")
	fs.Bool("no-aggregation", d.NoAggregation, "Disable interval aggregation")
	fs.String("results-dir", d.ResultsDir, "Directory for raw result files")
	fs.String("plots-dir", d.PlotsDir, "Directory for generated reports")
	fs.String("log-dir", d.LogDir, "Directory for log files")
	fs.String("db", d.DatabasePath, "SQLite history database path (empty disables)")
	fs.String("listen", d.Listen, "HTTP listen address for the live API (empty disables)")
}

// ApplyFlags copies every flag the user actually set into cfg, so flags win
// over the config file and the environment
func ApplyFlags(fs *pflag.FlagSet, cfg *Config) error {
	var err error
	set := func(name string, apply func() error) {
		if err != nil || !fs.Changed(name) {
			return
		}
		err = apply()
	}

	set("duration", func() (e error) { cfg.Duration, e = fs.GetDuration("duration"); return })
	set("interval", func() (e error) { cfg.Interval, e = fs.GetDuration("interval"); return })
	set("timeout", func() (e error) { cfg.Timeout, e = fs.GetDuration("timeout"); return })
	set("method", func() (e error) { cfg.Method, e = fs.GetString("method"); return })
	set("privileged", func() (e error) { cfg.Privileged, e = fs.GetBool("privileged"); return })
	set("window", func() (e error) { cfg.WindowSize, e = fs.GetInt("window"); return })
	set("display-cap", func() (e error) { cfg.DisplayCapMS, e = fs.GetFloat64("display-cap"); return })
	set("latency-threshold", func() (e error) { cfg.LatencyThresholdMS, e = fs.GetFloat64("latency-threshold"); return })
	set("aggregation-interval", func() (e error) { cfg.AggregationInterval, e = fs.GetInt("aggregation-interval"); return })
	set("no-aggregation", func() (e error) { cfg.NoAggregation, e = fs.GetBool("no-aggregation"); return })
	set("results-dir", func() (e error) { cfg.ResultsDir, e = fs.GetString("results-dir"); return })
	set("plots-dir", func() (e error) { cfg.PlotsDir, e = fs.GetString("plots-dir"); return })
	set("log-dir", func() (e error) { cfg.LogDir, e = fs.GetString("log-dir"); return })
	set("db", func() (e error) { cfg.DatabasePath, e = fs.GetString("db"); return })
	set("listen", func() (e error) { cfg.Listen, e = fs.GetString("listen"); return })
	return err
}

// SetTargets replaces the configured targets when any are given on the
// command line. Comma-separated lists are accepted as well.
func SetTargets(cfg *Config, args []string) {
	var targets []string
	for _, arg := range args {
		for _, t := range strings.Split(arg, ",") {
			if t = strings.TrimSpace(t); t != "" {
				targets = append(targets, t)
			}
		}
	}
	if len(targets) > 0 {
		cfg.Targets = targets
	}
}
