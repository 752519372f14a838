package config

import (
	"fmt"
	"strings"
	"time"

	"latency-monitor/internal/rawlog"
)

// Probe methods
const (
	MethodCommand = "command"
	MethodICMP    = "icmp"
)

// Config holds all configuration for a monitoring run
type Config struct {
	Targets    []string      `yaml:"targets"`
	Duration   time.Duration `yaml:"duration"`
	Interval   time.Duration `yaml:"interval"`
	Timeout    time.Duration `yaml:"timeout"`
	Method     string        `yaml:"method"`
	Privileged bool          `yaml:"privileged"`

	WindowSize         int     `yaml:"window_size"`
	DisplayCapMS       float64 `yaml:"display_cap_ms"`
	LatencyThresholdMS float64 `yaml:"latency_threshold_ms"`

	AggregationInterval    int           `yaml:"aggregation_interval"`
	MinAggregationDuration time.Duration `yaml:"min_aggregation_duration"`
	NoAggregation          bool          `yaml:"no_aggregation"`

	ResultsDir   string `yaml:"results_dir"`
	PlotsDir     string `yaml:"plots_dir"`
	LogDir       string `yaml:"log_dir"`
	DatabasePath string `yaml:"database"`
	Listen       string `yaml:"listen"`

	ReportEvery time.Duration `yaml:"report_every"`
	FlushEvery  int           `yaml:"flush_every"`
	LogLevel    string        `yaml:"log_level"`
	LogFormat   string        `yaml:"log_format"`
}

// ConfigurationError reports an invalid configuration value
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

// Default returns the configuration used when nothing else is specified
func Default() Config {
	return Config{
		Targets:                []string{"8.8.8.8"},
		Duration:               3 * time.Hour,
		Interval:               time.Second,
		Timeout:                time.Second,
		Method:                 MethodCommand,
		WindowSize:             50,
		DisplayCapMS:           800,
		LatencyThresholdMS:     200,
		AggregationInterval:    60,
		MinAggregationDuration: time.Minute,
		ResultsDir:             "results",
		PlotsDir:               "plots",
		LogDir:                 "logs",
		ReportEvery:            5 * time.Second,
		FlushEvery:             1,
		LogLevel:               "info",
		LogFormat:              "text",
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return &ConfigurationError{Field: "targets", Reason: "must contain at least one target"}
	}
	seen := make(map[string]bool, len(c.Targets))
	files := make(map[string]string, len(c.Targets))
	for _, t := range c.Targets {
		if strings.TrimSpace(t) == "" {
			return &ConfigurationError{Field: "targets", Reason: "must not contain blank entries"}
		}
		if seen[t] {
			return &ConfigurationError{Field: "targets", Reason: fmt.Sprintf("contains %q more than once", t)}
		}
		seen[t] = true

		// Each target owns its raw log file.
		name := rawlog.Filename(t)
		if other, ok := files[name]; ok {
			return &ConfigurationError{Field: "targets", Reason: fmt.Sprintf("%q and %q would share raw log %s", other, t, name)}
		}
		files[name] = t
	}
	if c.Duration <= 0 {
		return &ConfigurationError{Field: "duration", Reason: "must be positive"}
	}
	if c.Interval <= 0 {
		return &ConfigurationError{Field: "interval", Reason: "must be positive"}
	}
	if c.Interval > c.Duration {
		return &ConfigurationError{Field: "interval", Reason: "must not exceed duration"}
	}
	if c.Timeout <= 0 {
		return &ConfigurationError{Field: "timeout", Reason: "must be positive"}
	}
	if c.Method != MethodCommand && c.Method != MethodICMP {
		return &ConfigurationError{Field: "method", Reason: fmt.Sprintf("must be %q or %q", MethodCommand, MethodICMP)}
	}
	if c.WindowSize <= 0 {
		return &ConfigurationError{Field: "window_size", Reason: "must be positive"}
	}
	if c.DisplayCapMS < 0 {
		return &ConfigurationError{Field: "display_cap_ms", Reason: "must not be negative"}
	}
	if c.AggregationInterval <= 0 {
		return &ConfigurationError{Field: "aggregation_interval", Reason: "must be positive"}
	}
	if c.FlushEvery <= 0 {
		return &ConfigurationError{Field: "flush_every", Reason: "must be positive"}
	}
	return nil
}

// ProbeTimeout bounds a single probe so it can never outlast one interval
func (c *Config) ProbeTimeout() time.Duration {
	if c.Timeout > c.Interval {
		return c.Interval
	}
	return c.Timeout
}

// ShouldAggregate reports whether interval statistics make sense for a run
// of the given length
func (c *Config) ShouldAggregate(runLength time.Duration) bool {
	if c.NoAggregation {
		return false
	}
	return runLength >= c.MinAggregationDuration
}
