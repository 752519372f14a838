package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"latency-monitor/internal/config"
	"latency-monitor/internal/logging"
)

var (
	configPath string
	envPath    string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "latency-monitor",
	Short: "Concurrent latency monitor",
	Long: `latency-monitor probes several hosts in parallel at a fixed interval,
records every probe to a raw log per host and turns finished runs into
interval statistics, charts and a summary.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&envPath, "env-file", ".env", "Environment file with LATMON_* overrides")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides config)")

	rootCmd.AddCommand(runCmd, reportCmd, validateCmd, clearCmd, pruneCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig layers defaults, the config file, the environment and finally
// the flags the user set. Positional args replace the targets.
func loadConfig(fs *pflag.FlagSet, args []string) (config.Config, error) {
	if err := config.LoadDotEnv(envPath); err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	if fs != nil {
		if err := config.ApplyFlags(fs, &cfg); err != nil {
			return cfg, err
		}
	}
	config.SetTargets(&cfg, args)
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

// newLogger builds the process logger. With withFile the log is also written
// to a timestamped file in the configured log directory.
func newLogger(cfg config.Config, withFile bool) (*logrus.Entry, io.Closer, error) {
	opts := logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: os.Stderr,
	}
	if withFile {
		opts.Dir = cfg.LogDir
	}
	logger, closer, err := logging.New(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return logrus.NewEntry(logger), closer, nil
}
