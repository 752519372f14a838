package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"latency-monitor/internal/config"
)

var writeDefaults bool

var validateCmd = &cobra.Command{
	Use:   "validate [targets...]",
	Short: "Load and validate the configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if writeDefaults {
			if err := config.Write(configPath, config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", configPath)
			return nil
		}

		cfg, err := loadConfig(nil, args)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Configuration OK")
		fmt.Fprintf(out, "  Targets:  %s\n", strings.Join(cfg.Targets, ", "))
		fmt.Fprintf(out, "  Duration: %s\n", cfg.Duration)
		fmt.Fprintf(out, "  Interval: %s (timeout %s)\n", cfg.Interval, cfg.ProbeTimeout())
		fmt.Fprintf(out, "  Method:   %s\n", cfg.Method)
		if cfg.DatabasePath != "" {
			fmt.Fprintf(out, "  Database: %s\n", cfg.DatabasePath)
		}
		if cfg.Listen != "" {
			fmt.Fprintf(out, "  Listen:   %s\n", cfg.Listen)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&writeDefaults, "write-defaults", false, "Write the default configuration to the config path and exit")
}
