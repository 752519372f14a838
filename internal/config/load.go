package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "LATMON_"

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads a YAML config file on top of Default(). A missing file is not an
// error: the defaults are returned. ${VAR} references are expanded first.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := envRef.ReplaceAllStringFunc(string(data), func(match string) string {
		name := strings.Trim(match, "${}")
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return match
	})

	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Write stores cfg as YAML, used to regenerate a default config file
func Write(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// LoadDotEnv loads a .env file into the process environment if one exists.
// Variables already set in the environment are left alone.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg with LATMON_* environment variables
func ApplyEnv(cfg *Config) error {
	if v, ok := lookup("TARGETS"); ok {
		SetTargets(cfg, []string{v})
	}
	for name, dst := range map[string]*time.Duration{
		"DURATION": &cfg.Duration,
		"INTERVAL": &cfg.Interval,
		"TIMEOUT":  &cfg.Timeout,
	} {
		if v, ok := lookup(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return &ConfigurationError{Field: strings.ToLower(name), Reason: fmt.Sprintf("has invalid duration %q", v)}
			}
			*dst = d
		}
	}
	if v, ok := lookup("PRIVILEGED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &ConfigurationError{Field: "privileged", Reason: fmt.Sprintf("has invalid boolean %q", v)}
		}
		cfg.Privileged = b
	}
	for name, dst := range map[string]*string{
		"METHOD":      &cfg.Method,
		"DATABASE":    &cfg.DatabasePath,
		"LISTEN":      &cfg.Listen,
		"RESULTS_DIR": &cfg.ResultsDir,
		"PLOTS_DIR":   &cfg.PlotsDir,
		"LOG_DIR":     &cfg.LogDir,
		"LOG_LEVEL":   &cfg.LogLevel,
		"LOG_FORMAT":  &cfg.LogFormat,
	} {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}
	return nil
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}
