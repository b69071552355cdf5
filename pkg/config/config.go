// Package config holds the ledger's operator-facing configuration: where
// the database lives and how checkpoint periods are sized. It is loaded
// from YAML the same way Warren's "apply" command parsed cluster manifests.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Period names the fixed window checkpoints partition time into (spec §9:
// "Checkpoint period length"). The recognized options are Daily, Weekly and
// Monthly; Monthly is the default.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// Valid reports whether p is one of the recognized period options.
func (p Period) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	default:
		return false
	}
}

// End returns the period-end instant for the period containing t: the
// first instant strictly after t that starts a new period. Period
// boundaries are always computed in UTC regardless of t's location.
func (p Period) End(t time.Time) time.Time {
	u := t.UTC()
	switch p {
	case PeriodDaily:
		d := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
		return d.AddDate(0, 0, 1)
	case PeriodWeekly:
		d := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
		// Weeks end on the following Monday 00:00 UTC (ISO week boundary).
		offset := (int(time.Monday) - int(d.Weekday()) + 7) % 7
		if offset == 0 {
			offset = 7
		}
		return d.AddDate(0, 0, offset)
	case PeriodMonthly:
		fallthrough
	default:
		d := time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
		return d.AddDate(0, 1, 0)
	}
}

// Config is the ledger's full runtime configuration.
type Config struct {
	// DataDir is the directory the bbolt database file lives in.
	DataDir string `yaml:"dataDir"`
	// CheckpointPeriod sizes the checkpoint rollover window.
	CheckpointPeriod Period `yaml:"checkpointPeriod"`
	// LogLevel and LogJSON configure the ambient logger (see pkg/log).
	LogLevel string `yaml:"logLevel"`
	LogJSON  bool   `yaml:"logJSON"`
	// MetricsAddr, when non-empty, is the address for the Prometheus
	// /metrics endpoint. cmd/whctl does not read it; whctl serve takes its
	// address from the --metrics-addr flag.
	MetricsAddr string `yaml:"metricsAddr"`
}

// Default returns a Config with the documented defaults: monthly
// checkpoints, info-level JSON logging, no metrics server.
func Default() Config {
	return Config{
		DataDir:          "./data",
		CheckpointPeriod: PeriodMonthly,
		LogLevel:         "info",
		LogJSON:          true,
	}
}

// Load reads and validates a YAML configuration file, filling in defaults
// for anything left unset.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.CheckpointPeriod == "" {
		cfg.CheckpointPeriod = PeriodMonthly
	}
	if !cfg.CheckpointPeriod.Valid() {
		return cfg, fmt.Errorf("invalid checkpointPeriod: %q", cfg.CheckpointPeriod)
	}
	return cfg, nil
}
