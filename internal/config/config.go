package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/Tiliavir/tsh/internal/logging"
	"github.com/Tiliavir/tsh/internal/model"
	"github.com/Tiliavir/tsh/internal/storage"
	"github.com/Tiliavir/tsh/internal/timecalc"
)

// Config is the root configuration for tsh, stored in <home>/config.toml.
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Week    WeekConfig    `toml:"week"`
	Hours   HoursConfig   `toml:"hours"`
	Log     LogConfig     `toml:"log"`

	// Path is the file the config was read from.
	Path string `toml:"-"`
	// Undecoded lists keys present in the file that tsh does not know.
	Undecoded []string `toml:"-"`
}

// StorageConfig selects where jobs and weeks are persisted.
type StorageConfig struct {
	// Backend is "xlsx" (a spreadsheet workbook) or "sqlite".
	Backend string `toml:"backend"`
	// Path of the workbook or database. Empty = <home>/timesheet.xlsx or .db.
	Path string `toml:"path"`
	// JobsSheet and WeeksSheet name the two tables inside the backend.
	JobsSheet  string `toml:"jobs_sheet"`
	WeeksSheet string `toml:"weeks_sheet"`
	// ResetOnSchemaMismatch clears a weeks table with an unexpected header
	// instead of refusing to start. Data in that table is lost.
	ResetOnSchemaMismatch bool `toml:"reset_on_schema_mismatch"`
}

// WeekConfig holds the default week convention.
type WeekConfig struct {
	Convention string `toml:"convention"`
}

// HoursConfig controls how unparseable time entries are shown.
type HoursConfig struct {
	InvalidEntry string `toml:"invalid_entry"`
}

// LogConfig sets the diagnostic log level.
type LogConfig struct {
	Level string `toml:"level"`
}

const (
	DefaultBackend      = "xlsx"
	DefaultJobsSheet    = "Sheet1"
	DefaultWeeksSheet   = "semanas"
	DefaultConvention   = "monday"
	DefaultInvalidEntry = "zero"
	DefaultLogLevel     = "info"
)

// defaultConfig returns a Config pre-filled with sensible defaults.
func defaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Backend:    DefaultBackend,
			JobsSheet:  DefaultJobsSheet,
			WeeksSheet: DefaultWeeksSheet,
		},
		Week:  WeekConfig{Convention: DefaultConvention},
		Hours: HoursConfig{InvalidEntry: DefaultInvalidEntry},
		Log:   LogConfig{Level: DefaultLogLevel},
	}
}

// configTemplate is the annotated config written on first run.
const configTemplate = `# tsh configuration
#
# All settings are optional; the defaults below work out of the box.
# Environment variables (or a .env file in the working directory) override
# this file: TSH_BACKEND, TSH_STORAGE_PATH, TSH_CONVENTION, TSH_LOG_LEVEL.

[storage]
# "xlsx"   - a spreadsheet workbook, jobs and weeks on two sheets (default)
# "sqlite" - a SQLite database
backend = "xlsx"

# Workbook or database file. Empty = timesheet.xlsx / timesheet.db next to
# this file.
path = ""

# Sheet (table) names for the job list and the weekly rows.
jobs_sheet = "Sheet1"
weeks_sheet = "semanas"

# When the weeks sheet header does not match the expected columns tsh
# refuses to start. Set to true to clear the sheet and rewrite the header
# instead. ALL rows on that sheet are lost.
reset_on_schema_mismatch = false

[week]
# First day of the week: "monday" (Monday to Sunday) or "saturday"
# (Saturday to Friday). Can be overridden per command with --convention.
convention = "monday"

[hours]
# How a time that cannot be read (e.g. "9 o'clock") is shown:
# "zero" - show 0.00 hours (default)
# "flag" - show "invalid" so typos stand out
# Either way the row is stored with 0 hours.
invalid_entry = "zero"

[log]
# debug, info, warn or error
level = "info"
`

// FilePath returns the config location inside base.
func FilePath(base string) string {
	return filepath.Join(base, "config.toml")
}

// LoadEnv reads a .env file from the working directory if one exists.
func LoadEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading .env: %w", err)
	}
	return nil
}

// Load reads <base>/config.toml, creating it with annotated defaults on
// first run, then applies environment overrides. The returned bool is true
// when the file was created.
func Load(base string) (Config, bool, error) {
	path := FilePath(base)
	cfg := defaultConfig()
	cfg.Path = path

	created := false
	md, err := toml.DecodeFile(path, &cfg)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			return cfg, false, writeErr
		}
		created = true
	case err != nil:
		return defaultConfig(), false, fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	default:
		for _, k := range md.Undecoded() {
			cfg.Undecoded = append(cfg.Undecoded, k.String())
		}
	}

	applyEnv(&cfg)
	fillDefaults(&cfg)
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = storage.DefaultPath(base, cfg.Storage.Backend)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, created, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, created, nil
}

func applyEnv(cfg *Config) {
	overrides := []struct {
		key string
		dst *string
	}{
		{"TSH_BACKEND", &cfg.Storage.Backend},
		{"TSH_STORAGE_PATH", &cfg.Storage.Path},
		{"TSH_CONVENTION", &cfg.Week.Convention},
		{"TSH_LOG_LEVEL", &cfg.Log.Level},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.key); ok && strings.TrimSpace(v) != "" {
			*o.dst = strings.TrimSpace(v)
		}
	}
}

// fillDefaults replaces zero-value fields with built-in defaults so callers
// always get a usable Config even from a partial file.
func fillDefaults(cfg *Config) {
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = DefaultBackend
	}
	cfg.Storage.Backend = strings.ToLower(cfg.Storage.Backend)
	if cfg.Storage.JobsSheet == "" {
		cfg.Storage.JobsSheet = DefaultJobsSheet
	}
	if cfg.Storage.WeeksSheet == "" {
		cfg.Storage.WeeksSheet = DefaultWeeksSheet
	}
	if cfg.Week.Convention == "" {
		cfg.Week.Convention = DefaultConvention
	}
	if cfg.Hours.InvalidEntry == "" {
		cfg.Hours.InvalidEntry = DefaultInvalidEntry
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
}

// Validate checks every enumerated setting.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case storage.BackendXLSX, storage.BackendSQLite:
	default:
		return fmt.Errorf("storage.backend %q: want xlsx or sqlite", c.Storage.Backend)
	}
	if c.Storage.JobsSheet == c.Storage.WeeksSheet {
		return fmt.Errorf("storage.jobs_sheet and storage.weeks_sheet must differ (both %q)", c.Storage.JobsSheet)
	}
	if _, err := model.ParseConvention(c.Week.Convention); err != nil {
		return fmt.Errorf("week.convention: %w", err)
	}
	if _, err := timecalc.ParsePolicy(c.Hours.InvalidEntry); err != nil {
		return fmt.Errorf("hours.invalid_entry: %w", err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Convention returns the configured default convention.
func (c Config) Convention() model.Convention {
	conv, _ := model.ParseConvention(c.Week.Convention)
	return conv
}

// Policy returns the configured invalid-entry policy.
func (c Config) Policy() timecalc.Policy {
	p, _ := timecalc.ParsePolicy(c.Hours.InvalidEntry)
	return p
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
