// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverJSON   = "json"
	DriverMemory = "memory"
)

// ID formats.
const (
	IDFormatUUID  = "uuid"
	IDFormatShort = "short"
)

// Export formats.
const (
	ExportJSON = "json"
	ExportXLSX = "xlsx"
)

// Themes understood by the styles package.
var Themes = []string{"tokyo-night", "gruvbox", "plain"}

// Config holds the application configuration.
type Config struct {
	Storage    StorageConfig `yaml:"storage"`
	IDs        IDConfig      `yaml:"ids"`
	Export     ExportConfig  `yaml:"export"`
	Metrics    MetricsConfig `yaml:"metrics"`
	TUI        TUIConfig     `yaml:"tui"`
	Vocabulary Vocabulary    `yaml:"vocabulary"`
	DataDir    string        `yaml:"-"` // set by caller, not from config file
}

// StorageConfig selects and tunes the durable key-value backend.
type StorageConfig struct {
	Driver        string `yaml:"driver"`
	MaxOpenConns  int    `yaml:"max_open_conns"`
	BusyTimeoutMS int    `yaml:"busy_timeout_ms"`
}

// BusyTimeout returns the SQLite busy timeout as a duration.
func (s StorageConfig) BusyTimeout() time.Duration {
	return time.Duration(s.BusyTimeoutMS) * time.Millisecond
}

// IDConfig controls record id generation.
type IDConfig struct {
	Format string `yaml:"format"`
	Length int    `yaml:"length"` // short ids only
}

// ExportConfig holds export defaults; both can be overridden per command.
type ExportConfig struct {
	Format string   `yaml:"format"`
	Dest   string   `yaml:"dest"` // directory or s3://bucket/prefix
	S3     S3Config `yaml:"s3"`
}

// S3Config configures the S3 export sink. Empty credentials fall back to the
// default AWS credential chain.
type S3Config struct {
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// MetricsConfig controls the Prometheus textfile written after mutations.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"` // empty disables
}

// TUIConfig holds terminal UI preferences.
type TUIConfig struct {
	Theme       string `yaml:"theme"`
	RecentCount int    `yaml:"recent_count"`
	Watch       bool   `yaml:"watch"` // reload when another process changes the store
}

// Option is one entry of a closed vocabulary.
type Option struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// Vocabulary holds the choices offered by forms. The ledger itself accepts
// any string; these only drive presentation.
type Vocabulary struct {
	Types      []Option `yaml:"types"`
	Priorities []Option `yaml:"priorities"`
	Statuses   []Option `yaml:"statuses"`
}

// TypeLabel returns the display label for a violation type.
func (v Vocabulary) TypeLabel(value string) string { return labelFor(v.Types, value) }

// PriorityLabel returns the display label for a priority.
func (v Vocabulary) PriorityLabel(value string) string { return labelFor(v.Priorities, value) }

// StatusLabel returns the display label for a status.
func (v Vocabulary) StatusLabel(value string) string { return labelFor(v.Statuses, value) }

func labelFor(opts []Option, value string) string {
	i := slices.IndexFunc(opts, func(o Option) bool { return o.Value == value })
	if i < 0 || opts[i].Label == "" {
		return value
	}
	return opts[i].Label
}

// DefaultVocabulary returns the built-in choices.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Types: []Option{
			{Value: "safety", Label: "Нарушение безопасности"},
			{Value: "discipline", Label: "Дисциплинарное нарушение"},
			{Value: "procedure", Label: "Нарушение процедур"},
			{Value: "quality", Label: "Нарушение качества"},
		},
		Priorities: []Option{
			{Value: "critical", Label: "Критический"},
			{Value: "high", Label: "Высокий"},
			{Value: "medium", Label: "Средний"},
			{Value: "low", Label: "Низкий"},
		},
		Statuses: []Option{
			{Value: "open", Label: "Открыто"},
			{Value: "in-progress", Label: "В работе"},
			{Value: "resolved", Label: "Решено"},
		},
	}
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Driver:        DriverSQLite,
			MaxOpenConns:  4,
			BusyTimeoutMS: 5000,
		},
		IDs: IDConfig{
			Format: IDFormatUUID,
			Length: 10,
		},
		Export: ExportConfig{
			Format: ExportJSON,
			Dest:   ".",
			S3:     S3Config{Region: "us-east-1"},
		},
		TUI: TUIConfig{
			Theme:       "tokyo-night",
			RecentCount: 5,
			Watch:       true,
		},
		Vocabulary: DefaultVocabulary(),
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.DataDir = dataDir
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Storage.Driver == "" {
		c.Storage.Driver = defaults.Storage.Driver
	}
	if c.Storage.MaxOpenConns == 0 {
		c.Storage.MaxOpenConns = defaults.Storage.MaxOpenConns
	}
	if c.Storage.BusyTimeoutMS == 0 {
		c.Storage.BusyTimeoutMS = defaults.Storage.BusyTimeoutMS
	}
	if c.IDs.Format == "" {
		c.IDs.Format = defaults.IDs.Format
	}
	if c.IDs.Length == 0 {
		c.IDs.Length = defaults.IDs.Length
	}
	if c.Export.Format == "" {
		c.Export.Format = defaults.Export.Format
	}
	if c.Export.Dest == "" {
		c.Export.Dest = defaults.Export.Dest
	}
	if c.Export.S3.Region == "" {
		c.Export.S3.Region = defaults.Export.S3.Region
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
	if c.TUI.RecentCount == 0 {
		c.TUI.RecentCount = defaults.TUI.RecentCount
	}
	if len(c.Vocabulary.Types) == 0 {
		c.Vocabulary.Types = defaults.Vocabulary.Types
	}
	if len(c.Vocabulary.Priorities) == 0 {
		c.Vocabulary.Priorities = defaults.Vocabulary.Priorities
	}
	if len(c.Vocabulary.Statuses) == 0 {
		c.Vocabulary.Statuses = defaults.Vocabulary.Statuses
	}
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	switch c.Storage.Driver {
	case DriverSQLite, DriverJSON, DriverMemory:
	default:
		return fmt.Errorf("storage.driver must be one of sqlite, json, memory; got %q", c.Storage.Driver)
	}

	if c.Storage.MaxOpenConns < 1 {
		return fmt.Errorf("storage.max_open_conns must be at least 1")
	}
	if c.Storage.BusyTimeoutMS < 0 {
		return fmt.Errorf("storage.busy_timeout_ms cannot be negative")
	}

	switch c.IDs.Format {
	case IDFormatUUID:
	case IDFormatShort:
		if c.IDs.Length < 4 || c.IDs.Length > 64 {
			return fmt.Errorf("ids.length must be between 4 and 64")
		}
	default:
		return fmt.Errorf("ids.format must be uuid or short; got %q", c.IDs.Format)
	}

	switch c.Export.Format {
	case ExportJSON, ExportXLSX:
	default:
		return fmt.Errorf("export.format must be json or xlsx; got %q", c.Export.Format)
	}

	if c.TUI.RecentCount < 0 {
		return fmt.Errorf("tui.recent_count cannot be negative")
	}

	if c.Metrics.Textfile != "" && !strings.HasSuffix(c.Metrics.Textfile, ".prom") {
		return fmt.Errorf("metrics.textfile must end in .prom; got %q", c.Metrics.Textfile)
	}

	return nil
}

// DatabaseFile returns the path of the SQLite database.
func (c *Config) DatabaseFile() string {
	return filepath.Join(c.DataDir, "violations.db")
}

// JSONFile returns the path of the JSON document store.
func (c *Config) JSONFile() string {
	return filepath.Join(c.DataDir, "violations.json")
}

// LogFile returns the default log file path.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "violations.log")
}
