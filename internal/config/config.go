package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the default configuration file name.
const FileName = "receivables.yaml"

// Source types.
const (
	SourceDir      = "dir"
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
)

// Config represents the top-level receivables.yaml configuration.
type Config struct {
	Business BusinessConfig `yaml:"business"`
	Source   SourceConfig   `yaml:"source"`
	Report   ReportConfig   `yaml:"report"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// BusinessConfig identifies the business the reports are for.
type BusinessConfig struct {
	Name string `yaml:"name"`
}

// SourceConfig selects where the raw collections are fetched from.
type SourceConfig struct {
	Type        string        `yaml:"type"`
	Dir         string        `yaml:"dir,omitempty"`
	BaseURL     string        `yaml:"base_url,omitempty"`
	Token       string        `yaml:"token,omitempty"`
	DatabaseURL string        `yaml:"database_url,omitempty"`
	Table       string        `yaml:"table,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	Concurrency int           `yaml:"concurrency,omitempty"`
}

// ReportConfig controls report windows and presentation.
type ReportConfig struct {
	MonthsBack     int    `yaml:"months_back"`
	Timezone       string `yaml:"timezone"`
	CurrencySymbol string `yaml:"currency_symbol,omitempty"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output,omitempty"`
}

// Load reads a receivables.yaml file from disk, fills unset fields with
// defaults, and applies environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(businessName string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name: businessName,
		},
		Source: SourceConfig{
			Type:        SourceDir,
			Dir:         "data",
			Table:       "documents",
			Timeout:     15 * time.Second,
			Concurrency: 4,
		},
		Report: ReportConfig{
			MonthsBack: 6,
			Timezone:   "UTC",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadDotEnv loads variables from the given .env files, or ./.env when
// none are given. Missing files are ignored; variables already set in the
// environment are not overwritten.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv() {
	setString(&c.Source.Type, "RECEIVABLES_SOURCE")
	setString(&c.Source.Dir, "RECEIVABLES_DATA_DIR")
	setString(&c.Source.BaseURL, "RECEIVABLES_BASE_URL")
	setString(&c.Source.Token, "RECEIVABLES_TOKEN")
	setString(&c.Source.DatabaseURL, "DATABASE_URL")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")
}

// Validate checks the fields required by the selected source.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Source.Type) {
	case SourceDir:
		if c.Source.Dir == "" {
			return fmt.Errorf("source.dir is required for source type %q", SourceDir)
		}
	case SourceHTTP:
		if c.Source.BaseURL == "" {
			return fmt.Errorf("source.base_url is required for source type %q", SourceHTTP)
		}
	case SourcePostgres:
		if c.Source.DatabaseURL == "" {
			return fmt.Errorf("source.database_url (or DATABASE_URL) is required for source type %q", SourcePostgres)
		}
	default:
		return fmt.Errorf("unknown source type %q", c.Source.Type)
	}
	if c.Report.MonthsBack < 0 {
		return fmt.Errorf("report.months_back must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location returns the report timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Report.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Report.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Report.Timezone, err)
	}
	return loc, nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}
