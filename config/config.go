package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/invertedv/asec/fetch"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDataset     = "raw_cps"
	DefaultURLTemplate = "https://www2.census.gov/programs-surveys/cps/datasets/{year}/march/asecpub{yy}csv.zip"
	DefaultChunkSize   = fetch.DefaultChunkSize
	DefaultAssumedSize = fetch.DefaultAssumedSize
	DefaultTimeout     = 30 * time.Minute
)

// Config holds everything needed to build the tables for one year.
type Config struct {
	Dataset string `yaml:"dataset"`

	Source Source `yaml:"source"`
	Store  Store  `yaml:"store"`
	Checks Checks `yaml:"checks"`
	Log    Log    `yaml:"log"`
}

// Source describes where the archive comes from.
type Source struct {
	// URLTemplate has {year} replaced by the four-digit year and {yy} by its last two digits
	URLTemplate string        `yaml:"url_template"`
	Timeout     time.Duration `yaml:"timeout"`
	// ChunkSize is the read size, in bytes, of the download loop
	ChunkSize int `yaml:"chunk_size"`
	// AssumedSize is the total reported for progress when the server sends no Content-Length
	AssumedSize int64 `yaml:"assumed_size"`
	// Missing lists the CSV tokens read as missing values; empty keeps the built-in list
	Missing []string `yaml:"missing"`
}

// Store describes where the tables go.
type Store struct {
	Dialect string `yaml:"dialect"` // sqlite, postgres, clickhouse, mysql
	// Dir holds the sqlite files, one per dataset and year
	Dir string `yaml:"dir"`
	// DSN is the connection string for postgres and mysql, and optionally clickhouse
	DSN        string     `yaml:"dsn"`
	ClickHouse ClickHouse `yaml:"clickhouse"`
}

type ClickHouse struct {
	Addr     []string `yaml:"addr"`
	Database string   `yaml:"database"`
	User     string   `yaml:"user"`
	Password string   `yaml:"password"`
}

type Checks struct {
	// SPMUniformity warns when SPM unit fields differ within a unit
	SPMUniformity bool `yaml:"spm_uniformity"`
}

type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

func Default() *Config {
	return &Config{
		Dataset: DefaultDataset,
		Source: Source{
			URLTemplate: DefaultURLTemplate,
			Timeout:     DefaultTimeout,
			ChunkSize:   DefaultChunkSize,
			AssumedSize: DefaultAssumedSize,
		},
		Store: Store{
			Dialect: "sqlite",
			Dir:     "data",
			ClickHouse: ClickHouse{
				Addr:     []string{"127.0.0.1:9000"},
				Database: "default",
				User:     "default",
			},
		},
		Log: Log{Level: "info"},
	}
}

// Load reads a YAML file over the defaults.  An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Dataset == "" {
		return fmt.Errorf("dataset name is empty")
	}

	if !strings.Contains(c.Source.URLTemplate, "{yy}") && !strings.Contains(c.Source.URLTemplate, "{year}") {
		return fmt.Errorf("url_template %q has neither {year} nor {yy}", c.Source.URLTemplate)
	}

	if c.Source.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.Source.ChunkSize)
	}

	if c.Source.AssumedSize <= 0 {
		return fmt.Errorf("assumed_size must be positive, got %d", c.Source.AssumedSize)
	}

	switch strings.ToLower(c.Store.Dialect) {
	case "sqlite":
		if c.Store.Dir == "" {
			return fmt.Errorf("store dir is empty")
		}
	case "postgres", "mysql":
		if c.Store.DSN == "" {
			return fmt.Errorf("store dsn is required for %s", c.Store.Dialect)
		}
	case "clickhouse":
		if c.Store.DSN == "" && len(c.Store.ClickHouse.Addr) == 0 {
			return fmt.Errorf("clickhouse needs a dsn or an addr")
		}
	default:
		return fmt.Errorf("unknown store dialect %q", c.Store.Dialect)
	}

	return nil
}

// URL fills the template for year
func (s Source) URL(year int) string {
	yy := fmt.Sprintf("%02d", year%100)
	url := strings.ReplaceAll(s.URLTemplate, "{year}", fmt.Sprintf("%d", year))

	return strings.ReplaceAll(url, "{yy}", yy)
}
