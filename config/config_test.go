package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultDataset, cfg.Dataset)
	assert.Equal(t, "sqlite", cfg.Store.Dialect)
	assert.Equal(t, DefaultChunkSize, cfg.Source.ChunkSize)
}

func TestSource_URL(t *testing.T) {
	s := Default().Source
	assert.Equal(t, "https://www2.census.gov/programs-surveys/cps/datasets/2020/march/asecpub20csv.zip", s.URL(2020))
	assert.Equal(t, "https://www2.census.gov/programs-surveys/cps/datasets/2005/march/asecpub05csv.zip", s.URL(2005))
}

func TestLoad(t *testing.T) {
	const body = `
dataset: cps_test
source:
  url_template: "http://localhost/{yy}.zip"
  timeout: 5s
  missing: ["", "-1"]
store:
  dialect: postgres
  dsn: "postgres://u:p@localhost:5432/db"
checks:
  spm_uniformity: true
log:
  level: debug
`
	path := filepath.Join(t.TempDir(), "asec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "cps_test", cfg.Dataset)
	assert.Equal(t, 5*time.Second, cfg.Source.Timeout)
	assert.Equal(t, []string{"", "-1"}, cfg.Source.Missing)
	assert.Equal(t, "http://localhost/21.zip", cfg.Source.URL(2021))
	// untouched fields keep their defaults
	assert.Equal(t, DefaultChunkSize, cfg.Source.ChunkSize)
	assert.Equal(t, "postgres", cfg.Store.Dialect)
	assert.True(t, cfg.Checks.SPMUniformity)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: [1, 2"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		modify func(c *Config)
	}{
		{"no dataset", func(c *Config) { c.Dataset = "" }},
		{"no placeholders", func(c *Config) { c.Source.URLTemplate = "http://x/a.zip" }},
		{"zero chunk", func(c *Config) { c.Source.ChunkSize = 0 }},
		{"negative assumed size", func(c *Config) { c.Source.AssumedSize = -1 }},
		{"unknown dialect", func(c *Config) { c.Store.Dialect = "oracle" }},
		{"postgres without dsn", func(c *Config) { c.Store.Dialect = "postgres" }},
		{"sqlite without dir", func(c *Config) { c.Store.Dir = "" }},
		{"clickhouse without addr", func(c *Config) {
			c.Store.Dialect = "clickhouse"
			c.Store.ClickHouse.Addr = nil
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(Log{Level: "warn"}, false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))
	assert.True(t, logger.Core().Enabled(1))

	logger, err = NewLogger(Log{Level: "warn", Development: true}, true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))

	_, err = NewLogger(Log{Level: "loud"}, false)
	assert.Error(t, err)
}
