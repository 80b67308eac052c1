package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp runs the test from an empty directory so no stray .env is picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
	assert.Equal(t, 0.2, cfg.Split.TestSize)
	assert.Equal(t, int64(42), cfg.Split.Seed)
	assert.Equal(t, 10, cfg.Data.MinObservations)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data:
  dir: /srv/steam
  sample_size: 25
split:
  seed: 7
storage:
  postgres_dsn: postgres://localhost/steam
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/steam", cfg.Data.Dir)
	assert.Equal(t, 25, cfg.Data.SampleSize)
	assert.Equal(t, int64(7), cfg.Split.Seed)
	assert.Equal(t, "postgres://localhost/steam", cfg.Storage.PostgresDSN)
	// Untouched keys keep their defaults
	assert.Equal(t, 0.1, cfg.Split.ValSize)
	assert.Equal(t, 4, cfg.Data.Workers)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("split:\n  seed: 7\n"), 0o644))
	t.Setenv("SPL_SPLIT_SEED", "99")
	t.Setenv("SPL_DATA_SAMPLE_SIZE", "0")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(99), cfg.Split.Seed)
	assert.Equal(t, 0, cfg.Data.SampleSize)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SPL_LOGGING_LEVEL=debug\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("SPL_LOGGING_LEVEL") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	chdirTemp(t)
	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"test size zero", func(c *Config) { c.Split.TestSize = 0 }},
		{"test size one", func(c *Config) { c.Split.TestSize = 1 }},
		{"negative val size", func(c *Config) { c.Split.ValSize = -0.1 }},
		{"fractions sum to one", func(c *Config) { c.Split.TestSize = 0.6; c.Split.ValSize = 0.4 }},
		{"min observations zero", func(c *Config) { c.Data.MinObservations = 0 }},
		{"negative sample size", func(c *Config) { c.Data.SampleSize = -1 }},
		{"no workers", func(c *Config) { c.Data.Workers = 0 }},
		{"bad log mode", func(c *Config) { c.Logging.Mode = "verbose" }},
		{"metrics without addr", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Addr = "" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	cfg := Default()
	assert.NoError(t, cfg.Validate())
}
