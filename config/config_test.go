package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()
	require.NoError(t, Default().Validate())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"sqlite with path", func(c *Config) { c.Store.Type = "sqlite" }, true},
		{"sqlite without path", func(c *Config) { c.Store.Type = "sqlite"; c.Store.DBPath = "" }, false},
		{"json without dir", func(c *Config) { c.Store.Dir = "" }, false},
		{"unknown store", func(c *Config) { c.Store.Type = "csv" }, false},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, false},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, false},
		{"empty level", func(c *Config) { c.Log.Level = "" }, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"config.yaml", "config.yml", "config.json"} {
		name := name
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), name)

			cfg := Default()
			cfg.Store.Type = "sqlite"
			cfg.Trading.DefaultCommission = 4.5
			require.NoError(t, cfg.SaveToFile(path))

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadFromFilePartial(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Store.Type)
	assert.Equal(t, "./data", cfg.Store.Dir)
}

func TestLoadFromFileErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := LoadFromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("store:\n  type: csv\n"), 0644))
	_, err = LoadFromFile(bad)
	assert.ErrorContains(t, err, "invalid config")
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvDataDir, dir)
	t.Setenv(EnvStore, "SQLITE")
	t.Setenv(EnvDB, filepath.Join(dir, "pj.db"))
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load(filepath.Join(dir, "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Store.Dir)
	assert.Equal(t, "sqlite", cfg.Store.Type)
	assert.Equal(t, filepath.Join(dir, "pj.db"), cfg.Store.DBPath)
	assert.Equal(t, filepath.Join(dir, "backups"), cfg.BackupDir())
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestBackupDirFallback(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Store.BackupDir = ""
	assert.Equal(t, filepath.Join("data", "backups"), cfg.BackupDir())

	cfg.Store.Dir = ""
	cfg.Store.DBPath = "/var/pj/pj.db"
	assert.Equal(t, "/var/pj/backups", cfg.BackupDir())
}
