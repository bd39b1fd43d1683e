package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvDataDir  = "PROPJOURNAL_DATA_DIR"
	EnvStore    = "PROPJOURNAL_STORE"
	EnvDB       = "PROPJOURNAL_DB"
	EnvLogLevel = "PROPJOURNAL_LOG_LEVEL"
)

// Config represents the complete application configuration
type Config struct {
	Store   StoreConfig   `json:"store" yaml:"store"`
	Log     LogConfig     `json:"log" yaml:"log"`
	Trading TradingConfig `json:"trading" yaml:"trading"`
}

// StoreConfig selects the record store backend
type StoreConfig struct {
	Type      string `json:"type" yaml:"type"` // "json" or "sqlite"
	Dir       string `json:"dir,omitempty" yaml:"dir,omitempty"`
	DBPath    string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	BackupDir string `json:"backup_dir,omitempty" yaml:"backup_dir,omitempty"`
}

// LogConfig contains logging parameters
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // "text" or "json"
}

// TradingConfig holds defaults applied when logging trades
type TradingConfig struct {
	DefaultCommission float64 `json:"default_commission" yaml:"default_commission"`
	DefaultSymbol     string  `json:"default_symbol,omitempty" yaml:"default_symbol,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML or JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Load reads path when it exists, otherwise starts from Default. Environment
// overrides are applied and the result validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if cfg, err = LoadFromFile(path); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config file: %w", err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv loads ./.env when present and applies the PROPJOURNAL_*
// overrides. Variables already set in the process environment win over .env.
func (c *Config) ApplyEnv() error {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	if v := os.Getenv(EnvDataDir); v != "" {
		c.Store.Dir = v
		c.Store.BackupDir = filepath.Join(v, "backups")
	}
	if v := os.Getenv(EnvStore); v != "" {
		c.Store.Type = strings.ToLower(v)
	}
	if v := os.Getenv(EnvDB); v != "" {
		c.Store.DBPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	return nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Store.Type {
	case "json":
		if c.Store.Dir == "" {
			return fmt.Errorf("store.dir required for json type")
		}
	case "sqlite":
		if c.Store.DBPath == "" {
			return fmt.Errorf("store.db_path required for sqlite type")
		}
	default:
		return fmt.Errorf("store.type must be 'json' or 'sqlite'")
	}
	if c.Log.Level != "" {
		if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	if c.Log.Format != "" && c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be 'text' or 'json'")
	}
	if math.IsNaN(c.Trading.DefaultCommission) || math.IsInf(c.Trading.DefaultCommission, 0) {
		return fmt.Errorf("trading.default_commission must be finite")
	}
	return nil
}

// BackupDir returns the configured backup directory, defaulting to
// <store dir>/backups.
func (c *Config) BackupDir() string {
	if c.Store.BackupDir != "" {
		return c.Store.BackupDir
	}
	dir := c.Store.Dir
	if dir == "" {
		dir = filepath.Dir(c.Store.DBPath)
	}
	return filepath.Join(dir, "backups")
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Type:      "json",
			Dir:       "./data",
			DBPath:    "./data/propjournal.db",
			BackupDir: "./data/backups",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Trading: TradingConfig{
			DefaultCommission: 0,
			DefaultSymbol:     "MES",
		},
	}
}
