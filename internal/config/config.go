// Package config loads nodestore settings from defaults, an optional YAML
// file and the environment, in that order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/nodestore/internal/idgen"
	"github.com/alexanderramin/nodestore/internal/repository"
)

// Environment variables.
const (
	EnvConfigFile  = "NODESTORE_CONFIG"
	EnvDB          = "NODESTORE_DB"
	EnvMaxPageSize = "NODESTORE_MAX_PAGE_SIZE"
	EnvWorkerID    = "NODESTORE_WORKER_ID"
	EnvOperator    = "NODESTORE_OPERATOR"
	EnvLogLevel    = "NODESTORE_LOG_LEVEL"
	EnvLogFormat   = "NODESTORE_LOG_FORMAT"
	EnvLogUseCases = "NODESTORE_LOG_USE_CASES"
)

// Config holds all runtime settings.
type Config struct {
	DBPath      string `yaml:"db_path"`
	MaxPageSize int    `yaml:"max_page_size"`
	WorkerID    int64  `yaml:"worker_id"`
	Operator    string `yaml:"operator"`
	LogLevel    string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat   string `yaml:"log_format"` // text or json
	LogUseCases bool   `yaml:"log_use_cases"`
}

// Default returns a Config with sensible defaults. The database lives in
// ~/.nodestore unless the home directory cannot be found.
func Default() Config {
	dbPath := filepath.Join(".nodestore", "nodestore.db")
	if home, err := os.UserHomeDir(); err == nil {
		dbPath = filepath.Join(home, ".nodestore", "nodestore.db")
	}
	return Config{
		DBPath:      dbPath,
		MaxPageSize: repository.DefaultMaxPageSize,
		WorkerID:    0,
		Operator:    CoalesceOperator(os.Getenv("USER")),
		LogLevel:    "warn",
		LogFormat:   "text",
	}
}

// CoalesceOperator falls back to "system" for a blank operator name.
func CoalesceOperator(name string) string {
	if strings.TrimSpace(name) == "" {
		return "system"
	}
	return name
}

// Load builds the effective configuration: defaults, then the YAML file
// named by NODESTORE_CONFIG (if any), then environment overrides.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}
	ApplyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML file at path onto cfg. Keys absent from the file
// leave cfg untouched; unknown keys are rejected.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config format: %s", ext)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing YAML %s: %w", path, err)
	}
	return nil
}

// ApplyEnv reads overrides from environment variables. Unparseable values
// are ignored and the previous setting is kept.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv(EnvDB); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(EnvMaxPageSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxPageSize = n
		}
	}
	if v := os.Getenv(EnvWorkerID); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			cfg.WorkerID = n
		}
	}
	if v := os.Getenv(EnvOperator); strings.TrimSpace(v) != "" {
		cfg.Operator = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		if _, err := ParseLevel(v); err == nil {
			cfg.LogLevel = v
		}
	}
	if v := os.Getenv(EnvLogFormat); v == "text" || v == "json" {
		cfg.LogFormat = v
	}
	if v := os.Getenv(EnvLogUseCases); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.LogUseCases = b
		}
	}
}

// Validate rejects settings the store cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if c.MaxPageSize < 1 || c.MaxPageSize > repository.MaxPageSizeLimit {
		return fmt.Errorf("max_page_size must be between 1 and %d, got %d", repository.MaxPageSizeLimit, c.MaxPageSize)
	}
	if c.WorkerID < 0 || c.WorkerID > idgen.MaxWorkerID {
		return fmt.Errorf("worker_id must be between 0 and %d, got %d", idgen.MaxWorkerID, c.WorkerID)
	}
	if strings.TrimSpace(c.Operator) == "" {
		return fmt.Errorf("operator must not be empty")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	return nil
}
