// Package config holds the ledger engine configuration: where the state
// database lives, how verbose logging is, and how large a push-path batch
// may be. Values come from defaults, an optional key=value config file,
// and environment overrides, in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
)

// MaxBatchCap is the hard upper bound on the push-path batch size. The
// configured MaxBatch may lower it but never exceed it.
const MaxBatchCap = 20

// Config holds the engine configuration.
type Config struct {
	// DataDir is the directory holding the ledger database.
	DataDir string `env:"DIVLEDGER_DATA_DIR"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `env:"DIVLEDGER_LOG_LEVEL"`

	// MaxBatch caps the account list of one batch distribution.
	MaxBatch int `env:"DIVLEDGER_MAX_BATCH"`
}

// DefaultConfig returns the default configuration. The data directory is
// ~/.divledger, falling back to a relative .divledger if the home
// directory cannot be resolved.
func DefaultConfig() Config {
	dataDir := ".divledger"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".divledger")
	}
	return Config{
		DataDir:  dataDir,
		LogLevel: "info",
		MaxBatch: MaxBatchCap,
	}
}

// FromEnv returns the default configuration with any DIVLEDGER_*
// environment variables applied on top.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads a key=value configuration file. Blank lines and lines
// starting with '#' are ignored. Keys not set in the file keep their
// default values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{}, ErrConfigNotFound
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := DefaultConfig()
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return Config{}, fmt.Errorf("%w: line %d", ErrInvalidConfigLine, i+1)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "datadir":
			cfg.DataDir = value
		case "loglevel":
			cfg.LogLevel = value
		case "maxbatch":
			n, err := strconv.Atoi(value)
			if err != nil {
				return Config{}, fmt.Errorf("%w: line %d: maxbatch %q", ErrInvalidConfigLine, i+1, value)
			}
			cfg.MaxBatch = n
		default:
			// Unknown keys are ignored for forward compatibility.
		}
	}
	return cfg, nil
}

// SaveConfig writes the configuration as a key=value file, creating parent
// directories as needed.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "datadir = %s\n", cfg.DataDir)
	fmt.Fprintf(&b, "loglevel = %s\n", cfg.LogLevel)
	fmt.Fprintf(&b, "maxbatch = %d\n", cfg.MaxBatch)

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
