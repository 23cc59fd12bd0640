package ledger

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/divledgerorg/libdivledger-go/config"
	"github.com/divledgerorg/libdivledger-go/store"
)

// dbFileName is the ledger database file inside the data directory.
const dbFileName = "ledger.db"

// Open validates cfg, opens the durable state store under cfg.DataDir and
// returns an engine over it. The engine logs at cfg.LogLevel to stderr;
// callers wanting a custom logger should use NewEngine directly.
func Open(cfg config.Config) (*Engine, error) {
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	st, err := store.OpenBoltStore(filepath.Join(cfg.DataDir, dbFileName))
	if err != nil {
		return nil, fmt.Errorf("ledger: open store: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))

	eng := NewEngine(st, logger)
	eng.maxBatch = cfg.MaxBatch
	return eng, nil
}

// parseLevel maps a config log level to a slog level. ValidateConfig has
// already rejected unknown strings.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
