// Package backend selects and constructs the transaction store
// implementation from configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"jarfin/internal/config"
	"jarfin/internal/store"
	"jarfin/internal/store/memory"
	"jarfin/internal/store/postgres"
	"jarfin/internal/store/sqlite"
)

// Type names a store backend.
type Type string

const (
	Memory   Type = "memory"
	SQLite   Type = "sqlite"
	Postgres Type = "postgres"
)

func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is known.
func (t Type) IsValid() bool {
	switch t {
	case Memory, SQLite, Postgres:
		return true
	default:
		return false
	}
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result carries the constructed store and its optional cleanup.
type Result struct {
	Store   store.TransactionStore
	Cleanup CleanupFunc
}

// Create builds the store named by the configuration.
func Create(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	t := Type(cfg.DataBackend)
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	switch t {
	case SQLite:
		st, err := sqlite.Open(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Store: st, Cleanup: st.Close}, nil

	case Postgres:
		st, err := postgres.Connect(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("initialize postgres store: %w", err)
		}
		logger.Info("Initialized Postgres backend")
		return &Result{Store: st, Cleanup: st.Close}, nil

	default:
		st := memory.New()
		logger.Info("Initialized memory backend")
		return &Result{Store: st, Cleanup: nil}, nil
	}
}
