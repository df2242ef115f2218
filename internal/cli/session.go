package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/checklist/internal/config"
	"github.com/idilsaglam/checklist/internal/store"
	"github.com/idilsaglam/checklist/internal/store/jsonstore"
	"github.com/idilsaglam/checklist/internal/store/sqlitestore"
)

// openStore opens the configured backend and loads it into a Store.
// The caller owns the result and must Close it.
func openStore(ctx context.Context, cfg config.Config, logger *log.Logger) (*store.Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	var (
		backend store.Backend
		err     error
	)
	switch cfg.Backend {
	case config.BackendJSON:
		backend, err = jsonstore.Open(filepath.Join(cfg.DataDir, jsonstore.FileName))
	default:
		backend, err = sqlitestore.Open(ctx, filepath.Join(cfg.DataDir, sqlitestore.FileName))
	}
	if err != nil {
		return nil, err
	}

	s, err := store.New(ctx, backend, store.WithLogger(logger))
	if err != nil {
		backend.Close()
		return nil, err
	}
	logger.Debug("store opened", "backend", cfg.Backend, "dir", cfg.DataDir, "items", s.Len())
	return s, nil
}

// withStore runs fn against an open store, saves whatever it changed and
// closes the store. A failed save is logged and returned.
func (o *RootOptions) withStore(ctx context.Context, fn func(*store.Store) error) error {
	s, err := openStore(ctx, o.cfg, o.logger)
	if err != nil {
		return failure("open store", err)
	}
	defer s.Close()

	if err := fn(s); err != nil {
		return err
	}
	if err := s.Save(ctx); err != nil {
		o.logger.Error("save failed", "err", err)
		return failure("save", err)
	}
	return nil
}
