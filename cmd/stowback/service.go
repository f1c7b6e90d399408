package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sagarc03/stowback"
	"github.com/sagarc03/stowback/config"
	"github.com/sagarc03/stowback/database"
	"github.com/sagarc03/stowback/storage"
)

// newService connects the configured store and, when enabled, the job ledger.
// The returned cleanup function closes both.
func newService(ctx context.Context, cfg *config.Config, observer stowback.JobObserver) (*stowback.Service, func(), error) {
	store, closeStore, err := storage.Connect(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("connect storage: %w", err)
	}
	slog.Debug("connected to storage", "backend", cfg.Storage.Backend, "container", cfg.Storage.Container)

	svcCfg := stowback.ServiceConfig{
		Compress: cfg.Archive.Compress,
		Observer: observer,
	}

	closeDB := func() {}
	if cfg.Database.Enabled {
		repo, closeRepo, dbErr := database.Connect(ctx, cfg.Database.Config)
		if dbErr != nil {
			closeStore()
			return nil, nil, fmt.Errorf("connect database: %w", dbErr)
		}
		svcCfg.Jobs = repo
		closeDB = closeRepo
		slog.Debug("connected to job ledger", "type", cfg.Database.Type, "table", cfg.Database.Tables.Jobs)
	}

	cleanup := func() {
		closeDB()
		closeStore()
	}

	service, err := stowback.NewService(store, svcCfg)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("create service: %w", err)
	}

	return service, cleanup, nil
}
