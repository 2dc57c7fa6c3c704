package main

import (
	"context"
	"fmt"
	"time"

	"github.com/mdliss/finsight/internal/config"
	"github.com/mdliss/finsight/internal/service"
	"github.com/mdliss/finsight/internal/storage"

	"github.com/spf13/viper"
)

// initStorage opens the configured database and brings the schema current.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/finsight/finsight.db"
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// parseReference parses a --as-of flag value, defaulting to today when
// empty. Analysis runs are anchored to this date, not wall-clock time.
func parseReference(asOf string) (time.Time, error) {
	if asOf == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	ref, err := time.Parse("2006-01-02", asOf)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of date %q (want YYYY-MM-DD): %w", asOf, err)
	}
	return ref, nil
}
