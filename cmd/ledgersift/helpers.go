package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/dhanvantari/ledgersift/internal/config"
	"github.com/dhanvantari/ledgersift/internal/engine"
	"github.com/dhanvantari/ledgersift/internal/service"
	"github.com/dhanvantari/ledgersift/internal/storage"
)

// initStorage opens the configured database and brings the schema current.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/ledgersift/ledgersift.db"
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := store.SeedDefaultCategories(ctx); err != nil {
		return nil, fmt.Errorf("failed to seed categories: %w", err)
	}

	return store, nil
}

// classifierPath resolves the trained classifier file location.
func classifierPath() string {
	path := viper.GetString("classifier.path")
	if path == "" {
		path = "$HOME/.local/share/ledgersift/classifier.bin"
	}
	return config.ExpandPath(path)
}

// loadClassifier loads the trained classifier if one exists. A missing file is
// not an error; the cascade simply runs without the classifier tier.
func loadClassifier() (*engine.Classifier, error) {
	path := classifierPath()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return engine.LoadClassifier(path)
}
