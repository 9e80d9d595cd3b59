package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/avoinsys/viite/internal/match"
	"github.com/avoinsys/viite/internal/service"
	"github.com/avoinsys/viite/internal/storage"
)

// initStorage opens the database and brings its schema up to date.
func initStorage(ctx context.Context) (service.Storage, error) {
	store, err := storage.NewSQLiteStorage(databasePath())
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func databasePath() string {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/viite/viite.db"
	}
	return expandPath(dbPath)
}

// expandPath resolves a leading tilde and environment variables.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return os.ExpandEnv(path)
}

// matchConfig assembles the engine configuration from viper.
func matchConfig() match.Config {
	cfg := match.DefaultConfig()

	if currency := viper.GetString("company.currency"); currency != "" {
		cfg.FunctionalCurrency = strings.ToUpper(currency)
	}
	if places := viper.GetInt("company.decimal_places"); places > 0 {
		cfg.DecimalPlaces = int32(places)
	}
	for _, id := range viper.GetIntSlice("matching.account_ids") {
		cfg.AccountIDs = append(cfg.AccountIDs, int64(id))
	}

	return cfg
}
