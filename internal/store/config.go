package store

import (
	"context"
	"log/slog"

	"actigraphy/internal/config"
)

// OptionsFromConfig maps the [database] section onto Options. sqlitePath is
// the per-subject database file used when the driver is sqlite.
func OptionsFromConfig(cfg *config.Config, sqlitePath string, logger *slog.Logger) Options {
	opts := Options{Driver: DriverSQLite, Path: sqlitePath, Logger: logger}
	if cfg == nil {
		return opts
	}
	if cfg.Database.Driver != "" {
		opts.Driver = cfg.Database.Driver
	}
	opts.DSN = cfg.Database.DSN
	opts.BusyRetries = cfg.Database.BusyRetries
	return opts
}

// OpenFromConfig opens the store configured by cfg.
func OpenFromConfig(ctx context.Context, cfg *config.Config, sqlitePath string, logger *slog.Logger) (*Store, error) {
	return Open(ctx, OptionsFromConfig(cfg, sqlitePath, logger))
}
