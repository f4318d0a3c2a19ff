// Package driver opens the store selected by configuration.
package driver

import (
	"context"
	"fmt"

	"barber-reservation-api/internal/config"
	"barber-reservation-api/internal/store"
	"barber-reservation-api/internal/store/postgres"
	"barber-reservation-api/internal/store/sqlite"
)

// Open connects to the configured database and applies its schema.
func Open(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return postgres.Open(ctx, cfg.DatabaseURL)
	case config.DriverSQLite:
		return sqlite.Open(ctx, cfg.SQLitePath)
	}
	return nil, fmt.Errorf("unknown driver %q", cfg.DBDriver)
}
