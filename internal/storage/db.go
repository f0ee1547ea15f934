// Package storage keeps the route cache in SQLite or PostgreSQL and archives
// digest flights to ClickHouse.
package storage

import (
	"context"

	"github.com/rotisserie/eris"

	"skylog/internal/route"
)

// Cache drivers accepted by OpenRouteStore.
const (
	DriverJSON     = "json"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds connection settings for every backend.
type Config struct {
	RouteCacheFile string
	SQLitePath     string
	Postgres       PostgresConfig
	ClickHouse     ClickHouseConfig
}

// RouteStore is a route cache store that holds resources.
type RouteStore interface {
	route.Store
	Close() error
}

type fileStore struct{ *route.FileStore }

func (fileStore) Close() error { return nil }

// OpenRouteStore opens the route cache for driver and makes sure its schema
// exists.
func OpenRouteStore(ctx context.Context, driver string, cfg Config) (RouteStore, error) {
	switch driver {
	case "", DriverJSON:
		return fileStore{route.NewFileStore(cfg.RouteCacheFile)}, nil
	case DriverSQLite:
		return OpenSQLite(cfg.SQLitePath)
	case DriverPostgres:
		pg, err := OpenPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		if err := pg.CreateSchema(ctx); err != nil {
			_ = pg.Close()
			return nil, err
		}
		return pg, nil
	default:
		return nil, eris.Errorf("storage: unknown route cache driver %q", driver)
	}
}
