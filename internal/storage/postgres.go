package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"skylog/internal/route"
)

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// Pool is the subset of pgxpool.Pool the store uses.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PostgresDB keeps the route cache in PostgreSQL.
type PostgresDB struct {
	pool Pool
}

// NewPostgresDB wraps an existing pool.
func NewPostgresDB(pool Pool) *PostgresDB {
	return &PostgresDB{pool: pool}
}

// OpenPostgres opens a connection pool to PostgreSQL.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresDB, error) {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	poolCfg.MaxConns = 4
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: open pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresDB{pool: pool}, nil
}

// Close closes the connection pool.
func (d *PostgresDB) Close() error {
	d.pool.Close()
	return nil
}

// CreateSchema creates the route cache table.
func (d *PostgresDB) CreateSchema(ctx context.Context) error {
	_, err := d.pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS route_cache (
		callsign        TEXT PRIMARY KEY,
		origin          TEXT,
		destination     TEXT,
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	if err != nil {
		return eris.Wrap(err, "postgres: create schema")
	}
	return nil
}

// Load returns every cached route.
func (d *PostgresDB) Load(ctx context.Context) (map[string]route.Route, error) {
	rows, err := d.pool.Query(ctx, `SELECT callsign, origin, destination FROM route_cache`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load routes")
	}
	defer rows.Close()

	out := make(map[string]route.Route)
	for rows.Next() {
		var (
			callsign string
			r        route.Route
		)
		if err := rows.Scan(&callsign, &r.Origin, &r.Destination); err != nil {
			return nil, eris.Wrap(err, "postgres: scan route")
		}
		out[callsign] = r
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate routes")
	}
	return out, nil
}

// upsertRouteSQL never replaces a side that is already known.
const upsertRouteSQL = `
	INSERT INTO route_cache (callsign, origin, destination, updated_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (callsign) DO UPDATE SET
		origin = COALESCE(route_cache.origin, EXCLUDED.origin),
		destination = COALESCE(route_cache.destination, EXCLUDED.destination),
		updated_at = NOW()`

// Save upserts the changed callsigns in one transaction.
func (d *PostgresDB) Save(ctx context.Context, all map[string]route.Route, changed []string) error {
	if len(changed) == 0 {
		return nil
	}
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, cs := range changed {
		r, ok := all[cs]
		if !ok {
			continue
		}
		if _, err := tx.Exec(ctx, upsertRouteSQL, cs, r.Origin, r.Destination); err != nil {
			return eris.Wrapf(err, "postgres: upsert route %s", cs)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "postgres: commit")
	}
	return nil
}
