package storage

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"skylog/internal/route"
)

// SQLiteDB keeps the route cache in a local SQLite file.
type SQLiteDB struct {
	db *sql.DB
}

// OpenSQLite opens or creates a SQLite database at the given path.
func OpenSQLite(path string) (*SQLiteDB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrapf(err, "sqlite: create dir for %s", path)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open database")
	}

	// WAL lets the server read while a digest run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "sqlite: enable WAL")
	}

	if err := createSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection.
func (d *SQLiteDB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS route_cache (
		callsign TEXT PRIMARY KEY,
		origin TEXT,
		destination TEXT,
		updated_at TEXT NOT NULL DEFAULT (datetime('now'))
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return eris.Wrap(err, "sqlite: create schema")
	}
	return nil
}

// Load returns every cached route.
func (d *SQLiteDB) Load(ctx context.Context) (map[string]route.Route, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT callsign, origin, destination FROM route_cache`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load routes")
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]route.Route)
	for rows.Next() {
		var (
			callsign            string
			origin, destination sql.NullString
		)
		if err := rows.Scan(&callsign, &origin, &destination); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan route")
		}
		out[callsign] = route.Route{Origin: nullable(origin), Destination: nullable(destination)}
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate routes")
	}
	return out, nil
}

// Save upserts the changed callsigns in one transaction. Known sides are
// kept.
func (d *SQLiteDB) Save(ctx context.Context, all map[string]route.Route, changed []string) error {
	if len(changed) == 0 {
		return nil
	}
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO route_cache (callsign, origin, destination, updated_at)
		VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT(callsign) DO UPDATE SET
			origin = COALESCE(route_cache.origin, excluded.origin),
			destination = COALESCE(route_cache.destination, excluded.destination),
			updated_at = datetime('now')`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare upsert")
	}
	defer func() { _ = stmt.Close() }()

	for _, cs := range changed {
		r, ok := all[cs]
		if !ok {
			continue
		}
		if _, err := stmt.ExecContext(ctx, cs, r.Origin, r.Destination); err != nil {
			return eris.Wrapf(err, "sqlite: upsert route %s", cs)
		}
	}
	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "sqlite: commit")
	}
	return nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
