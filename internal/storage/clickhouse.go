package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"skylog/internal/digest"
)

// ClickHouseConfig holds ClickHouse connection settings.
type ClickHouseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// ClickHouseDB archives digest flights for later analysis.
type ClickHouseDB struct {
	conn driver.Conn
}

// OpenClickHouse opens a connection to ClickHouse.
func OpenClickHouse(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseDB, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:     10 * time.Second,
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, eris.Wrap(err, "clickhouse: open")
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, eris.Wrap(err, "clickhouse: ping")
	}

	return &ClickHouseDB{conn: conn}, nil
}

// Close closes the ClickHouse connection.
func (d *ClickHouseDB) Close() error {
	return d.conn.Close()
}

// CreateSchema creates the flight archive table.
func (d *ClickHouseDB) CreateSchema(ctx context.Context) error {
	err := d.conn.Exec(ctx, `CREATE TABLE IF NOT EXISTS digest_flights (
		run_id          String,
		kind            LowCardinality(String),
		digest_date     String,
		period          String,
		hex             String,
		callsign        String,
		operator        LowCardinality(String),
		country         LowCardinality(String),
		area            Nullable(String),
		origin          Nullable(String),
		destination     Nullable(String),
		altitude        String,
		speed           String,
		distance_km     Nullable(Float64),
		seen_at         String,
		archived_at     DateTime64(3) DEFAULT now64(3)
	)
	ENGINE = MergeTree()
	ORDER BY (digest_date, kind, hex, run_id)`)
	if err != nil {
		return eris.Wrap(err, "clickhouse: create schema")
	}
	return nil
}

// FlightRow is one archived flight.
type FlightRow struct {
	RunID       string
	Kind        string
	Date        string
	Period      string
	Hex         string
	Callsign    string
	Operator    string
	Country     string
	Area        *string
	Origin      *string
	Destination *string
	Altitude    string
	Speed       string
	DistanceKm  *float64
	SeenAt      string
}

// FlightRows flattens an archive record into table rows.
func FlightRows(a digest.Archive) []FlightRow {
	rows := make([]FlightRow, 0, len(a.Flights))
	for _, f := range a.Flights {
		row := FlightRow{
			RunID:       a.RunID,
			Kind:        string(a.Kind),
			Date:        a.Date,
			Period:      a.Period,
			Hex:         f.Hex,
			Callsign:    f.Callsign,
			Operator:    f.Operator,
			Country:     f.Country,
			Area:        f.Area,
			Origin:      f.Origin,
			Destination: f.Destination,
			Altitude:    f.Altitude,
			Speed:       f.Speed,
			SeenAt:      f.Time,
		}
		if f.Dist.Known {
			km := f.Dist.Km
			row.DistanceKm = &km
		}
		rows = append(rows, row)
	}
	return rows
}

// Archive stores a run's flights in one batch.
func (d *ClickHouseDB) Archive(ctx context.Context, a digest.Archive) error {
	rows := FlightRows(a)
	if len(rows) == 0 {
		return nil
	}

	batch, err := d.conn.PrepareBatch(ctx, `
		INSERT INTO digest_flights (run_id, kind, digest_date, period, hex, callsign, operator, country,
			area, origin, destination, altitude, speed, distance_km, seen_at)
	`)
	if err != nil {
		return eris.Wrap(err, "clickhouse: prepare batch")
	}

	for _, r := range rows {
		err := batch.Append(r.RunID, r.Kind, r.Date, r.Period, r.Hex, r.Callsign, r.Operator, r.Country,
			r.Area, r.Origin, r.Destination, r.Altitude, r.Speed, r.DistanceKm, r.SeenAt)
		if err != nil {
			return eris.Wrap(err, "clickhouse: append to batch")
		}
	}

	if err := batch.Send(); err != nil {
		return eris.Wrap(err, "clickhouse: send batch")
	}
	zap.L().Info("clickhouse: flights archived", zap.String("run_id", a.RunID), zap.Int("flights", len(rows)))
	return nil
}
