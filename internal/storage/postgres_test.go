package storage

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skylog/internal/route"
)

func newMockPostgres(t *testing.T) (*PostgresDB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })
	return NewPostgresDB(mock), mock
}

func strPtr(s string) *string { return &s }

func TestPostgresCreateSchema(t *testing.T) {
	pg, mock := newMockPostgres(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS route_cache`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, pg.CreateSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLoad(t *testing.T) {
	pg, mock := newMockPostgres(t)

	rows := pgxmock.NewRows([]string{"callsign", "origin", "destination"}).
		AddRow("TAP123", strPtr("Lisbon, PT"), strPtr("Porto, PT")).
		AddRow("EZY9", (*string)(nil), strPtr("Faro"))
	mock.ExpectQuery(`SELECT callsign, origin, destination FROM route_cache`).WillReturnRows(rows)

	got, err := pg.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got["TAP123"].Complete())
	assert.Nil(t, got["EZY9"].Origin)
	assert.Equal(t, "Faro", got["EZY9"].DestinationName())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLoadError(t *testing.T) {
	pg, mock := newMockPostgres(t)
	mock.ExpectQuery(`SELECT callsign`).WillReturnError(assert.AnError)

	_, err := pg.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: load routes")
}

func TestPostgresSaveUpsertsChanged(t *testing.T) {
	pg, mock := newMockPostgres(t)

	all := map[string]route.Route{
		"TAP123": route.Of("Lisbon, PT", "Porto, PT"),
		"EZY9":   route.Of("", "Faro"),
		"RYR1":   route.Of("Dublin", "Porto"),
	}

	mock.ExpectBegin()
	mock.ExpectExec(`ON CONFLICT \(callsign\) DO UPDATE SET\s+origin = COALESCE\(route_cache.origin, EXCLUDED.origin\)`).
		WithArgs("EZY9", all["EZY9"].Origin, all["EZY9"].Destination).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO route_cache`).
		WithArgs("TAP123", all["TAP123"].Origin, all["TAP123"].Destination).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, pg.Save(context.Background(), all, []string{"EZY9", "TAP123"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveRollsBackOnError(t *testing.T) {
	pg, mock := newMockPostgres(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO route_cache`).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := pg.Save(context.Background(), map[string]route.Route{"A1": route.Of("x", "")}, []string{"A1"})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveNothingChanged(t *testing.T) {
	pg, mock := newMockPostgres(t)
	require.NoError(t, pg.Save(context.Background(), map[string]route.Route{}, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
