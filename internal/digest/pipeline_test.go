package digest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skylog/internal/geo"
	"skylog/internal/route"
	"skylog/internal/scan"
)

var station = geo.Point{Lat: 39.74759200010467, Lon: -8.936510104648143}

type fixture struct {
	base   string
	cfg    Config
	writer *Writer
}

func newFixture(t *testing.T, kind Kind) fixture {
	t.Helper()
	base := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(base, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}
	return fixture{
		base: base,
		cfg: Config{
			Kind:          kind,
			PeriodDir:     filepath.Join(base, "dados", "diarios"),
			OpenPeriods:   scan.ClosedPeriodPolicy,
			CountryTable:  write("dados/icao_ranges.json", `[{"start":"AAAAA0","end":"AAAAAF","country":"Portugal","bandeira":"pt"}]`),
			OperatorTable: write("dados/companhias.json", `{"TAP":{"nome":"TAP Air Portugal"}}`),
			GeoFile:       filepath.Join(base, "dados", "geo", "missing.geojson"),
			Station:       station,
		},
		writer: &Writer{
			ArchiveDir: filepath.Join(base, "docs", "arquivo"),
			PanelFile:  filepath.Join(base, "docs", "hora_corrente.json"),
		},
	}
}

func (f fixture) period(t *testing.T, name string, rows []scan.Record) {
	t.Helper()
	require.NoError(t, scan.Append(filepath.Join(f.cfg.PeriodDir, name), rows))
}

var tapRows = []scan.Record{
	{Timestamp: "2025-07-12T09:00:01", Hex: "AAAAAA", Flight: "TAP123 ", Altitude: "1000"},
	{Timestamp: "2025-07-12T09:00:06", Hex: "AAAAAA", Flight: "TAP123 ", Altitude: "1500", Lat: "39.7", Lon: "-8.9"},
	{Timestamp: "2025-07-12T09:00:11", Hex: "AAAAAA", Flight: "TAP123 ", Altitude: "2000"},
}

type recordingArchiver struct {
	got []Archive
}

func (r *recordingArchiver) Archive(_ context.Context, a Archive) error {
	r.got = append(r.got, a)
	return nil
}

func TestRunDaily(t *testing.T) {
	f := newFixture(t, Daily)
	f.period(t, "2025-07-12.csv", tapRows)
	f.period(t, "2025-07-13.csv", []scan.Record{{Timestamp: "2025-07-13T00:00:01", Hex: "BBBBBB", Altitude: "9000"}})

	cachePath := filepath.Join(f.base, "dados", "rotas.json")
	store := route.NewFileStore(cachePath)
	require.NoError(t, store.Save(context.Background(), map[string]route.Route{
		"TAP123": route.Of("Lisbon, PT", "Porto, PT"),
	}, nil))
	before, err := os.ReadFile(cachePath)
	require.NoError(t, err)

	arch := &recordingArchiver{}
	p := NewPipeline(f.cfg, f.writer, WithRouteStore(store), WithArchiver(arch))
	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2025-07-12", res.Period)
	assert.Equal(t, "2025-07-12", res.Date)
	assert.Equal(t, 1, res.Flights)
	assert.NotEmpty(t, res.RunID)

	d, err := ReadDigest(filepath.Join(f.writer.ArchiveDir, "2025-07-12.json"))
	require.NoError(t, err)
	require.Len(t, d.Flights, 1)
	fl := d.Flights[0]
	assert.Equal(t, "Portugal", fl.Country)
	assert.Equal(t, "pt", fl.Flag)
	assert.Equal(t, "TAP Air Portugal", fl.Operator)
	assert.Equal(t, "1500", fl.Altitude, "most complete row wins")
	assert.True(t, fl.Dist.Known)
	assert.Equal(t, geo.Haversine(station.Lat, station.Lon, 39.7, -8.9), fl.Dist.Km)
	assert.Nil(t, fl.Area)
	assert.Equal(t, "Lisbon, PT", *fl.Origin)

	require.Len(t, d.Segments, 1)
	assert.Equal(t, geo.Point{Lat: 39.7, Lon: -8.9}, d.Segments[0].From)

	latest, err := ReadDigest(filepath.Join(f.writer.ArchiveDir, LatestName))
	require.NoError(t, err)
	assert.Equal(t, d, latest)

	after, err := os.ReadFile(cachePath)
	require.NoError(t, err)
	assert.Equal(t, before, after, "unchanged cache is not rewritten")

	require.Len(t, arch.got, 1)
	assert.Equal(t, res.RunID, arch.got[0].RunID)
	assert.Len(t, arch.got[0].Flights, 1)
}

func TestRunDailyNonFinitePositionStillWrites(t *testing.T) {
	f := newFixture(t, Daily)
	f.period(t, "2025-07-12.csv", []scan.Record{
		tapRows[1],
		{Timestamp: "2025-07-12T09:05:00", Hex: "BBBBBB", Altitude: "3000", Lat: "nan", Lon: "nan"},
	})
	f.period(t, "2025-07-13.csv", tapRows[:1])

	res, err := NewPipeline(f.cfg, f.writer).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Flights)

	path := filepath.Join(f.writer.ArchiveDir, "2025-07-12.json")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"dist": ""`)

	d, err := ReadDigest(path)
	require.NoError(t, err)
	require.Len(t, d.Flights, 2)
	for _, fl := range d.Flights {
		if fl.Hex == "BBBBBB" {
			assert.False(t, fl.Dist.Known)
		} else {
			assert.True(t, fl.Dist.Known)
		}
	}
	require.Len(t, d.Segments, 1, "only the finite position gives a segment")
	assert.Equal(t, "AAAAAA", d.Segments[0].Hex)

	_, err = os.Stat(filepath.Join(f.writer.ArchiveDir, LatestName))
	assert.NoError(t, err)
}

func TestRunInsufficientPeriods(t *testing.T) {
	f := newFixture(t, Daily)
	f.period(t, "2025-07-12.csv", tapRows)

	_, err := NewPipeline(f.cfg, f.writer).Run(context.Background())
	require.ErrorIs(t, err, scan.ErrInsufficientPeriods)
	_, statErr := os.Stat(f.writer.ArchiveDir)
	assert.True(t, os.IsNotExist(statErr), "no output before failing")

	f.period(t, "2025-07-13.csv", tapRows)
	res, err := NewPipeline(f.cfg, f.writer).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025-07-12", res.Period)
}

func TestRunMissingCountryTable(t *testing.T) {
	f := newFixture(t, Daily)
	f.period(t, "2025-07-12.csv", tapRows)
	f.period(t, "2025-07-13.csv", tapRows)
	f.cfg.CountryTable = filepath.Join(f.base, "nope.json")

	_, err := NewPipeline(f.cfg, f.writer).Run(context.Background())
	require.Error(t, err)
}

func TestRunHourlyDatesFromFlights(t *testing.T) {
	f := newFixture(t, Hourly)
	f.period(t, "2025-07-12_09.csv", tapRows)
	f.period(t, "2025-07-12_10.csv", tapRows[:1])

	res, err := NewPipeline(f.cfg, f.writer).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, f.writer.PanelFile, res.Path)

	data, err := os.ReadFile(f.writer.PanelFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"ultima_hora"`)
	assert.Contains(t, string(data), `"chamada": "TAP123"`)
}

func TestRunDailyUndatedPeriodUsesFlightTime(t *testing.T) {
	f := newFixture(t, Daily)
	f.period(t, "a.csv", tapRows)
	f.period(t, "b.csv", tapRows)

	res, err := NewPipeline(f.cfg, f.writer).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025-07-12", res.Date)
}

func TestRunDailyUndatedEmptyPeriodFails(t *testing.T) {
	f := newFixture(t, Daily)
	f.period(t, "a.csv", []scan.Record{{Hex: "AAAAAA", Squawk: "7000"}})
	f.period(t, "b.csv", tapRows)

	_, err := NewPipeline(f.cfg, f.writer).Run(context.Background())
	require.ErrorIs(t, err, ErrNoDate)
}
