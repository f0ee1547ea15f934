package scan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `timestamp,hex,flight,alt_baro,gs,track,lat,lon,seen,squawk,category
2025-07-12T10:00:01,4951d1,TAP123 ,35000,450.2,180.5,39.7,-8.9,0.1,1000,A3
2025-07-12T10:01:01,4951d1,TAP123 ,34000,,,,,0.3,,
`

func TestRead(t *testing.T) {
	records, err := Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, Record{
		Timestamp: "2025-07-12T10:00:01", Hex: "4951d1", Flight: "TAP123 ",
		Altitude: "35000", Speed: "450.2", Track: "180.5", Lat: "39.7", Lon: "-8.9",
		Seen: "0.1", Squawk: "1000", Category: "A3",
	}, records[0])
	assert.Empty(t, records[1].Lat)
}

func TestReadColumnsByName(t *testing.T) {
	data := "hex,timestamp,flight\nabc123,2025-07-12T10:00:00,RYR1\n"
	records, err := Read(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "abc123", records[0].Hex)
	assert.Equal(t, "RYR1", records[0].Flight)
	assert.Empty(t, records[0].Altitude)
}

func TestReadSkipsTornRows(t *testing.T) {
	data := sampleCSV + "2025-07-12T10:02:01,4951d1,TAP\n"
	records, err := Read(strings.NewReader(data))
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestReadEmpty(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	require.ErrorIs(t, err, ErrNoHeader)
}

func TestAppendWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "horarios", "2025-07-12_10.csv")

	first := []Record{{Timestamp: "2025-07-12T10:00:01", Hex: "4951d1", Flight: "TAP123"}}
	second := []Record{{Timestamp: "2025-07-12T10:01:01", Hex: "3c4b2a", Altitude: "ground"}}
	require.NoError(t, Append(path, first))
	require.NoError(t, Append(path, second))
	require.NoError(t, Append(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(Header, ","), lines[0])

	records, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, append(first, second...), records)
}
