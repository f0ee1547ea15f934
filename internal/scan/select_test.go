package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skylog/internal/geo"
)

func TestRecordKey(t *testing.T) {
	assert.Equal(t, "4951d1", Record{Hex: " 4951d1 ", Flight: "TAP123 "}.Key())
	assert.Equal(t, "TAP123", Record{Hex: "  ", Flight: " TAP123 "}.Key())
	assert.Empty(t, Record{}.Key())
}

func TestRecordScore(t *testing.T) {
	assert.Equal(t, 0, Record{Timestamp: "2025-07-12T10:00:00", Hex: "abc123"}.Score())
	assert.Equal(t, 9, Record{
		Flight: "TAP123", Altitude: "35000", Speed: "450", Track: "180",
		Lat: "39.7", Lon: "-8.9", Seen: "0.1", Squawk: "1000", Category: "A3",
	}.Score())
	// Padded values count as present.
	assert.Equal(t, 1, Record{Flight: "  "}.Score())
}

func TestRecordPosition(t *testing.T) {
	p, ok := Record{Lat: " 39.7 ", Lon: "-8.9"}.Position()
	require.True(t, ok)
	assert.Equal(t, geo.Point{Lat: 39.7, Lon: -8.9}, p)

	_, ok = Record{Lat: "39.7"}.Position()
	assert.False(t, ok)
	_, ok = Record{Lat: "north", Lon: "-8.9"}.Position()
	assert.False(t, ok)
}

func TestRecordPositionRejectsNonFinite(t *testing.T) {
	for _, rec := range []Record{
		{Lat: "nan", Lon: "-8.9"},
		{Lat: "39.7", Lon: "NaN"},
		{Lat: "+Inf", Lon: "-8.9"},
		{Lat: "39.7", Lon: "-inf"},
		{Lat: "91", Lon: "-8.9"},
		{Lat: "39.7", Lon: "180.5"},
	} {
		_, ok := rec.Position()
		assert.False(t, ok, "%+v", rec)
	}

	_, ok := ParseFloat("NaN")
	assert.False(t, ok)
	_, ok = ParseFloat("Infinity")
	assert.False(t, ok)
}

func TestSelectNonFinitePositionNoTrace(t *testing.T) {
	got := Select([]Record{{Hex: "aaaaaa", Altitude: "1000", Lat: "nan", Lon: "nan"}})
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Trace)
}

func TestSelectHigherScoreWins(t *testing.T) {
	low := Record{Hex: "aaaaaa", Flight: "TAP123", Altitude: "1000", Speed: "200"}
	high := Record{Hex: "aaaaaa", Flight: "TAP123", Altitude: "2000", Speed: "210", Track: "90", Squawk: "1000"}

	for _, rows := range [][]Record{{low, high}, {high, low}} {
		got := Select(rows)
		require.Len(t, got, 1)
		assert.Equal(t, high, got[0].Record)
		assert.Equal(t, 5, got[0].Score)
	}
}

func TestSelectEqualScoreKeepsFirst(t *testing.T) {
	first := Record{Hex: "aaaaaa", Altitude: "1000"}
	second := Record{Hex: "aaaaaa", Altitude: "2000"}

	got := Select([]Record{first, second})
	require.Len(t, got, 1)
	assert.Equal(t, "1000", got[0].Record.Altitude)
}

func TestSelectTrace(t *testing.T) {
	rows := []Record{
		{Hex: "aaaaaa", Lat: "10", Lon: "10"},
		{Hex: "aaaaaa", Lat: "bad", Lon: "15"},
		{Hex: "aaaaaa", Lat: "20", Lon: "20"},
		{Hex: "aaaaaa"},
		{Hex: "aaaaaa", Lat: "30", Lon: "30"},
	}

	got := Select(rows)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Trace)
	assert.Equal(t, geo.Point{Lat: 10, Lon: 10}, got[0].Trace.From)
	assert.Equal(t, geo.Point{Lat: 30, Lon: 30}, got[0].Trace.To)
}

func TestSelectSinglePositionTrace(t *testing.T) {
	got := Select([]Record{{Hex: "aaaaaa", Lat: "39.7", Lon: "-8.9"}})
	require.NotNil(t, got[0].Trace)
	assert.Equal(t, got[0].Trace.From, got[0].Trace.To)
}

func TestSelectNoPositionNoTrace(t *testing.T) {
	got := Select([]Record{{Hex: "aaaaaa", Altitude: "1000"}})
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Trace)
}

func TestSelectOrderAndKeys(t *testing.T) {
	rows := []Record{
		{Hex: "bbbbbb"},
		{Flight: "NOHEX1 "},
		{},
		{Hex: "aaaaaa"},
		{Hex: "bbbbbb", Altitude: "100"},
		{Flight: "   "},
	}

	got := Select(rows)
	require.Len(t, got, 3)
	assert.Equal(t, "bbbbbb", got[0].Key)
	assert.Equal(t, "100", got[0].Record.Altitude)
	assert.Equal(t, "NOHEX1", got[1].Key)
	assert.Equal(t, "aaaaaa", got[2].Key)
}
