package operator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skylog/internal/scan"
)

func TestCode(t *testing.T) {
	tests := []struct {
		callsign string
		want     string
	}{
		{"TAP123 ", "TAP"},
		{"  ryr45k", "RYR"},
		{"EZY", "EZY"},
		{"CS-DJF", ""},
		{"N123AB", ""},
		{"TA", ""},
		{"", ""},
		{"1AB234", ""},
	}
	for _, tt := range tests {
		t.Run(tt.callsign, func(t *testing.T) {
			assert.Equal(t, tt.want, Code(tt.callsign))
		})
	}
}

func TestName(t *testing.T) {
	m := Map{"TAP": {Name: "TAP Air Portugal"}, "XXX": {}}
	assert.Equal(t, "TAP Air Portugal", m.Name("TAP"))
	assert.Equal(t, "RYR", m.Name("RYR"))
	assert.Equal(t, "XXX", m.Name("XXX"))
	assert.Equal(t, "", m.Name(""))
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "companhias.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"TAP": {"nome": "TAP Air Portugal"}}`), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "TAP Air Portugal", m.Name("TAP"))

	m["RYR"] = Entry{Name: "Ryanair"}
	require.NoError(t, m.Save(path))

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"RYR", "TAP"}, again.Codes())
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, scan.Append(filepath.Join(dir, "2025-07-12_00.csv"), []scan.Record{
		{Hex: "4951d1", Flight: "TAP123 "},
		{Hex: "4ca123", Flight: "ryr45k"},
		{Hex: "a00001", Flight: "N123AB"},
		{Hex: "a00002"},
	}))
	require.NoError(t, scan.Append(filepath.Join(dir, "2025-07-12_01.csv"), []scan.Record{
		{Hex: "4951d2", Flight: "TAP456"},
		{Hex: "440001", Flight: "EZY12"},
	}))

	existing := Map{"TAP": {Name: "TAP Air Portugal"}, "IBE": {Name: "Iberia"}}
	m, err := Build(dir, existing)
	require.NoError(t, err)

	assert.Equal(t, []string{"EZY", "IBE", "RYR", "TAP"}, m.Codes())
	assert.Equal(t, "TAP Air Portugal", m.Name("TAP"))
	assert.Equal(t, "Iberia", m.Name("IBE"))
	assert.Equal(t, Entry{Name: "RYR"}, m["RYR"])
	assert.Len(t, existing, 2)
}
