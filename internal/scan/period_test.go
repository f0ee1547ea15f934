package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(""), 0o644))
}

func TestListPeriodsSorted(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "2025-07-12.csv")
	touch(t, dir, "2025-07-10.csv")
	touch(t, dir, "2025-07-11.csv")
	touch(t, dir, "notes.txt")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "old.csv"), 0o755))

	periods, err := ListPeriods(dir)
	require.NoError(t, err)
	require.Len(t, periods, 3)
	assert.Equal(t, "2025-07-10", periods[0].Name)
	assert.Equal(t, "2025-07-12", periods[2].Name)
	assert.Equal(t, filepath.Join(dir, "2025-07-11.csv"), periods[1].Path)
}

func TestSelectClosed(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "2025-07-12_00.csv")

	periods, err := ListPeriods(dir)
	require.NoError(t, err)
	_, err = SelectClosed(periods, ClosedPeriodPolicy)
	require.ErrorIs(t, err, ErrInsufficientPeriods)

	touch(t, dir, "2025-07-12_01.csv")
	periods, err = ListPeriods(dir)
	require.NoError(t, err)
	p, err := SelectClosed(periods, ClosedPeriodPolicy)
	require.NoError(t, err)
	assert.Equal(t, "2025-07-12_00", p.Name)

	touch(t, dir, "2025-07-11_23.csv")
	periods, err = ListPeriods(dir)
	require.NoError(t, err)
	p, err = SelectClosed(periods, ClosedPeriodPolicy)
	require.NoError(t, err)
	assert.Equal(t, "2025-07-12_00", p.Name)
}

func TestSelectClosedWithoutOpenPeriods(t *testing.T) {
	p, err := SelectClosed([]Period{{Name: "a"}, {Name: "b"}}, 0)
	require.NoError(t, err)
	assert.Equal(t, "b", p.Name)

	_, err = SelectClosed(nil, 0)
	require.ErrorIs(t, err, ErrInsufficientPeriods)
}

func TestListPeriodsMissingDir(t *testing.T) {
	_, err := ListPeriods(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestPeriodDate(t *testing.T) {
	d, ok := Period{Name: "2025-07-12_09"}.Date()
	require.True(t, ok)
	assert.Equal(t, "2025-07-12", d)

	d, ok = Period{Name: "2025-07-12"}.Date()
	require.True(t, ok)
	assert.Equal(t, "2025-07-12", d)

	_, ok = Period{Name: "latest"}.Date()
	assert.False(t, ok)
	_, ok = Period{Name: "2025-13-45-extra"}.Date()
	assert.False(t, ok)
}
