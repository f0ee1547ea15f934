package scan

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// ErrInsufficientPeriods is returned when a directory does not hold a closed
// period to process.
var ErrInsufficientPeriods = eris.New("scan: not enough period files")

// ClosedPeriodPolicy is the number of newest files assumed to still be
// receiving writes. The collector appends to the current hour/day file, so
// the newest file is never processed.
const ClosedPeriodPolicy = 1

// Period is one period file.
type Period struct {
	Name string // file name without extension, e.g. 2025-07-12 or 2025-07-12_09
	Path string
}

// Date returns the YYYY-MM-DD prefix of the period name. ok is false when the
// name does not start with a date.
func (p Period) Date() (string, bool) {
	if len(p.Name) < 10 {
		return "", false
	}
	d := p.Name[:10]
	if _, err := time.Parse("2006-01-02", d); err != nil {
		return "", false
	}
	return d, true
}

// ListPeriods returns the *.csv files of dir sorted by name.
func ListPeriods(dir string) ([]Period, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "scan: list %s", dir)
	}
	var periods []Period
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".csv" {
			continue
		}
		periods = append(periods, Period{
			Name: strings.TrimSuffix(e.Name(), ".csv"),
			Path: filepath.Join(dir, e.Name()),
		})
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Name < periods[j].Name })
	return periods, nil
}

// SelectClosed returns the newest period after skipping the openPeriods
// newest files.
func SelectClosed(periods []Period, openPeriods int) (Period, error) {
	if openPeriods < 0 {
		openPeriods = 0
	}
	if len(periods) < openPeriods+1 {
		return Period{}, eris.Wrapf(ErrInsufficientPeriods, "have %d, need at least %d", len(periods), openPeriods+1)
	}
	return periods[len(periods)-1-openPeriods], nil
}
