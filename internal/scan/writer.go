package scan

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
)

// Append adds records to the period file at path, creating it (and its
// directory) with a header row when it does not exist yet.
func Append(path string, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "scan: create directory for %s", path)
	}

	_, err := os.Stat(path)
	exists := err == nil
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return eris.Wrapf(err, "scan: stat %s", path)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return eris.Wrapf(err, "scan: open %s", path)
	}

	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)
	enc.AutoHeader = !exists
	if err := enc.Encode(records); err != nil {
		_ = f.Close()
		return eris.Wrapf(err, "scan: encode rows to %s", path)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return eris.Wrapf(err, "scan: flush %s", path)
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "scan: close %s", path)
	}
	return nil
}
