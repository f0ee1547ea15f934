package scan

import (
	"encoding/csv"
	"errors"
	"io"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrNoHeader is returned when a period file is empty.
var ErrNoHeader = eris.New("scan: period file has no header row")

// ReadFile reads every row of a period file.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "scan: open %s", path)
	}
	defer func() { _ = f.Close() }()

	records, err := Read(f)
	if err != nil {
		return nil, eris.Wrapf(err, "scan: read %s", path)
	}
	return records, nil
}

// Read decodes rows by header name. Rows that cannot be decoded (a torn
// line from an interrupted append, a stray quote) are logged and skipped.
func Read(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	dec, err := csvutil.NewDecoder(cr)
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, eris.Wrap(err, "scan: decode header")
	}

	var (
		records []Record
		skipped int
	)
	for {
		var rec Record
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if isRowError(err) {
				skipped++
				continue
			}
			return nil, eris.Wrap(err, "scan: decode row")
		}
		records = append(records, rec)
	}

	if skipped > 0 {
		zap.L().Warn("scan: skipped malformed rows", zap.Int("skipped", skipped), zap.Int("rows", len(records)))
	}
	return records, nil
}

func isRowError(err error) bool {
	var parseErr *csv.ParseError
	var typeErr *csvutil.UnmarshalTypeError
	return errors.Is(err, csvutil.ErrFieldCount) || errors.As(err, &parseErr) || errors.As(err, &typeErr)
}
