package digest

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/renameio/v2"
	"github.com/rotisserie/eris"
)

// LatestName is the archive file that always holds the newest digest.
const LatestName = "ultimo-dia.json"

// DateLayout is the layout of digest date labels.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned for date labels that are not YYYY-MM-DD.
var ErrInvalidDate = eris.New("digest: invalid date label")

// Writer places digests on disk. Every file is replaced atomically.
type Writer struct {
	ArchiveDir string
	PanelFile  string
}

// WriteDaily writes d to <ArchiveDir>/<date>.json and the same bytes to the
// latest pointer. It returns the dated path and the document size.
func (w *Writer) WriteDaily(d Digest, date string) (string, int, error) {
	if !ValidDate(date) {
		return "", 0, eris.Wrapf(ErrInvalidDate, "%q", date)
	}
	data, err := encode(d)
	if err != nil {
		return "", 0, err
	}
	if err := os.MkdirAll(w.ArchiveDir, 0o755); err != nil {
		return "", 0, eris.Wrapf(err, "digest: create %s", w.ArchiveDir)
	}

	path := filepath.Join(w.ArchiveDir, date+".json")
	if err := writeFile(path, data); err != nil {
		return "", 0, err
	}
	if err := writeFile(filepath.Join(w.ArchiveDir, LatestName), data); err != nil {
		return "", 0, err
	}
	return path, len(data), nil
}

// WritePanel replaces the hourly panel file.
func (w *Writer) WritePanel(p Panel) (string, int, error) {
	data, err := encode(p)
	if err != nil {
		return "", 0, err
	}
	if err := os.MkdirAll(filepath.Dir(w.PanelFile), 0o755); err != nil {
		return "", 0, eris.Wrapf(err, "digest: create dir for %s", w.PanelFile)
	}
	if err := writeFile(w.PanelFile, data); err != nil {
		return "", 0, err
	}
	return w.PanelFile, len(data), nil
}

// ValidDate reports whether s is a YYYY-MM-DD label.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ListDates returns the dates archived in dir, newest first.
func ListDates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "digest: list %s", dir)
	}
	dates := []string{}
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".json")
		if e.IsDir() || name == e.Name() || !ValidDate(name) {
			continue
		}
		dates = append(dates, name)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}

// ReadDigest decodes a digest file.
func ReadDigest(path string) (Digest, error) {
	var d Digest
	data, err := os.ReadFile(path)
	if err != nil {
		return d, eris.Wrapf(err, "digest: read %s", path)
	}
	if err := json.Unmarshal(data, &d); err != nil {
		return d, eris.Wrapf(err, "digest: decode %s", path)
	}
	return d, nil
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, eris.Wrap(err, "digest: encode")
	}
	return buf.Bytes(), nil
}

func writeFile(path string, data []byte) error {
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "digest: write %s", path)
	}
	return nil
}
