package operator

import (
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"skylog/internal/scan"
)

// Build scans every period file in dir for operator prefixes and merges them
// into existing. Known names are kept; new prefixes are named after
// themselves until someone fills them in.
func Build(dir string, existing Map) (Map, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, eris.Wrapf(err, "operator: list %s", dir)
	}

	out := make(Map, len(existing))
	for code, e := range existing {
		out[code] = e
	}

	added := 0
	for _, path := range paths {
		records, err := scan.ReadFile(path)
		if err != nil {
			zap.L().Warn("operator: skipping unreadable period file", zap.String("path", path), zap.Error(err))
			continue
		}
		for _, rec := range records {
			code := Code(rec.Flight)
			if code == "" {
				continue
			}
			if _, ok := out[code]; !ok {
				out[code] = Entry{Name: code}
				added++
			}
		}
	}

	zap.L().Info("operator: table built",
		zap.Int("files", len(paths)),
		zap.Int("codes", len(out)),
		zap.Int("added", added),
	)
	return out, nil
}
