package route

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/rotisserie/eris"
)

// FileStore keeps the cache as a single JSON object
// {callsign: {origem, destino}}. Saves replace the file atomically so an
// interrupted run leaves the previous cache intact.
type FileStore struct {
	Path string
}

// NewFileStore returns a store for path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the cache file. A missing file is an empty cache.
func (s *FileStore) Load(_ context.Context) (map[string]Route, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]Route{}, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "route: read cache %s", s.Path)
	}
	entries := map[string]Route{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, eris.Wrapf(err, "route: decode cache %s", s.Path)
	}
	return entries, nil
}

// Save rewrites the whole cache file.
func (s *FileStore) Save(_ context.Context, all map[string]Route, _ []string) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return eris.Wrap(err, "route: encode cache")
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return eris.Wrapf(err, "route: create cache dir for %s", s.Path)
	}
	if err := renameio.WriteFile(s.Path, append(data, '\n'), 0o644); err != nil {
		return eris.Wrapf(err, "route: write cache %s", s.Path)
	}
	return nil
}
