// Package state keeps a running summary of every aircraft seen across the
// daily period files.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/renameio/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"skylog/internal/scan"
)

// Tracker accumulates per-aircraft summaries. It is safe for concurrent use.
type Tracker struct {
	mu       sync.RWMutex
	aircraft map[string]*entry
	skipped  int
}

type entry struct {
	count     int
	firstSeen time.Time
	lastSeen  time.Time
	flights   map[string]struct{}
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{aircraft: make(map[string]*entry)}
}

// Observe folds one row into the summary. Rows without a hex code or with an
// unreadable timestamp are skipped.
func (t *Tracker) Observe(rec scan.Record) bool {
	hex := strings.TrimSpace(rec.Hex)
	ts, ok := parseTimestamp(strings.TrimSpace(rec.Timestamp))

	t.mu.Lock()
	defer t.mu.Unlock()

	if hex == "" || !ok {
		t.skipped++
		return false
	}

	e, exists := t.aircraft[hex]
	if !exists {
		e = &entry{firstSeen: ts, lastSeen: ts, flights: make(map[string]struct{})}
		t.aircraft[hex] = e
	}
	e.count++
	if cs := rec.Callsign(); cs != "" {
		e.flights[cs] = struct{}{}
	}
	if ts.Before(e.firstSeen) {
		e.firstSeen = ts
	}
	if ts.After(e.lastSeen) {
		e.lastSeen = ts
	}
	return true
}

// ObserveFile folds every row of a period file into the summary.
func (t *Tracker) ObserveFile(path string) error {
	rows, err := scan.ReadFile(path)
	if err != nil {
		return err
	}
	for _, r := range rows {
		t.Observe(r)
	}
	return nil
}

// Len returns the number of aircraft seen.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.aircraft)
}

// Skipped returns the number of rows that could not be used.
func (t *Tracker) Skipped() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.skipped
}

// Summaries returns a snapshot keyed by hex code. Callsigns are sorted.
func (t *Tracker) Summaries() map[string]Summary {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]Summary, len(t.aircraft))
	for hex, e := range t.aircraft {
		flights := make([]string, 0, len(e.flights))
		for f := range e.flights {
			flights = append(flights, f)
		}
		sort.Strings(flights)
		out[hex] = Summary{Count: e.count, FirstSeen: e.firstSeen, LastSeen: e.lastSeen, Flights: flights}
	}
	return out
}

// Save writes the summaries to path, replacing it atomically.
func (t *Tracker) Save(path string) error {
	data, err := json.MarshalIndent(t.Summaries(), "", "  ")
	if err != nil {
		return eris.Wrap(err, "state: encode summary")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "state: create dir for %s", path)
	}
	if err := renameio.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return eris.Wrapf(err, "state: write %s", path)
	}
	return nil
}

// Build summarises every period file in dir.
func Build(dir string) (*Tracker, error) {
	periods, err := scan.ListPeriods(dir)
	if err != nil {
		return nil, err
	}
	t := NewTracker()
	for _, p := range periods {
		if err := t.ObserveFile(p.Path); err != nil {
			zap.L().Warn("state: skipping unreadable period file", zap.String("path", p.Path), zap.Error(err))
		}
	}
	zap.L().Info("state: fleet summary built",
		zap.Int("files", len(periods)),
		zap.Int("aircraft", t.Len()),
		zap.Int("skipped_rows", t.Skipped()),
	)
	return t, nil
}
