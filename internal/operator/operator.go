// Package operator maps three-letter ICAO callsign prefixes to operator names
// and maintains the prefix table from captured traffic.
package operator

import (
	"encoding/json"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/google/renameio/v2"
	"github.com/rotisserie/eris"
)

// Entry is the table value for one prefix.
type Entry struct {
	Name string `json:"nome"`
}

// Map is prefix -> operator entry.
type Map map[string]Entry

// Load reads an operator table. A missing file is an error.
func Load(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "operator: read %s", path)
	}
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, eris.Wrapf(err, "operator: decode %s", path)
	}
	if m == nil {
		m = Map{}
	}
	return m, nil
}

// Save writes the table, replacing path atomically.
func (m Map) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return eris.Wrap(err, "operator: encode table")
	}
	if err := renameio.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return eris.Wrapf(err, "operator: write %s", path)
	}
	return nil
}

// Name returns the operator name for code, or code itself when unknown.
func (m Map) Name(code string) string {
	if e, ok := m[code]; ok && e.Name != "" {
		return e.Name
	}
	return code
}

// Codes returns the table's prefixes in sorted order.
func (m Map) Codes() []string {
	codes := make([]string, 0, len(m))
	for c := range m {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Code extracts the operator prefix from a callsign: its first three
// characters, upper-cased, when the trimmed callsign has at least three
// characters and those are letters. Anything else has no operator.
func Code(callsign string) string {
	cs := []rune(strings.TrimSpace(callsign))
	if len(cs) < 3 {
		return ""
	}
	for _, r := range cs[:3] {
		if !unicode.IsLetter(r) {
			return ""
		}
	}
	return strings.ToUpper(string(cs[:3]))
}
