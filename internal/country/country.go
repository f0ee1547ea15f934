// Package country resolves ICAO 24-bit aircraft addresses to the country of
// registration using the published address allocation blocks.
package country

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Unknown is returned when no allocation block contains an address.
const Unknown = "Unknown"

// Range is one allocation block. Start and End are inclusive hex addresses.
type Range struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Country string `json:"country"`
	Flag    string `json:"bandeira"`
}

type block struct {
	start, end uint64
	valid      bool
	country    string
	flag       string
}

// Table is an ordered list of allocation blocks. It is read-only after Load.
type Table struct {
	blocks []block
}

// NewTable builds a table from ranges, keeping their order. Ranges whose
// bounds do not parse as hex are kept but never match.
func NewTable(ranges []Range) *Table {
	t := &Table{blocks: make([]block, 0, len(ranges))}
	for _, r := range ranges {
		b := block{country: r.Country, flag: r.Flag}
		start, err1 := parseHex(r.Start)
		end, err2 := parseHex(r.End)
		if err1 == nil && err2 == nil {
			b.start, b.end, b.valid = start, end, true
		}
		t.blocks = append(t.blocks, b)
	}
	return t
}

// Load reads a JSON array of ranges from path.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "country: read %s", path)
	}
	var ranges []Range
	if err := json.Unmarshal(data, &ranges); err != nil {
		return nil, eris.Wrapf(err, "country: decode %s", path)
	}
	return NewTable(ranges), nil
}

// Len returns the number of blocks in the table.
func (t *Table) Len() int {
	return len(t.blocks)
}

// Resolve returns the country and flag of the first block containing hex.
// Unparseable addresses and addresses outside every block resolve to
// (Unknown, "").
func (t *Table) Resolve(hex string) (string, string) {
	v, err := parseHex(hex)
	if err != nil {
		return Unknown, ""
	}
	for _, b := range t.blocks {
		if !b.valid || v < b.start || v > b.end {
			continue
		}
		if b.country == "" {
			return Unknown, b.flag
		}
		return b.country, b.flag
	}
	return Unknown, ""
}

func parseHex(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(s), 16, 64)
}
