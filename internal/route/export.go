package route

import (
	"io"
	"sort"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
)

type exportRow struct {
	Callsign    string `csv:"callsign"`
	Origin      string `csv:"origin"`
	Destination string `csv:"destination"`
}

// ExportCSV writes entries as callsign,origin,destination rows sorted by
// callsign. Unknown sides are empty.
func ExportCSV(w io.Writer, entries map[string]Route) error {
	rows := make([]exportRow, 0, len(entries))
	for cs, r := range entries {
		rows = append(rows, exportRow{Callsign: cs, Origin: r.OriginName(), Destination: r.DestinationName()})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Callsign < rows[j].Callsign })

	data, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrap(err, "route: encode export")
	}
	if _, err := w.Write(data); err != nil {
		return eris.Wrap(err, "route: write export")
	}
	return nil
}

// Stats summarises a cache.
type Stats struct {
	Total    int `json:"total"`
	Complete int `json:"complete"`
	Partial  int `json:"partial"`
}

// Summarise counts complete and partial entries.
func Summarise(entries map[string]Route) Stats {
	var s Stats
	for _, r := range entries {
		switch {
		case r.Complete():
			s.Complete++
		case !r.Empty():
			s.Partial++
		}
	}
	s.Total = len(entries)
	return s
}
