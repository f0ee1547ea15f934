package state

import (
	"encoding/json"
	"time"
)

// Summary is what the fleet summary knows about one aircraft.
type Summary struct {
	Count     int       `json:"count"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
	Flights   []string  `json:"flights"`
}

// MarshalJSON writes the times as local ISO-8601 without a zone, the same
// form the collector writes them in.
func (s Summary) MarshalJSON() ([]byte, error) {
	flights := s.Flights
	if flights == nil {
		flights = []string{}
	}
	return json.Marshal(struct {
		Count     int      `json:"count"`
		FirstSeen string   `json:"first_seen"`
		LastSeen  string   `json:"last_seen"`
		Flights   []string `json:"flights"`
	}{s.Count, isoformat(s.FirstSeen), isoformat(s.LastSeen), flights})
}

func isoformat(t time.Time) string {
	if t.Nanosecond()/1000 != 0 {
		return t.Format("2006-01-02T15:04:05.000000")
	}
	return t.Format("2006-01-02T15:04:05")
}

// timestampLayouts are tried in order when reading period timestamps.
var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseTimestamp reads a collector timestamp. Fractional seconds are
// accepted by every layout.
func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
