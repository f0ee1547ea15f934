// Package feed polls a dump1090 receiver and appends what it sees to the
// hourly and daily period files.
package feed

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"skylog/internal/scan"
)

// Snapshot is one aircraft.json document.
type Snapshot struct {
	Now      float64    `json:"now"`
	Messages int64      `json:"messages"`
	Aircraft []Aircraft `json:"aircraft"`

	raw []byte
}

// Aircraft is one entry of a snapshot. Only the fields written to period
// files are decoded.
type Aircraft struct {
	Hex      Value `json:"hex"`
	Flight   Value `json:"flight"`
	AltBaro  Value `json:"alt_baro"`
	GS       Value `json:"gs"`
	Track    Value `json:"track"`
	Lat      Value `json:"lat"`
	Lon      Value `json:"lon"`
	Seen     Value `json:"seen"`
	Squawk   Value `json:"squawk"`
	Category Value `json:"category"`
}

// Value is a feed field kept as text: strings as-is, numbers as written by
// the receiver (never in exponent form), null or absent as "".
type Value struct {
	Text string
	Set  bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = Value{}
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value{Text: s, Set: true}
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*v = Value{Text: plainNumber(n), Set: true}
	}
	return nil
}

func plainNumber(n json.Number) string {
	s := n.String()
	if !strings.ContainsAny(s, "eE") {
		return s
	}
	f, err := n.Float64()
	if err != nil {
		return s
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Raw returns the document as received.
func (s Snapshot) Raw() []byte {
	return s.raw
}

// Time converts the receiver clock to loc.
func (s Snapshot) Time(loc *time.Location) time.Time {
	sec, frac := math.Modf(s.Now)
	t := time.Unix(int64(sec), int64(math.Round(frac*1e6))*int64(time.Microsecond))
	if loc != nil {
		t = t.In(loc)
	}
	return t
}

// Timestamp renders t as a local ISO-8601 timestamp with microseconds only
// when they are non-zero.
func Timestamp(t time.Time) string {
	if t.Nanosecond()/1000 != 0 {
		return t.Format("2006-01-02T15:04:05.000000")
	}
	return t.Format("2006-01-02T15:04:05")
}

// Records converts every aircraft that carries a hex code into a period row
// stamped with the snapshot time in loc.
func (s Snapshot) Records(loc *time.Location) []scan.Record {
	ts := Timestamp(s.Time(loc))
	out := make([]scan.Record, 0, len(s.Aircraft))
	for _, a := range s.Aircraft {
		if !a.Hex.Set {
			continue
		}
		out = append(out, scan.Record{
			Timestamp: ts,
			Hex:       a.Hex.Text,
			Flight:    strings.TrimSpace(a.Flight.Text),
			Altitude:  a.AltBaro.Text,
			Speed:     a.GS.Text,
			Track:     a.Track.Text,
			Lat:       a.Lat.Text,
			Lon:       a.Lon.Text,
			Seen:      a.Seen.Text,
			Squawk:    a.Squawk.Text,
			Category:  a.Category.Text,
		})
	}
	return out
}
