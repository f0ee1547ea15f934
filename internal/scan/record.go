// Package scan reads and writes the per-period CSV files produced by the
// collector and reduces one period's rows to a single best record per flight.
package scan

import (
	"math"
	"strconv"
	"strings"

	"skylog/internal/geo"
)

// Header is the fixed column order of every period file.
var Header = []string{
	"timestamp", "hex", "flight", "alt_baro", "gs", "track",
	"lat", "lon", "seen", "squawk", "category",
}

// Record is one row of a period file: one aircraft seen in one poll. All
// values are kept exactly as read.
type Record struct {
	Timestamp string `csv:"timestamp"`
	Hex       string `csv:"hex"`
	Flight    string `csv:"flight"`
	Altitude  string `csv:"alt_baro"`
	Speed     string `csv:"gs"`
	Track     string `csv:"track"`
	Lat       string `csv:"lat"`
	Lon       string `csv:"lon"`
	Seen      string `csv:"seen"`
	Squawk    string `csv:"squawk"`
	Category  string `csv:"category"`
}

// Key identifies the flight within a period: the hex code, or the callsign
// when the hex code is empty. An empty key means the row is unusable.
func (r Record) Key() string {
	if hex := strings.TrimSpace(r.Hex); hex != "" {
		return hex
	}
	return r.Callsign()
}

// Callsign returns the trimmed flight field.
func (r Record) Callsign() string {
	return strings.TrimSpace(r.Flight)
}

// Score counts the non-empty values among the fields that describe the
// aircraft's state. Higher means more complete.
func (r Record) Score() int {
	n := 0
	for _, v := range []string{
		r.Flight, r.Altitude, r.Speed, r.Track, r.Lat, r.Lon, r.Seen, r.Squawk, r.Category,
	} {
		if v != "" {
			n++
		}
	}
	return n
}

// Position parses lat/lon. ok is false when either is blank, not a number or
// outside WGS84 bounds.
func (r Record) Position() (geo.Point, bool) {
	lat, ok := ParseFloat(r.Lat)
	if !ok || math.Abs(lat) > 90 {
		return geo.Point{}, false
	}
	lon, ok := ParseFloat(r.Lon)
	if !ok || math.Abs(lon) > 180 {
		return geo.Point{}, false
	}
	return geo.Point{Lat: lat, Lon: lon}, true
}

// ParseFloat parses a trimmed decimal value; blank, malformed or non-finite
// input (NaN, Inf) is reported as absent rather than as an error.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
