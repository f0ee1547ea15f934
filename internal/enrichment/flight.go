package enrichment

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"skylog/internal/scan"
)

// Flight is one enriched entry of a digest's flight list.
type Flight struct {
	Hex         string   `json:"hex"`
	Callsign    string   `json:"chamada"`
	Operator    string   `json:"cia"`
	Country     string   `json:"pais"`
	Flag        string   `json:"bandeira"`
	Area        *string  `json:"local"`
	Origin      *string  `json:"origem"`
	Destination *string  `json:"destino"`
	Altitude    string   `json:"alt"`
	Speed       string   `json:"vel"`
	Dist        Distance `json:"dist"`
	Time        string   `json:"hora"`

	// OperatorCode and Trace feed the aggregates and are not part of the
	// flight object.
	OperatorCode string      `json:"-"`
	Trace        *scan.Trace `json:"-"`
}

// Key is the flight's identity within the period.
func (f Flight) Key() string {
	if f.Hex != "" {
		return f.Hex
	}
	return f.Callsign
}

// Distance is the distance from the station in km. It encodes as a number
// when known and as "" otherwise.
type Distance struct {
	Km    float64
	Known bool
}

// Km returns a known distance. NaN and infinities are unknown.
func Km(v float64) Distance {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Distance{}
	}
	return Distance{Km: v, Known: true}
}

// MarshalJSON implements json.Marshaler.
func (d Distance) MarshalJSON() ([]byte, error) {
	if !d.Known {
		return []byte(`""`), nil
	}
	return []byte(strconv.FormatFloat(d.Km, 'f', -1, 64)), nil
}

// UnmarshalJSON accepts a number, "" or null.
func (d *Distance) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte(`""`)) || bytes.Equal(data, []byte("null")) {
		*d = Distance{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*d = Km(v)
	return nil
}
