// Package digest aggregates enriched flights into the daily digest and the
// hourly panel, writes them to disk and runs the whole batch.
package digest

import (
	"sort"

	"skylog/internal/enrichment"
	"skylog/internal/geo"
	"skylog/internal/operator"
)

// Limits caps the length of each ranked list.
type Limits struct {
	Countries    int
	Operators    int
	Origins      int
	Destinations int
}

// DefaultLimits are the list lengths used when none are configured.
var DefaultLimits = Limits{Countries: 10, Operators: 10, Origins: 20, Destinations: 20}

// orDefault replaces every limit that is not positive with its default.
func (l Limits) orDefault() Limits {
	pick := func(v, def int) int {
		if v > 0 {
			return v
		}
		return def
	}
	return Limits{
		Countries:    pick(l.Countries, DefaultLimits.Countries),
		Operators:    pick(l.Operators, DefaultLimits.Operators),
		Origins:      pick(l.Origins, DefaultLimits.Origins),
		Destinations: pick(l.Destinations, DefaultLimits.Destinations),
	}
}

// CountryCount is one entry of top_paises.
type CountryCount struct {
	Country string `json:"pais"`
	Flag    string `json:"bandeira"`
	Total   int    `json:"total"`
}

// OperatorCount is one entry of top_companhias.
type OperatorCount struct {
	Operator string `json:"cia"`
	Total    int    `json:"total"`
}

// OriginCount is one entry of top_origens.
type OriginCount struct {
	Origin string `json:"origem"`
	Total  int    `json:"total"`
}

// DestinationCount is one entry of top_destinos.
type DestinationCount struct {
	Destination string `json:"destino"`
	Total       int    `json:"total"`
}

// Segment is the first and last position seen for one flight.
type Segment struct {
	Hex      string    `json:"hex"`
	Callsign string    `json:"chamada"`
	From     geo.Point `json:"de"`
	To       geo.Point `json:"para"`
	Altitude string    `json:"alt,omitempty"`
}

// Digest is the daily document.
type Digest struct {
	Flights         []enrichment.Flight `json:"voos_dia"`
	TopCountries    []CountryCount      `json:"top_paises"`
	TopOperators    []OperatorCount     `json:"top_companhias"`
	TopOrigins      []OriginCount       `json:"top_origens"`
	TopDestinations []DestinationCount  `json:"top_destinos"`
	Segments        []Segment           `json:"rotas"`
}

// Panel is the hourly document.
type Panel struct {
	Flights      []enrichment.Flight `json:"ultima_hora"`
	TopCountries []CountryCount      `json:"top_paises"`
	TopOperators []OperatorCount     `json:"top_companhias"`
	Segments     []Segment           `json:"rotas"`
}

// Panel returns the hourly view of d.
func (d Digest) Panel() Panel {
	return Panel{
		Flights:      d.Flights,
		TopCountries: d.TopCountries,
		TopOperators: d.TopOperators,
		Segments:     d.Segments,
	}
}

// Date returns the YYYY-MM-DD part of the newest flight's time. ok is false
// when there are no flights or the time is too short.
func (d Digest) Date() (string, bool) {
	if len(d.Flights) == 0 || len(d.Flights[0].Time) < 10 {
		return "", false
	}
	return d.Flights[0].Time[:10], true
}

type countryKey struct {
	country string
	flag    string
}

// Aggregate builds a digest from flights in first-seen order. Each flight
// counts once towards its operator, country, origin and destination.
func Aggregate(flights []enrichment.Flight, ops operator.Map, lim Limits) Digest {
	lim = lim.orDefault()
	countries := newTally[countryKey]()
	operators := newTally[string]()
	origins := newTally[string]()
	destinations := newTally[string]()

	d := Digest{
		Flights:         make([]enrichment.Flight, 0, len(flights)),
		TopCountries:    []CountryCount{},
		TopOperators:    []OperatorCount{},
		TopOrigins:      []OriginCount{},
		TopDestinations: []DestinationCount{},
		Segments:        []Segment{},
	}

	for _, f := range flights {
		if f.OperatorCode != "" {
			operators.add(f.OperatorCode)
		}
		if f.Country != "" {
			countries.add(countryKey{f.Country, f.Flag})
		}
		if f.Origin != nil && *f.Origin != "" {
			origins.add(*f.Origin)
		}
		if f.Destination != nil && *f.Destination != "" {
			destinations.add(*f.Destination)
		}
		if f.Trace != nil {
			d.Segments = append(d.Segments, Segment{
				Hex:      f.Hex,
				Callsign: f.Callsign,
				From:     f.Trace.From,
				To:       f.Trace.To,
				Altitude: f.Altitude,
			})
		}
		d.Flights = append(d.Flights, f)
	}

	sort.SliceStable(d.Flights, func(i, j int) bool { return d.Flights[i].Time > d.Flights[j].Time })

	for _, c := range countries.top(lim.Countries) {
		d.TopCountries = append(d.TopCountries, CountryCount{Country: c.key.country, Flag: c.key.flag, Total: c.total})
	}
	for _, c := range operators.top(lim.Operators) {
		d.TopOperators = append(d.TopOperators, OperatorCount{Operator: ops.Name(c.key), Total: c.total})
	}
	for _, c := range origins.top(lim.Origins) {
		d.TopOrigins = append(d.TopOrigins, OriginCount{Origin: c.key, Total: c.total})
	}
	for _, c := range destinations.top(lim.Destinations) {
		d.TopDestinations = append(d.TopDestinations, DestinationCount{Destination: c.key, Total: c.total})
	}
	return d
}
