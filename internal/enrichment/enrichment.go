// Package enrichment turns a period's best record per flight into a digest
// flight: distance from the station, nearest area, registration country,
// operator and route.
package enrichment

import (
	"context"
	"strings"

	"skylog/internal/geo"
	"skylog/internal/operator"
	"skylog/internal/route"
	"skylog/internal/scan"
)

// CountryResolver maps an ICAO hex code to country and flag.
type CountryResolver interface {
	Resolve(hex string) (country, flag string)
}

// AreaIndex finds the nearest named area to a position.
type AreaIndex interface {
	Nearest(lat, lon float64) (string, bool)
}

// RouteResolver resolves a callsign to a route.
type RouteResolver interface {
	Resolve(ctx context.Context, callsign string, pos *geo.Point) route.Route
}

// Enricher holds the lookup tables used for every flight in a run.
type Enricher struct {
	Countries CountryResolver
	Areas     AreaIndex
	Operators operator.Map
	Routes    RouteResolver
	Station   geo.Point
}

// Enrich builds the digest flight for b. ok is false when the flight has no
// altitude, no speed and no known position, in which case it is left out of
// the digest and no route lookup is made.
func (e *Enricher) Enrich(ctx context.Context, b scan.Best) (Flight, bool) {
	rec := b.Record
	callsign := rec.Callsign()
	hex := strings.TrimSpace(rec.Hex)

	f := Flight{
		Hex:      hex,
		Callsign: callsign,
		Altitude: strings.TrimSpace(rec.Altitude),
		Speed:    strings.TrimSpace(rec.Speed),
		Time:     truncate(rec.Timestamp, 16),
		Trace:    b.Trace,
	}

	pos, hasPos := rec.Position()
	if hasPos {
		f.Dist = Km(geo.Distance(e.Station, pos))
		if e.Areas != nil {
			if name, ok := e.Areas.Nearest(pos.Lat, pos.Lon); ok {
				f.Area = &name
			}
		}
	}

	if f.Altitude == "" && f.Speed == "" && !f.Dist.Known {
		return Flight{}, false
	}

	f.OperatorCode = operator.Code(callsign)
	f.Operator = e.Operators.Name(f.OperatorCode)

	f.Country, f.Flag = e.Countries.Resolve(hex)

	if callsign != "" && e.Routes != nil {
		var at *geo.Point
		if hasPos {
			at = &pos
		}
		r := e.Routes.Resolve(ctx, callsign, at)
		f.Origin, f.Destination = r.Origin, r.Destination
	}
	return f, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
