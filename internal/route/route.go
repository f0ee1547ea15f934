// Package route resolves a callsign to its origin and destination airports.
// Answers come from a persistent cache first, then from a position-aware
// primary service (adsb.im) and a callsign-only fallback (OpenSky).
package route

import "context"

// Route is what is known about a callsign's route. A nil side is unknown.
type Route struct {
	Origin      *string `json:"origem"`
	Destination *string `json:"destino"`
}

// Complete reports whether both sides are known.
func (r Route) Complete() bool {
	return r.Origin != nil && r.Destination != nil
}

// Empty reports whether neither side is known.
func (r Route) Empty() bool {
	return r.Origin == nil && r.Destination == nil
}

// Equal compares two routes by value.
func (r Route) Equal(o Route) bool {
	return sameSide(r.Origin, o.Origin) && sameSide(r.Destination, o.Destination)
}

// Fill returns r with its unknown sides taken from o. Known sides are never
// replaced.
func (r Route) Fill(o Route) Route {
	if r.Origin == nil {
		r.Origin = o.Origin
	}
	if r.Destination == nil {
		r.Destination = o.Destination
	}
	return r
}

// OriginName returns the origin or "" when unknown.
func (r Route) OriginName() string { return deref(r.Origin) }

// DestinationName returns the destination or "" when unknown.
func (r Route) DestinationName() string { return deref(r.Destination) }

// Store persists the route cache between runs.
type Store interface {
	// Load returns every cached entry.
	Load(ctx context.Context) (map[string]Route, error)
	// Save persists the cache. changed lists the callsigns modified during
	// the run; file-backed stores rewrite everything regardless.
	Save(ctx context.Context, all map[string]Route, changed []string) error
}

// Of builds a route from plain strings, treating "" as unknown.
func Of(origin, destination string) Route {
	return Route{Origin: known(origin), Destination: known(destination)}
}

func known(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func sameSide(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
