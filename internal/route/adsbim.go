package route

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"skylog/internal/geo"
)

// DefaultADSBImURL is the adsb.im route-set endpoint.
const DefaultADSBImURL = "https://adsb.im/api/0/routeset"

// AirportNamer resolves ICAO airport codes to display names.
type AirportNamer interface {
	AirportName(ctx context.Context, icao string) string
}

// ADSBIm is the position-aware primary route source.
type ADSBIm struct {
	svc   service
	url   string
	namer AirportNamer
}

// ADSBImConfig configures an adsb.im client.
type ADSBImConfig struct {
	URL        string
	Timeout    time.Duration
	RatePerSec float64
	HTTPClient *http.Client
}

// NewADSBIm returns an adsb.im client that names bare airport codes with
// namer.
func NewADSBIm(cfg ADSBImConfig, namer AirportNamer) *ADSBIm {
	if cfg.URL == "" {
		cfg.URL = DefaultADSBImURL
	}
	return &ADSBIm{
		svc:   newService("adsb.im", cfg.HTTPClient, cfg.Timeout, cfg.RatePerSec),
		url:   cfg.URL,
		namer: namer,
	}
}

type routeSetRequest struct {
	Planes []routeSetPlane `json:"planes"`
}

type routeSetPlane struct {
	Callsign string  `json:"callsign"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

type routeSetEntry struct {
	Airports     json.RawMessage `json:"_airports"`
	AirportCodes string          `json:"airport_codes"`
}

// airports returns the raw airport descriptors. Anything other than an array
// yields none.
func (e routeSetEntry) airports() []json.RawMessage {
	var list []json.RawMessage
	if len(e.Airports) == 0 || json.Unmarshal(e.Airports, &list) != nil {
		return nil
	}
	return list
}

type routeSetAirport struct {
	Location    string `json:"location"`
	CountryISO2 string `json:"countryiso2"`
	Country     string `json:"country"`
}

// airportLabel formats one descriptor as "locality, country". Entries that are
// not objects, or lack either part, have no label.
func airportLabel(raw json.RawMessage) string {
	var a routeSetAirport
	if json.Unmarshal(raw, &a) != nil {
		return ""
	}
	country := a.CountryISO2
	if country == "" {
		country = a.Country
	}
	if a.Location == "" || country == "" {
		return ""
	}
	return a.Location + ", " + country
}

// Locate asks adsb.im for the route of callsign currently flying at pos.
// Airport descriptors are labelled "locality, country"; when none of them
// can be labelled the combined airport_codes field is used instead.
func (a *ADSBIm) Locate(ctx context.Context, callsign string, pos geo.Point) (Route, error) {
	req := routeSetRequest{Planes: []routeSetPlane{{Callsign: callsign, Lat: pos.Lat, Lng: pos.Lon}}}
	var resp []routeSetEntry
	if err := a.svc.postJSON(ctx, a.url, req, &resp); err != nil {
		return Route{}, err
	}
	if len(resp) == 0 {
		return Route{}, nil
	}
	entry := resp[0]

	if airports := entry.airports(); len(airports) >= 2 {
		r := Of(airportLabel(airports[0]), airportLabel(airports[len(airports)-1]))
		if !r.Empty() {
			return r, nil
		}
	}

	origin, dest, ok := splitAirportCodes(entry.AirportCodes)
	if !ok || a.namer == nil {
		return Route{}, nil
	}
	return Of(a.namer.AirportName(ctx, origin), a.namer.AirportName(ctx, dest)), nil
}

// splitAirportCodes reads "ORIG-DEST" or a multi-leg "ORIG-VIA-DEST" and
// returns the first and last codes.
func splitAirportCodes(codes string) (string, string, bool) {
	if !strings.Contains(codes, "-") {
		return "", "", false
	}
	parts := strings.Split(codes, "-")
	origin := strings.TrimSpace(parts[0])
	dest := strings.TrimSpace(parts[len(parts)-1])
	if origin == "" && dest == "" {
		return "", "", false
	}
	return origin, dest, true
}
