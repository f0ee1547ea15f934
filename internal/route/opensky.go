package route

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultOpenSkyURL is the OpenSky API root.
const DefaultOpenSkyURL = "https://opensky-network.org/api"

// OpenSky is the callsign-only fallback route source. It also resolves ICAO
// airport codes to names for both sources.
type OpenSky struct {
	svc      service
	routeURL string
	airports string

	mu    sync.Mutex
	names map[string]*string
}

// OpenSkyConfig configures an OpenSky client. Empty URLs use the public API.
type OpenSkyConfig struct {
	RoutesURL   string
	AirportsURL string
	Timeout     time.Duration
	RatePerSec  float64
	HTTPClient  *http.Client
}

// NewOpenSky returns an OpenSky client.
func NewOpenSky(cfg OpenSkyConfig) *OpenSky {
	if cfg.RoutesURL == "" {
		cfg.RoutesURL = DefaultOpenSkyURL + "/routes"
	}
	if cfg.AirportsURL == "" {
		cfg.AirportsURL = DefaultOpenSkyURL + "/airports"
	}
	return &OpenSky{
		svc:      newService("opensky", cfg.HTTPClient, cfg.Timeout, cfg.RatePerSec),
		routeURL: cfg.RoutesURL,
		airports: cfg.AirportsURL,
		names:    make(map[string]*string),
	}
}

type openSkyRoute struct {
	Route []string `json:"route"`
}

type openSkyAirport struct {
	Name string `json:"name"`
}

// Lookup asks OpenSky for the ICAO codes flown under callsign and names the
// first and last of them.
func (o *OpenSky) Lookup(ctx context.Context, callsign string) (Route, error) {
	var resp openSkyRoute
	u := o.routeURL + "?callsign=" + url.QueryEscape(callsign)
	if err := o.svc.getJSON(ctx, u, &resp); err != nil {
		return Route{}, err
	}
	if len(resp.Route) < 2 {
		return Route{}, nil
	}
	return Of(
		o.AirportName(ctx, resp.Route[0]),
		o.AirportName(ctx, resp.Route[len(resp.Route)-1]),
	), nil
}

// AirportName returns the airport name for an ICAO code, or "" when it
// cannot be found. Answers, including misses, are remembered for the life of
// the client.
func (o *OpenSky) AirportName(ctx context.Context, icao string) string {
	icao = strings.TrimSpace(icao)
	if icao == "" {
		return ""
	}

	o.mu.Lock()
	cached, ok := o.names[icao]
	o.mu.Unlock()
	if ok {
		return deref(cached)
	}

	var resp openSkyAirport
	u := o.airports + "?icao=" + url.QueryEscape(icao)
	if err := o.svc.getJSON(ctx, u, &resp); err != nil {
		logSourceError("opensky airports", icao, err)
		// Failures are not remembered; a later flight may succeed.
		return ""
	}

	o.mu.Lock()
	o.names[icao] = known(resp.Name)
	o.mu.Unlock()
	return resp.Name
}
