package route

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"skylog/internal/geo"
)

// Locator is a position-aware route source.
type Locator interface {
	Locate(ctx context.Context, callsign string, pos geo.Point) (Route, error)
}

// Lookuper is a callsign-only route source.
type Lookuper interface {
	Lookup(ctx context.Context, callsign string) (Route, error)
}

// Resolver answers route questions for one run: cache first, then the
// primary source, then the fallback for whatever is still unknown.
type Resolver struct {
	cache    *Cache
	primary  Locator
	fallback Lookuper
	queried  map[string]struct{}
}

// NewResolver returns a resolver over cache. Either source may be nil.
func NewResolver(cache *Cache, primary Locator, fallback Lookuper) *Resolver {
	return &Resolver{
		cache:    cache,
		primary:  primary,
		fallback: fallback,
		queried:  make(map[string]struct{}),
	}
}

// Cache returns the resolver's cache.
func (r *Resolver) Cache() *Cache {
	return r.cache
}

// Resolve returns what is known about callsign's route. pos is the flight's
// position when known; without it the primary source is skipped. Source
// failures are logged and treated as no data. Each callsign reaches the
// network at most once per resolver.
func (r *Resolver) Resolve(ctx context.Context, callsign string, pos *geo.Point) Route {
	callsign = strings.TrimSpace(callsign)
	if callsign == "" {
		return Route{}
	}

	cached, _ := r.cache.Lookup(callsign)
	if cached.Complete() {
		return cached
	}
	if _, done := r.queried[callsign]; done {
		return cached
	}
	r.queried[callsign] = struct{}{}

	merged := cached
	if pos != nil && r.primary != nil {
		found, err := r.primary.Locate(ctx, callsign, *pos)
		if err != nil {
			logSourceError("primary", callsign, err)
		}
		merged = merged.Fill(found)
	}
	if !merged.Complete() && r.fallback != nil {
		found, err := r.fallback.Lookup(ctx, callsign)
		if err != nil {
			logSourceError("fallback", callsign, err)
		}
		merged = merged.Fill(found)
	}

	if r.cache.Put(callsign, merged) {
		zap.L().Debug("route: resolved",
			zap.String("callsign", callsign),
			zap.String("origin", merged.OriginName()),
			zap.String("destination", merged.DestinationName()),
		)
	}
	return merged
}

func logSourceError(source, key string, err error) {
	zap.L().Debug("route: source unavailable",
		zap.String("source", source),
		zap.String("key", key),
		zap.Error(err),
	)
}
