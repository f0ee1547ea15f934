package geo

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"
)

// Area is a named ground location with a representative point.
type Area struct {
	Name  string
	Point Point
}

// Index answers nearest-area queries by linear scan.
type Index struct {
	areas []Area
}

// NewIndex builds an index over areas, preserving their order.
func NewIndex(areas []Area) *Index {
	return &Index{areas: append([]Area(nil), areas...)}
}

// Len returns the number of areas in the index.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.areas)
}

// Nearest returns the name of the area closest to (lat, lon). Ties keep the
// earlier area. ok is false when the index is empty or the closest area has
// no name.
func (i *Index) Nearest(lat, lon float64) (name string, ok bool) {
	if i.Len() == 0 {
		return "", false
	}
	best := -1.0
	for _, a := range i.areas {
		d := Haversine(lat, lon, a.Point.Lat, a.Point.Lon)
		if best < 0 || d < best {
			best = d
			name = a.Name
		}
	}
	return name, name != ""
}

type rawFeature struct {
	Properties map[string]any  `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

type rawCollection struct {
	Features []rawFeature `json:"features"`
}

// LoadGeoJSON reads a FeatureCollection of named areas. A missing file yields
// an empty index. Features without a usable geometry are skipped.
func LoadGeoJSON(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		zap.L().Warn("geo: feature file not found, nearest area disabled", zap.String("path", path))
		return NewIndex(nil), nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "geo: read %s", path)
	}
	return ParseGeoJSON(data)
}

// ParseGeoJSON decodes a FeatureCollection into an index.
func ParseGeoJSON(data []byte) (*Index, error) {
	var fc rawCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrap(err, "geo: decode feature collection")
	}

	areas := make([]Area, 0, len(fc.Features))
	skipped := 0
	for _, f := range fc.Features {
		pt, ok := representativePoint(f.Geometry)
		if !ok {
			skipped++
			continue
		}
		areas = append(areas, Area{Name: featureName(f.Properties), Point: pt})
	}
	if skipped > 0 {
		zap.L().Debug("geo: skipped features without usable geometry", zap.Int("skipped", skipped))
	}
	return NewIndex(areas), nil
}

func featureName(props map[string]any) string {
	for _, key := range []string{"nome", "name"} {
		if s, ok := props[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// representativePoint returns a point geometry's coordinate, or the centroid
// of a polygonal or linear geometry.
func representativePoint(raw json.RawMessage) (Point, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return Point{}, false
	}
	var g geom.T
	if err := geojson.Unmarshal(raw, &g); err != nil || g == nil {
		return Point{}, false
	}

	var c geom.Coord
	switch t := g.(type) {
	case *geom.Point:
		c = t.Coords()
	default:
		centroid, err := xy.Centroid(g)
		if err != nil {
			return Point{}, false
		}
		c = centroid
	}
	if len(c) < 2 {
		return Point{}, false
	}
	return Point{Lat: c.Y(), Lon: c.X()}, true
}
