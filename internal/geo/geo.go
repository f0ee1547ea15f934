// Package geo provides great-circle distances and a nearest-area index over
// named ground locations.
package geo

import (
	"encoding/json"
	"math"
)

// EarthRadiusKm is the mean Earth radius used for all distances.
const EarthRadiusKm = 6371.0

// Point is a WGS84 position in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// MarshalJSON encodes the point as a [lat, lon] pair.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lat, p.Lon})
}

// UnmarshalJSON decodes a [lat, lon] pair.
func (p *Point) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	p.Lat, p.Lon = pair[0], pair[1]
	return nil
}

// Haversine returns the great-circle distance in kilometres between two
// positions, rounded to one decimal place.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1, lon1 = radians(lat1), radians(lon1)
	lat2, lon2 = radians(lat2), radians(lon2)
	dlat := lat2 - lat1
	dlon := lon2 - lon1
	a := math.Pow(math.Sin(dlat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)
	c := 2 * math.Asin(math.Sqrt(a))
	return math.Round(EarthRadiusKm*c*10) / 10
}

// Distance is Haversine between two points.
func Distance(a, b Point) float64 {
	return Haversine(a.Lat, a.Lon, b.Lat, b.Lon)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
