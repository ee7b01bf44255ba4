// Package geo holds small coordinate helpers shared by the itinerary and route code.
package geo

import (
	"math"

	"github.com/FACorreiaa/go-tripplanner/internal/app/models"
)

const earthRadiusMeters = 6371000.0

// Valid checks that lat/lng are in range and not the zero point, which upstream data uses for "unknown".
func Valid(c models.Coordinate) bool {
	if c.Lat == 0 && c.Lng == 0 {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Center averages the valid points, returning fallback when there are none.
func Center(points []models.Coordinate, fallback models.Coordinate) models.Coordinate {
	var latSum, lngSum float64
	n := 0
	for _, p := range points {
		if !Valid(p) {
			continue
		}
		latSum += p.Lat
		lngSum += p.Lng
		n++
	}
	if n == 0 {
		return fallback
	}
	return models.Coordinate{Lat: latSum / float64(n), Lng: lngSum / float64(n)}
}

// Bounds is the bounding box of a set of points.
type Bounds struct {
	MinLat float64 `json:"minLat"`
	MaxLat float64 `json:"maxLat"`
	MinLng float64 `json:"minLng"`
	MaxLng float64 `json:"maxLng"`
}

// BoundsOf returns the bounding box of the valid points, or the zero Bounds when there are none.
func BoundsOf(points []models.Coordinate) Bounds {
	b := Bounds{MinLat: math.MaxFloat64, MaxLat: -math.MaxFloat64, MinLng: math.MaxFloat64, MaxLng: -math.MaxFloat64}
	found := false
	for _, p := range points {
		if !Valid(p) {
			continue
		}
		found = true
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
		b.MinLng = math.Min(b.MinLng, p.Lng)
		b.MaxLng = math.Max(b.MaxLng, p.Lng)
	}
	if !found {
		return Bounds{}
	}
	return b
}

// DistanceMeters is the great-circle distance between a and b.
func DistanceMeters(a, b models.Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
