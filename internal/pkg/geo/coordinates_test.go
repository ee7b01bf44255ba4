package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/go-tripplanner/internal/app/models"
)

func TestValid(t *testing.T) {
	tests := []struct {
		name  string
		coord models.Coordinate
		want  bool
	}{
		{"bangsar", models.Coordinate{Lat: 3.13, Lng: 101.67}, true},
		{"zero point", models.Coordinate{}, false},
		{"lat out of range", models.Coordinate{Lat: 91, Lng: 10}, false},
		{"lng out of range", models.Coordinate{Lat: 10, Lng: -181}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Valid(tt.coord))
		})
	}
}

func TestCenterAndBounds(t *testing.T) {
	points := []models.Coordinate{{Lat: 3.0, Lng: 101.0}, {}, {Lat: 4.0, Lng: 102.0}}

	assert.Equal(t, models.Coordinate{Lat: 3.5, Lng: 101.5}, Center(points, models.Coordinate{}))
	assert.Equal(t, Bounds{MinLat: 3, MaxLat: 4, MinLng: 101, MaxLng: 102}, BoundsOf(points))

	fallback := models.Coordinate{Lat: 1, Lng: 1}
	assert.Equal(t, fallback, Center(nil, fallback))
	assert.Equal(t, Bounds{}, BoundsOf(nil))
}

func TestDistanceMeters(t *testing.T) {
	a := models.Coordinate{Lat: 3.1301, Lng: 101.6713}
	assert.Zero(t, DistanceMeters(a, a))

	// one degree of latitude is roughly 111 km
	d := DistanceMeters(models.Coordinate{Lat: 0, Lng: 10}, models.Coordinate{Lat: 1, Lng: 10})
	assert.InDelta(t, 111195, d, 100)
}
