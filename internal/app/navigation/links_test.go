package navigation

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-tripplanner/internal/app/models"
)

func stopsAt(points ...models.Coordinate) []models.ItineraryStop {
	stops := make([]models.ItineraryStop, 0, len(points))
	for _, p := range points {
		stops = append(stops, models.ItineraryStop{Coordinates: p})
	}
	return stops
}

var (
	a = models.Coordinate{Lat: 3.1301, Lng: 101.6713}
	b = models.Coordinate{Lat: 3.1432, Lng: 101.6855}
	c = models.Coordinate{Lat: 3.1579, Lng: 101.7116}
)

func TestBuildEmpty(t *testing.T) {
	assert.Equal(t, Links{}, Build(nil, models.ModeWalking))
}

func TestGoogleLink(t *testing.T) {
	link := Build(stopsAt(a, b, c), models.ModeWalking).Google
	u, err := url.Parse(link)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "3.1301,101.6713", q.Get("origin"))
	assert.Equal(t, "3.1432,101.6855", q.Get("waypoints"))
	assert.Equal(t, "3.1579,101.7116", q.Get("destination"))
	assert.Equal(t, "walking", q.Get("travelmode"))
}

func TestGoogleLinkSingleStop(t *testing.T) {
	u, err := url.Parse(GoogleLink([]models.Coordinate{a}, models.ModeDriving))
	require.NoError(t, err)
	assert.Empty(t, u.Query().Get("origin"))
	assert.Equal(t, "3.1301,101.6713", u.Query().Get("destination"))
	assert.Equal(t, "driving", u.Query().Get("travelmode"))
}

func TestAppleLink(t *testing.T) {
	assert.Equal(t,
		"https://maps.apple.com/?saddr=3.1301,101.6713&daddr=3.1432,101.6855+to:3.1579,101.7116&dirflg=w",
		AppleLink([]models.Coordinate{a, b, c}, models.ModeWalking))
	assert.Equal(t,
		"https://maps.apple.com/?daddr=3.1301,101.6713&dirflg=r",
		AppleLink([]models.Coordinate{a}, models.ModeTransit))
}

func TestWazeLinkTargetsLastStop(t *testing.T) {
	links := Build(stopsAt(a, c), models.ModeWalking)
	assert.Equal(t, "https://waze.com/ul?ll=3.1579%2C101.7116&navigate=yes", links.Waze)
	assert.Equal(t, links.Waze, links.For(Waze))
}
