// Package navigation builds deep links that hand an itinerary off to mapping apps.
package navigation

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/FACorreiaa/go-tripplanner/internal/app/models"
)

// App is a supported navigation target.
type App string

const (
	GoogleMaps App = "google"
	AppleMaps  App = "apple"
	Waze       App = "waze"
)

// Links holds one deep link per navigation app. Empty strings mean there is nothing to navigate.
type Links struct {
	Google string `json:"google"`
	Apple  string `json:"apple"`
	Waze   string `json:"waze"`
}

// For returns the link for app.
func (l Links) For(app App) string {
	switch app {
	case GoogleMaps:
		return l.Google
	case AppleMaps:
		return l.Apple
	case Waze:
		return l.Waze
	}
	return ""
}

// Build formats the ordered stops into deep links for every app.
func Build(stops []models.ItineraryStop, mode models.TravelMode) Links {
	points := make([]models.Coordinate, 0, len(stops))
	for _, s := range stops {
		points = append(points, s.Coordinates)
	}
	return Links{
		Google: GoogleLink(points, mode),
		Apple:  AppleLink(points, mode),
		Waze:   WazeLink(points),
	}
}

// GoogleLink uses the Maps URLs directions API: first point is the origin, the last the
// destination and everything in between a waypoint.
func GoogleLink(points []models.Coordinate, mode models.TravelMode) string {
	if len(points) == 0 {
		return ""
	}
	q := url.Values{}
	q.Set("api", "1")
	q.Set("destination", coord(points[len(points)-1]))
	if len(points) > 1 {
		q.Set("origin", coord(points[0]))
	}
	if len(points) > 2 {
		waypoints := make([]string, 0, len(points)-2)
		for _, p := range points[1 : len(points)-1] {
			waypoints = append(waypoints, coord(p))
		}
		q.Set("waypoints", strings.Join(waypoints, "|"))
	}
	q.Set("travelmode", googleMode(mode))
	return "https://www.google.com/maps/dir/?" + q.Encode()
}

// AppleLink chains every point after the origin with "to:".
func AppleLink(points []models.Coordinate, mode models.TravelMode) string {
	if len(points) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("https://maps.apple.com/?")
	if len(points) > 1 {
		b.WriteString("saddr=")
		b.WriteString(coord(points[0]))
		b.WriteString("&")
		points = points[1:]
	}
	b.WriteString("daddr=")
	for i, p := range points {
		if i > 0 {
			b.WriteString("+to:")
		}
		b.WriteString(coord(p))
	}
	b.WriteString("&dirflg=")
	b.WriteString(appleMode(mode))
	return b.String()
}

// WazeLink navigates to the final point; Waze does not take waypoints.
func WazeLink(points []models.Coordinate) string {
	if len(points) == 0 {
		return ""
	}
	return "https://waze.com/ul?ll=" + url.QueryEscape(coord(points[len(points)-1])) + "&navigate=yes"
}

func coord(c models.Coordinate) string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
}

func googleMode(mode models.TravelMode) string {
	switch mode {
	case models.ModeDriving, models.ModeGrab:
		return "driving"
	case models.ModeTransit:
		return "transit"
	}
	return "walking"
}

func appleMode(mode models.TravelMode) string {
	switch mode {
	case models.ModeDriving, models.ModeGrab:
		return "d"
	case models.ModeTransit:
		return "r"
	}
	return "w"
}
