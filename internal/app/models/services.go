package models

import "time"

// PlaceSearchRequest queries the places service.
type PlaceSearchRequest struct {
	Query    string      `json:"query"`
	Location *Coordinate `json:"location,omitempty"`
	// RadiusMeters limits results around Location.
	RadiusMeters int    `json:"radius,omitempty"`
	Type         string `json:"type,omitempty"`
	Limit        int    `json:"limit,omitempty"`
}

// RouteRequest asks for travel between two points.
type RouteRequest struct {
	Origin      Coordinate `json:"origin"`
	Destination Coordinate `json:"destination"`
	Mode        TravelMode `json:"mode"`
}

// Route is a computed leg between two points.
type Route struct {
	Mode TravelMode `json:"mode"`
	// Duration is in minutes, Distance in meters.
	Duration int      `json:"duration"`
	Distance int      `json:"distance"`
	Cost     *float64 `json:"cost,omitempty"`
	Polyline string   `json:"polyline,omitempty"`
}

// WeatherRequest asks for the forecast at a point on a day.
type WeatherRequest struct {
	Location Coordinate `json:"location"`
	Date     time.Time  `json:"date"`
}

// Forecast is a single-day weather summary.
type Forecast struct {
	Date                time.Time `json:"date"`
	Summary             string    `json:"summary"`
	TempHighC           float64   `json:"tempHighC"`
	TempLowC            float64   `json:"tempLowC"`
	PrecipitationChance float64   `json:"precipitationChance"`
}

// CreatePlanRequest asks the planner for a new plan.
type CreatePlanRequest struct {
	UserID  string        `json:"user_id,omitempty"`
	Styles  []TravelStyle `json:"styles"`
	Context TravelContext `json:"context"`
}
