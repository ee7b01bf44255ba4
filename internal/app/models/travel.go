package models

import "time"

// TravelStyle is a travel persona the user can pick before planning.
type TravelStyle struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Icon        string   `json:"icon"`
	Description string   `json:"description"`
	Examples    []string `json:"examples,omitempty"`
}

// Coordinate is a WGS84 point.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Child is a travelling child; Age is in whole years.
type Child struct {
	Age int `json:"age"`
}

// TravelGroup describes who is travelling.
type TravelGroup struct {
	Adults   int     `json:"adults"`
	Children []Child `json:"children"`
}

// DateRange is an inclusive trip window. Start is never after End.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Days returns the number of calendar days covered by the range.
func (d DateRange) Days() int {
	if d.End.Before(d.Start) {
		return 0
	}
	return int(d.End.Sub(d.Start).Hours()/24) + 1
}

// TravelContext is the trip context entered once per planning session.
type TravelContext struct {
	Location      string      `json:"location"`
	Coordinates   *Coordinate `json:"coordinates,omitempty"`
	Group         TravelGroup `json:"group"`
	Dates         DateRange   `json:"dates"`
	Budget        float64     `json:"budget"`
	MobilityNeeds []string    `json:"mobilityNeeds"`
}

// Clone returns a deep copy of the context.
func (c TravelContext) Clone() TravelContext {
	out := c
	if c.Coordinates != nil {
		coord := *c.Coordinates
		out.Coordinates = &coord
	}
	if c.Group.Children != nil {
		out.Group.Children = append([]Child(nil), c.Group.Children...)
	}
	if c.MobilityNeeds != nil {
		out.MobilityNeeds = append([]string(nil), c.MobilityNeeds...)
	}
	return out
}
