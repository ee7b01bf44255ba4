// Package itinerary maps planner payloads into the itinerary view model.
package itinerary

import (
	"fmt"

	"github.com/FACorreiaa/go-tripplanner/internal/app/models"
)

// Defaults applied where the planner payload carries no data.
const (
	DefaultVisitDuration   = 60 // minutes
	DefaultCategory        = "attraction"
	DefaultStopName        = "Unnamed stop"
	DefaultSegmentMode     = models.ModeWalking
	DefaultSegmentDuration = 15   // minutes
	DefaultSegmentDistance = 1200 // meters
)

// ToItinerary converts planner stops into an Itinerary. It never fails: missing optional fields get
// defaults and an empty list yields an empty itinerary.
func ToItinerary(stops []models.PlanStop) models.Itinerary {
	out := make([]models.ItineraryStop, 0, len(stops))
	for i, s := range stops {
		out = append(out, ToStop(i, s))
	}
	return Build(out)
}

// ToStop maps a single planner stop at position i.
func ToStop(i int, s models.PlanStop) models.ItineraryStop {
	place := s.Place

	id := place.ID
	if id == "" {
		id = fmt.Sprintf("stop-%d", i+1)
	}
	name := place.DisplayName
	if name == "" {
		name = DefaultStopName
	}
	category := DefaultCategory
	if len(place.Types) > 0 && place.Types[0] != "" {
		category = place.Types[0]
	}
	isOpen := true
	if place.RegularOpeningHours != nil && place.RegularOpeningHours.OpenNow != nil {
		isOpen = *place.RegularOpeningHours.OpenNow
	}

	insights := []models.Insight{}
	if s.Narrative != "" {
		insights = append(insights, models.Insight{
			Source:  models.InsightAIGenerated,
			Content: s.Narrative,
		})
	}

	stop := models.ItineraryStop{
		ID:          id,
		Name:        name,
		Address:     place.FormattedAddress,
		Coordinates: place.Location,
		Duration:    DefaultVisitDuration,
		Category:    category,
		Rating:      place.Rating,
		IsOpen:      isOpen,
		CrowdLevel:  models.CrowdMedium,
		Insights:    insights,
	}
	if s.EntryFee != nil {
		fee := *s.EntryFee
		stop.EntryFee = &fee
	}
	if len(place.Photos) > 0 {
		stop.Photos = append([]string(nil), place.Photos...)
	}
	return stop
}

// Build assembles an itinerary from an ordered stop list, deriving segments and totals.
func Build(stops []models.ItineraryStop) models.Itinerary {
	if stops == nil {
		stops = []models.ItineraryStop{}
	}
	segments := BuildSegments(stops)
	return models.Itinerary{
		Stops:         stops,
		Segments:      segments,
		TotalDuration: TotalDuration(stops),
		EstimatedCost: EstimatedCost(stops, segments),
	}
}

// Recompute regenerates segments and totals after the stop list of it changed.
func Recompute(it models.Itinerary) models.Itinerary {
	return Build(it.Clone().Stops)
}

// BuildSegments links every stop to its successor, yielding len(stops)-1 segments.
func BuildSegments(stops []models.ItineraryStop) []models.TravelSegment {
	if len(stops) < 2 {
		return []models.TravelSegment{}
	}
	segments := make([]models.TravelSegment, 0, len(stops)-1)
	for i := 0; i < len(stops)-1; i++ {
		cost := 0.0
		segments = append(segments, models.TravelSegment{
			FromStopID: stops[i].ID,
			ToStopID:   stops[i+1].ID,
			Mode:       DefaultSegmentMode,
			Duration:   DefaultSegmentDuration,
			Distance:   DefaultSegmentDistance,
			Cost:       &cost,
		})
	}
	return segments
}

// TotalDuration sums the visit durations of the stops.
func TotalDuration(stops []models.ItineraryStop) int {
	total := 0
	for _, s := range stops {
		total += s.Duration
	}
	return total
}

// EstimatedCost sums entry fees and segment costs.
func EstimatedCost(stops []models.ItineraryStop, segments []models.TravelSegment) float64 {
	total := 0.0
	for _, s := range stops {
		if s.EntryFee != nil {
			total += *s.EntryFee
		}
	}
	for _, seg := range segments {
		if seg.Cost != nil {
			total += *seg.Cost
		}
	}
	return total
}
