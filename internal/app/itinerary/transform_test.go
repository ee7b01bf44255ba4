package itinerary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-tripplanner/internal/app/models"
)

func boolPtr(b bool) *bool        { return &b }
func floatPtr(f float64) *float64 { return &f }

func samplePlanStops() []models.PlanStop {
	return []models.PlanStop{
		{
			Place: models.PlaceDetails{
				ID:               "p1",
				DisplayName:      "Bangsar Village",
				FormattedAddress: "1 Jalan Telawi 1, Bangsar",
				Location:         models.Coordinate{Lat: 3.1301, Lng: 101.6713},
				Types:            []string{"shopping_mall", "point_of_interest"},
				Rating:           4.4,
				RegularOpeningHours: &models.OpeningHours{
					OpenNow: boolPtr(false),
				},
			},
			Narrative: "Start with coffee under the arches.",
			EntryFee:  floatPtr(12.5),
		},
		{
			Place: models.PlaceDetails{
				ID:          "p2",
				DisplayName: "Lake Gardens",
				Location:    models.Coordinate{Lat: 3.1432, Lng: 101.6855},
			},
		},
		{
			Place: models.PlaceDetails{},
		},
	}
}

func TestToItinerary(t *testing.T) {
	it := ToItinerary(samplePlanStops())

	require.Len(t, it.Stops, 3)
	require.Len(t, it.Segments, 2)

	first := it.Stops[0]
	assert.Equal(t, "p1", first.ID)
	assert.Equal(t, "shopping_mall", first.Category)
	assert.False(t, first.IsOpen)
	assert.Equal(t, models.CrowdMedium, first.CrowdLevel)
	assert.Equal(t, DefaultVisitDuration, first.Duration)
	require.Len(t, first.Insights, 1)
	assert.Equal(t, models.InsightAIGenerated, first.Insights[0].Source)
	assert.Equal(t, "Start with coffee under the arches.", first.Insights[0].Content)

	second := it.Stops[1]
	assert.Equal(t, DefaultCategory, second.Category)
	assert.True(t, second.IsOpen)
	assert.Empty(t, second.Insights)

	third := it.Stops[2]
	assert.Equal(t, "stop-3", third.ID)
	assert.Equal(t, DefaultStopName, third.Name)

	assert.Equal(t, "p1", it.Segments[0].FromStopID)
	assert.Equal(t, "p2", it.Segments[0].ToStopID)
	assert.Equal(t, models.ModeWalking, it.Segments[0].Mode)
	assert.Equal(t, "stop-3", it.Segments[1].ToStopID)

	assert.Equal(t, 3*DefaultVisitDuration, it.TotalDuration)
	assert.Equal(t, 12.5, it.EstimatedCost)
}

func TestToItineraryEmpty(t *testing.T) {
	for _, stops := range [][]models.PlanStop{nil, {}} {
		it := ToItinerary(stops)
		assert.Empty(t, it.Stops)
		assert.Empty(t, it.Segments)
		assert.Zero(t, it.TotalDuration)
		assert.Zero(t, it.EstimatedCost)
	}
}

func TestToItineraryIsDeterministic(t *testing.T) {
	stops := samplePlanStops()
	assert.Equal(t, ToItinerary(stops), ToItinerary(stops))
}

func TestSegmentCountAfterMutation(t *testing.T) {
	base := ToItinerary(samplePlanStops()).Stops

	tests := []struct {
		name  string
		stops []models.ItineraryStop
	}{
		{"empty", nil},
		{"single", base[:1]},
		{"removed", []models.ItineraryStop{base[0], base[2]}},
		{"added", append(append([]models.ItineraryStop{}, base...), models.ItineraryStop{ID: "extra", Duration: 30})},
		{"reordered", []models.ItineraryStop{base[2], base[0], base[1]}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			it := Recompute(models.Itinerary{Stops: tc.stops})
			want := len(tc.stops) - 1
			if want < 0 {
				want = 0
			}
			assert.Len(t, it.Segments, want)
			assert.Equal(t, TotalDuration(it.Stops), it.TotalDuration)
		})
	}
}

func TestRecomputeDoesNotAliasInput(t *testing.T) {
	src := ToItinerary(samplePlanStops())
	out := Recompute(src)
	out.Stops[0].Name = "changed"
	assert.Equal(t, "Bangsar Village", src.Stops[0].Name)
}
