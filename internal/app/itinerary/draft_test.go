package itinerary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-tripplanner/internal/app/models"
)

func TestActiveStops(t *testing.T) {
	main := []models.PlanStop{{Place: models.PlaceDetails{ID: "main"}}}
	draft := []models.PlanStop{{Place: models.PlaceDetails{ID: "draft"}}}

	tests := []struct {
		name     string
		plan     *models.Plan
		expected string
	}{
		{"draft wins", &models.Plan{Payload: models.PlanPayload{Itinerary: main}, DraftItinerary: draft}, "draft"},
		{"no draft", &models.Plan{Payload: models.PlanPayload{Itinerary: main}}, "main"},
		{"empty draft", &models.Plan{Payload: models.PlanPayload{Itinerary: main}, DraftItinerary: []models.PlanStop{}}, "main"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stops := ActiveStops(tc.plan)
			require.Len(t, stops, 1)
			assert.Equal(t, tc.expected, stops[0].Place.ID)
			assert.Equal(t, tc.expected, ActiveItinerary(tc.plan).Stops[0].ID)
		})
	}

	assert.Nil(t, ActiveStops(nil))
}

func TestConfirmPlan(t *testing.T) {
	plan := models.Plan{
		Status:         models.PlanDraft,
		Payload:        models.PlanPayload{Itinerary: []models.PlanStop{{Place: models.PlaceDetails{ID: "main"}}}},
		DraftItinerary: []models.PlanStop{{Place: models.PlaceDetails{ID: "draft"}}},
	}

	confirmed, err := ConfirmPlan(plan)
	require.NoError(t, err)
	assert.Equal(t, models.PlanConfirmed, confirmed.Status)
	assert.Nil(t, confirmed.DraftItinerary)
	assert.Equal(t, "draft", confirmed.Payload.Itinerary[0].Place.ID)

	_, err = ConfirmPlan(confirmed)
	assert.ErrorIs(t, err, models.ErrPlanAlreadyConfirmed)
}

func TestRejectAndPromoteDraft(t *testing.T) {
	plan := models.Plan{
		Status:  models.PlanConfirmed,
		Payload: models.PlanPayload{Itinerary: []models.PlanStop{{Place: models.PlaceDetails{ID: "main"}}}},
	}
	_, err := RejectDraft(plan)
	assert.ErrorIs(t, err, models.ErrNoDraft)

	plan = ProposeDraft(plan, models.PlanPayload{Itinerary: []models.PlanStop{{Place: models.PlaceDetails{ID: "next"}}}})
	assert.True(t, HasDraft(&plan))

	rejected, err := RejectDraft(plan)
	require.NoError(t, err)
	assert.Equal(t, "main", ActiveStops(&rejected)[0].Place.ID)

	promoted, err := PromoteDraft(plan)
	require.NoError(t, err)
	assert.Equal(t, models.PlanConfirmed, promoted.Status)
	assert.Equal(t, "next", ActiveStops(&promoted)[0].Place.ID)
}
