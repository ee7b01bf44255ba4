package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-tripplanner/internal/app/itinerary"
	"github.com/FACorreiaa/go-tripplanner/internal/app/models"
)

func newFixtures(t *testing.T) *Services {
	t.Helper()
	svc, err := NewFixtures(nil)
	require.NoError(t, err)
	return svc
}

func TestFixturePersonas(t *testing.T) {
	svc := newFixtures(t)
	styles, err := svc.Personas.List(context.Background())
	require.NoError(t, err)
	require.Len(t, styles, 6)
	assert.Equal(t, "foodie", styles[0].ID)
}

func TestFixturePlaces_Search(t *testing.T) {
	svc := newFixtures(t)
	ctx := context.Background()
	bangsar := models.Coordinate{Lat: 3.1301, Lng: 101.6713}

	tests := []struct {
		name string
		req  models.PlaceSearchRequest
		want []string
	}{
		{"by name", models.PlaceSearchRequest{Query: "Museum"}, []string{"islamic-arts-museum", "national-museum"}},
		{"by type", models.PlaceSearchRequest{Type: "food"}, []string{"telawi-street", "vcr-cafe", "jalan-alor"}},
		{"limit", models.PlaceSearchRequest{Type: "food", Limit: 1}, []string{"telawi-street"}},
		{"radius", models.PlaceSearchRequest{Location: &bangsar, RadiusMeters: 500}, []string{"bangsar-village", "telawi-street"}},
		{"no match", models.PlaceSearchRequest{Query: "aquarium"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			places, err := svc.Places.Search(ctx, tt.req)
			require.NoError(t, err)
			ids := []string{}
			for _, p := range places {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestFixturePlaces_Details(t *testing.T) {
	svc := newFixtures(t)
	place, err := svc.Places.Details(context.Background(), "merdeka-square")
	require.NoError(t, err)
	assert.Equal(t, "Merdeka Square", place.DisplayName)

	_, err = svc.Places.Details(context.Background(), "nowhere")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFixtureRoutes_Compute(t *testing.T) {
	svc := newFixtures(t)
	req := models.RouteRequest{
		Origin:      models.Coordinate{Lat: 3.1301, Lng: 101.6713},
		Destination: models.Coordinate{Lat: 3.1416, Lng: 101.6900},
	}

	req.Mode = models.ModeWalking
	walk, err := svc.Routes.Compute(context.Background(), req)
	require.NoError(t, err)
	assert.Greater(t, walk.Distance, 2000)
	assert.Zero(t, *walk.Cost)

	req.Mode = models.ModeGrab
	grab, err := svc.Routes.Compute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, walk.Distance, grab.Distance)
	assert.Less(t, grab.Duration, walk.Duration)
	assert.Greater(t, *grab.Cost, 5.0)

	req.Mode = "teleport"
	fallback, err := svc.Routes.Compute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.ModeWalking, fallback.Mode)
}

func TestFixtureWeather_Forecast(t *testing.T) {
	svc := newFixtures(t)
	day := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	a, err := svc.Weather.Forecast(context.Background(), models.WeatherRequest{Date: day})
	require.NoError(t, err)
	b, err := svc.Weather.Forecast(context.Background(), models.WeatherRequest{Date: day.Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a.Summary)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), a.Date)
}

func createPlan(t *testing.T, svc *Services) models.Plan {
	t.Helper()
	plan, err := svc.Plans.Create(context.Background(), models.CreatePlanRequest{
		Styles:  []models.TravelStyle{{ID: "foodie", Name: "Foodie Explorer"}},
		Context: models.TravelContext{Location: "Bangsar, Kuala Lumpur"},
	})
	require.NoError(t, err)
	return plan
}

func TestFixturePlans_CreateAndGet(t *testing.T) {
	svc := newFixtures(t)
	plan := createPlan(t, svc)

	assert.NotEmpty(t, plan.PlanID)
	assert.Equal(t, models.PlanDraft, plan.Status)
	assert.Len(t, plan.Payload.Itinerary, 5)
	assert.Equal(t, "foodie explorer", plan.Persona.Tone)

	var mapData struct {
		Center models.Coordinate `json:"center"`
	}
	require.NoError(t, json.Unmarshal(plan.Payload.MapData, &mapData))
	assert.InDelta(t, 3.13, mapData.Center.Lat, 0.02)

	got, err := svc.Plans.Get(context.Background(), plan.PlanID)
	require.NoError(t, err)
	assert.Equal(t, plan.PlanID, got.PlanID)

	_, err = svc.Plans.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFixturePlans_Chat(t *testing.T) {
	ctx := context.Background()

	t.Run("plain question gets a message", func(t *testing.T) {
		svc := newFixtures(t)
		plan := createPlan(t, svc)
		reply, err := svc.Plans.Chat(ctx, plan.PlanID, "What time should we start?")
		require.NoError(t, err)
		msg, ok := reply.(models.MessageReply)
		require.True(t, ok)
		assert.Contains(t, msg.Text, "5 stops")

		got, _ := svc.Plans.Get(ctx, plan.PlanID)
		assert.Len(t, got.ConversationHistory, 2)
		assert.False(t, itinerary.HasDraft(&got))
	})

	t.Run("add proposes a matching place", func(t *testing.T) {
		svc := newFixtures(t)
		plan := createPlan(t, svc)
		reply, err := svc.Plans.Chat(ctx, plan.PlanID, "Can you add a museum?")
		require.NoError(t, err)
		proposal, ok := reply.(models.DraftProposal)
		require.True(t, ok)
		require.Len(t, proposal.Payload.Itinerary, 6)
		assert.Equal(t, "national-museum", proposal.Payload.Itinerary[5].Place.ID)

		got, _ := svc.Plans.Get(ctx, plan.PlanID)
		assert.Len(t, got.DraftItinerary, 6)
		assert.Len(t, got.Payload.Itinerary, 5)
	})

	t.Run("remove drops the last stop", func(t *testing.T) {
		svc := newFixtures(t)
		plan := createPlan(t, svc)
		reply, err := svc.Plans.Chat(ctx, plan.PlanID, "Let's skip the bar tonight")
		require.NoError(t, err)
		proposal, ok := reply.(models.DraftProposal)
		require.True(t, ok)
		assert.Len(t, proposal.Payload.Itinerary, 4)
		assert.Contains(t, proposal.Summary, "Nexus Rooftop Bar")
	})

	t.Run("unknown plan", func(t *testing.T) {
		svc := newFixtures(t)
		_, err := svc.Plans.Chat(ctx, "missing", "hi")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestFixturePlans_ConfirmAndReject(t *testing.T) {
	ctx := context.Background()
	svc := newFixtures(t)
	plan := createPlan(t, svc)

	_, err := svc.Plans.RejectDraft(ctx, plan.PlanID)
	assert.ErrorIs(t, err, models.ErrNoDraft)

	_, err = svc.Plans.Chat(ctx, plan.PlanID, "add more food")
	require.NoError(t, err)
	rejected, err := svc.Plans.RejectDraft(ctx, plan.PlanID)
	require.NoError(t, err)
	assert.Empty(t, rejected.DraftItinerary)
	assert.Len(t, rejected.Payload.Itinerary, 5)

	_, err = svc.Plans.Chat(ctx, plan.PlanID, "add more food")
	require.NoError(t, err)
	confirmed, err := svc.Plans.Confirm(ctx, plan.PlanID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanConfirmed, confirmed.Status)
	assert.Len(t, confirmed.Payload.Itinerary, 6)
	assert.Empty(t, confirmed.DraftItinerary)

	_, err = svc.Plans.Confirm(ctx, plan.PlanID)
	assert.ErrorIs(t, err, models.ErrPlanAlreadyConfirmed)

	// a later proposal on a confirmed plan is promoted in place
	_, err = svc.Plans.Chat(ctx, plan.PlanID, "remove the last one")
	require.NoError(t, err)
	promoted, err := svc.Plans.Confirm(ctx, plan.PlanID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanConfirmed, promoted.Status)
	assert.Len(t, promoted.Payload.Itinerary, 5)
}

func TestNew_Modes(t *testing.T) {
	svc, err := New(ModeFixture, nil, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, svc.Plans)

	_, err = New(ModeLive, nil, nil, nil)
	assert.Error(t, err)

	_, err = New("bogus", nil, nil, nil)
	assert.Error(t, err)
}
