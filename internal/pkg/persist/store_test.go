package persist

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-tripplanner/internal/app/itinerary"
	"github.com/FACorreiaa/go-tripplanner/internal/app/models"
	"github.com/FACorreiaa/go-tripplanner/internal/app/state"
)

// countingBackend records writes and can be told to fail every call.
type countingBackend struct {
	*MemoryBackend
	sets atomic.Int32
	err  error
}

func (b *countingBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if b.err != nil {
		return nil, false, b.err
	}
	return b.MemoryBackend.Get(ctx, key)
}

func (b *countingBackend) Set(ctx context.Context, key string, value []byte) error {
	b.sets.Add(1)
	if b.err != nil {
		return b.err
	}
	return b.MemoryBackend.Set(ctx, key, value)
}

func plannedState() state.State {
	fee := 15.0
	st := state.Initial()
	st.SelectedStyles = []models.TravelStyle{{ID: "foodie", Name: "Foodie Explorer", Icon: "🍜", Description: "Street food"}}
	st.TravelContext = &models.TravelContext{
		Location:      "Bangsar, Kuala Lumpur",
		Coordinates:   &models.Coordinate{Lat: 3.1301, Lng: 101.6713},
		Group:         models.TravelGroup{Adults: 2, Children: []models.Child{{Age: 7}}},
		Dates:         models.DateRange{Start: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), End: time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)},
		Budget:        500,
		MobilityNeeds: []string{"stroller"},
	}
	it := itinerary.Build([]models.ItineraryStop{
		{ID: "a", Name: "Telawi Street", Duration: 60, Category: "food", Insights: []models.Insight{}},
		{ID: "b", Name: "Merdeka Square", Duration: 90, Category: "landmark", Insights: []models.Insight{}, EntryFee: &fee},
	})
	st.CurrentItinerary = &it
	st.CurrentScreen = state.ScreenItinerary
	return st
}

func TestStore_PersistThenHydrateRoundTrips(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryBackend(), "trips", nil)
	st := plannedState()

	store.Persist(ctx, "s1", st)
	snap := store.Hydrate(ctx, "s1")

	require.False(t, snap.Empty())
	assert.Equal(t, st.SelectedStyles, snap.SelectedStyles)
	assert.Equal(t, st.TravelContext, snap.TravelContext)
	assert.Equal(t, st.CurrentItinerary, snap.CurrentItinerary)

	resumed := snap.Apply(state.Initial())
	assert.Equal(t, state.ScreenWelcome, resumed.CurrentScreen, "only the persisted slices are restored")
	assert.Equal(t, st.CurrentItinerary, resumed.CurrentItinerary)
}

func TestStore_HydrateDiscardsUnreadableRecords(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	store := NewStore(backend, "trips", nil)

	tests := []struct {
		name string
		raw  string
	}{
		{"malformed json", `{"selectedStyles": [`},
		{"wrong shape", `{"travelContext": "Bangsar"}`},
		{"empty value", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, backend.Set(ctx, store.Key("s1"), []byte(tt.raw)))
			assert.True(t, store.Hydrate(ctx, "s1").Empty())
		})
	}

	t.Run("absent fields stay nil", func(t *testing.T) {
		require.NoError(t, backend.Set(ctx, store.Key("s1"), []byte(`{"selectedStyles":[{"id":"foodie"}]}`)))
		snap := store.Hydrate(ctx, "s1")
		assert.Len(t, snap.SelectedStyles, 1)
		assert.Nil(t, snap.TravelContext)
		assert.Nil(t, snap.CurrentItinerary)
	})
}

func TestStore_BackendFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	backend := &countingBackend{MemoryBackend: NewMemoryBackend(), err: errors.New("disk full")}
	var failures atomic.Int32
	store := NewStore(backend, "trips", nil, WithFailureHook(func() { failures.Add(1) }))

	assert.NotPanics(t, func() { store.Persist(ctx, "s1", plannedState()) })
	assert.Equal(t, int32(1), failures.Load())
	assert.True(t, store.Hydrate(ctx, "s1").Empty())
}

func TestStore_SubscriberWritesOnlyPersistedChanges(t *testing.T) {
	ctx := context.Background()
	backend := &countingBackend{MemoryBackend: NewMemoryBackend()}
	store := NewStore(backend, "trips", nil)
	s := state.NewStore(state.Initial(), nil)
	s.Subscribe(store.Subscriber(ctx, "s1"))

	s.Dispatch(state.SetCurrentScreen{Screen: state.ScreenStyleSelection})
	s.Dispatch(state.OpenChat{})
	s.Dispatch(state.SetLoading{Loading: true})
	assert.Zero(t, backend.sets.Load(), "transient fields are not persisted")

	s.Dispatch(state.SetSelectedStyles{Styles: []models.TravelStyle{{ID: "foodie"}}})
	assert.Equal(t, int32(1), backend.sets.Load())

	s.Dispatch(state.SetSelectedStyles{Styles: []models.TravelStyle{{ID: "foodie"}}})
	assert.Equal(t, int32(1), backend.sets.Load(), "an equal value is not rewritten")

	snap := store.Hydrate(ctx, "s1")
	require.Len(t, snap.SelectedStyles, 1)
	assert.Equal(t, "foodie", snap.SelectedStyles[0].ID)
}

func TestChanged(t *testing.T) {
	base := plannedState()

	moved := base.Clone()
	moved.CurrentScreen = state.ScreenAIPlanning
	moved.Error = "oops"
	assert.False(t, Changed(base, moved))

	edited := base.Clone()
	edited.CurrentItinerary.Stops[0].Duration = 45
	assert.True(t, Changed(base, edited))

	budget := base.Clone()
	budget.TravelContext.Budget = 900
	assert.True(t, Changed(base, budget))
}
