// Package persisttest is the shared contract every persist.Backend must satisfy.
package persisttest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-tripplanner/internal/app/itinerary"
	"github.com/FACorreiaa/go-tripplanner/internal/app/models"
	"github.com/FACorreiaa/go-tripplanner/internal/app/state"
	"github.com/FACorreiaa/go-tripplanner/internal/pkg/persist"
)

type CleanupFunc = func()

type BackendFactory func(t *testing.T) (persist.Backend, CleanupFunc)

// RunBackend exercises get/set/overwrite/delete semantics against a fresh backend.
func RunBackend(t *testing.T, newBackend BackendFactory) {
	t.Helper()
	ctx := context.Background()

	backend, cleanup := newBackend(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	t.Run("missing key", func(t *testing.T) {
		_, ok, err := backend.Get(ctx, "contract:missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, backend.Set(ctx, "contract:a", []byte(`{"selectedStyles":[]}`)))
		got, ok, err := backend.Get(ctx, "contract:a")
		require.NoError(t, err)
		require.True(t, ok)
		assert.JSONEq(t, `{"selectedStyles":[]}`, string(got))
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, backend.Set(ctx, "contract:a", []byte("second")))
		got, ok, err := backend.Get(ctx, "contract:a")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "second", string(got))
	})

	t.Run("keys are independent", func(t *testing.T) {
		require.NoError(t, backend.Set(ctx, "contract:b", []byte("other")))
		got, _, err := backend.Get(ctx, "contract:a")
		require.NoError(t, err)
		assert.Equal(t, "second", string(got))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, backend.Delete(ctx, "contract:a"))
		_, ok, err := backend.Get(ctx, "contract:a")
		require.NoError(t, err)
		assert.False(t, ok)
		require.NoError(t, backend.Delete(ctx, "contract:a"), "deleting a missing key is not an error")
	})

	t.Run("round trips a persisted snapshot", func(t *testing.T) {
		store := persist.NewStore(backend, "contract", nil)
		assert.True(t, store.Hydrate(ctx, "nobody").Empty())

		st := state.Initial()
		st.SelectedStyles = []models.TravelStyle{{ID: "culture", Name: "Culture Seeker"}}
		st.TravelContext = &models.TravelContext{Location: "Kuala Lumpur", Group: models.TravelGroup{Adults: 1, Children: []models.Child{}}, MobilityNeeds: []string{}}
		it := itinerary.Build([]models.ItineraryStop{
			{ID: "a", Name: "Merdeka Square", Duration: 60, Insights: []models.Insight{}},
			{ID: "b", Name: "Central Market", Duration: 45, Insights: []models.Insight{}},
		})
		st.CurrentItinerary = &it
		store.Persist(ctx, "someone", st)

		snap := store.Hydrate(ctx, "someone")
		assert.Equal(t, st.SelectedStyles, snap.SelectedStyles)
		assert.Equal(t, st.TravelContext, snap.TravelContext)
		assert.Equal(t, st.CurrentItinerary, snap.CurrentItinerary)

		store.Forget(ctx, "someone")
		assert.True(t, store.Hydrate(ctx, "someone").Empty())
	})
}
