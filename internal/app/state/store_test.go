package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-tripplanner/internal/app/models"
)

func TestStore_DispatchNotifiesInOrder(t *testing.T) {
	store := NewStore(Initial(), nil)

	var calls []string
	store.Subscribe(func(prev, next State) {
		calls = append(calls, "first:"+string(prev.CurrentScreen)+">"+string(next.CurrentScreen))
	})
	store.Subscribe(func(_, next State) {
		calls = append(calls, "second:"+string(next.CurrentScreen))
	})

	got := store.Dispatch(SetCurrentScreen{Screen: ScreenStyleSelection})

	assert.Equal(t, ScreenStyleSelection, got.CurrentScreen)
	assert.Equal(t, []string{"first:welcome>style-selection", "second:style-selection"}, calls)
}

func TestStore_Unsubscribe(t *testing.T) {
	store := NewStore(Initial(), nil)
	count := 0
	unsubscribe := store.Subscribe(func(_, _ State) { count++ })

	store.Dispatch(OpenChat{})
	unsubscribe()
	unsubscribe()
	store.Dispatch(CloseChat{})

	assert.Equal(t, 1, count)
}

func TestStore_SnapshotIsDetached(t *testing.T) {
	store := NewStore(withStops("a", "b"), nil)

	snap := store.Snapshot()
	snap.CurrentItinerary.Stops[0].Name = "mutated"
	snap.CurrentItinerary.Stops = append(snap.CurrentItinerary.Stops, stop("c"))

	again := store.Snapshot()
	assert.Equal(t, "Stop a", again.CurrentItinerary.Stops[0].Name)
	assert.Len(t, again.CurrentItinerary.Stops, 2)
}

func TestStore_ListenerPanicDoesNotBreakDispatch(t *testing.T) {
	store := NewStore(Initial(), nil)
	store.Subscribe(func(_, _ State) { panic("listener failure") })
	reached := false
	store.Subscribe(func(_, _ State) { reached = true })

	require.NotPanics(t, func() { store.Dispatch(OpenMapsModal{}) })
	assert.True(t, reached)
	assert.True(t, store.Snapshot().MapsModal.IsOpen)
}

func TestStore_ConcurrentDispatch(t *testing.T) {
	store := NewStore(Initial(), nil)
	const n = 50

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Dispatch(AddChatMessage{Message: models.ChatMessage{ID: NewMessageID(), Role: models.RoleUser}})
		}()
	}
	wg.Wait()

	assert.Len(t, store.Snapshot().Chat.Messages, n)
}
