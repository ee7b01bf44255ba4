package planning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ReportsEveryPhaseInOrder(t *testing.T) {
	seq := DefaultPlanningSequence(time.Millisecond)
	var seen []string
	err := Run(context.Background(), seq, func(i int, p Phase) {
		assert.Len(t, seen, i)
		seen = append(seen, p.Name)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{PhaseAnalyzingPreferences, PhaseFindingPlaces, PhaseOptimizingRoute, PhaseFinalizing}, seen)
	assert.Equal(t, 4*time.Millisecond, seq.Total())
}

func TestRun_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var seen []string
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, DefaultPlanningSequence(time.Hour), func(_ int, p Phase) {
			seen = append(seen, p.Name)
		})
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, []string{PhaseAnalyzingPreferences}, seen)
}

func TestRun_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := Run(ctx, DefaultPlanningSequence(0), func(int, Phase) { called = true })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestTyping_Reply(t *testing.T) {
	boom := errors.New("boom")

	err := Typing{Delay: time.Millisecond}.Reply(context.Background(), func() error { return boom })
	assert.ErrorIs(t, err, boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err = Typing{Delay: time.Hour}.Reply(ctx, func() error { called = true; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
