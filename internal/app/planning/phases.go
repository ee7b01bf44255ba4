// Package planning paces the visible progress of long-running planning work.
package planning

import (
	"context"
	"time"
)

// Phase is one named step shown while an itinerary is being generated.
type Phase struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration"`
}

// Sequence is an ordered list of phases.
type Sequence []Phase

// Phase names reported while an itinerary is generated.
const (
	PhaseAnalyzingPreferences = "analyzing-preferences"
	PhaseFindingPlaces        = "finding-places"
	PhaseOptimizingRoute      = "optimizing-route"
	PhaseFinalizing           = "finalizing"
)

// DefaultPlanningSequence spaces the four planning phases step apart.
func DefaultPlanningSequence(step time.Duration) Sequence {
	return Sequence{
		{Name: PhaseAnalyzingPreferences, Duration: step},
		{Name: PhaseFindingPlaces, Duration: step},
		{Name: PhaseOptimizingRoute, Duration: step},
		{Name: PhaseFinalizing, Duration: step},
	}
}

// Total is the combined duration of every phase.
func (s Sequence) Total() time.Duration {
	var total time.Duration
	for _, p := range s {
		total += p.Duration
	}
	return total
}

// Run reports each phase to onPhase and waits out its duration. It returns ctx.Err() as soon as ctx
// is done, so no callback fires after teardown.
func Run(ctx context.Context, seq Sequence, onPhase func(i int, p Phase)) error {
	for i, p := range seq {
		if err := ctx.Err(); err != nil {
			return err
		}
		if onPhase != nil {
			onPhase(i, p)
		}
		if err := Delay(ctx, p.Duration); err != nil {
			return err
		}
	}
	return nil
}

// Delay waits for d or until ctx is done.
func Delay(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Typing simulates the assistant composing a reply.
type Typing struct {
	Delay time.Duration
}

// Reply runs fn after the typing delay unless ctx is cancelled first.
func (t Typing) Reply(ctx context.Context, fn func() error) error {
	if err := Delay(ctx, t.Delay); err != nil {
		return err
	}
	return fn()
}
