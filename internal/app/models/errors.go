package models

import "errors"

// Domain specific errors for planning sessions.
var (
	ErrNotFound             = errors.New("requested item not found")
	ErrValidation           = errors.New("validation failed")
	ErrSessionNotFound      = errors.New("planning session not found")
	ErrNoItinerary          = errors.New("no current itinerary to modify")
	ErrNoPlan               = errors.New("no plan has been generated yet")
	ErrNoDraft              = errors.New("plan has no draft itinerary")
	ErrPlanAlreadyConfirmed = errors.New("plan is already confirmed")
	ErrStopNotFound         = errors.New("stop not found in itinerary")
	ErrTooManyStyles        = errors.New("too many travel styles selected")
	ErrNoTravelContext      = errors.New("travel context has not been set up")
	ErrGenerationInProgress = errors.New("an itinerary is already being generated")
)
