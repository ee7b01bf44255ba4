package itinerary

import (
	"github.com/FACorreiaa/go-tripplanner/internal/app/models"
)

// ActiveStops returns the stops every reader should treat as the current itinerary: the draft when
// one exists and is non-empty, otherwise the main itinerary.
func ActiveStops(plan *models.Plan) []models.PlanStop {
	if plan == nil {
		return nil
	}
	if len(plan.DraftItinerary) > 0 {
		return plan.DraftItinerary
	}
	return plan.Payload.Itinerary
}

// ActiveItinerary transforms the active stops of plan.
func ActiveItinerary(plan *models.Plan) models.Itinerary {
	return ToItinerary(ActiveStops(plan))
}

// HasDraft reports whether plan carries a non-empty draft.
func HasDraft(plan *models.Plan) bool {
	return plan != nil && len(plan.DraftItinerary) > 0
}

// ProposeDraft returns a copy of plan with the proposed stops as its draft.
func ProposeDraft(plan models.Plan, proposal models.PlanPayload) models.Plan {
	plan.DraftItinerary = append([]models.PlanStop(nil), proposal.Itinerary...)
	return plan
}

// ConfirmPlan moves a draft plan to confirmed, promoting a non-empty draft into the main itinerary.
func ConfirmPlan(plan models.Plan) (models.Plan, error) {
	if plan.Status == models.PlanConfirmed {
		return plan, models.ErrPlanAlreadyConfirmed
	}
	if len(plan.DraftItinerary) > 0 {
		plan.Payload.Itinerary = plan.DraftItinerary
	}
	plan.DraftItinerary = nil
	plan.Status = models.PlanConfirmed
	return plan, nil
}

// RejectDraft discards the draft of plan, leaving the main itinerary active.
func RejectDraft(plan models.Plan) (models.Plan, error) {
	if !HasDraft(&plan) {
		return plan, models.ErrNoDraft
	}
	plan.DraftItinerary = nil
	return plan, nil
}

// PromoteDraft replaces the main itinerary with the draft without touching the status. It is how a
// confirmed plan accepts a later proposal.
func PromoteDraft(plan models.Plan) (models.Plan, error) {
	if !HasDraft(&plan) {
		return plan, models.ErrNoDraft
	}
	plan.Payload.Itinerary = plan.DraftItinerary
	plan.DraftItinerary = nil
	return plan, nil
}
