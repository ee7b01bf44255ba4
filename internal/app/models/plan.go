package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// PlanStatus is the two-state lifecycle of a plan.
type PlanStatus string

const (
	PlanDraft     PlanStatus = "draft"
	PlanConfirmed PlanStatus = "confirmed"
)

// Persona is the voice the planner answers in.
type Persona struct {
	Name      string `json:"name"`
	Backstory string `json:"backstory"`
	Tone      string `json:"tone"`
}

// OpeningHours mirrors the upstream places payload.
type OpeningHours struct {
	OpenNow             *bool    `json:"open_now,omitempty"`
	WeekdayDescriptions []string `json:"weekday_descriptions,omitempty"`
}

// PlaceDetails are the upstream place fields attached to a plan stop.
type PlaceDetails struct {
	ID                  string        `json:"id"`
	DisplayName         string        `json:"display_name"`
	FormattedAddress    string        `json:"formatted_address"`
	Location            Coordinate    `json:"location"`
	Types               []string      `json:"types,omitempty"`
	Rating              float64       `json:"rating,omitempty"`
	RegularOpeningHours *OpeningHours `json:"regular_opening_hours,omitempty"`
	Photos              []string      `json:"photos,omitempty"`
}

// PlanStop is a stop in the external plan shape.
type PlanStop struct {
	Place     PlaceDetails `json:"place"`
	Narrative string       `json:"narrative,omitempty"`
	EntryFee  *float64     `json:"entry_fee,omitempty"`
}

// PlanPayload holds the itinerary and the map data returned by the planner.
type PlanPayload struct {
	Itinerary []PlanStop      `json:"itinerary"`
	MapData   json.RawMessage `json:"map_data,omitempty"`
}

// ConversationTurn is one exchange stored with a plan.
type ConversationTurn struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Plan is the planner's external representation of a trip.
type Plan struct {
	PlanID              string             `json:"plan_id"`
	UserID              string             `json:"user_id"`
	Persona             Persona            `json:"persona"`
	Payload             PlanPayload        `json:"payload"`
	ConversationHistory []ConversationTurn `json:"conversation_history"`
	DraftItinerary      []PlanStop         `json:"draft_itinerary,omitempty"`
	Status              PlanStatus         `json:"status"`
}

// Chat actions returned by the plan chat endpoint.
const (
	ChatActionMessageUser      = "message_user"
	ChatActionProposeDraftPlan = "propose_draft_plan"
)

// PlanChatRequest is the body sent to the plan chat endpoint.
type PlanChatRequest struct {
	Message string `json:"message"`
}

// PlanChatResponse is the wire shape of the plan chat endpoint.
type PlanChatResponse struct {
	Action   string          `json:"action"`
	Response json.RawMessage `json:"response"`
	Payload  *PlanPayload    `json:"payload"`
}

// ChatReply is either a MessageReply or a DraftProposal.
type ChatReply interface {
	isChatReply()
}

// MessageReply is a conversational answer to render as text.
type MessageReply struct {
	Text string
}

// DraftProposal is a replacement payload to show as a draft diff.
type DraftProposal struct {
	Payload PlanPayload
	Summary string
}

func (MessageReply) isChatReply()  {}
func (DraftProposal) isChatReply() {}

// Reply decodes the wire response into its variant.
func (r PlanChatResponse) Reply() (ChatReply, error) {
	switch r.Action {
	case ChatActionMessageUser:
		var text string
		if err := json.Unmarshal(r.Response, &text); err != nil {
			return nil, fmt.Errorf("message_user response is not text: %w", err)
		}
		return MessageReply{Text: text}, nil
	case ChatActionProposeDraftPlan:
		proposal := DraftProposal{}
		var summary string
		if len(r.Response) > 0 && json.Unmarshal(r.Response, &summary) == nil {
			proposal.Summary = summary
		}
		switch {
		case r.Payload != nil:
			proposal.Payload = *r.Payload
		case len(r.Response) > 0 && proposal.Summary == "":
			if err := json.Unmarshal(r.Response, &proposal.Payload); err != nil {
				return nil, fmt.Errorf("propose_draft_plan carries no payload: %w", err)
			}
		default:
			return nil, fmt.Errorf("propose_draft_plan carries no payload")
		}
		return proposal, nil
	default:
		return nil, fmt.Errorf("unknown chat action %q", r.Action)
	}
}
