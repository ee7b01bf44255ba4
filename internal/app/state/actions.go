package state

import (
	"encoding/json"
	"fmt"

	"github.com/FACorreiaa/go-tripplanner/internal/app/models"
	"github.com/FACorreiaa/go-tripplanner/internal/app/navigation"
)

// ActionType names an action on the wire and in logs.
type ActionType string

const (
	TypeSetSelectedStyles        ActionType = "SET_SELECTED_STYLES"
	TypeSetTravelContext         ActionType = "SET_TRAVEL_CONTEXT"
	TypeSetCurrentScreen         ActionType = "SET_CURRENT_SCREEN"
	TypeStartItineraryGeneration ActionType = "START_ITINERARY_GENERATION"
	TypeSetCurrentItinerary      ActionType = "SET_CURRENT_ITINERARY"
	TypeUpdateStop               ActionType = "UPDATE_STOP"
	TypeRemoveStop               ActionType = "REMOVE_STOP"
	TypeAddStop                  ActionType = "ADD_STOP"
	TypeReorderStops             ActionType = "REORDER_STOPS"
	TypeOpenChat                 ActionType = "OPEN_CHAT"
	TypeCloseChat                ActionType = "CLOSE_CHAT"
	TypeAddChatMessage           ActionType = "ADD_CHAT_MESSAGE"
	TypeSetAIResponding          ActionType = "SET_AI_RESPONDING"
	TypeClearMessages            ActionType = "CLEAR_MESSAGES"
	TypeSetSelectedStop          ActionType = "SET_SELECTED_STOP"
	TypeOpenStopDetail           ActionType = "OPEN_STOP_DETAIL"
	TypeCloseStopDetail          ActionType = "CLOSE_STOP_DETAIL"
	TypeOpenMapsModal            ActionType = "OPEN_MAPS_MODAL"
	TypeCloseMapsModal           ActionType = "CLOSE_MAPS_MODAL"
	TypeSetSelectedMapApp        ActionType = "SET_SELECTED_MAP_APP"
	TypeSetError                 ActionType = "SET_ERROR"
	TypeSetLoading               ActionType = "SET_LOADING"
	TypeReset                    ActionType = "RESET"
)

// Action is a typed state transition request.
type Action interface {
	Type() ActionType
}

type (
	SetSelectedStyles struct {
		Styles []models.TravelStyle `json:"styles"`
	}
	SetTravelContext struct {
		Context models.TravelContext `json:"context"`
	}
	SetCurrentScreen struct {
		Screen Screen `json:"screen"`
	}
	StartItineraryGeneration struct{}
	SetCurrentItinerary      struct {
		Itinerary models.Itinerary `json:"itinerary"`
	}
	UpdateStop struct {
		ID    string           `json:"id"`
		Patch models.StopPatch `json:"patch"`
	}
	RemoveStop struct {
		ID string `json:"id"`
	}
	AddStop struct {
		Stop models.ItineraryStop `json:"stop"`
	}
	ReorderStops struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	OpenChat       struct{}
	CloseChat      struct{}
	AddChatMessage struct {
		Message models.ChatMessage `json:"message"`
	}
	SetAIResponding struct {
		Responding bool `json:"responding"`
	}
	ClearMessages   struct{}
	SetSelectedStop struct {
		Stop *models.ItineraryStop `json:"stop"`
	}
	OpenStopDetail    struct{}
	CloseStopDetail   struct{}
	OpenMapsModal     struct{}
	CloseMapsModal    struct{}
	SetSelectedMapApp struct {
		App navigation.App `json:"app"`
	}
	// SetError with an empty Message clears the error.
	SetError struct {
		Message string `json:"message"`
	}
	SetLoading struct {
		Loading bool `json:"loading"`
	}
	Reset struct{}
)

func (SetSelectedStyles) Type() ActionType        { return TypeSetSelectedStyles }
func (SetTravelContext) Type() ActionType         { return TypeSetTravelContext }
func (SetCurrentScreen) Type() ActionType         { return TypeSetCurrentScreen }
func (StartItineraryGeneration) Type() ActionType { return TypeStartItineraryGeneration }
func (SetCurrentItinerary) Type() ActionType      { return TypeSetCurrentItinerary }
func (UpdateStop) Type() ActionType               { return TypeUpdateStop }
func (RemoveStop) Type() ActionType               { return TypeRemoveStop }
func (AddStop) Type() ActionType                  { return TypeAddStop }
func (ReorderStops) Type() ActionType             { return TypeReorderStops }
func (OpenChat) Type() ActionType                 { return TypeOpenChat }
func (CloseChat) Type() ActionType                { return TypeCloseChat }
func (AddChatMessage) Type() ActionType           { return TypeAddChatMessage }
func (SetAIResponding) Type() ActionType          { return TypeSetAIResponding }
func (ClearMessages) Type() ActionType            { return TypeClearMessages }
func (SetSelectedStop) Type() ActionType          { return TypeSetSelectedStop }
func (OpenStopDetail) Type() ActionType           { return TypeOpenStopDetail }
func (CloseStopDetail) Type() ActionType          { return TypeCloseStopDetail }
func (OpenMapsModal) Type() ActionType            { return TypeOpenMapsModal }
func (CloseMapsModal) Type() ActionType           { return TypeCloseMapsModal }
func (SetSelectedMapApp) Type() ActionType        { return TypeSetSelectedMapApp }
func (SetError) Type() ActionType                 { return TypeSetError }
func (SetLoading) Type() ActionType               { return TypeSetLoading }
func (Reset) Type() ActionType                    { return TypeReset }

// Envelope is the wire form of an action.
type Envelope struct {
	Type    ActionType      `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

var decoders = map[ActionType]func() Action{
	TypeSetSelectedStyles:        func() Action { return &SetSelectedStyles{} },
	TypeSetTravelContext:         func() Action { return &SetTravelContext{} },
	TypeSetCurrentScreen:         func() Action { return &SetCurrentScreen{} },
	TypeStartItineraryGeneration: func() Action { return &StartItineraryGeneration{} },
	TypeSetCurrentItinerary:      func() Action { return &SetCurrentItinerary{} },
	TypeUpdateStop:               func() Action { return &UpdateStop{} },
	TypeRemoveStop:               func() Action { return &RemoveStop{} },
	TypeAddStop:                  func() Action { return &AddStop{} },
	TypeReorderStops:             func() Action { return &ReorderStops{} },
	TypeOpenChat:                 func() Action { return &OpenChat{} },
	TypeCloseChat:                func() Action { return &CloseChat{} },
	TypeAddChatMessage:           func() Action { return &AddChatMessage{} },
	TypeSetAIResponding:          func() Action { return &SetAIResponding{} },
	TypeClearMessages:            func() Action { return &ClearMessages{} },
	TypeSetSelectedStop:          func() Action { return &SetSelectedStop{} },
	TypeOpenStopDetail:           func() Action { return &OpenStopDetail{} },
	TypeCloseStopDetail:          func() Action { return &CloseStopDetail{} },
	TypeOpenMapsModal:            func() Action { return &OpenMapsModal{} },
	TypeCloseMapsModal:           func() Action { return &CloseMapsModal{} },
	TypeSetSelectedMapApp:        func() Action { return &SetSelectedMapApp{} },
	TypeSetError:                 func() Action { return &SetError{} },
	TypeSetLoading:               func() Action { return &SetLoading{} },
	TypeReset:                    func() Action { return &Reset{} },
}

// DecodeAction turns a wire envelope into a typed action.
func DecodeAction(env Envelope) (Action, error) {
	newAction, ok := decoders[env.Type]
	if !ok {
		return nil, fmt.Errorf("unknown action type %q", env.Type)
	}
	ptr := newAction()
	if len(env.Payload) > 0 && string(env.Payload) != "null" {
		if err := json.Unmarshal(env.Payload, ptr); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
	}
	return deref(ptr), nil
}

// deref returns the value form of a decoded action so the reducer sees one shape per type.
func deref(a Action) Action {
	switch v := a.(type) {
	case *SetSelectedStyles:
		return *v
	case *SetTravelContext:
		return *v
	case *SetCurrentScreen:
		return *v
	case *StartItineraryGeneration:
		return *v
	case *SetCurrentItinerary:
		return *v
	case *UpdateStop:
		return *v
	case *RemoveStop:
		return *v
	case *AddStop:
		return *v
	case *ReorderStops:
		return *v
	case *OpenChat:
		return *v
	case *CloseChat:
		return *v
	case *AddChatMessage:
		return *v
	case *SetAIResponding:
		return *v
	case *ClearMessages:
		return *v
	case *SetSelectedStop:
		return *v
	case *OpenStopDetail:
		return *v
	case *CloseStopDetail:
		return *v
	case *OpenMapsModal:
		return *v
	case *CloseMapsModal:
		return *v
	case *SetSelectedMapApp:
		return *v
	case *SetError:
		return *v
	case *SetLoading:
		return *v
	case *Reset:
		return *v
	}
	return a
}
