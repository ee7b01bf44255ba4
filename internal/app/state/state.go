// Package state holds the reducer-driven store shared by every screen of a planning session.
package state

import (
	"github.com/FACorreiaa/go-tripplanner/internal/app/models"
	"github.com/FACorreiaa/go-tripplanner/internal/app/navigation"
)

// Screen is one of the planning flow screens.
type Screen string

const (
	ScreenWelcome        Screen = "welcome"
	ScreenStyleSelection Screen = "style-selection"
	ScreenContextSetup   Screen = "context-setup"
	ScreenAIPlanning     Screen = "ai-planning"
	ScreenItinerary      Screen = "itinerary"
	ScreenConversational Screen = "conversational"
)

// Valid reports whether s is a known screen.
func (s Screen) Valid() bool {
	switch s {
	case ScreenWelcome, ScreenStyleSelection, ScreenContextSetup, ScreenAIPlanning, ScreenItinerary, ScreenConversational:
		return true
	}
	return false
}

// ChatState is the conversational overlay.
type ChatState struct {
	IsOpen         bool                 `json:"isOpen"`
	Messages       []models.ChatMessage `json:"messages"`
	IsAIResponding bool                 `json:"isAIResponding"`
}

// StopDetailState is the stop detail view.
type StopDetailState struct {
	SelectedStop *models.ItineraryStop `json:"selectedStop"`
	IsOpen       bool                  `json:"isOpen"`
}

// MapsModalState is the navigation handoff modal.
type MapsModalState struct {
	IsOpen      bool           `json:"isOpen"`
	SelectedApp navigation.App `json:"selectedApp,omitempty"`
}

// State is the root aggregate. Only Reduce produces new values of it.
type State struct {
	SelectedStyles        []models.TravelStyle  `json:"selectedStyles"`
	TravelContext         *models.TravelContext `json:"travelContext"`
	CurrentItinerary      *models.Itinerary     `json:"currentItinerary"`
	CurrentScreen         Screen                `json:"currentScreen"`
	IsGeneratingItinerary bool                  `json:"isGeneratingItinerary"`
	Chat                  ChatState             `json:"chat"`
	StopDetail            StopDetailState       `json:"stopDetail"`
	MapsModal             MapsModalState        `json:"mapsModal"`
	Error                 string                `json:"error,omitempty"`
	IsLoading             bool                  `json:"isLoading"`
}

// Initial returns the state of a fresh session.
func Initial() State {
	return State{
		SelectedStyles: []models.TravelStyle{},
		CurrentScreen:  ScreenWelcome,
		Chat: ChatState{
			Messages: []models.ChatMessage{},
		},
	}
}

// Clone returns a deep copy so readers can never reach the store's backing arrays.
func (s State) Clone() State {
	out := s
	if s.SelectedStyles != nil {
		out.SelectedStyles = make([]models.TravelStyle, len(s.SelectedStyles))
		for i, style := range s.SelectedStyles {
			if style.Examples != nil {
				style.Examples = append([]string(nil), style.Examples...)
			}
			out.SelectedStyles[i] = style
		}
	}
	if s.TravelContext != nil {
		tc := s.TravelContext.Clone()
		out.TravelContext = &tc
	}
	if s.CurrentItinerary != nil {
		it := s.CurrentItinerary.Clone()
		out.CurrentItinerary = &it
	}
	if s.Chat.Messages != nil {
		out.Chat.Messages = make([]models.ChatMessage, len(s.Chat.Messages))
		for i, m := range s.Chat.Messages {
			if m.Suggestions != nil {
				m.Suggestions = append([]string(nil), m.Suggestions...)
			}
			out.Chat.Messages[i] = m
		}
	}
	if s.StopDetail.SelectedStop != nil {
		stop := s.StopDetail.SelectedStop.Clone()
		out.StopDetail.SelectedStop = &stop
	}
	return out
}

// Stops returns the stops of the current itinerary, or nil without one.
func (s State) Stops() []models.ItineraryStop {
	if s.CurrentItinerary == nil {
		return nil
	}
	return s.CurrentItinerary.Stops
}
