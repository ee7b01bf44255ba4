package state

import "github.com/FACorreiaa/go-tripplanner/internal/app/models"

// Reduce applies a to s and returns the next state. It never mutates s.
// Unknown actions return s unchanged.
func Reduce(s State, a Action) State {
	switch act := a.(type) {
	case SetSelectedStyles:
		s.SelectedStyles = append([]models.TravelStyle{}, act.Styles...)
	case SetTravelContext:
		tc := act.Context.Clone()
		s.TravelContext = &tc
	case SetCurrentScreen:
		s.CurrentScreen = act.Screen
		s.Error = ""
	case StartItineraryGeneration:
		s.IsGeneratingItinerary = true
		s.Error = ""
	case SetCurrentItinerary:
		it := act.Itinerary.Clone()
		s.CurrentItinerary = &it
		s.IsGeneratingItinerary = false
	case UpdateStop:
		s.CurrentItinerary = mapStops(s.CurrentItinerary, func(stops []models.ItineraryStop) []models.ItineraryStop {
			out := make([]models.ItineraryStop, len(stops))
			for i, stop := range stops {
				if stop.ID == act.ID {
					stop = act.Patch.Apply(stop)
				}
				out[i] = stop
			}
			return out
		})
	case RemoveStop:
		s.CurrentItinerary = mapStops(s.CurrentItinerary, func(stops []models.ItineraryStop) []models.ItineraryStop {
			out := make([]models.ItineraryStop, 0, len(stops))
			for _, stop := range stops {
				if stop.ID != act.ID {
					out = append(out, stop)
				}
			}
			return out
		})
		if s.StopDetail.SelectedStop != nil && s.StopDetail.SelectedStop.ID == act.ID {
			s.StopDetail = StopDetailState{}
		}
	case AddStop:
		s.CurrentItinerary = mapStops(s.CurrentItinerary, func(stops []models.ItineraryStop) []models.ItineraryStop {
			out := make([]models.ItineraryStop, 0, len(stops)+1)
			out = append(out, stops...)
			return append(out, act.Stop.Clone())
		})
	case ReorderStops:
		s.CurrentItinerary = mapStops(s.CurrentItinerary, func(stops []models.ItineraryStop) []models.ItineraryStop {
			return move(stops, act.From, act.To)
		})
	case OpenChat:
		s.Chat.IsOpen = true
	case CloseChat:
		s.Chat.IsOpen = false
	case AddChatMessage:
		msgs := make([]models.ChatMessage, 0, len(s.Chat.Messages)+1)
		msgs = append(msgs, s.Chat.Messages...)
		s.Chat.Messages = append(msgs, act.Message)
	case SetAIResponding:
		s.Chat.IsAIResponding = act.Responding
	case ClearMessages:
		s.Chat.Messages = []models.ChatMessage{}
	case SetSelectedStop:
		if act.Stop == nil {
			s.StopDetail.SelectedStop = nil
			break
		}
		stop := act.Stop.Clone()
		s.StopDetail.SelectedStop = &stop
	case OpenStopDetail:
		s.StopDetail.IsOpen = true
	case CloseStopDetail:
		s.StopDetail.IsOpen = false
	case OpenMapsModal:
		s.MapsModal.IsOpen = true
	case CloseMapsModal:
		s.MapsModal.IsOpen = false
	case SetSelectedMapApp:
		s.MapsModal.SelectedApp = act.App
	case SetError:
		s.Error = act.Message
		if act.Message != "" {
			s.IsLoading = false
		}
	case SetLoading:
		s.IsLoading = act.Loading
		if act.Loading {
			s.Error = ""
		}
	case Reset:
		return Initial()
	}
	return s
}

// mapStops returns a new itinerary whose stops are fn(old stops). Segments and
// totals are left for the transform layer to recompute. A nil itinerary stays nil.
func mapStops(it *models.Itinerary, fn func([]models.ItineraryStop) []models.ItineraryStop) *models.Itinerary {
	if it == nil {
		return nil
	}
	next := *it
	next.Stops = fn(it.Stops)
	return &next
}

// move implements splice semantics: remove at from, insert at to.
// Out-of-range indices leave the order untouched.
func move(stops []models.ItineraryStop, from, to int) []models.ItineraryStop {
	out := append([]models.ItineraryStop{}, stops...)
	if from < 0 || from >= len(out) || to < 0 || to >= len(out) || from == to {
		return out
	}
	stop := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]models.ItineraryStop{stop}, out[to:]...)...)
	return out
}
