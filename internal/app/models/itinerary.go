package models

// CrowdLevel is the expected crowding at a stop.
type CrowdLevel string

const (
	CrowdLow    CrowdLevel = "low"
	CrowdMedium CrowdLevel = "medium"
	CrowdHigh   CrowdLevel = "high"
)

// InsightSource identifies where an insight about a stop came from.
type InsightSource string

const (
	InsightGoogle      InsightSource = "google"
	InsightReddit      InsightSource = "reddit"
	InsightAIGenerated InsightSource = "ai_generated"
)

// TravelMode is how the traveller moves between two stops.
type TravelMode string

const (
	ModeWalking TravelMode = "walking"
	ModeDriving TravelMode = "driving"
	ModeTransit TravelMode = "transit"
	ModeGrab    TravelMode = "grab"
)

// Insight is a piece of commentary attached to a stop.
type Insight struct {
	Source  InsightSource `json:"source"`
	Content string        `json:"content"`
	Rating  *float64      `json:"rating,omitempty"`
}

// ItineraryStop is one place in the itinerary view model.
type ItineraryStop struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Address     string     `json:"address"`
	Coordinates Coordinate `json:"coordinates"`
	// Duration is the planned visit length in minutes.
	Duration   int        `json:"duration"`
	Category   string     `json:"category"`
	Rating     float64    `json:"rating"`
	IsOpen     bool       `json:"isOpen"`
	CrowdLevel CrowdLevel `json:"crowdLevel"`
	Insights   []Insight  `json:"insights"`
	EntryFee   *float64   `json:"entryFee,omitempty"`
	Photos     []string   `json:"photos,omitempty"`
}

// StopPatch carries the fields of an ItineraryStop to overwrite. Nil fields are left untouched.
type StopPatch struct {
	Name        *string     `json:"name,omitempty"`
	Address     *string     `json:"address,omitempty"`
	Coordinates *Coordinate `json:"coordinates,omitempty"`
	Duration    *int        `json:"duration,omitempty"`
	Category    *string     `json:"category,omitempty"`
	Rating      *float64    `json:"rating,omitempty"`
	IsOpen      *bool       `json:"isOpen,omitempty"`
	CrowdLevel  *CrowdLevel `json:"crowdLevel,omitempty"`
	Insights    []Insight   `json:"insights,omitempty"`
	EntryFee    *float64    `json:"entryFee,omitempty"`
	Photos      []string    `json:"photos,omitempty"`
}

// Apply returns a copy of stop with the non-nil patch fields merged in.
func (p StopPatch) Apply(stop ItineraryStop) ItineraryStop {
	if p.Name != nil {
		stop.Name = *p.Name
	}
	if p.Address != nil {
		stop.Address = *p.Address
	}
	if p.Coordinates != nil {
		stop.Coordinates = *p.Coordinates
	}
	if p.Duration != nil {
		stop.Duration = *p.Duration
	}
	if p.Category != nil {
		stop.Category = *p.Category
	}
	if p.Rating != nil {
		stop.Rating = *p.Rating
	}
	if p.IsOpen != nil {
		stop.IsOpen = *p.IsOpen
	}
	if p.CrowdLevel != nil {
		stop.CrowdLevel = *p.CrowdLevel
	}
	if p.Insights != nil {
		stop.Insights = append([]Insight(nil), p.Insights...)
	}
	if p.EntryFee != nil {
		fee := *p.EntryFee
		stop.EntryFee = &fee
	}
	if p.Photos != nil {
		stop.Photos = append([]string(nil), p.Photos...)
	}
	return stop
}

// TravelSegment links stop i to stop i+1. Segments are derived, never stored on their own.
type TravelSegment struct {
	FromStopID string     `json:"fromStopId"`
	ToStopID   string     `json:"toStopId"`
	Mode       TravelMode `json:"mode"`
	// Duration is in minutes, Distance in meters.
	Duration int      `json:"duration"`
	Distance int      `json:"distance"`
	Cost     *float64 `json:"cost,omitempty"`
}

// Itinerary is the ordered view model shown to the user.
type Itinerary struct {
	Stops    []ItineraryStop `json:"stops"`
	Segments []TravelSegment `json:"segments"`
	// TotalDuration is in minutes.
	TotalDuration int     `json:"totalDuration"`
	EstimatedCost float64 `json:"estimatedCost"`
}

// Clone returns a deep copy of the itinerary.
func (it Itinerary) Clone() Itinerary {
	out := it
	if it.Stops != nil {
		out.Stops = make([]ItineraryStop, len(it.Stops))
		for i, s := range it.Stops {
			out.Stops[i] = s.Clone()
		}
	}
	if it.Segments != nil {
		out.Segments = make([]TravelSegment, len(it.Segments))
		for i, seg := range it.Segments {
			if seg.Cost != nil {
				c := *seg.Cost
				seg.Cost = &c
			}
			out.Segments[i] = seg
		}
	}
	return out
}

// Clone returns a deep copy of the stop.
func (s ItineraryStop) Clone() ItineraryStop {
	out := s
	if s.Insights != nil {
		out.Insights = make([]Insight, len(s.Insights))
		for i, in := range s.Insights {
			if in.Rating != nil {
				r := *in.Rating
				in.Rating = &r
			}
			out.Insights[i] = in
		}
	}
	if s.EntryFee != nil {
		fee := *s.EntryFee
		out.EntryFee = &fee
	}
	if s.Photos != nil {
		out.Photos = append([]string(nil), s.Photos...)
	}
	return out
}
