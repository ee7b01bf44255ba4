package services

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-tripplanner/internal/app/itinerary"
	"github.com/FACorreiaa/go-tripplanner/internal/app/models"
	"github.com/FACorreiaa/go-tripplanner/internal/pkg/geo"
)

//go:embed fixtures/*.json
var fixtureFS embed.FS

type planTemplate struct {
	Persona   models.Persona    `json:"persona"`
	Itinerary []models.PlanStop `json:"itinerary"`
}

type fixtureData struct {
	personas  []models.TravelStyle
	places    []models.PlaceDetails
	forecasts []models.Forecast
	plan      planTemplate
}

func loadFixtures() (*fixtureData, error) {
	data := &fixtureData{}
	files := []struct {
		name string
		dst  any
	}{
		{"fixtures/personas.json", &data.personas},
		{"fixtures/places.json", &data.places},
		{"fixtures/forecasts.json", &data.forecasts},
		{"fixtures/plan.json", &data.plan},
	}
	for _, f := range files {
		raw, err := fixtureFS.ReadFile(f.name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.name, err)
		}
		if err := json.Unmarshal(raw, f.dst); err != nil {
			return nil, fmt.Errorf("decode %s: %w", f.name, err)
		}
	}
	return data, nil
}

// NewFixtures returns façades answering from embedded data.
func NewFixtures(logger *zap.Logger) (*Services, error) {
	data, err := loadFixtures()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Services{
		Places:   &fixturePlaces{data: data},
		Routes:   fixtureRoutes{},
		Weather:  &fixtureWeather{data: data},
		Plans:    newFixturePlans(data, logger),
		Personas: &fixturePersonas{data: data},
	}, nil
}

type fixturePersonas struct {
	data *fixtureData
}

func (p *fixturePersonas) List(context.Context) ([]models.TravelStyle, error) {
	out := make([]models.TravelStyle, len(p.data.personas))
	copy(out, p.data.personas)
	return out, nil
}

type fixturePlaces struct {
	data *fixtureData
}

func (p *fixturePlaces) Search(_ context.Context, req models.PlaceSearchRequest) ([]models.PlaceDetails, error) {
	query := strings.ToLower(strings.TrimSpace(req.Query))
	out := []models.PlaceDetails{}
	for _, place := range p.data.places {
		if query != "" && !strings.Contains(strings.ToLower(place.DisplayName), query) && !hasType(place, query) {
			continue
		}
		if req.Type != "" && !hasType(place, req.Type) {
			continue
		}
		if req.Location != nil && req.RadiusMeters > 0 && geo.DistanceMeters(*req.Location, place.Location) > float64(req.RadiusMeters) {
			continue
		}
		out = append(out, place)
		if req.Limit > 0 && len(out) == req.Limit {
			break
		}
	}
	return out, nil
}

func (p *fixturePlaces) Details(_ context.Context, placeID string) (models.PlaceDetails, error) {
	for _, place := range p.data.places {
		if place.ID == placeID {
			return place, nil
		}
	}
	return models.PlaceDetails{}, fmt.Errorf("place %s: %w", placeID, models.ErrNotFound)
}

func hasType(place models.PlaceDetails, typ string) bool {
	return slices.Contains(place.Types, strings.ToLower(typ))
}

// Average speeds in meters per minute and fares used to fake routing.
var fixtureSpeeds = map[models.TravelMode]float64{
	models.ModeWalking: 80,
	models.ModeTransit: 300,
	models.ModeDriving: 450,
	models.ModeGrab:    450,
}

type fixtureRoutes struct{}

func (fixtureRoutes) Compute(_ context.Context, req models.RouteRequest) (models.Route, error) {
	mode := req.Mode
	speed, ok := fixtureSpeeds[mode]
	if !ok {
		mode, speed = models.ModeWalking, fixtureSpeeds[models.ModeWalking]
	}
	meters := geo.DistanceMeters(req.Origin, req.Destination)
	cost := 0.0
	switch mode {
	case models.ModeTransit:
		cost = 1.5
	case models.ModeGrab:
		cost = 5 + math.Round(meters/1000*1.2*100)/100
	}
	return models.Route{
		Mode:     mode,
		Duration: int(math.Ceil(meters / speed)),
		Distance: int(math.Round(meters)),
		Cost:     &cost,
	}, nil
}

type fixtureWeather struct {
	data *fixtureData
}

func (w *fixtureWeather) Forecast(_ context.Context, req models.WeatherRequest) (models.Forecast, error) {
	if len(w.data.forecasts) == 0 {
		return models.Forecast{}, fmt.Errorf("forecast: %w", models.ErrNotFound)
	}
	date := req.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}
	f := w.data.forecasts[date.YearDay()%len(w.data.forecasts)]
	f.Date = date.Truncate(24 * time.Hour)
	return f, nil
}

// fixturePlans keeps created plans in memory so chat and confirm can find them again.
type fixturePlans struct {
	data   *fixtureData
	plans  *gocache.Cache
	mu     sync.Mutex
	logger *zap.Logger
}

func newFixturePlans(data *fixtureData, logger *zap.Logger) *fixturePlans {
	return &fixturePlans{
		data:   data,
		plans:  gocache.New(24*time.Hour, time.Hour),
		logger: logger,
	}
}

func (p *fixturePlans) Create(_ context.Context, req models.CreatePlanRequest) (models.Plan, error) {
	stops := make([]models.PlanStop, len(p.data.plan.Itinerary))
	copy(stops, p.data.plan.Itinerary)

	persona := p.data.plan.Persona
	if len(req.Styles) > 0 {
		persona.Tone = strings.ToLower(req.Styles[0].Name)
	}
	plan := models.Plan{
		PlanID:  uuid.NewString(),
		UserID:  req.UserID,
		Persona: persona,
		Payload: models.PlanPayload{
			Itinerary: stops,
			MapData:   mapData(stops),
		},
		ConversationHistory: []models.ConversationTurn{},
		Status:              models.PlanDraft,
	}
	p.plans.Set(plan.PlanID, plan, gocache.DefaultExpiration)
	p.logger.Debug("Fixture plan created", zap.String("plan_id", plan.PlanID), zap.String("location", req.Context.Location))
	return plan, nil
}

func (p *fixturePlans) Get(_ context.Context, planID string) (models.Plan, error) {
	return p.load(planID)
}

func (p *fixturePlans) load(planID string) (models.Plan, error) {
	v, ok := p.plans.Get(planID)
	if !ok {
		return models.Plan{}, fmt.Errorf("plan %s: %w", planID, models.ErrNotFound)
	}
	return v.(models.Plan), nil
}

// Chat proposes a draft when the message asks for a change and answers in text otherwise.
func (p *fixturePlans) Chat(_ context.Context, planID, message string) (models.ChatReply, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	plan, err := p.load(planID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	plan.ConversationHistory = append(plan.ConversationHistory, models.ConversationTurn{Role: models.RoleUser, Content: message, At: now})

	var reply models.ChatReply
	var text string
	if proposal, summary, ok := p.propose(plan, message); ok {
		plan = itinerary.ProposeDraft(plan, proposal)
		reply = models.DraftProposal{Payload: proposal, Summary: summary}
		text = summary
	} else {
		text = fmt.Sprintf("Happy to help! Your plan has %d stops. Ask me to add, remove or swap a stop and I'll draft the changes.",
			len(itinerary.ActiveStops(&plan)))
		reply = models.MessageReply{Text: text}
	}
	plan.ConversationHistory = append(plan.ConversationHistory, models.ConversationTurn{Role: models.RoleAssistant, Content: text, At: now})
	p.plans.Set(plan.PlanID, plan, gocache.DefaultExpiration)
	return reply, nil
}

var (
	removeWords = []string{"remove", "skip", "drop", "fewer", "less"}
	changeWords = []string{"add", "swap", "replace", "change", "instead", "more", "another"}
)

func (p *fixturePlans) propose(plan models.Plan, message string) (models.PlanPayload, string, bool) {
	msg := strings.ToLower(message)
	current := itinerary.ActiveStops(&plan)
	stops := make([]models.PlanStop, len(current))
	copy(stops, current)

	switch {
	case containsAny(msg, removeWords):
		if len(stops) < 2 {
			return models.PlanPayload{}, "", false
		}
		dropped := stops[len(stops)-1]
		stops = stops[:len(stops)-1]
		return models.PlanPayload{Itinerary: stops, MapData: mapData(stops)},
			fmt.Sprintf("I've taken %s out of the plan.", dropped.Place.DisplayName), true
	case containsAny(msg, changeWords):
		place, ok := p.pickPlace(stops, msg)
		if !ok {
			return models.PlanPayload{}, "", false
		}
		stops = append(stops, models.PlanStop{
			Place:     place,
			Narrative: fmt.Sprintf("Added at your request: %s.", place.DisplayName),
		})
		return models.PlanPayload{Itinerary: stops, MapData: mapData(stops)},
			fmt.Sprintf("How about adding %s? Here's the updated plan.", place.DisplayName), true
	}
	return models.PlanPayload{}, "", false
}

// pickPlace returns the first unused place matching a type named in msg, or the first unused one.
func (p *fixturePlans) pickPlace(stops []models.PlanStop, msg string) (models.PlaceDetails, bool) {
	used := make(map[string]bool, len(stops))
	for _, s := range stops {
		used[s.Place.ID] = true
	}
	var fallback *models.PlaceDetails
	for i := range p.data.places {
		place := p.data.places[i]
		if used[place.ID] {
			continue
		}
		for _, typ := range place.Types {
			if strings.Contains(msg, strings.ReplaceAll(typ, "_", " ")) {
				return place, true
			}
		}
		if fallback == nil {
			fallback = &place
		}
	}
	if fallback == nil {
		return models.PlaceDetails{}, false
	}
	return *fallback, true
}

func (p *fixturePlans) Confirm(_ context.Context, planID string) (models.Plan, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	plan, err := p.load(planID)
	if err != nil {
		return models.Plan{}, err
	}
	if plan.Status == models.PlanConfirmed {
		plan, err = itinerary.PromoteDraft(plan)
		if err != nil {
			return models.Plan{}, models.ErrPlanAlreadyConfirmed
		}
	} else if plan, err = itinerary.ConfirmPlan(plan); err != nil {
		return models.Plan{}, err
	}
	plan.Payload.MapData = mapData(plan.Payload.Itinerary)
	p.plans.Set(plan.PlanID, plan, gocache.DefaultExpiration)
	return plan, nil
}

func (p *fixturePlans) RejectDraft(_ context.Context, planID string) (models.Plan, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	plan, err := p.load(planID)
	if err != nil {
		return models.Plan{}, err
	}
	if plan, err = itinerary.RejectDraft(plan); err != nil {
		return models.Plan{}, err
	}
	p.plans.Set(plan.PlanID, plan, gocache.DefaultExpiration)
	return plan, nil
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// mapData is the center and bounds the front end fits its map to.
func mapData(stops []models.PlanStop) json.RawMessage {
	points := make([]models.Coordinate, 0, len(stops))
	for _, s := range stops {
		points = append(points, s.Place.Location)
	}
	raw, err := json.Marshal(struct {
		Center models.Coordinate `json:"center"`
		Bounds geo.Bounds        `json:"bounds"`
	}{
		Center: geo.Center(points, models.Coordinate{}),
		Bounds: geo.BoundsOf(points),
	})
	if err != nil {
		return nil
	}
	return raw
}
