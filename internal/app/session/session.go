// Package session drives one planning flow: it owns the state store of a user, the plan returned by
// the planner and the background work started on their behalf.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-tripplanner/internal/app/itinerary"
	"github.com/FACorreiaa/go-tripplanner/internal/app/models"
	"github.com/FACorreiaa/go-tripplanner/internal/app/navigation"
	"github.com/FACorreiaa/go-tripplanner/internal/app/observability/metrics"
	"github.com/FACorreiaa/go-tripplanner/internal/app/planning"
	"github.com/FACorreiaa/go-tripplanner/internal/app/services"
	"github.com/FACorreiaa/go-tripplanner/internal/app/state"
	"github.com/FACorreiaa/go-tripplanner/internal/pkg/apiclient"
	"github.com/FACorreiaa/go-tripplanner/internal/pkg/geo"
	"github.com/FACorreiaa/go-tripplanner/internal/pkg/persist"
	"github.com/FACorreiaa/go-tripplanner/internal/pkg/validation"
)

// Suggestions attached to an assistant message that carries a draft.
var draftSuggestions = []string{"Accept changes", "Keep original"}

// Session is one user's planning flow.
type Session struct {
	id       string
	store    *state.Store
	services *services.Services
	persist  *persist.Store
	cfg      Config
	logger   *zap.Logger

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	wg          sync.WaitGroup
	generating  atomic.Bool
	genMu       sync.Mutex
	gen         *generation

	// editMu serializes read-modify-dispatch sequences on the itinerary.
	editMu sync.Mutex

	mu    sync.RWMutex
	plan  *models.Plan
	phase string
}

// generation is one running itinerary generation.
type generation struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func newSession(id string, initial state.State, svc *services.Services, ps *persist.Store, cfg Config, logger *zap.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:       id,
		store:    state.NewStore(initial, logger),
		services: svc,
		persist:  ps,
		cfg:      cfg,
		logger:   logger.With(zap.String("session_id", id)),
		ctx:      ctx,
		cancel:   cancel,
	}
	s.unsubscribe = s.store.Subscribe(ps.Subscriber(ctx, id))
	return s
}

func (s *Session) ID() string { return s.id }

// State returns a snapshot of the session state.
func (s *Session) State() state.State { return s.store.Snapshot() }

// Subscribe forwards to the underlying store.
func (s *Session) Subscribe(fn state.Listener) func() { return s.store.Subscribe(fn) }

// Plan returns a copy of the current plan, or nil before one is generated.
func (s *Session) Plan() *models.Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.plan == nil {
		return nil
	}
	p := *s.plan
	return &p
}

// Phase is the planning phase being shown, or "" when no generation is running.
func (s *Session) Phase() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Generating reports whether an itinerary generation is running.
func (s *Session) Generating() bool { return s.generating.Load() }

// Dispatch applies an action sent by the client. Stop changes take the same path as the typed edit
// operations so segments and totals stay derived from the stops, and Reset also drops the plan.
func (s *Session) Dispatch(a state.Action) (state.State, error) {
	switch act := a.(type) {
	case state.AddStop:
		return s.AddStop(act.Stop)
	case state.RemoveStop:
		return s.RemoveStop(act.ID)
	case state.UpdateStop:
		return s.UpdateStop(act.ID, act.Patch)
	case state.ReorderStops:
		return s.ReorderStops(act.From, act.To)
	case state.SetCurrentItinerary:
		return s.dispatch(state.SetCurrentItinerary{Itinerary: itinerary.Recompute(act.Itinerary)}), nil
	case state.Reset:
		return s.Reset(), nil
	}
	return s.dispatch(a), nil
}

func (s *Session) dispatch(a state.Action) state.State {
	metrics.Get().ActionsDispatched.Add(s.ctx, 1, metric.WithAttributes(attribute.String("type", string(a.Type()))))
	return s.store.Dispatch(a)
}

// SelectStyles replaces the selected styles and moves on to the context setup screen.
func (s *Session) SelectStyles(styles []models.TravelStyle) (state.State, error) {
	if s.cfg.MaxSelectedStyles > 0 && len(styles) > s.cfg.MaxSelectedStyles {
		return s.fail(fmt.Errorf("%d styles selected: %w", len(styles), models.ErrTooManyStyles))
	}
	if len(styles) == 0 {
		return s.dispatch(state.SetSelectedStyles{Styles: []models.TravelStyle{}}), nil
	}
	s.dispatch(state.SetSelectedStyles{Styles: styles})
	return s.dispatch(state.SetCurrentScreen{Screen: state.ScreenContextSetup}), nil
}

// SelectStyleIDs resolves ids against the persona catalogue and selects them in the given order.
func (s *Session) SelectStyleIDs(ctx context.Context, ids []string) (state.State, error) {
	catalogue, err := s.services.Personas.List(ctx)
	if err != nil {
		return s.fail(fmt.Errorf("list personas: %w", err))
	}
	byID := make(map[string]models.TravelStyle, len(catalogue))
	for _, style := range catalogue {
		byID[style.ID] = style
	}
	styles := make([]models.TravelStyle, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		style, ok := byID[id]
		if !ok {
			return s.fail(fmt.Errorf("unknown travel style %q: %w", id, models.ErrValidation))
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		styles = append(styles, style)
	}
	return s.SelectStyles(styles)
}

// SetupContext validates the context form. Valid input is stored and the flow moves to planning;
// invalid input returns the per-field messages and leaves the state untouched.
func (s *Session) SetupContext(in validation.ContextInput) (state.State, validation.Errors, error) {
	tc, errs := validation.BuildTravelContext(in)
	if len(errs) > 0 {
		return s.State(), errs, fmt.Errorf("travel context: %w", models.ErrValidation)
	}
	s.dispatch(state.SetTravelContext{Context: tc})
	s.dispatch(state.SetError{})
	return s.dispatch(state.SetCurrentScreen{Screen: state.ScreenAIPlanning}), nil, nil
}

// GenerateItinerary walks the planning phases, asks the planner for a plan and shows its active
// itinerary. A failure leaves the generating flag set so the screen can offer a retry. Only one
// generation runs per session at a time.
func (s *Session) GenerateItinerary(ctx context.Context) (state.State, error) {
	ctx, finish, ok := s.beginGeneration(ctx)
	if !ok {
		return s.State(), models.ErrGenerationInProgress
	}
	defer finish()
	return s.generate(ctx)
}

// StartGeneration runs the generation in the background, bound to the session lifetime.
// It returns false when a generation is already running.
func (s *Session) StartGeneration() bool {
	ctx, finish, ok := s.beginGeneration(s.ctx)
	if !ok {
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer finish()
		if _, err := s.generate(ctx); err != nil {
			s.logger.Warn("Background generation failed", zap.Error(err))
		}
	}()
	return true
}

func (s *Session) generate(ctx context.Context) (state.State, error) {
	current := s.State()
	if current.TravelContext == nil {
		return s.fail(models.ErrNoTravelContext)
	}
	start := time.Now()
	s.dispatch(state.StartItineraryGeneration{})

	err := planning.Run(ctx, planning.DefaultPlanningSequence(s.cfg.PhaseStep), func(_ int, p planning.Phase) {
		s.setPhase(p.Name)
	})
	defer s.setPhase("")
	if err != nil {
		return s.fail(err)
	}

	plan, err := s.services.Plans.Create(ctx, models.CreatePlanRequest{
		UserID:  s.id,
		Styles:  current.SelectedStyles,
		Context: *current.TravelContext,
	})
	if err != nil {
		return s.fail(fmt.Errorf("create plan: %w", err))
	}
	// a reset or close may have landed while the planner was answering
	if err := ctx.Err(); err != nil {
		return s.fail(err)
	}
	s.setPlan(plan)

	s.dispatch(state.SetCurrentItinerary{Itinerary: itinerary.ActiveItinerary(&plan)})
	next := s.dispatch(state.SetCurrentScreen{Screen: state.ScreenItinerary})
	metrics.Get().ItineraryGenDuration.Record(s.ctx, time.Since(start).Seconds())
	s.logger.Info("Itinerary generated", zap.String("plan_id", plan.PlanID), zap.Int("stops", len(next.Stops())))
	return next, nil
}

// beginGeneration claims the generation slot. The returned context is cancelled by Reset and Close;
// finish releases the slot.
func (s *Session) beginGeneration(ctx context.Context) (context.Context, func(), bool) {
	if !s.generating.CompareAndSwap(false, true) {
		return nil, nil, false
	}
	ctx, stop := s.bind(ctx)
	g := &generation{cancel: stop, done: make(chan struct{})}
	s.genMu.Lock()
	s.gen = g
	s.genMu.Unlock()
	return ctx, func() {
		s.genMu.Lock()
		if s.gen == g {
			s.gen = nil
		}
		s.genMu.Unlock()
		stop()
		s.generating.Store(false)
		close(g.done)
	}, true
}

// cancelGeneration stops the running generation, if any, and waits for it to return.
func (s *Session) cancelGeneration() {
	s.genMu.Lock()
	g := s.gen
	s.genMu.Unlock()
	if g == nil {
		return
	}
	g.cancel()
	<-g.done
}

// Wait blocks until background work started by the session has finished.
func (s *Session) Wait() { s.wg.Wait() }

// SendChatMessage posts text to the planner. A conversational answer becomes an assistant message;
// a proposal becomes the plan's draft and the shown itinerary switches to it.
func (s *Session) SendChatMessage(ctx context.Context, text string) (state.State, error) {
	ctx, stop := s.bind(ctx)
	defer stop()

	text = strings.TrimSpace(text)
	if text == "" {
		return s.State(), fmt.Errorf("empty chat message: %w", models.ErrValidation)
	}
	plan := s.Plan()
	if plan == nil {
		return s.fail(models.ErrNoPlan)
	}

	s.dispatch(state.AddChatMessage{Message: models.ChatMessage{
		ID:        state.NewMessageID(),
		Role:      models.RoleUser,
		Content:   text,
		Timestamp: time.Now().UTC(),
	}})
	s.dispatch(state.SetAIResponding{Responding: true})
	metrics.Get().ChatMessagesTotal.Add(s.ctx, 1)

	var reply models.ChatReply
	err := planning.Typing{Delay: s.cfg.TypingDelay}.Reply(ctx, func() error {
		var err error
		reply, err = s.services.Plans.Chat(ctx, plan.PlanID, text)
		return err
	})
	s.dispatch(state.SetAIResponding{Responding: false})
	if err != nil {
		return s.fail(fmt.Errorf("plan chat: %w", err))
	}

	switch r := reply.(type) {
	case models.MessageReply:
		s.addAssistantMessage(r.Text, nil)
	case models.DraftProposal:
		updated := s.updatePlan(func(p models.Plan) models.Plan { return itinerary.ProposeDraft(p, r.Payload) })
		s.dispatch(state.SetCurrentItinerary{Itinerary: itinerary.ActiveItinerary(&updated)})
		summary := r.Summary
		if summary == "" {
			summary = "I've drafted an updated plan. Take a look and keep the changes if you like them."
		}
		s.addAssistantMessage(summary, draftSuggestions)
	}
	return s.State(), nil
}

// AcceptDraft confirms the pending draft with the planner.
func (s *Session) AcceptDraft(ctx context.Context) (state.State, error) {
	plan := s.Plan()
	switch {
	case plan == nil:
		return s.fail(models.ErrNoPlan)
	case !itinerary.HasDraft(plan):
		return s.fail(models.ErrNoDraft)
	}
	return s.confirm(ctx, plan.PlanID)
}

// ConfirmPlan confirms a plan still in draft status.
func (s *Session) ConfirmPlan(ctx context.Context) (state.State, error) {
	plan := s.Plan()
	switch {
	case plan == nil:
		return s.fail(models.ErrNoPlan)
	case plan.Status == models.PlanConfirmed && !itinerary.HasDraft(plan):
		return s.fail(models.ErrPlanAlreadyConfirmed)
	}
	return s.confirm(ctx, plan.PlanID)
}

func (s *Session) confirm(ctx context.Context, planID string) (state.State, error) {
	ctx, stop := s.bind(ctx)
	defer stop()

	confirmed, err := s.services.Plans.Confirm(ctx, planID)
	if err != nil {
		return s.fail(fmt.Errorf("confirm plan: %w", err))
	}
	s.setPlan(confirmed)
	return s.dispatch(state.SetCurrentItinerary{Itinerary: itinerary.ActiveItinerary(&confirmed)}), nil
}

// RejectDraft drops the pending draft and shows the main itinerary again.
func (s *Session) RejectDraft(ctx context.Context) (state.State, error) {
	ctx, stop := s.bind(ctx)
	defer stop()

	plan := s.Plan()
	switch {
	case plan == nil:
		return s.fail(models.ErrNoPlan)
	case !itinerary.HasDraft(plan):
		return s.fail(models.ErrNoDraft)
	}
	rejected, err := s.services.Plans.RejectDraft(ctx, plan.PlanID)
	if err != nil {
		return s.fail(fmt.Errorf("reject draft: %w", err))
	}
	s.setPlan(rejected)
	return s.dispatch(state.SetCurrentItinerary{Itinerary: itinerary.ActiveItinerary(&rejected)}), nil
}

// AddStop appends stop to the itinerary. Missing ids and durations get defaults.
func (s *Session) AddStop(stop models.ItineraryStop) (state.State, error) {
	if stop.ID == "" {
		stop.ID = "stop-" + uuid.NewString()
	}
	if stop.Duration <= 0 {
		stop.Duration = itinerary.DefaultVisitDuration
	}
	if stop.Category == "" {
		stop.Category = itinerary.DefaultCategory
	}
	if stop.Insights == nil {
		stop.Insights = []models.Insight{}
	}
	return s.edit(state.AddStop{Stop: stop}, "")
}

func (s *Session) RemoveStop(id string) (state.State, error) {
	return s.edit(state.RemoveStop{ID: id}, id)
}

func (s *Session) UpdateStop(id string, patch models.StopPatch) (state.State, error) {
	return s.edit(state.UpdateStop{ID: id, Patch: patch}, id)
}

// ReorderStops moves the stop at from to position to.
func (s *Session) ReorderStops(from, to int) (state.State, error) {
	return s.edit(state.ReorderStops{From: from, To: to}, "")
}

// edit dispatches a stop action and then recomputes the derived segments and totals. stopID, when
// set, must name an existing stop.
func (s *Session) edit(a state.Action, stopID string) (state.State, error) {
	s.editMu.Lock()
	defer s.editMu.Unlock()

	current := s.State()
	if current.CurrentItinerary == nil {
		return s.fail(models.ErrNoItinerary)
	}
	if stopID != "" && !hasStop(current.Stops(), stopID) {
		return s.fail(fmt.Errorf("stop %s: %w", stopID, models.ErrStopNotFound))
	}
	if r, ok := a.(state.ReorderStops); ok {
		if n := len(current.Stops()); n > 0 && (r.From < 0 || r.From >= n || r.To < 0 || r.To >= n) {
			return s.fail(fmt.Errorf("reorder %d -> %d of %d stops: %w", r.From, r.To, n, models.ErrValidation))
		}
	}
	next := s.dispatch(a)
	return s.dispatch(state.SetCurrentItinerary{Itinerary: itinerary.Recompute(*next.CurrentItinerary)}), nil
}

func hasStop(stops []models.ItineraryStop, id string) bool {
	for _, stop := range stops {
		if stop.ID == id {
			return true
		}
	}
	return false
}

// NavigationLinks builds the hand-off links for the current stops.
func (s *Session) NavigationLinks(mode models.TravelMode) navigation.Links {
	if mode == "" {
		mode = s.cfg.TravelMode
	}
	return navigation.Build(s.State().Stops(), mode)
}

// maxForecastDays caps the trip forecast to the horizon weather services cover.
const maxForecastDays = 14

// TripForecast returns one forecast per trip day at the destination, up to maxForecastDays.
func (s *Session) TripForecast(ctx context.Context) ([]models.Forecast, error) {
	ctx, stop := s.bind(ctx)
	defer stop()

	current := s.State()
	if current.TravelContext == nil {
		return nil, models.ErrNoTravelContext
	}
	loc, ok := destination(current)
	if !ok {
		return nil, fmt.Errorf("destination has no coordinates: %w", models.ErrNoItinerary)
	}
	dates := current.TravelContext.Dates
	days := min(dates.Days(), maxForecastDays)
	forecasts := make([]models.Forecast, 0, days)
	for i := range days {
		f, err := s.services.Weather.Forecast(ctx, models.WeatherRequest{Location: loc, Date: dates.Start.AddDate(0, 0, i)})
		if err != nil {
			return nil, fmt.Errorf("forecast day %d: %w", i+1, err)
		}
		forecasts = append(forecasts, f)
	}
	return forecasts, nil
}

// destination is the context coordinate when one was given, else the center of the stops.
func destination(st state.State) (models.Coordinate, bool) {
	if c := st.TravelContext.Coordinates; c != nil && geo.Valid(*c) {
		return *c, true
	}
	points := make([]models.Coordinate, 0, len(st.Stops()))
	for _, stop := range st.Stops() {
		points = append(points, stop.Coordinates)
	}
	center := geo.Center(points, models.Coordinate{})
	return center, geo.Valid(center)
}

// RouteLegs computes the travel leg between every pair of consecutive stops.
func (s *Session) RouteLegs(ctx context.Context, mode models.TravelMode) ([]models.Route, error) {
	ctx, stop := s.bind(ctx)
	defer stop()

	if mode == "" {
		mode = s.cfg.TravelMode
	}
	current := s.State()
	if current.CurrentItinerary == nil {
		return nil, models.ErrNoItinerary
	}
	stops := current.Stops()
	legs := make([]models.Route, 0, max(len(stops)-1, 0))
	for i := 1; i < len(stops); i++ {
		route, err := s.services.Routes.Compute(ctx, models.RouteRequest{
			Origin:      stops[i-1].Coordinates,
			Destination: stops[i].Coordinates,
			Mode:        mode,
		})
		if err != nil {
			return nil, fmt.Errorf("route %s -> %s: %w", stops[i-1].ID, stops[i].ID, err)
		}
		legs = append(legs, route)
	}
	return legs, nil
}

// Reset returns the session to a fresh state and forgets what was persisted for it. A running
// generation is cancelled first so it cannot write into the wiped session.
func (s *Session) Reset() state.State {
	s.cancelGeneration()

	s.mu.Lock()
	s.plan = nil
	s.phase = ""
	s.mu.Unlock()

	next := s.dispatch(state.Reset{})
	s.persist.Forget(s.ctx, s.id)
	return next
}

// Close cancels background work and detaches the persist subscriber. It is safe to call more than once.
func (s *Session) Close() {
	s.cancel()
	s.wg.Wait()
	s.unsubscribe()
}

// bind returns a context cancelled when either ctx or the session ends.
func (s *Session) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (s *Session) setPlan(p models.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan = &p
}

func (s *Session) updatePlan(fn func(models.Plan) models.Plan) models.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated := fn(*s.plan)
	s.plan = &updated
	return updated
}

func (s *Session) setPhase(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = name
}

func (s *Session) addAssistantMessage(text string, suggestions []string) {
	s.dispatch(state.AddChatMessage{Message: models.ChatMessage{
		ID:          state.NewMessageID(),
		Role:        models.RoleAssistant,
		Content:     text,
		Timestamp:   time.Now().UTC(),
		Suggestions: suggestions,
	}})
}

// fail logs err, records a plain-language message in the state and returns the resulting state.
// Cancellation is not shown.
func (s *Session) fail(err error) (state.State, error) {
	if errors.Is(err, context.Canceled) {
		s.logger.Debug("Session operation cancelled", zap.Error(err))
		return s.State(), err
	}
	s.logger.Warn("Session operation failed", zap.Error(err))
	return s.dispatch(state.SetError{Message: s.Message(err)}), err
}

// Message turns err into text safe to show the traveller.
func (s *Session) Message(err error) string {
	switch {
	case errors.Is(err, models.ErrTooManyStyles):
		return fmt.Sprintf("You can pick up to %d travel styles.", s.cfg.MaxSelectedStyles)
	case errors.Is(err, models.ErrValidation):
		return "Please check your details and try again."
	case errors.Is(err, models.ErrNoTravelContext):
		return "Tell us about your trip before we plan it."
	case errors.Is(err, models.ErrNoItinerary):
		return "There's no itinerary to change yet."
	case errors.Is(err, models.ErrStopNotFound):
		return "That stop is no longer in your itinerary."
	case errors.Is(err, models.ErrNoPlan):
		return "Generate an itinerary before chatting with the planner."
	case errors.Is(err, models.ErrNoDraft):
		return "There are no pending changes to review."
	case errors.Is(err, models.ErrPlanAlreadyConfirmed):
		return "This plan is already confirmed."
	case errors.Is(err, models.ErrGenerationInProgress):
		return "Your itinerary is already being planned."
	case errors.Is(err, models.ErrNotFound):
		return "We couldn't find that plan anymore. Try generating a new itinerary."
	}
	if apiErr, ok := apiclient.AsAPIError(err); ok {
		switch apiErr.Kind {
		case apiclient.KindTimeout:
			return "The planner is taking too long to respond. Please try again."
		case apiclient.KindNetwork:
			return "We couldn't reach the planner. Check your connection and try again."
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "The planner is taking too long to respond. Please try again."
	}
	return "Something went wrong while planning your trip. Please try again."
}
