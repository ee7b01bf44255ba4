package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-tripplanner/internal/app/itinerary"
	"github.com/FACorreiaa/go-tripplanner/internal/app/models"
	"github.com/FACorreiaa/go-tripplanner/internal/app/services"
	"github.com/FACorreiaa/go-tripplanner/internal/app/session"
	"github.com/FACorreiaa/go-tripplanner/internal/app/state"
	"github.com/FACorreiaa/go-tripplanner/internal/pkg/validation"
)

// SessionHandlers exposes planning sessions over JSON.
type SessionHandlers struct {
	sessions *session.Manager
	services *services.Services
	logger   *zap.Logger
}

func NewSessionHandlers(sessions *session.Manager, svc *services.Services, logger *zap.Logger) *SessionHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandlers{sessions: sessions, services: svc, logger: logger}
}

// PlanSummary is the part of the plan the client needs to drive the draft flow.
type PlanSummary struct {
	PlanID   string            `json:"planId"`
	Status   models.PlanStatus `json:"status"`
	HasDraft bool              `json:"hasDraft"`
	Persona  models.Persona    `json:"persona"`
}

// SessionResponse is returned by every session endpoint.
type SessionResponse struct {
	ID         string       `json:"id"`
	State      state.State  `json:"state"`
	Phase      string       `json:"phase,omitempty"`
	Generating bool         `json:"generating"`
	Plan       *PlanSummary `json:"plan,omitempty"`
}

func respond(s *session.Session, st state.State) SessionResponse {
	resp := SessionResponse{ID: s.ID(), State: st, Phase: s.Phase(), Generating: s.Generating()}
	if p := s.Plan(); p != nil {
		resp.Plan = &PlanSummary{PlanID: p.PlanID, Status: p.Status, HasDraft: itinerary.HasDraft(p), Persona: p.Persona}
	}
	return resp
}

// handleError maps domain errors to statuses. Upstream failures never leak their raw text.
func (h *SessionHandlers) handleError(c *gin.Context, err error, operation string) {
	switch {
	case errors.Is(err, models.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found", "details": "The planning session has expired or never existed"})
	case errors.Is(err, models.ErrStopNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Stop not found", "details": "That stop is no longer in your itinerary"})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "details": "The requested item does not exist"})
	case errors.Is(err, models.ErrNoItinerary),
		errors.Is(err, models.ErrNoPlan),
		errors.Is(err, models.ErrNoDraft),
		errors.Is(err, models.ErrNoTravelContext),
		errors.Is(err, models.ErrGenerationInProgress),
		errors.Is(err, models.ErrPlanAlreadyConfirmed):
		c.JSON(http.StatusConflict, gin.H{"error": "Conflict", "details": messageFor(err)})
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrTooManyStyles):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Validation failed", "details": messageFor(err)})
	default:
		h.logger.Error("Session operation failed", zap.String("operation", operation), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to " + operation, "details": "The planner is unavailable right now. Please try again later."})
	}
}

// messageFor is the user-facing text of a domain error.
func messageFor(err error) string {
	for _, e := range []error{
		models.ErrNoItinerary, models.ErrNoPlan, models.ErrNoDraft, models.ErrNoTravelContext,
		models.ErrGenerationInProgress, models.ErrPlanAlreadyConfirmed, models.ErrTooManyStyles, models.ErrValidation,
	} {
		if errors.Is(err, e) {
			return e.Error()
		}
	}
	return "request could not be completed"
}

func (h *SessionHandlers) session(c *gin.Context) (*session.Session, bool) {
	s, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err, "load session")
		return nil, false
	}
	return s, true
}

func (h *SessionHandlers) bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return false
	}
	return true
}

// CreateSession godoc
// @Summary Start a planning session
// @Tags sessions
// @Produce json
// @Success 201 {object} SessionResponse
// @Router /api/sessions [post]
func (h *SessionHandlers) CreateSession(c *gin.Context) {
	s := h.sessions.Create(c.Request.Context())
	c.JSON(http.StatusCreated, respond(s, s.State()))
}

// GetSession godoc
// @Summary Get a planning session, resuming it from storage when needed
// @Tags sessions
// @Produce json
// @Success 200 {object} SessionResponse
// @Failure 404 {object} map[string]string
// @Router /api/sessions/{id} [get]
func (h *SessionHandlers) GetSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, respond(s, s.State()))
}

func (h *SessionHandlers) DeleteSession(c *gin.Context) {
	if err := h.sessions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err, "delete session")
		return
	}
	c.Status(http.StatusNoContent)
}

// DispatchAction applies a raw {type, payload} action.
func (h *SessionHandlers) DispatchAction(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var env state.Envelope
	if !h.bind(c, &env) {
		return
	}
	action, err := state.DecodeAction(env)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action", "details": err.Error()})
		return
	}
	st, err := s.Dispatch(action)
	if err != nil {
		h.handleError(c, err, "dispatch action")
		return
	}
	c.JSON(http.StatusOK, respond(s, st))
}

type selectStylesRequest struct {
	StyleIDs []string `json:"styleIds"`
}

func (h *SessionHandlers) SelectStyles(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req selectStylesRequest
	if !h.bind(c, &req) {
		return
	}
	st, err := s.SelectStyleIDs(c.Request.Context(), req.StyleIDs)
	if err != nil {
		h.handleError(c, err, "select styles")
		return
	}
	c.JSON(http.StatusOK, respond(s, st))
}

// SetupContext godoc
// @Summary Validate and store the travel context
// @Tags sessions
// @Accept json
// @Produce json
// @Success 200 {object} SessionResponse
// @Failure 422 {object} map[string]any
// @Router /api/sessions/{id}/context [put]
func (h *SessionHandlers) SetupContext(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var in validation.ContextInput
	if !h.bind(c, &in) {
		return
	}
	st, fieldErrs, err := s.SetupContext(in)
	if len(fieldErrs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Validation failed", "fields": fieldErrs})
		return
	}
	if err != nil {
		h.handleError(c, err, "set up travel context")
		return
	}
	c.JSON(http.StatusOK, respond(s, st))
}

// GenerateItinerary runs generation inline, or in the background with ?async=true.
func (h *SessionHandlers) GenerateItinerary(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if c.Query("async") == "true" {
		if s.State().TravelContext == nil {
			h.handleError(c, models.ErrNoTravelContext, "generate itinerary")
			return
		}
		if !s.StartGeneration() {
			h.handleError(c, models.ErrGenerationInProgress, "generate itinerary")
			return
		}
		c.JSON(http.StatusAccepted, respond(s, s.State()))
		return
	}
	st, err := s.GenerateItinerary(c.Request.Context())
	if err != nil {
		h.handleError(c, err, "generate itinerary")
		return
	}
	c.JSON(http.StatusOK, respond(s, st))
}

func (h *SessionHandlers) AddStop(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var stop models.ItineraryStop
	if !h.bind(c, &stop) {
		return
	}
	st, err := s.AddStop(stop)
	if err != nil {
		h.handleError(c, err, "add stop")
		return
	}
	c.JSON(http.StatusOK, respond(s, st))
}

func (h *SessionHandlers) UpdateStop(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var patch models.StopPatch
	if !h.bind(c, &patch) {
		return
	}
	st, err := s.UpdateStop(c.Param("stopId"), patch)
	if err != nil {
		h.handleError(c, err, "update stop")
		return
	}
	c.JSON(http.StatusOK, respond(s, st))
}

func (h *SessionHandlers) RemoveStop(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	st, err := s.RemoveStop(c.Param("stopId"))
	if err != nil {
		h.handleError(c, err, "remove stop")
		return
	}
	c.JSON(http.StatusOK, respond(s, st))
}

type reorderRequest struct {
	From *int `json:"from" binding:"required"`
	To   *int `json:"to" binding:"required"`
}

func (h *SessionHandlers) ReorderStops(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req reorderRequest
	if !h.bind(c, &req) {
		return
	}
	st, err := s.ReorderStops(*req.From, *req.To)
	if err != nil {
		h.handleError(c, err, "reorder stops")
		return
	}
	c.JSON(http.StatusOK, respond(s, st))
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

// SendChatMessage godoc
// @Summary Send a message to the planner
// @Tags sessions
// @Accept json
// @Produce json
// @Success 200 {object} SessionResponse
// @Failure 409 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /api/sessions/{id}/chat [post]
func (h *SessionHandlers) SendChatMessage(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req chatRequest
	if !h.bind(c, &req) {
		return
	}
	st, err := s.SendChatMessage(c.Request.Context(), req.Message)
	if err != nil {
		h.handleError(c, err, "send chat message")
		return
	}
	c.JSON(http.StatusOK, respond(s, st))
}

func (h *SessionHandlers) AcceptDraft(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	st, err := s.AcceptDraft(c.Request.Context())
	if err != nil {
		h.handleError(c, err, "accept draft")
		return
	}
	c.JSON(http.StatusOK, respond(s, st))
}

func (h *SessionHandlers) RejectDraft(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	st, err := s.RejectDraft(c.Request.Context())
	if err != nil {
		h.handleError(c, err, "reject draft")
		return
	}
	c.JSON(http.StatusOK, respond(s, st))
}

func (h *SessionHandlers) ConfirmPlan(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	st, err := s.ConfirmPlan(c.Request.Context())
	if err != nil {
		h.handleError(c, err, "confirm plan")
		return
	}
	c.JSON(http.StatusOK, respond(s, st))
}

// Reset clears the session back to the welcome screen.
func (h *SessionHandlers) Reset(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, respond(s, s.Reset()))
}

// NavigationLinks returns deep links for the current stops; ?mode= overrides the travel mode.
func (h *SessionHandlers) NavigationLinks(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.NavigationLinks(models.TravelMode(c.Query("mode"))))
}

// TripForecast godoc
// @Summary Daily weather for the trip destination
// @Tags sessions
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 409 {object} map[string]string
// @Router /api/sessions/{id}/weather [get]
func (h *SessionHandlers) TripForecast(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	forecasts, err := s.TripForecast(c.Request.Context())
	if err != nil {
		h.handleError(c, err, "load forecast")
		return
	}
	c.JSON(http.StatusOK, gin.H{"forecasts": forecasts})
}

// RouteLegs returns the legs between consecutive stops; ?mode= overrides the travel mode.
func (h *SessionHandlers) RouteLegs(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	legs, err := s.RouteLegs(c.Request.Context(), models.TravelMode(c.Query("mode")))
	if err != nil {
		h.handleError(c, err, "compute routes")
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": legs})
}

func (h *SessionHandlers) ListPersonas(c *gin.Context) {
	styles, err := h.services.Personas.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err, "list personas")
		return
	}
	c.JSON(http.StatusOK, gin.H{"personas": styles})
}
