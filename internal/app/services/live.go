package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/FACorreiaa/go-tripplanner/internal/app/models"
	"github.com/FACorreiaa/go-tripplanner/internal/pkg/apiclient"
	"github.com/FACorreiaa/go-tripplanner/internal/pkg/cache"
	"github.com/FACorreiaa/go-tripplanner/internal/pkg/debugger"
)

// NewLive returns façades backed by the planner API. Read-only lookups go through caches when given.
func NewLive(client *apiclient.Client, caches *cache.Manager, logger *zap.Logger) *Services {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := liveBase{client: client, caches: caches, logger: logger}
	return &Services{
		Places:   &livePlaces{base},
		Routes:   &liveRoutes{base},
		Weather:  &liveWeather{base},
		Plans:    &livePlans{base},
		Personas: &livePersonas{base},
	}
}

type liveBase struct {
	client *apiclient.Client
	caches *cache.Manager
	logger *zap.Logger
}

// cacheKey returns "" when the key cannot be built, which disables caching for that call.
func (b liveBase) cacheKey(kb *cache.KeyBuilder) string {
	key, err := kb.Build()
	if err != nil {
		b.logger.Warn("Failed to build cache key", zap.Error(err))
		return ""
	}
	return key
}

// upstreamError maps well-known statuses onto the domain sentinels.
func upstreamError(err error) error {
	apiErr, ok := apiclient.AsAPIError(err)
	if !ok || apiErr.Kind != apiclient.KindHTTP {
		return err
	}
	switch apiErr.Status {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", models.ErrNotFound, err)
	case http.StatusConflict:
		return fmt.Errorf("%w: %w", models.ErrPlanAlreadyConfirmed, err)
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return fmt.Errorf("%w: %w", models.ErrValidation, err)
	}
	return err
}

type livePlaces struct{ liveBase }

func (p *livePlaces) Search(ctx context.Context, req models.PlaceSearchRequest) ([]models.PlaceDetails, error) {
	q := url.Values{}
	q.Set("query", req.Query)
	kb := cache.NewKeyBuilder("places").AddText("query", req.Query).Add("type", req.Type).
		Add("radius", req.RadiusMeters).Add("limit", req.Limit)
	if req.Location != nil {
		q.Set("lat", strconv.FormatFloat(req.Location.Lat, 'f', 6, 64))
		q.Set("lng", strconv.FormatFloat(req.Location.Lng, 'f', 6, 64))
		kb.Add("location", *req.Location)
	}
	if req.RadiusMeters > 0 {
		q.Set("radius", strconv.Itoa(req.RadiusMeters))
	}
	if req.Type != "" {
		q.Set("type", req.Type)
	}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}

	key := ""
	if p.caches != nil {
		key = p.cacheKey(kb)
		if cached, ok := p.caches.Places.Get(key); key != "" && ok {
			return cached, nil
		}
	}

	out, err := apiclient.Fetch[struct {
		Places []models.PlaceDetails `json:"places"`
	}](ctx, p.client, "/places/search", apiclient.WithQuery(q))
	if err != nil {
		return nil, upstreamError(err)
	}
	if out.Places == nil {
		out.Places = []models.PlaceDetails{}
	}
	if key != "" {
		p.caches.Places.Set(key, out.Places)
	}
	return out.Places, nil
}

func (p *livePlaces) Details(ctx context.Context, placeID string) (models.PlaceDetails, error) {
	if p.caches != nil {
		if cached, ok := p.caches.Details.Get(placeID); ok {
			return cached, nil
		}
	}
	place, err := apiclient.Fetch[models.PlaceDetails](ctx, p.client, "/places/"+url.PathEscape(placeID))
	if err != nil {
		return models.PlaceDetails{}, upstreamError(err)
	}
	if p.caches != nil {
		p.caches.Details.Set(placeID, place)
	}
	return place, nil
}

type liveRoutes struct{ liveBase }

func (r *liveRoutes) Compute(ctx context.Context, req models.RouteRequest) (models.Route, error) {
	key := ""
	if r.caches != nil {
		key = r.cacheKey(cache.NewKeyBuilder("routes").Add("origin", req.Origin).
			Add("destination", req.Destination).Add("mode", req.Mode))
		if cached, ok := r.caches.Routes.Get(key); key != "" && ok {
			return cached, nil
		}
	}
	route, err := apiclient.Fetch[models.Route](ctx, r.client, "/routes/compute",
		apiclient.WithMethod(http.MethodPost), apiclient.WithBody(req))
	if err != nil {
		return models.Route{}, upstreamError(err)
	}
	if key != "" {
		r.caches.Routes.Set(key, route)
	}
	return route, nil
}

type liveWeather struct{ liveBase }

func (w *liveWeather) Forecast(ctx context.Context, req models.WeatherRequest) (models.Forecast, error) {
	day := req.Date.Format("2006-01-02")
	key := ""
	if w.caches != nil {
		key = w.cacheKey(cache.NewKeyBuilder("forecasts").Add("location", req.Location).Add("date", day))
		if cached, ok := w.caches.Forecasts.Get(key); key != "" && ok {
			return cached, nil
		}
	}
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(req.Location.Lat, 'f', 6, 64))
	q.Set("lng", strconv.FormatFloat(req.Location.Lng, 'f', 6, 64))
	q.Set("date", day)
	forecast, err := apiclient.Fetch[models.Forecast](ctx, w.client, "/weather/forecast", apiclient.WithQuery(q))
	if err != nil {
		return models.Forecast{}, upstreamError(err)
	}
	if key != "" {
		w.caches.Forecasts.Set(key, forecast)
	}
	return forecast, nil
}

type livePlans struct{ liveBase }

// Plan generation can take a while upstream, so it gets one attempt with a long timeout.
func (p *livePlans) Create(ctx context.Context, req models.CreatePlanRequest) (models.Plan, error) {
	plan, err := apiclient.Fetch[models.Plan](ctx, p.client, "/plans",
		apiclient.WithMethod(http.MethodPost), apiclient.WithBody(req),
		apiclient.WithRetry(false), apiclient.WithTimeout(2*apiclient.DefaultTimeout))
	if err != nil {
		return models.Plan{}, upstreamError(err)
	}
	p.logger.Info("Plan created", zap.String("plan_id", plan.PlanID))
	return plan, nil
}

func (p *livePlans) Get(ctx context.Context, planID string) (models.Plan, error) {
	plan, err := apiclient.Fetch[models.Plan](ctx, p.client, "/plans/"+url.PathEscape(planID))
	if err != nil {
		return models.Plan{}, upstreamError(err)
	}
	return plan, nil
}

func (p *livePlans) Chat(ctx context.Context, planID, message string) (models.ChatReply, error) {
	resp, err := apiclient.Fetch[models.PlanChatResponse](ctx, p.client, "/plans/"+url.PathEscape(planID)+"/chat",
		apiclient.WithMethod(http.MethodPost), apiclient.WithBody(models.PlanChatRequest{Message: message}),
		apiclient.WithRetry(false))
	if err != nil {
		return nil, upstreamError(err)
	}
	reply, err := resp.Reply()
	if err != nil {
		debugger.LogPayload(p.logger, "Undecodable chat response", resp.Response)
		p.logger.Warn("Unexpected chat response", zap.String("plan_id", planID), zap.String("action", resp.Action), zap.Error(err))
		return nil, err
	}
	return reply, nil
}

func (p *livePlans) Confirm(ctx context.Context, planID string) (models.Plan, error) {
	return p.post(ctx, "/plans/"+url.PathEscape(planID)+"/confirm")
}

func (p *livePlans) RejectDraft(ctx context.Context, planID string) (models.Plan, error) {
	plan, err := p.post(ctx, "/plans/"+url.PathEscape(planID)+"/draft/reject")
	if errors.Is(err, models.ErrPlanAlreadyConfirmed) {
		// 409 here means there was nothing to reject
		return models.Plan{}, fmt.Errorf("%w: %w", models.ErrNoDraft, err)
	}
	return plan, err
}

func (p *livePlans) post(ctx context.Context, endpoint string) (models.Plan, error) {
	plan, err := apiclient.Fetch[models.Plan](ctx, p.client, endpoint, apiclient.WithMethod(http.MethodPost))
	if err != nil {
		return models.Plan{}, upstreamError(err)
	}
	return plan, nil
}

type livePersonas struct{ liveBase }

const personasKey = "personas:all"

func (p *livePersonas) List(ctx context.Context) ([]models.TravelStyle, error) {
	if p.caches != nil {
		if cached, ok := p.caches.Personas.Get(personasKey); ok {
			return cached, nil
		}
	}
	out, err := apiclient.Fetch[struct {
		Personas []models.TravelStyle `json:"personas"`
	}](ctx, p.client, "/personas")
	if err != nil {
		return nil, upstreamError(err)
	}
	if p.caches != nil {
		p.caches.Personas.Set(personasKey, out.Personas)
	}
	return out.Personas, nil
}
