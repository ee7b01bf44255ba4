// Package services holds the façades the planning session uses to reach the places, routes,
// weather, plans and personas backends. Each façade has a fixture and a live implementation
// behind the same interface.
package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/FACorreiaa/go-tripplanner/internal/app/models"
	"github.com/FACorreiaa/go-tripplanner/internal/pkg/apiclient"
	"github.com/FACorreiaa/go-tripplanner/internal/pkg/cache"
)

// Places looks up points of interest.
type Places interface {
	Search(ctx context.Context, req models.PlaceSearchRequest) ([]models.PlaceDetails, error)
	Details(ctx context.Context, placeID string) (models.PlaceDetails, error)
}

// Routes computes travel legs.
type Routes interface {
	Compute(ctx context.Context, req models.RouteRequest) (models.Route, error)
}

// Weather forecasts a single day.
type Weather interface {
	Forecast(ctx context.Context, req models.WeatherRequest) (models.Forecast, error)
}

// Plans talks to the AI planner.
type Plans interface {
	Create(ctx context.Context, req models.CreatePlanRequest) (models.Plan, error)
	Get(ctx context.Context, planID string) (models.Plan, error)
	Chat(ctx context.Context, planID, message string) (models.ChatReply, error)
	// Confirm confirms a draft plan, or promotes the pending draft of an already confirmed one.
	Confirm(ctx context.Context, planID string) (models.Plan, error)
	RejectDraft(ctx context.Context, planID string) (models.Plan, error)
}

// Personas lists the travel styles a user can choose from.
type Personas interface {
	List(ctx context.Context) ([]models.TravelStyle, error)
}

// Services bundles every façade.
type Services struct {
	Places   Places
	Routes   Routes
	Weather  Weather
	Plans    Plans
	Personas Personas
}

// Mode selects the implementation behind the façades.
type Mode string

const (
	ModeFixture Mode = "fixture"
	ModeLive    Mode = "live"
)

// New builds the façades for mode. Live mode requires a client; caches may be nil.
func New(mode Mode, client *apiclient.Client, caches *cache.Manager, logger *zap.Logger) (*Services, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch mode {
	case "", ModeFixture:
		logger.Info("Using fixture services")
		return NewFixtures(logger)
	case ModeLive:
		if client == nil {
			return nil, fmt.Errorf("live services need an API client")
		}
		logger.Info("Using live services", zap.String("base_url", client.BaseURL()))
		return NewLive(client, caches, logger), nil
	default:
		return nil, fmt.Errorf("unknown services mode %q", mode)
	}
}
