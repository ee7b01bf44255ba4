// Package cache keeps short-lived copies of upstream service responses.
package cache

import (
	"time"

	"go.uber.org/zap"

	"github.com/FACorreiaa/go-tripplanner/internal/app/models"
)

// Manager holds the response caches used by the live service façades.
type Manager struct {
	Places    *UnifiedCache[[]models.PlaceDetails]
	Details   *UnifiedCache[models.PlaceDetails]
	Routes    *UnifiedCache[models.Route]
	Forecasts *UnifiedCache[models.Forecast]
	Personas  *UnifiedCache[[]models.TravelStyle]
}

// NewManager creates the caches with their default TTLs.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		Places:    NewUnifiedCache[[]models.PlaceDetails](5*time.Minute, "places", logger),
		Details:   NewUnifiedCache[models.PlaceDetails](15*time.Minute, "place_details", logger),
		Routes:    NewUnifiedCache[models.Route](10*time.Minute, "routes", logger),
		Forecasts: NewUnifiedCache[models.Forecast](30*time.Minute, "forecasts", logger),
		// personas are reference data
		Personas: NewUnifiedCache[[]models.TravelStyle](time.Hour, "personas", logger),
	}
}

// Metrics returns the counters of every cache by name.
func (m *Manager) Metrics() map[string]Metrics {
	return map[string]Metrics{
		"places":        m.Places.Metrics(),
		"place_details": m.Details.Metrics(),
		"routes":        m.Routes.Metrics(),
		"forecasts":     m.Forecasts.Metrics(),
		"personas":      m.Personas.Metrics(),
	}
}

func (m *Manager) ClearAll() {
	m.Places.Clear()
	m.Details.Clear()
	m.Routes.Clear()
	m.Forecasts.Clear()
	m.Personas.Clear()
}

// Close stops every janitor goroutine.
func (m *Manager) Close() {
	m.Places.Close()
	m.Details.Close()
	m.Routes.Close()
	m.Forecasts.Close()
	m.Personas.Close()
}
