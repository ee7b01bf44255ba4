package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	HTTPRequestsTotal    metric.Int64Counter
	HTTPRequestDuration  metric.Float64Histogram
	ActionsDispatched    metric.Int64Counter
	PersistFailuresTotal metric.Int64Counter
	SessionsCreatedTotal metric.Int64Counter
	ActiveSessions       metric.Int64UpDownCounter
	ItineraryGenDuration metric.Float64Histogram
	ChatMessagesTotal    metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics creates the instruments from the global MeterProvider. Only the first call has any
// effect, so the tracer setup must run before it for the instruments to be exported.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("go-tripplanner")
		m := &AppMetrics{}
		var err error

		m.HTTPRequestsTotal, err = meter.Int64Counter(
			"http_requests_total",
			metric.WithDescription("Total number of HTTP requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_requests_total: %v", err)
		}

		m.HTTPRequestDuration, err = meter.Float64Histogram(
			"http_request_duration_seconds",
			metric.WithDescription("Duration of HTTP requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_request_duration_seconds: %v", err)
		}

		m.ActionsDispatched, err = meter.Int64Counter(
			"session_actions_dispatched_total",
			metric.WithDescription("Total number of actions dispatched to session stores"),
			metric.WithUnit("{action}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create session_actions_dispatched_total: %v", err)
		}

		m.PersistFailuresTotal, err = meter.Int64Counter(
			"persist_failures_total",
			metric.WithDescription("Total number of swallowed persistence failures"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create persist_failures_total: %v", err)
		}

		m.SessionsCreatedTotal, err = meter.Int64Counter(
			"sessions_created_total",
			metric.WithDescription("Total number of planning sessions created"),
			metric.WithUnit("{session}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create sessions_created_total: %v", err)
		}

		m.ActiveSessions, err = meter.Int64UpDownCounter(
			"sessions_active",
			metric.WithDescription("Current number of live planning sessions"),
			metric.WithUnit("{session}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create sessions_active: %v", err)
		}

		m.ItineraryGenDuration, err = meter.Float64Histogram(
			"itinerary_generation_duration_seconds",
			metric.WithDescription("Duration of itinerary generation in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itinerary_generation_duration_seconds: %v", err)
		}

		m.ChatMessagesTotal, err = meter.Int64Counter(
			"chat_messages_total",
			metric.WithDescription("Total number of chat messages sent to the planner"),
			metric.WithUnit("{message}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create chat_messages_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the instruments, creating them from the current global provider on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}
