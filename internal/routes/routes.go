package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FACorreiaa/go-tripplanner/internal/app/handlers"
)

type AppHandlers struct {
	Sessions *handlers.SessionHandlers
	Places   *handlers.PlacesHandlers
}

// Setup registers every route on r.
func Setup(r *gin.Engine, h *AppHandlers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/personas", h.Sessions.ListPersonas)

		placesGroup := apiGroup.Group("/places")
		{
			placesGroup.GET("/search", h.Places.SearchPlaces)
			placesGroup.GET("/:id", h.Places.PlaceDetails)
		}

		sessionsGroup := apiGroup.Group("/sessions")
		{
			sessionsGroup.POST("", h.Sessions.CreateSession)
			sessionsGroup.GET("/:id", h.Sessions.GetSession)
			sessionsGroup.DELETE("/:id", h.Sessions.DeleteSession)
			sessionsGroup.POST("/:id/actions", h.Sessions.DispatchAction)
			sessionsGroup.POST("/:id/reset", h.Sessions.Reset)

			sessionsGroup.PUT("/:id/styles", h.Sessions.SelectStyles)
			sessionsGroup.PUT("/:id/context", h.Sessions.SetupContext)
			sessionsGroup.POST("/:id/itinerary", h.Sessions.GenerateItinerary)

			sessionsGroup.POST("/:id/stops", h.Sessions.AddStop)
			sessionsGroup.POST("/:id/stops/reorder", h.Sessions.ReorderStops)
			sessionsGroup.PATCH("/:id/stops/:stopId", h.Sessions.UpdateStop)
			sessionsGroup.DELETE("/:id/stops/:stopId", h.Sessions.RemoveStop)

			sessionsGroup.POST("/:id/chat", h.Sessions.SendChatMessage)
			sessionsGroup.POST("/:id/draft/accept", h.Sessions.AcceptDraft)
			sessionsGroup.POST("/:id/draft/reject", h.Sessions.RejectDraft)
			sessionsGroup.POST("/:id/plan/confirm", h.Sessions.ConfirmPlan)

			sessionsGroup.GET("/:id/navigation", h.Sessions.NavigationLinks)
			sessionsGroup.GET("/:id/routes", h.Sessions.RouteLegs)
			sessionsGroup.GET("/:id/weather", h.Sessions.TripForecast)
		}
	}
}
