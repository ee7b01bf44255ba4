package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-tripplanner/internal/app/models"
	"github.com/FACorreiaa/go-tripplanner/internal/app/services"
)

const maxSearchLimit = 50

// PlacesHandlers exposes the places lookups used while editing an itinerary.
type PlacesHandlers struct {
	places services.Places
	logger *zap.Logger
}

func NewPlacesHandlers(svc *services.Services, logger *zap.Logger) *PlacesHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlacesHandlers{places: svc.Places, logger: logger}
}

// SearchPlaces godoc
// @Summary Search places by text, type and distance
// @Tags places
// @Produce json
// @Param query query string false "Name or type to match"
// @Param type query string false "Place type"
// @Param lat query number false "Latitude of the search center"
// @Param lng query number false "Longitude of the search center"
// @Param radius query int false "Radius in meters around lat/lng"
// @Param limit query int false "Maximum results"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Router /api/places/search [get]
func (h *PlacesHandlers) SearchPlaces(c *gin.Context) {
	req, err := searchRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid search", "details": err.Error()})
		return
	}
	places, err := h.places.Search(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err, "search places")
		return
	}
	c.JSON(http.StatusOK, gin.H{"places": places})
}

func (h *PlacesHandlers) PlaceDetails(c *gin.Context) {
	place, err := h.places.Details(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err, "load place")
		return
	}
	c.JSON(http.StatusOK, place)
}

func (h *PlacesHandlers) handleError(c *gin.Context, err error, operation string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Place not found", "details": "The requested place does not exist"})
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Validation failed", "details": messageFor(err)})
	default:
		h.logger.Error("Places lookup failed", zap.String("operation", operation), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to " + operation, "details": "The places service is unavailable right now. Please try again later."})
	}
}

func searchRequest(c *gin.Context) (models.PlaceSearchRequest, error) {
	req := models.PlaceSearchRequest{Query: c.Query("query"), Type: c.Query("type")}

	lat, hasLat := c.GetQuery("lat")
	lng, hasLng := c.GetQuery("lng")
	if hasLat != hasLng {
		return req, errors.New("lat and lng must be given together")
	}
	if hasLat {
		var loc models.Coordinate
		var err error
		if loc.Lat, err = strconv.ParseFloat(lat, 64); err != nil || loc.Lat < -90 || loc.Lat > 90 {
			return req, fmt.Errorf("invalid lat %q", lat)
		}
		if loc.Lng, err = strconv.ParseFloat(lng, 64); err != nil || loc.Lng < -180 || loc.Lng > 180 {
			return req, fmt.Errorf("invalid lng %q", lng)
		}
		req.Location = &loc
	}
	if v := c.Query("radius"); v != "" {
		radius, err := strconv.Atoi(v)
		if err != nil || radius < 0 {
			return req, fmt.Errorf("invalid radius %q", v)
		}
		req.RadiusMeters = radius
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return req, fmt.Errorf("invalid limit %q", v)
		}
		req.Limit = min(limit, maxSearchLimit)
	}
	return req, nil
}
