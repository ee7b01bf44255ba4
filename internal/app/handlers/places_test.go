package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-tripplanner/internal/app/models"
	"github.com/FACorreiaa/go-tripplanner/internal/app/services"
)

func newPlacesRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, err := services.NewFixtures(nil)
	require.NoError(t, err)
	h := NewPlacesHandlers(svc, nil)
	r := gin.New()
	r.GET("/api/places/search", h.SearchPlaces)
	r.GET("/api/places/:id", h.PlaceDetails)
	return r
}

func TestPlacesHandlers_Search(t *testing.T) {
	r := newPlacesRouter(t)

	tests := []struct {
		name    string
		query   string
		want    int
		wantIDs []string
	}{
		{"by type", "?type=food&limit=2", http.StatusOK, []string{"telawi-street", "vcr-cafe"}},
		{"near bangsar", "?lat=3.1301&lng=101.6713&radius=500", http.StatusOK, []string{"bangsar-village", "telawi-street"}},
		{"no match", "?query=aquarium", http.StatusOK, []string{}},
		{"lat without lng", "?lat=3.1", http.StatusBadRequest, nil},
		{"lat out of range", "?lat=95&lng=101.6", http.StatusBadRequest, nil},
		{"bad radius", "?lat=3.1&lng=101.6&radius=far", http.StatusBadRequest, nil},
		{"bad limit", "?limit=-1", http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodGet, "/api/places/search"+tt.query, nil)
			require.Equal(t, tt.want, w.Code, w.Body.String())
			if tt.wantIDs == nil {
				return
			}
			var body struct {
				Places []models.PlaceDetails `json:"places"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			ids := []string{}
			for _, p := range body.Places {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestPlacesHandlers_Details(t *testing.T) {
	r := newPlacesRouter(t)

	w := do(t, r, http.MethodGet, "/api/places/merdeka-square", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var place models.PlaceDetails
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &place))
	assert.Equal(t, "Merdeka Square", place.DisplayName)

	w = do(t, r, http.MethodGet, "/api/places/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
