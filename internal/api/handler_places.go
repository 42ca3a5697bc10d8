package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"power-status-backend/internal/model"
	"power-status-backend/internal/store"
)

// PlaceResponse represents the API response for a single place.
type PlaceResponse struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Timezone            string `json:"timezone"`
	CheckType           string `json:"checkType"`
	ScheduleGroupID     *int   `json:"scheduleGroupId,omitempty"`
	DisableMonthlyStats bool   `json:"disableMonthlyStats"`
	IsDisabled          bool   `json:"isDisabled"`
}

// CurrentResponse is the latest known state of a place.
type CurrentResponse struct {
	PlaceID     string     `json:"placeId"`
	IsAvailable *bool      `json:"isAvailable"`
	Since       *time.Time `json:"since"`
}

func newPlaceResponse(p model.Place) PlaceResponse {
	return PlaceResponse{
		ID:                  p.ID,
		Name:                p.Name,
		Timezone:            p.Timezone,
		CheckType:           string(p.CheckType),
		ScheduleGroupID:     p.ScheduleGroupID,
		DisableMonthlyStats: p.DisableMonthlyStats,
		IsDisabled:          p.IsDisabled,
	}
}

// GetPlaces handles the GET /api/places request.
func (h *Handler) GetPlaces(c *gin.Context) {
	places, err := h.store.ListPlaces(c.Request.Context())
	if err != nil {
		h.log.Error("failed to list places", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve places"})
		return
	}

	responses := make([]PlaceResponse, 0, len(places))
	for _, p := range places {
		responses = append(responses, newPlaceResponse(p))
	}
	c.JSON(http.StatusOK, responses)
}

// GetCurrent handles the GET /api/places/:place_id/current request.
func (h *Handler) GetCurrent(c *gin.Context) {
	place, ok := h.loadPlace(c)
	if !ok {
		return
	}

	latest, err := h.store.LatestAvailability(c.Request.Context(), place.ID)
	if err != nil {
		h.log.Error("failed to read latest availability", "place_id", place.ID, "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve availability"})
		return
	}

	resp := CurrentResponse{PlaceID: place.ID}
	if latest != nil {
		resp.IsAvailable = &latest.IsAvailable
		resp.Since = &latest.CreatedAt
	}
	c.JSON(http.StatusOK, resp)
}

// loadPlace resolves the :place_id parameter, writing the error response itself.
func (h *Handler) loadPlace(c *gin.Context) (*model.Place, bool) {
	place, err := h.store.GetPlace(c.Request.Context(), c.Param("place_id"))
	if err != nil {
		if store.IsNotFound(err) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Place not found"})
		} else {
			h.log.Error("failed to load place", "place_id", c.Param("place_id"), "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve place"})
		}
		return nil, false
	}
	return place, true
}
