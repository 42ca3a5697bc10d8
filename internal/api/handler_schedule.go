package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetSchedule handles the GET /api/places/:place_id/schedule request.
func (h *Handler) GetSchedule(c *gin.Context) {
	place, ok := h.loadPlace(c)
	if !ok {
		return
	}
	if h.predictor == nil || place.ScheduleGroupID == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "No schedule for this place"})
		return
	}
	loc, err := place.Location()
	if err != nil {
		h.log.Error("invalid place timezone", "place_id", place.ID, "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Invalid place timezone"})
		return
	}

	c.JSON(http.StatusOK, h.predictor.NextMoments(*place.ScheduleGroupID, h.now(), loc))
}
