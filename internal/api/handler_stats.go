package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"power-status-backend/internal/history"
	"power-status-backend/internal/parse"
)

// MonthlyStatsResponse is the monthly summary of a place.
type MonthlyStatsResponse struct {
	*history.MonthlyStats
	AvailableSeconds   int64 `json:"availableSeconds"`
	UnavailableSeconds int64 `json:"unavailableSeconds"`
}

// GetStats handles the GET /api/places/:place_id/stats request.
func (h *Handler) GetStats(c *gin.Context) {
	place, ok := h.loadPlace(c)
	if !ok {
		return
	}

	stats, err := h.history.PlaceStats(c.Request.Context(), *place, h.now())
	if err != nil {
		h.log.Error("failed to build place stats", "place_id", place.ID, "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to build stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetMonthlyStats handles the GET /api/places/:place_id/stats/monthly request.
// The month query parameter is YYYY-MM and defaults to the current month.
func (h *Handler) GetMonthlyStats(c *gin.Context) {
	place, ok := h.loadPlace(c)
	if !ok {
		return
	}
	loc, err := place.Location()
	if err != nil {
		h.log.Error("invalid place timezone", "place_id", place.ID, "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Invalid place timezone"})
		return
	}

	now := h.now()
	month := now.In(loc)
	if raw := c.Query("month"); raw != "" {
		month, err = parse.ParseMonth(raw, loc)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid 'month' format. Use YYYY-MM."})
			return
		}
	}

	stats, err := h.history.MonthlyStats(c.Request.Context(), *place, month, now)
	if err != nil {
		if errors.Is(err, history.ErrMonthlyStatsDisabled) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("failed to build monthly stats", "place_id", place.ID, "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to build stats"})
		return
	}

	c.JSON(http.StatusOK, MonthlyStatsResponse{
		MonthlyStats:       stats,
		AvailableSeconds:   int64(stats.Summary.Available.Seconds()),
		UnavailableSeconds: int64(stats.Summary.Unavailable.Seconds()),
	})
}
