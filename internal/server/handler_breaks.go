package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rsiassist/internal/core/model"
)

const (
	defaultStatisticsDays = 7
	maxStatisticsDays     = 366
)

// PostBreakAction handles POST /api/breaks/{type}/{action}.
func (h *Handler) PostBreakAction(c *gin.Context) {
	breakType, err := model.ParseBreakType(c.Param("type"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	switch action := c.Param("action"); action {
	case "taken":
		err = h.backend.RecordTaken(ctx, breakType)
		h.statsCache.Flush()
	case "postponed":
		err = h.backend.RecordPostponed(ctx, breakType)
		h.statsCache.Flush()
	case "reset":
		err = h.backend.ResetBreak(breakType)
	case "trigger":
		err = h.backend.TriggerBreak(breakType)
	default:
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown break action " + strconv.Quote(action)})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetStatistics handles GET /api/statistics?days=N.
func (h *Handler) GetStatistics(c *gin.Context) {
	days, err := parseStatisticsDays(c.Query("days"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stats, err := h.backend.Statistics(c.Request.Context(), days)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if stats == nil {
		stats = []model.DailyStats{}
	}
	c.JSON(http.StatusOK, stats)
}

// parseStatisticsDays reads the days query value. An empty value selects the default window.
func parseStatisticsDays(raw string) (int, error) {
	if raw == "" {
		return defaultStatisticsDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 || days > maxStatisticsDays {
		return 0, errors.New("Invalid days parameter")
	}
	return days, nil
}
