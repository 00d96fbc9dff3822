package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"rsiassist/internal/core/model"
)

// Backend is the timer service behind the HTTP surface.
type Backend interface {
	Status() model.TimerStatus
	Config() model.BreakConfig
	UpdateConfig(config model.BreakConfig) error
	SetMode(mode model.OperationMode) error
	ResetBreak(breakType model.BreakType) error
	TriggerBreak(breakType model.BreakType) error
	RecordTaken(ctx context.Context, breakType model.BreakType) error
	RecordPostponed(ctx context.Context, breakType model.BreakType) error
	Statistics(ctx context.Context, days int) ([]model.DailyStats, error)
	Subscribe(buffer int) (<-chan model.TimerStatus, func())
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	backend    Backend
	statsCache *cache.Cache
}

// NewHandler creates a new API handler.
func NewHandler(backend Backend, statsCache *cache.Cache) *Handler {
	return &Handler{
		backend:    backend,
		statsCache: statsCache,
	}
}

// GetStatus handles GET /api/status.
func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.backend.Status())
}

func errorStatus(err error) int {
	if errors.Is(err, model.ErrInvalidBreakType) || errors.Is(err, model.ErrInvalidMode) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
