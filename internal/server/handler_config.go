package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rsiassist/internal/core/model"
)

// GetConfig handles GET /api/config.
func (h *Handler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.backend.Config())
}

// PutConfig handles PUT /api/config. Fields missing from the body keep their current value.
func (h *Handler) PutConfig(c *gin.Context) {
	config := h.backend.Config()
	if err := c.ShouldBindJSON(&config); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := config.Validate(); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.backend.UpdateConfig(config); err != nil {
		c.AbortWithStatusJSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

type putModeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// PutMode handles PUT /api/mode.
func (h *Handler) PutMode(c *gin.Context) {
	var req putModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mode, err := model.ParseMode(req.Mode)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.backend.SetMode(mode); err != nil {
		c.AbortWithStatusJSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
