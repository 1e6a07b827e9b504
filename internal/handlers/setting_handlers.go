package handlers

import (
	"net/http"

	"ocelo_loyalty_backend/internal/models"
	"ocelo_loyalty_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// SettingHandler serves the branding and business configuration.
type SettingHandler struct {
	settingService services.SettingService
}

// NewSettingHandler creates a new SettingHandler.
func NewSettingHandler(ss services.SettingService) *SettingHandler {
	return &SettingHandler{settingService: ss}
}

// GetConfig returns the current configuration.
func (h *SettingHandler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.settingService.GetConfig())
}

// ReplaceConfig replaces the configuration wholesale.
func (h *SettingHandler) ReplaceConfig(c *gin.Context) {
	var cfg models.AppConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		respondBindError(c, err, "ReplaceConfig")
		return
	}
	updated, err := h.settingService.ReplaceConfig(c.Request.Context(), cfg)
	if err != nil {
		respondServiceError(c, err, "replace config")
		return
	}
	c.JSON(http.StatusOK, updated)
}
