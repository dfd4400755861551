package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/yungbote/studymatch-backend/internal/services"
)

type AdminHandler struct {
  settingsService services.AppSettingsService
}

func NewAdminHandler(settingsService services.AppSettingsService) *AdminHandler {
  return &AdminHandler{settingsService: settingsService}
}

func (ah *AdminHandler) GetSettings(c *gin.Context) {
  settings, err := ah.settingsService.Snapshot(c.Request.Context())
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, settings)
}

func (ah *AdminHandler) UpdateSettings(c *gin.Context) {
  var patch services.AppSettingsPatch
  if err := c.ShouldBindJSON(&patch); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  settings, err := ah.settingsService.Update(c.Request.Context(), patch)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, settings)
}
