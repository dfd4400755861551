package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/yungbote/studymatch-backend/internal/requestdata"
  "github.com/yungbote/studymatch-backend/internal/services"
)

type TelemetryHandler struct {
  tokenUsageService services.TokenUsageService
}

func NewTelemetryHandler(tokenUsageService services.TokenUsageService) *TelemetryHandler {
  return &TelemetryHandler{tokenUsageService: tokenUsageService}
}

func (th *TelemetryHandler) GetTokenUsage(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
    return
  }
  totals, err := th.tokenUsageService.TotalsForUser(c.Request.Context(), rd.UserID)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, totals)
}
