package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/yungbote/studymatch-backend/internal/requestdata"
  "github.com/yungbote/studymatch-backend/internal/services"
)

type MatchHandler struct {
  matchingService     services.MatchingService
  notificationService services.NotificationService
}

func NewMatchHandler(matchingService services.MatchingService, notificationService services.NotificationService) *MatchHandler {
  return &MatchHandler{matchingService: matchingService, notificationService: notificationService}
}

func (mh *MatchHandler) GetSuggestions(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
    return
  }
  suggestions, err := mh.matchingService.GetSuggestions(c.Request.Context(), rd.UserID)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, suggestions)
}

func (mh *MatchHandler) SendRequest(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
    return
  }
  targetUserID, err := uuid.Parse(c.Param("userId"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
    return
  }
  view, err := mh.matchingService.SendRequest(c.Request.Context(), rd.UserID, targetUserID)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusCreated, view)
}

func (mh *MatchHandler) Accept(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
    return
  }
  matchID, err := uuid.Parse(c.Param("matchId"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid match id"})
    return
  }
  view, err := mh.matchingService.Accept(c.Request.Context(), rd.UserID, matchID)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, view)
}

func (mh *MatchHandler) Decline(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
    return
  }
  matchID, err := uuid.Parse(c.Param("matchId"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid match id"})
    return
  }
  if err := mh.matchingService.Decline(c.Request.Context(), rd.UserID, matchID); err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"message": "match request declined"})
}

func (mh *MatchHandler) Unmatch(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
    return
  }
  targetUserID, err := uuid.Parse(c.Param("userId"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
    return
  }
  deleteChat := c.Query("delete_chat") == "true"
  if err := mh.matchingService.Unmatch(c.Request.Context(), rd.UserID, targetUserID, deleteChat); err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"message": "unmatched"})
}

func (mh *MatchHandler) ClearPending(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
    return
  }
  if err := mh.matchingService.ClearPending(c.Request.Context(), rd.UserID); err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"message": "pending requests cleared"})
}

func (mh *MatchHandler) GetPendingRequests(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
    return
  }
  views, err := mh.matchingService.GetPendingRequests(c.Request.Context(), rd.UserID)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, views)
}

func (mh *MatchHandler) GetMutualMatches(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
    return
  }
  views, err := mh.matchingService.GetMutualMatches(c.Request.Context(), rd.UserID)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, views)
}

func (mh *MatchHandler) GetNotifications(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
    return
  }
  notifications, err := mh.notificationService.ListForUser(c.Request.Context(), rd.UserID, 50)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, notifications)
}
