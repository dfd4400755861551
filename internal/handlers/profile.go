package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "gorm.io/datatypes"

  "github.com/yungbote/studymatch-backend/internal/requestdata"
  "github.com/yungbote/studymatch-backend/internal/services"
  "github.com/yungbote/studymatch-backend/internal/types"
)

type ProfileHandler struct {
  profileService services.ProfileService
}

func NewProfileHandler(profileService services.ProfileService) *ProfileHandler {
  return &ProfileHandler{profileService: profileService}
}

func (ph *ProfileHandler) GetOwn(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
    return
  }
  profile, err := ph.profileService.GetByUserID(c.Request.Context(), rd.UserID)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, profile)
}

func (ph *ProfileHandler) Upsert(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
    return
  }
  var req struct {
    Bio            string   `json:"bio"`
    Subjects       []string `json:"subjects"`
    PreferredTimes []string `json:"preferred_times"`
    LearningStyle  *string  `json:"learning_style"`
    ExamGoal       *string  `json:"exam_goal"`
    StudyStreak    int      `json:"study_streak"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  profile := types.Profile{
    UserID:         rd.UserID,
    Bio:            req.Bio,
    Subjects:       datatypes.JSONSlice[string](req.Subjects),
    PreferredTimes: datatypes.JSONSlice[string](req.PreferredTimes),
    LearningStyle:  req.LearningStyle,
    ExamGoal:       req.ExamGoal,
    StudyStreak:    req.StudyStreak,
  }
  saved, err := ph.profileService.Upsert(c.Request.Context(), &profile)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, saved)
}
