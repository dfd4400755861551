package server

import (
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"

  "github.com/yungbote/studymatch-backend/internal/handlers"
  "github.com/yungbote/studymatch-backend/internal/middleware"
)

type RouterConfig struct {
  AuthHandler      *handlers.AuthHandler
  AuthMiddleware   *middleware.AuthMiddleware
  ProfileHandler   *handlers.ProfileHandler
  MatchHandler     *handlers.MatchHandler
  AdminHandler     *handlers.AdminHandler
  TelemetryHandler *handlers.TelemetryHandler
  AllowOrigins     []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  // Cors
  router.Use(cors.New(cors.Config{
    AllowOrigins:     cfg.AllowOrigins,
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

// ===============
// || Public    ||
// ===============
  router.GET("/healthcheck", handlers.HealthCheck)
  router.POST("/register", cfg.AuthHandler.Register)
  router.POST("/login", cfg.AuthHandler.Login)

// ===============
// || Protected ||
// ===============
  protected := router.Group("/")
  protected.Use(cfg.AuthMiddleware.RequireAuth())
  // Profile
  protected.GET("/profile", cfg.ProfileHandler.GetOwn)
  protected.PUT("/profile", cfg.ProfileHandler.Upsert)
  // Matching
  protected.GET("/matches/suggestions", cfg.MatchHandler.GetSuggestions)
  protected.GET("/matches/pending", cfg.MatchHandler.GetPendingRequests)
  protected.GET("/matches/mutual", cfg.MatchHandler.GetMutualMatches)
  protected.POST("/matches/request/:userId", cfg.MatchHandler.SendRequest)
  protected.POST("/matches/:matchId/accept", cfg.MatchHandler.Accept)
  protected.POST("/matches/:matchId/decline", cfg.MatchHandler.Decline)
  protected.DELETE("/matches/unmatch/:userId", cfg.MatchHandler.Unmatch)
  protected.DELETE("/matches/pending", cfg.MatchHandler.ClearPending)
  // Notifications
  protected.GET("/notifications", cfg.MatchHandler.GetNotifications)
  // Telemetry
  protected.GET("/telemetry/token-usage", cfg.TelemetryHandler.GetTokenUsage)

// ===============
// || Admin     ||
// ===============
  admin := router.Group("/admin")
  admin.Use(cfg.AuthMiddleware.RequireAuth(), cfg.AuthMiddleware.RequireAdmin())
  admin.GET("/settings", cfg.AdminHandler.GetSettings)
  admin.PUT("/settings", cfg.AdminHandler.UpdateSettings)

  return router
}
