package main

import (
  "context"
  "fmt"
  "os"
  "strings"
  "time"

  "github.com/yungbote/studymatch-backend/internal/db"
  "github.com/yungbote/studymatch-backend/internal/handlers"
  "github.com/yungbote/studymatch-backend/internal/logger"
  "github.com/yungbote/studymatch-backend/internal/middleware"
  "github.com/yungbote/studymatch-backend/internal/realtime/bus"
  "github.com/yungbote/studymatch-backend/internal/repos"
  "github.com/yungbote/studymatch-backend/internal/server"
  "github.com/yungbote/studymatch-backend/internal/services"
  "github.com/yungbote/studymatch-backend/internal/utils"
)

func main() {
  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Env
  log.Info("Loading environment variables from main...")
  jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
  accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
  groqModel := utils.GetEnv("GROQ_MODEL", "llama-3.3-70b-versatile", log)
  groqMaxTokens := utils.GetEnvAsInt("GROQ_MAX_TOKENS", 500, log)
  groqTemperature := utils.GetEnvAsInt("GROQ_TEMPERATURE_TENTHS", 3, log)
  allowOrigins := strings.Split(utils.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://localhost:5173", log), ",")

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Fatal("Postgres init failed", "error", err)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()

  // Repos
  log.Info("Setting up Repos from main...")
  userRepo := repos.NewUserRepo(thePG, log)
  profileRepo := repos.NewProfileRepo(thePG, log)
  matchRepo := repos.NewMatchRepo(thePG, log)
  notificationRepo := repos.NewNotificationRepo(thePG, log)
  tokenUsageRepo := repos.NewTokenUsageRepo(thePG, log)
  appSettingRepo := repos.NewAppSettingRepo(thePG, log)

  // Event bus
  log.Info("Setting up event bus from main...")
  eventBus, busErr := bus.NewRedisBus(log)
  if busErr != nil {
    log.Warn("Redis bus unavailable, realtime events disabled", "error", busErr)
    eventBus = bus.NewNoopBus()
  }
  defer eventBus.Close()

  // Services
  log.Info("Setting up Services from main...")
  defaults := services.DefaultAppSettings(groqModel, groqMaxTokens, float64(groqTemperature)/10)
  settingsService := services.NewAppSettingsService(thePG, log, appSettingRepo, defaults)
  tokenUsageService := services.NewTokenUsageService(thePG, log, tokenUsageRepo)

  var groqClient services.GroqClient
  groqClient, gErr := services.NewGroqClient(log)
  if gErr != nil {
    log.Warn("Groq client unavailable, suggestions fall back to rule-based scores", "error", gErr)
    groqClient = nil
  }
  // Cache TTL comes from the boot-time settings snapshot; later admin edits
  // to the TTL apply on restart.
  bootSettings, sErr := settingsService.Snapshot(context.Background())
  if sErr != nil {
    log.Warn("Failed to load settings for cache TTL, using defaults", "error", sErr)
    bootSettings = defaults
  }
  cacheSize := utils.GetEnvAsInt("MATCH_CACHE_SIZE", services.DefaultMatchCacheSize, log)
  matchCache := services.NewMatchAnalysisCache(log, time.Duration(bootSettings.CacheTTLMinutes)*time.Minute, cacheSize)
  aiMatchingService := services.NewAIMatchingService(log, groqClient, matchCache, tokenUsageService)

  notificationService := services.NewNotificationService(thePG, log, notificationRepo, eventBus)
  authService := services.NewAuthService(thePG, log, userRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second)
  profileService := services.NewProfileService(thePG, log, profileRepo)
  matchingService := services.NewMatchingService(
    thePG,
    log,
    userRepo,
    profileRepo,
    matchRepo,
    settingsService,
    aiMatchingService,
    notificationService,
  )

  // Handlers
  log.Info("Setting up handlers from main...")
  authHandler := handlers.NewAuthHandler(authService)
  profileHandler := handlers.NewProfileHandler(profileService)
  matchHandler := handlers.NewMatchHandler(matchingService, notificationService)
  adminHandler := handlers.NewAdminHandler(settingsService)
  telemetryHandler := handlers.NewTelemetryHandler(tokenUsageService)

  // Middleware
  log.Info("Setting up middleware from main...")
  authMiddleware := middleware.NewAuthMiddleware(log, authService, userRepo)

  // Router
  log.Info("Setting up router from main...")
  router := server.NewRouter(server.RouterConfig{
    AuthHandler:      authHandler,
    AuthMiddleware:   authMiddleware,
    ProfileHandler:   profileHandler,
    MatchHandler:     matchHandler,
    AdminHandler:     adminHandler,
    TelemetryHandler: telemetryHandler,
    AllowOrigins:     allowOrigins,
  })

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Fatal("Server exited", "error", err)
  }
}
