package services

import (
  "context"
  "fmt"
  "strconv"
  "gorm.io/gorm"
  "github.com/yungbote/studymatch-backend/internal/apierr"
  "github.com/yungbote/studymatch-backend/internal/logger"
  "github.com/yungbote/studymatch-backend/internal/repos"
  "github.com/yungbote/studymatch-backend/internal/types"
)

// Persisted setting keys. Anything not stored falls back to the defaults
// carried by the service.
const (
  SettingAIEnabled       = "ai.enabled"
  SettingAIMatchLimit    = "ai.match_limit"
  SettingCacheTTLMinutes = "ai.cache_ttl_minutes"
  SettingProviderModel   = "ai.provider_model"
  SettingMaxTokens       = "ai.max_tokens"
  SettingTemperature     = "ai.temperature"
)

const (
  minAIMatchLimit = 1
  maxAIMatchLimit = 50
)

// AppSettingsService serves immutable per-request snapshots of the
// runtime-mutable admin settings.
type AppSettingsService interface {
  Snapshot(ctx context.Context) (types.AppSettingsSnapshot, error)
  Update(ctx context.Context, patch AppSettingsPatch) (types.AppSettingsSnapshot, error)
}

type AppSettingsPatch struct {
  AIEnabled       *bool    `json:"ai_enabled,omitempty"`
  AIMatchLimit    *int     `json:"ai_match_limit,omitempty"`
  CacheTTLMinutes *int     `json:"cache_ttl_minutes,omitempty"`
  ProviderModel   *string  `json:"provider_model,omitempty"`
  MaxTokens       *int     `json:"max_tokens,omitempty"`
  Temperature     *float64 `json:"temperature,omitempty"`
}

type appSettingsService struct {
  db       *gorm.DB
  log      *logger.Logger
  repo     repos.AppSettingRepo
  defaults types.AppSettingsSnapshot
}

func NewAppSettingsService(db *gorm.DB, log *logger.Logger, repo repos.AppSettingRepo, defaults types.AppSettingsSnapshot) AppSettingsService {
  serviceLog := log.With("service", "AppSettingsService")
  return &appSettingsService{
    db:       db,
    log:      serviceLog,
    repo:     repo,
    defaults: defaults,
  }
}

func (as *appSettingsService) Snapshot(ctx context.Context) (types.AppSettingsSnapshot, error) {
  snapshot := as.defaults

  stored, err := as.repo.GetAll(ctx, nil)
  if err != nil {
    return snapshot, err
  }
  for _, setting := range stored {
    switch setting.Key {
    case SettingAIEnabled:
      if v, pErr := strconv.ParseBool(setting.Value); pErr == nil {
        snapshot.AIEnabled = v
      }
    case SettingAIMatchLimit:
      if v, pErr := strconv.Atoi(setting.Value); pErr == nil {
        snapshot.AIMatchLimit = v
      }
    case SettingCacheTTLMinutes:
      if v, pErr := strconv.Atoi(setting.Value); pErr == nil {
        snapshot.CacheTTLMinutes = v
      }
    case SettingProviderModel:
      if setting.Value != "" {
        snapshot.ProviderModel = setting.Value
      }
    case SettingMaxTokens:
      if v, pErr := strconv.Atoi(setting.Value); pErr == nil {
        snapshot.MaxTokens = v
      }
    case SettingTemperature:
      if v, pErr := strconv.ParseFloat(setting.Value, 64); pErr == nil {
        snapshot.Temperature = v
      }
    }
  }

  snapshot.AIMatchLimit = clampMatchLimit(snapshot.AIMatchLimit)
  return snapshot, nil
}

func (as *appSettingsService) Update(ctx context.Context, patch AppSettingsPatch) (types.AppSettingsSnapshot, error) {
  if patch.AIMatchLimit != nil && (*patch.AIMatchLimit < minAIMatchLimit || *patch.AIMatchLimit > maxAIMatchLimit) {
    return types.AppSettingsSnapshot{}, apierr.BadRequest(apierr.CodeBadInput,
      fmt.Errorf("ai_match_limit must be between %d and %d", minAIMatchLimit, maxAIMatchLimit))
  }

  err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if patch.AIEnabled != nil {
      if sErr := as.repo.Set(ctx, tx, SettingAIEnabled, strconv.FormatBool(*patch.AIEnabled)); sErr != nil {
        return sErr
      }
    }
    if patch.AIMatchLimit != nil {
      if sErr := as.repo.Set(ctx, tx, SettingAIMatchLimit, strconv.Itoa(*patch.AIMatchLimit)); sErr != nil {
        return sErr
      }
    }
    if patch.CacheTTLMinutes != nil {
      if sErr := as.repo.Set(ctx, tx, SettingCacheTTLMinutes, strconv.Itoa(*patch.CacheTTLMinutes)); sErr != nil {
        return sErr
      }
    }
    if patch.ProviderModel != nil {
      if sErr := as.repo.Set(ctx, tx, SettingProviderModel, *patch.ProviderModel); sErr != nil {
        return sErr
      }
    }
    if patch.MaxTokens != nil {
      if sErr := as.repo.Set(ctx, tx, SettingMaxTokens, strconv.Itoa(*patch.MaxTokens)); sErr != nil {
        return sErr
      }
    }
    if patch.Temperature != nil {
      if sErr := as.repo.Set(ctx, tx, SettingTemperature, strconv.FormatFloat(*patch.Temperature, 'f', -1, 64)); sErr != nil {
        return sErr
      }
    }
    return nil
  })
  if err != nil {
    return types.AppSettingsSnapshot{}, err
  }

  as.log.Info("App settings updated")
  return as.Snapshot(ctx)
}

func clampMatchLimit(limit int) int {
  if limit < minAIMatchLimit {
    return minAIMatchLimit
  }
  if limit > maxAIMatchLimit {
    return maxAIMatchLimit
  }
  return limit
}

// DefaultAppSettings builds the boot-time defaults the snapshot falls back
// to when no row overrides them.
func DefaultAppSettings(model string, maxTokens int, temperature float64) types.AppSettingsSnapshot {
  return types.AppSettingsSnapshot{
    AIEnabled:       true,
    AIMatchLimit:    10,
    CacheTTLMinutes: 60,
    ProviderModel:   model,
    MaxTokens:       maxTokens,
    Temperature:     temperature,
  }
}
