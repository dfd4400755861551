package types

import "time"

// AppSetting is a key/value row for runtime-mutable admin settings.
type AppSetting struct {
  Key       string    `gorm:"primaryKey;column:setting_key" json:"key"`
  Value     string    `gorm:"not null;column:setting_value" json:"value"`
  UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (AppSetting) TableName() string {
  return "app_setting"
}

// AppSettingsSnapshot is an immutable per-request view over persisted
// settings plus environment defaults. Services never read mutable globals.
type AppSettingsSnapshot struct {
  AIEnabled       bool    `json:"ai_enabled"`
  AIMatchLimit    int     `json:"ai_match_limit"`
  CacheTTLMinutes int     `json:"cache_ttl_minutes"`
  ProviderModel   string  `json:"provider_model"`
  MaxTokens       int     `json:"max_tokens"`
  Temperature     float64 `json:"temperature"`
}
