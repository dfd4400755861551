package types

import (
  "time"
  "github.com/google/uuid"
)

type TokenUsage struct {
  ID               uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID           uuid.UUID  `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
  PromptTokens     int        `gorm:"not null;default:0;column:prompt_tokens" json:"prompt_tokens"`
  CompletionTokens int        `gorm:"not null;default:0;column:completion_tokens" json:"completion_tokens"`
  TotalTokens      int        `gorm:"not null;default:0;column:total_tokens" json:"total_tokens"`
  Operation        string     `gorm:"not null;column:operation" json:"operation"`
  CreatedAt        time.Time  `gorm:"not null;default:now()" json:"created_at"`
}

func (TokenUsage) TableName() string {
  return "token_usage"
}

type TokenUsageTotals struct {
  PromptTokens     int64 `json:"prompt_tokens"`
  CompletionTokens int64 `json:"completion_tokens"`
  TotalTokens      int64 `json:"total_tokens"`
  Calls            int64 `json:"calls"`
}
