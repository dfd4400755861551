package types

import (
  "time"
  "github.com/google/uuid"
  "gorm.io/datatypes"
)

const (
  NotificationKindMatchRequest  = "match_request"
  NotificationKindMatchAccepted = "match_accepted"
  NotificationKindUnmatched     = "unmatched"
)

type Notification struct {
  ID        uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID    uuid.UUID       `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
  Kind      string          `gorm:"not null;column:kind" json:"kind"`
  Payload   datatypes.JSON  `gorm:"type:jsonb;column:payload" json:"payload"`
  ReadAt    *time.Time      `gorm:"column:read_at" json:"read_at,omitempty"`
  CreatedAt time.Time       `gorm:"not null;default:now()" json:"created_at"`
}

func (Notification) TableName() string {
  return "notification"
}
