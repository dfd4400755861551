package types

import (
  "time"
  "github.com/google/uuid"
)

const (
  UserRoleUser  = "USER"
  UserRoleAdmin = "ADMIN"
)

type User struct {
  ID           uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  Email        string     `gorm:"uniqueIndex;not null;column:email" json:"email"`
  Username     string     `gorm:"uniqueIndex;column:username" json:"username"`
  Password     string     `gorm:"column:password" json:"-"`
  DisplayName  string     `gorm:"not null;column:display_name" json:"display_name"`
  Role         string     `gorm:"not null;default:USER;column:role" json:"role"`
  IsOnline     bool       `gorm:"not null;default:false;column:is_online" json:"is_online"`
  Deleted      bool       `gorm:"not null;default:false;column:deleted" json:"deleted"`
  DeletedAt    *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
  CreatedAt    time.Time  `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt    time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string {
  return "user"
}
