package types

import (
  "time"
  "github.com/google/uuid"
  "gorm.io/datatypes"
)

type Profile struct {
  ID              uuid.UUID                    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID          uuid.UUID                    `gorm:"type:uuid;uniqueIndex;not null;column:user_id" json:"user_id"`
  Bio             string                       `gorm:"column:bio" json:"bio"`
  Subjects        datatypes.JSONSlice[string]  `gorm:"type:jsonb;column:subjects" json:"subjects"`
  PreferredTimes  datatypes.JSONSlice[string]  `gorm:"type:jsonb;column:preferred_times" json:"preferred_times"`
  LearningStyle   *string                      `gorm:"column:learning_style" json:"learning_style,omitempty"`
  ExamGoal        *string                      `gorm:"column:exam_goal" json:"exam_goal,omitempty"`
  StudyStreak     int                          `gorm:"not null;default:0;column:study_streak" json:"study_streak"`
  CreatedAt       time.Time                    `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt       time.Time                    `gorm:"not null;default:now()" json:"updated_at"`
}

func (Profile) TableName() string {
  return "profile"
}
