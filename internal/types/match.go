package types

import (
  "time"
  "github.com/google/uuid"
)

// Match lifecycle states. The only legal transitions are
// PENDING -> MUTUAL, PENDING -> DECLINED and MUTUAL -> UNMATCHED.
const (
  MatchStatusPending   = "PENDING"
  MatchStatusMutual    = "MUTUAL"
  MatchStatusDeclined  = "DECLINED"
  MatchStatusUnmatched = "UNMATCHED"
)

// Match is the persisted record of a partnership request between two users.
// User1 is always the requester, User2 the recipient. At most one active
// record exists per unordered user pair, so lookups check both orderings.
type Match struct {
  ID                  uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  User1ID             uuid.UUID   `gorm:"type:uuid;not null;index;column:user1_id" json:"user1_id"`
  User2ID             uuid.UUID   `gorm:"type:uuid;not null;index;column:user2_id" json:"user2_id"`
  CompatibilityScore  int         `gorm:"not null;column:compatibility_score" json:"compatibility_score"`
  MatchReason         string      `gorm:"column:match_reason" json:"match_reason"`
  Status              string      `gorm:"not null;default:PENDING;column:status" json:"status"`
  UnmatchedByID       *uuid.UUID  `gorm:"type:uuid;column:unmatched_by_id" json:"unmatched_by_id,omitempty"`
  DeclinedAt          *time.Time  `gorm:"column:declined_at" json:"declined_at,omitempty"`
  CreatedAt           time.Time   `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt           time.Time   `gorm:"not null;default:now()" json:"updated_at"`
}

func (Match) TableName() string {
  return "match"
}

func (m *Match) HasUser(userID uuid.UUID) bool {
  return m.User1ID == userID || m.User2ID == userID
}

func (m *Match) OtherUserID(userID uuid.UUID) (uuid.UUID, bool) {
  if m.User1ID == userID {
    return m.User2ID, true
  }
  if m.User2ID == userID {
    return m.User1ID, true
  }
  return uuid.Nil, false
}
