package types

import (
  "time"
  "github.com/google/uuid"
)

const SuggestionStatus = "SUGGESTION"

// UserWithProfile is the candidate payload embedded in suggestion and
// match views.
type UserWithProfile struct {
  ID          uuid.UUID  `json:"id"`
  Username    string     `json:"username"`
  DisplayName string     `json:"display_name"`
  Email       string     `json:"email"`
  IsOnline    bool       `json:"is_online"`
  Deleted     bool       `json:"deleted"`
  Profile     *Profile   `json:"profile,omitempty"`
}

// Suggestion is a ranked, not-yet-persisted recommendation. It carries the
// candidate's user id as a correlation handle; no match record exists until
// the user explicitly sends a request.
type Suggestion struct {
  UserID               uuid.UUID        `json:"user_id"`
  User                 UserWithProfile  `json:"user"`
  CompatibilityScore   int              `json:"compatibility_score"`
  MatchReason          string           `json:"match_reason"`
  Status               string           `json:"status"`
  AIEnhanced           bool             `json:"ai_enhanced"`
  StudyRecommendations []string         `json:"study_recommendations"`
  SemanticSimilarity   *float64         `json:"semantic_similarity,omitempty"`
}

// MatchView is the outward shape of a persisted match record, seen from one
// side of the pair.
type MatchView struct {
  ID                  uuid.UUID        `json:"id"`
  User                UserWithProfile  `json:"user"`
  CompatibilityScore  int              `json:"compatibility_score"`
  MatchReason         string           `json:"match_reason"`
  Status              string           `json:"status"`
  UnmatchedByID       *uuid.UUID       `json:"unmatched_by_id,omitempty"`
  CreatedAt           time.Time        `json:"created_at"`
}

// AIMatchResult is the outcome of one enrichment attempt. Enhanced is false
// when the provider was skipped or failed and the base score carried through.
type AIMatchResult struct {
  AdjustedScore        int       `json:"adjusted_score"`
  PersonalizedReason   string    `json:"personalized_reason,omitempty"`
  StudyRecommendations []string  `json:"study_recommendations"`
  SemanticSimilarity   *float64  `json:"semantic_similarity,omitempty"`
  Enhanced             bool      `json:"enhanced"`
}
