package services

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/yungbote/studymatch-backend/internal/logger"
  "github.com/yungbote/studymatch-backend/internal/repos"
  "github.com/yungbote/studymatch-backend/internal/types"
)

// TokenUsageService is the telemetry sink for provider token consumption.
type TokenUsageService interface {
  Record(ctx context.Context, userID uuid.UUID, promptTokens, completionTokens, totalTokens int, operation string) error
  TotalsForUser(ctx context.Context, userID uuid.UUID) (*types.TokenUsageTotals, error)
}

type tokenUsageService struct {
  db             *gorm.DB
  log            *logger.Logger
  tokenUsageRepo repos.TokenUsageRepo
}

func NewTokenUsageService(db *gorm.DB, log *logger.Logger, tokenUsageRepo repos.TokenUsageRepo) TokenUsageService {
  serviceLog := log.With("service", "TokenUsageService")
  return &tokenUsageService{
    db:             db,
    log:            serviceLog,
    tokenUsageRepo: tokenUsageRepo,
  }
}

func (ts *tokenUsageService) Record(ctx context.Context, userID uuid.UUID, promptTokens, completionTokens, totalTokens int, operation string) error {
  if userID == uuid.Nil {
    return nil
  }
  usage := &types.TokenUsage{
    ID:               uuid.New(),
    UserID:           userID,
    PromptTokens:     promptTokens,
    CompletionTokens: completionTokens,
    TotalTokens:      totalTokens,
    Operation:        operation,
  }
  if _, err := ts.tokenUsageRepo.Create(ctx, nil, []*types.TokenUsage{usage}); err != nil {
    return err
  }
  ts.log.Debug("Tracked token usage", "user_id", userID, "total_tokens", totalTokens, "operation", operation)
  return nil
}

func (ts *tokenUsageService) TotalsForUser(ctx context.Context, userID uuid.UUID) (*types.TokenUsageTotals, error) {
  return ts.tokenUsageRepo.TotalsForUser(ctx, nil, userID)
}
