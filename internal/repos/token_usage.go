package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/yungbote/studymatch-backend/internal/logger"
  "github.com/yungbote/studymatch-backend/internal/types"
)

type TokenUsageRepo interface {
  Create(ctx context.Context, tx *gorm.DB, usages []*types.TokenUsage) ([]*types.TokenUsage, error)
  TotalsForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.TokenUsageTotals, error)
}

type tokenUsageRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewTokenUsageRepo(db *gorm.DB, baseLog *logger.Logger) TokenUsageRepo {
  repoLog := baseLog.With("repo", "TokenUsageRepo")
  return &tokenUsageRepo{db: db, log: repoLog}
}

func (tr *tokenUsageRepo) Create(ctx context.Context, tx *gorm.DB, usages []*types.TokenUsage) ([]*types.TokenUsage, error) {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }
  if len(usages) == 0 {
    return []*types.TokenUsage{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&usages).Error; err != nil {
    return nil, err
  }
  return usages, nil
}

func (tr *tokenUsageRepo) TotalsForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.TokenUsageTotals, error) {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }
  var totals types.TokenUsageTotals
  if err := transaction.WithContext(ctx).
    Model(&types.TokenUsage{}).
    Select("COALESCE(SUM(prompt_tokens),0) AS prompt_tokens, COALESCE(SUM(completion_tokens),0) AS completion_tokens, COALESCE(SUM(total_tokens),0) AS total_tokens, COUNT(*) AS calls").
    Where("user_id = ?", userID).
    Scan(&totals).Error; err != nil {
    return nil, err
  }
  return &totals, nil
}
