package repos

import (
  "context"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/yungbote/studymatch-backend/internal/logger"
  "github.com/yungbote/studymatch-backend/internal/types"
)

type MatchRepo interface {
  Create(ctx context.Context, tx *gorm.DB, match *types.Match) (*types.Match, error)
  GetByID(ctx context.Context, tx *gorm.DB, matchID uuid.UUID) (*types.Match, error)
  FindBetween(ctx context.Context, tx *gorm.DB, userA, userB uuid.UUID) (*types.Match, error)
  ExistsBetween(ctx context.Context, tx *gorm.DB, userA, userB uuid.UUID) (bool, error)
  FindRecentDeclined(ctx context.Context, tx *gorm.DB, userA, userB uuid.UUID, since time.Time) (*types.Match, error)
  FindMutualForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Match, error)
  FindPendingForRecipient(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Match, error)
  DeletePendingForRequester(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
  Delete(ctx context.Context, tx *gorm.DB, matchID uuid.UUID) error
  UpdateStatusGuarded(ctx context.Context, tx *gorm.DB, matchID uuid.UUID, fromStatus string, updates map[string]any) (bool, error)
}

type matchRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewMatchRepo(db *gorm.DB, baseLog *logger.Logger) MatchRepo {
  repoLog := baseLog.With("repo", "MatchRepo")
  return &matchRepo{db: db, log: repoLog}
}

func (mr *matchRepo) Create(ctx context.Context, tx *gorm.DB, match *types.Match) (*types.Match, error) {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  if err := transaction.WithContext(ctx).Create(match).Error; err != nil {
    return nil, err
  }
  return match, nil
}

func (mr *matchRepo) GetByID(ctx context.Context, tx *gorm.DB, matchID uuid.UUID) (*types.Match, error) {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  var result types.Match
  err := transaction.WithContext(ctx).
    Where("id = ?", matchID).
    First(&result).Error
  if err == gorm.ErrRecordNotFound {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &result, nil
}

// FindBetween checks both orderings of the pair.
func (mr *matchRepo) FindBetween(ctx context.Context, tx *gorm.DB, userA, userB uuid.UUID) (*types.Match, error) {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  var result types.Match
  err := transaction.WithContext(ctx).
    Where("(user1_id = ? AND user2_id = ?) OR (user1_id = ? AND user2_id = ?)", userA, userB, userB, userA).
    First(&result).Error
  if err == gorm.ErrRecordNotFound {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &result, nil
}

func (mr *matchRepo) ExistsBetween(ctx context.Context, tx *gorm.DB, userA, userB uuid.UUID) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.Match{}).
    Where("(user1_id = ? AND user2_id = ?) OR (user1_id = ? AND user2_id = ?)", userA, userB, userB, userA).
    Count(&count).Error; err != nil {
    return false, err
  }
  return count > 0, nil
}

func (mr *matchRepo) FindRecentDeclined(ctx context.Context, tx *gorm.DB, userA, userB uuid.UUID, since time.Time) (*types.Match, error) {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  var result types.Match
  err := transaction.WithContext(ctx).
    Where("((user1_id = ? AND user2_id = ?) OR (user1_id = ? AND user2_id = ?)) AND status = ? AND declined_at > ?",
      userA, userB, userB, userA, types.MatchStatusDeclined, since).
    Order("declined_at DESC").
    First(&result).Error
  if err == gorm.ErrRecordNotFound {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &result, nil
}

func (mr *matchRepo) FindMutualForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Match, error) {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  var results []*types.Match
  if err := transaction.WithContext(ctx).
    Where("(user1_id = ? OR user2_id = ?) AND status = ?", userID, userID, types.MatchStatusMutual).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (mr *matchRepo) FindPendingForRecipient(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Match, error) {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  var results []*types.Match
  if err := transaction.WithContext(ctx).
    Where("user2_id = ? AND status = ?", userID, types.MatchStatusPending).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

// DeletePendingForRequester removes only records where the caller is user1;
// requests addressed to the caller stay untouched.
func (mr *matchRepo) DeletePendingForRequester(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  return transaction.WithContext(ctx).
    Where("user1_id = ? AND status = ?", userID, types.MatchStatusPending).
    Delete(&types.Match{}).Error
}

func (mr *matchRepo) Delete(ctx context.Context, tx *gorm.DB, matchID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  return transaction.WithContext(ctx).
    Where("id = ?", matchID).
    Delete(&types.Match{}).Error
}

// UpdateStatusGuarded applies updates only while the record still holds
// fromStatus. The rows-affected check is what keeps two concurrent
// accept/decline calls from both succeeding.
func (mr *matchRepo) UpdateStatusGuarded(ctx context.Context, tx *gorm.DB, matchID uuid.UUID, fromStatus string, updates map[string]any) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  res := transaction.WithContext(ctx).
    Model(&types.Match{}).
    Where("id = ? AND status = ?", matchID, fromStatus).
    Updates(updates)
  if res.Error != nil {
    return false, res.Error
  }
  return res.RowsAffected > 0, nil
}
