package repos

import (
  "context"
  "time"
  "gorm.io/gorm"
  "gorm.io/gorm/clause"
  "github.com/yungbote/studymatch-backend/internal/logger"
  "github.com/yungbote/studymatch-backend/internal/types"
)

type AppSettingRepo interface {
  Get(ctx context.Context, tx *gorm.DB, key string) (*types.AppSetting, error)
  GetAll(ctx context.Context, tx *gorm.DB) ([]*types.AppSetting, error)
  Set(ctx context.Context, tx *gorm.DB, key, value string) error
}

type appSettingRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewAppSettingRepo(db *gorm.DB, baseLog *logger.Logger) AppSettingRepo {
  repoLog := baseLog.With("repo", "AppSettingRepo")
  return &appSettingRepo{db: db, log: repoLog}
}

func (ar *appSettingRepo) Get(ctx context.Context, tx *gorm.DB, key string) (*types.AppSetting, error) {
  transaction := tx
  if transaction == nil {
    transaction = ar.db
  }
  var result types.AppSetting
  err := transaction.WithContext(ctx).
    Where("setting_key = ?", key).
    First(&result).Error
  if err == gorm.ErrRecordNotFound {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &result, nil
}

func (ar *appSettingRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.AppSetting, error) {
  transaction := tx
  if transaction == nil {
    transaction = ar.db
  }
  var results []*types.AppSetting
  if err := transaction.WithContext(ctx).Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (ar *appSettingRepo) Set(ctx context.Context, tx *gorm.DB, key, value string) error {
  transaction := tx
  if transaction == nil {
    transaction = ar.db
  }
  setting := types.AppSetting{Key: key, Value: value, UpdatedAt: time.Now()}
  return transaction.WithContext(ctx).
    Clauses(clause.OnConflict{
      Columns:   []clause.Column{{Name: "setting_key"}},
      DoUpdates: clause.AssignmentColumns([]string{"setting_value", "updated_at"}),
    }).
    Create(&setting).Error
}
