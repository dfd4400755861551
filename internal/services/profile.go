package services

import (
  "context"
  "errors"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/yungbote/studymatch-backend/internal/apierr"
  "github.com/yungbote/studymatch-backend/internal/logger"
  "github.com/yungbote/studymatch-backend/internal/repos"
  "github.com/yungbote/studymatch-backend/internal/types"
)

type ProfileService interface {
  GetByUserID(ctx context.Context, userID uuid.UUID) (*types.Profile, error)
  Upsert(ctx context.Context, profile *types.Profile) (*types.Profile, error)
}

type profileService struct {
  db          *gorm.DB
  log         *logger.Logger
  profileRepo repos.ProfileRepo
}

func NewProfileService(db *gorm.DB, log *logger.Logger, profileRepo repos.ProfileRepo) ProfileService {
  serviceLog := log.With("service", "ProfileService")
  return &profileService{db: db, log: serviceLog, profileRepo: profileRepo}
}

func (ps *profileService) GetByUserID(ctx context.Context, userID uuid.UUID) (*types.Profile, error) {
  profile, err := ps.profileRepo.GetByUserID(ctx, nil, userID)
  if err != nil {
    return nil, err
  }
  if profile == nil {
    return nil, apierr.NotFound(apierr.CodeProfileNotFound, errors.New("profile not found"))
  }
  return profile, nil
}

func (ps *profileService) Upsert(ctx context.Context, profile *types.Profile) (*types.Profile, error) {
  if profile.UserID == uuid.Nil {
    return nil, apierr.BadRequest(apierr.CodeBadInput, errors.New("profile requires a user id"))
  }
  if profile.ID == uuid.Nil {
    profile.ID = uuid.New()
  }
  if profile.Subjects == nil {
    profile.Subjects = []string{}
  }
  if profile.PreferredTimes == nil {
    profile.PreferredTimes = []string{}
  }
  if profile.StudyStreak < 0 {
    profile.StudyStreak = 0
  }
  saved, err := ps.profileRepo.Upsert(ctx, nil, profile)
  if err != nil {
    return nil, err
  }
  ps.log.Info("Profile upserted", "user_id", profile.UserID)
  return saved, nil
}
