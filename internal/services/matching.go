package services

import (
  "context"
  "errors"
  "fmt"
  "sort"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/yungbote/studymatch-backend/internal/apierr"
  "github.com/yungbote/studymatch-backend/internal/logger"
  "github.com/yungbote/studymatch-backend/internal/repos"
  "github.com/yungbote/studymatch-backend/internal/types"
)

const (
  declineCooldownDays = 7
  maxSuggestions      = 20
  defaultRequestScore = 50
)

// MatchingService owns suggestion assembly and the match lifecycle:
// PENDING -> MUTUAL, PENDING -> DECLINED, MUTUAL -> UNMATCHED. Every other
// transition is rejected as invalid state. Browsing suggestions never
// persists anything; a record appears only on an explicit SendRequest.
type MatchingService interface {
  GetSuggestions(ctx context.Context, userID uuid.UUID) ([]*types.Suggestion, error)
  SendRequest(ctx context.Context, requesterID, targetUserID uuid.UUID) (*types.MatchView, error)
  Accept(ctx context.Context, recipientID, matchID uuid.UUID) (*types.MatchView, error)
  Decline(ctx context.Context, recipientID, matchID uuid.UUID) error
  Unmatch(ctx context.Context, userID, targetUserID uuid.UUID, deleteChat bool) error
  ClearPending(ctx context.Context, userID uuid.UUID) error
  GetPendingRequests(ctx context.Context, userID uuid.UUID) ([]*types.MatchView, error)
  GetMutualMatches(ctx context.Context, userID uuid.UUID) ([]*types.MatchView, error)
}

type matchingService struct {
  db                  *gorm.DB
  log                 *logger.Logger
  userRepo            repos.UserRepo
  profileRepo         repos.ProfileRepo
  matchRepo           repos.MatchRepo
  settingsService     AppSettingsService
  aiMatchingService   AIMatchingService
  notificationService NotificationService
}

func NewMatchingService(
  db *gorm.DB,
  log *logger.Logger,
  userRepo repos.UserRepo,
  profileRepo repos.ProfileRepo,
  matchRepo repos.MatchRepo,
  settingsService AppSettingsService,
  aiMatchingService AIMatchingService,
  notificationService NotificationService,
) MatchingService {
  serviceLog := log.With("service", "MatchingService")
  return &matchingService{
    db:                  db,
    log:                 serviceLog,
    userRepo:            userRepo,
    profileRepo:         profileRepo,
    matchRepo:           matchRepo,
    settingsService:     settingsService,
    aiMatchingService:   aiMatchingService,
    notificationService: notificationService,
  }
}

type candidateMatch struct {
  user       *types.User
  profile    *types.Profile
  baseScore  int
  baseReason string
}

func (ms *matchingService) GetSuggestions(ctx context.Context, userID uuid.UUID) ([]*types.Suggestion, error) {
  currentProfile, err := ms.profileRepo.GetByUserID(ctx, nil, userID)
  if err != nil {
    return nil, err
  }
  if currentProfile == nil {
    return nil, apierr.NotFound(apierr.CodeProfileNotFound, errors.New("profile not found"))
  }

  settings, err := ms.settingsService.Snapshot(ctx)
  if err != nil {
    return nil, err
  }

  others, err := ms.userRepo.ListOthers(ctx, nil, userID)
  if err != nil {
    return nil, err
  }

  candidateIDs := make([]uuid.UUID, 0, len(others))
  for _, u := range others {
    candidateIDs = append(candidateIDs, u.ID)
  }
  profiles, err := ms.profileRepo.GetByUserIDs(ctx, nil, candidateIDs)
  if err != nil {
    return nil, err
  }
  profileByUser := make(map[uuid.UUID]*types.Profile, len(profiles))
  for _, p := range profiles {
    profileByUser[p.UserID] = p
  }

  // First pass: rule-based filtering and scoring.
  var candidates []candidateMatch
  for _, candidate := range others {
    if candidate.Deleted {
      continue
    }
    // Any historical record between the pair excludes the candidate,
    // whatever its status.
    exists, eErr := ms.matchRepo.ExistsBetween(ctx, nil, userID, candidate.ID)
    if eErr != nil {
      return nil, eErr
    }
    if exists {
      continue
    }
    candidateProfile := profileByUser[candidate.ID]
    if candidateProfile == nil {
      continue
    }
    candidates = append(candidates, candidateMatch{
      user:       candidate,
      profile:    candidateProfile,
      baseScore:  CalculateCompatibility(currentProfile, candidateProfile),
      baseReason: GenerateMatchReason(currentProfile, candidateProfile),
    })
  }

  sortCandidates(candidates)

  // Second pass: AI enhancement for the top candidates only; everyone else
  // keeps the rule-based score and reason.
  topN := settings.AIMatchLimit
  if topN > len(candidates) {
    topN = len(candidates)
  }

  aiResults := map[uuid.UUID]*types.AIMatchResult{}
  if ms.aiMatchingService.IsAvailable(settings) && topN > 0 {
    ms.log.Info("AI matching enabled, enhancing top candidates", "limit", settings.AIMatchLimit, "count", topN)
    batch := make([]AIMatchCandidate, 0, topN)
    for _, cm := range candidates[:topN] {
      batch = append(batch, AIMatchCandidate{
        UserID:      cm.user.ID,
        DisplayName: cm.user.DisplayName,
        Profile:     cm.profile,
        BaseScore:   cm.baseScore,
      })
    }
    aiResults = ms.aiMatchingService.BatchAnalyze(ctx, settings, userID, currentProfile, batch)
  }

  suggestions := make([]*types.Suggestion, 0, len(candidates))
  for _, cm := range candidates {
    suggestion := &types.Suggestion{
      UserID:               cm.user.ID,
      User:                 toUserWithProfile(cm.user, cm.profile),
      CompatibilityScore:   cm.baseScore,
      MatchReason:          cm.baseReason,
      Status:               types.SuggestionStatus,
      StudyRecommendations: []string{},
    }
    if result := aiResults[cm.user.ID]; result != nil && result.Enhanced {
      suggestion.CompatibilityScore = result.AdjustedScore
      suggestion.MatchReason = result.PersonalizedReason
      suggestion.StudyRecommendations = result.StudyRecommendations
      suggestion.SemanticSimilarity = result.SemanticSimilarity
      suggestion.AIEnhanced = true
    }
    suggestions = append(suggestions, suggestion)
  }

  sort.SliceStable(suggestions, func(i, j int) bool {
    if suggestions[i].CompatibilityScore != suggestions[j].CompatibilityScore {
      return suggestions[i].CompatibilityScore > suggestions[j].CompatibilityScore
    }
    return suggestions[i].UserID.String() < suggestions[j].UserID.String()
  })
  if len(suggestions) > maxSuggestions {
    suggestions = suggestions[:maxSuggestions]
  }
  return suggestions, nil
}

// sortCandidates orders by base score descending with the candidate id as a
// deterministic tie-break.
func sortCandidates(candidates []candidateMatch) {
  sort.SliceStable(candidates, func(i, j int) bool {
    if candidates[i].baseScore != candidates[j].baseScore {
      return candidates[i].baseScore > candidates[j].baseScore
    }
    return candidates[i].user.ID.String() < candidates[j].user.ID.String()
  })
}

func (ms *matchingService) SendRequest(ctx context.Context, requesterID, targetUserID uuid.UUID) (*types.MatchView, error) {
  requester, err := ms.userRepo.GetByID(ctx, nil, requesterID)
  if err != nil {
    return nil, err
  }
  if requester == nil {
    return nil, apierr.NotFound(apierr.CodeUserNotFound, errors.New("user not found"))
  }
  target, err := ms.userRepo.GetByID(ctx, nil, targetUserID)
  if err != nil {
    return nil, err
  }
  if target == nil || target.Deleted {
    return nil, apierr.NotFound(apierr.CodeUserNotFound, errors.New("user not found"))
  }

  // A decline inside the last 7 days blocks a fresh request.
  cooldownStart := time.Now().AddDate(0, 0, -declineCooldownDays)
  recentDeclined, err := ms.matchRepo.FindRecentDeclined(ctx, nil, requesterID, targetUserID, cooldownStart)
  if err != nil {
    return nil, err
  }
  if recentDeclined != nil && recentDeclined.DeclinedAt != nil {
    daysRemaining := cooldownDaysRemaining(*recentDeclined.DeclinedAt, time.Now())
    plural := ""
    if daysRemaining != 1 {
      plural = "s"
    }
    return nil, apierr.Conflict(apierr.CodeMatchCooldown,
      fmt.Errorf("This user declined your request. You can send another request in %d day%s", daysRemaining, plural)).
      WithMeta("days_remaining", daysRemaining)
  }

  existing, err := ms.matchRepo.FindBetween(ctx, nil, requesterID, targetUserID)
  if err != nil {
    return nil, err
  }
  if existing != nil {
    if existing.Status == types.MatchStatusDeclined {
      // Cooldown has elapsed; drop the stale record so a new request can
      // be created.
      if dErr := ms.matchRepo.Delete(ctx, nil, existing.ID); dErr != nil {
        return nil, dErr
      }
      ms.log.Info("Deleted expired declined match to allow new request", "match_id", existing.ID)
    } else {
      return nil, apierr.Conflict(apierr.CodeMatchExists, errors.New("match request already exists"))
    }
  }

  requesterProfile, err := ms.profileRepo.GetByUserID(ctx, nil, requesterID)
  if err != nil {
    return nil, err
  }
  targetProfile, err := ms.profileRepo.GetByUserID(ctx, nil, targetUserID)
  if err != nil {
    return nil, err
  }

  score := defaultRequestScore
  if requesterProfile != nil && targetProfile != nil {
    score = CalculateCompatibility(requesterProfile, targetProfile)
  }

  match := &types.Match{
    ID:                 uuid.New(),
    User1ID:            requesterID,
    User2ID:            targetUserID,
    CompatibilityScore: score,
    MatchReason:        "Friend request from " + requester.DisplayName,
    Status:             types.MatchStatusPending,
  }
  if _, err := ms.matchRepo.Create(ctx, nil, match); err != nil {
    return nil, err
  }

  if nErr := ms.notificationService.MatchRequest(ctx, target, requester, match.ID); nErr != nil {
    ms.log.Warn("Failed to notify target about match request", "error", nErr)
  }

  view := toMatchView(match, target, targetProfile)
  return &view, nil
}

// Accept moves a PENDING request to MUTUAL. Repeated accepts on an already
// MUTUAL record are rejected as invalid state rather than treated as no-ops
// so the second caller learns the record already moved on.
func (ms *matchingService) Accept(ctx context.Context, recipientID, matchID uuid.UUID) (*types.MatchView, error) {
  match, err := ms.matchRepo.GetByID(ctx, nil, matchID)
  if err != nil {
    return nil, err
  }
  if match == nil {
    return nil, apierr.NotFound(apierr.CodeMatchNotFound, errors.New("match not found"))
  }
  if match.User2ID != recipientID {
    return nil, apierr.Forbidden(errors.New("only the recipient can accept a match request"))
  }

  ok, err := ms.matchRepo.UpdateStatusGuarded(ctx, nil, matchID, types.MatchStatusPending, map[string]any{
    "status": types.MatchStatusMutual,
  })
  if err != nil {
    return nil, err
  }
  if !ok {
    return nil, apierr.Conflict(apierr.CodeInvalidState,
      fmt.Errorf("cannot accept match in state %s", match.Status))
  }
  match.Status = types.MatchStatusMutual

  requester, err := ms.userRepo.GetByID(ctx, nil, match.User1ID)
  if err != nil {
    return nil, err
  }
  recipient, err := ms.userRepo.GetByID(ctx, nil, recipientID)
  if err != nil {
    return nil, err
  }
  if requester != nil && recipient != nil {
    if nErr := ms.notificationService.MatchAccepted(ctx, match, requester, recipient); nErr != nil {
      ms.log.Warn("Failed to notify parties about mutual match", "error", nErr)
    }
    ms.log.Info("Match became MUTUAL", "match_id", match.ID)
  }

  requesterProfile, err := ms.profileRepo.GetByUserID(ctx, nil, match.User1ID)
  if err != nil {
    return nil, err
  }
  view := toMatchView(match, requester, requesterProfile)
  return &view, nil
}

func (ms *matchingService) Decline(ctx context.Context, recipientID, matchID uuid.UUID) error {
  match, err := ms.matchRepo.GetByID(ctx, nil, matchID)
  if err != nil {
    return err
  }
  if match == nil {
    return apierr.NotFound(apierr.CodeMatchNotFound, errors.New("match not found"))
  }
  if match.User2ID != recipientID {
    return apierr.Forbidden(errors.New("only the recipient can decline a match request"))
  }

  ok, err := ms.matchRepo.UpdateStatusGuarded(ctx, nil, matchID, types.MatchStatusPending, map[string]any{
    "status":      types.MatchStatusDeclined,
    "declined_at": time.Now(),
  })
  if err != nil {
    return err
  }
  if !ok {
    return apierr.Conflict(apierr.CodeInvalidState,
      fmt.Errorf("cannot decline match in state %s", match.Status))
  }
  return nil
}

func (ms *matchingService) Unmatch(ctx context.Context, userID, targetUserID uuid.UUID, deleteChat bool) error {
  target, err := ms.userRepo.GetByID(ctx, nil, targetUserID)
  if err != nil {
    return err
  }
  if target == nil {
    return apierr.NotFound(apierr.CodeUserNotFound, errors.New("user not found"))
  }
  if target.Role == types.UserRoleAdmin {
    return apierr.Forbidden(errors.New("cannot unmatch with admin"))
  }

  match, err := ms.matchRepo.FindBetween(ctx, nil, userID, targetUserID)
  if err != nil {
    return err
  }
  if match == nil {
    return apierr.NotFound(apierr.CodeMatchNotFound, errors.New("match not found"))
  }

  ok, err := ms.matchRepo.UpdateStatusGuarded(ctx, nil, match.ID, types.MatchStatusMutual, map[string]any{
    "status":          types.MatchStatusUnmatched,
    "unmatched_by_id": userID,
  })
  if err != nil {
    return err
  }
  if !ok {
    return apierr.Conflict(apierr.CodeInvalidState,
      fmt.Errorf("cannot unmatch match in state %s", match.Status))
  }

  if nErr := ms.notificationService.Unmatched(ctx, target, userID); nErr != nil {
    ms.log.Warn("Failed to notify other party about unmatch", "error", nErr)
  }
  if deleteChat {
    // Conversation ownership lives in the messaging subsystem; emit the
    // removal event and let it act.
    if cErr := ms.notificationService.ChatRemoveParticipation(ctx, userID, targetUserID); cErr != nil {
      ms.log.Warn("Failed to publish chat participation removal", "error", cErr)
    }
  }
  return nil
}

func (ms *matchingService) ClearPending(ctx context.Context, userID uuid.UUID) error {
  if err := ms.matchRepo.DeletePendingForRequester(ctx, nil, userID); err != nil {
    return err
  }
  ms.log.Info("Cleared pending match requests", "user_id", userID)
  return nil
}

func (ms *matchingService) GetPendingRequests(ctx context.Context, userID uuid.UUID) ([]*types.MatchView, error) {
  pending, err := ms.matchRepo.FindPendingForRecipient(ctx, nil, userID)
  if err != nil {
    return nil, err
  }
  views := make([]*types.MatchView, 0, len(pending))
  for _, match := range pending {
    requester, uErr := ms.userRepo.GetByID(ctx, nil, match.User1ID)
    if uErr != nil {
      return nil, uErr
    }
    if requester == nil || requester.Deleted {
      continue
    }
    requesterProfile, pErr := ms.profileRepo.GetByUserID(ctx, nil, match.User1ID)
    if pErr != nil {
      return nil, pErr
    }
    view := toMatchView(match, requester, requesterProfile)
    views = append(views, &view)
  }
  return views, nil
}

func (ms *matchingService) GetMutualMatches(ctx context.Context, userID uuid.UUID) ([]*types.MatchView, error) {
  matches, err := ms.matchRepo.FindMutualForUser(ctx, nil, userID)
  if err != nil {
    return nil, err
  }
  views := make([]*types.MatchView, 0, len(matches))
  for _, match := range matches {
    otherID, _ := match.OtherUserID(userID)
    other, uErr := ms.userRepo.GetByID(ctx, nil, otherID)
    if uErr != nil {
      return nil, uErr
    }
    if other == nil || other.Deleted {
      continue
    }
    otherProfile, pErr := ms.profileRepo.GetByUserID(ctx, nil, otherID)
    if pErr != nil {
      return nil, pErr
    }
    view := toMatchView(match, other, otherProfile)
    views = append(views, &view)
  }
  return views, nil
}

// cooldownDaysRemaining counts the current day, so a decline from a moment
// ago reports the full window.
func cooldownDaysRemaining(declinedAt, now time.Time) int {
  until := declinedAt.AddDate(0, 0, declineCooldownDays).Sub(now)
  if until <= 0 {
    return 0
  }
  return int(until.Hours()/24) + 1
}

func toUserWithProfile(user *types.User, profile *types.Profile) types.UserWithProfile {
  return types.UserWithProfile{
    ID:          user.ID,
    Username:    user.Username,
    DisplayName: user.DisplayName,
    Email:       user.Email,
    IsOnline:    user.IsOnline,
    Deleted:     user.Deleted,
    Profile:     profile,
  }
}

func toMatchView(match *types.Match, otherUser *types.User, otherProfile *types.Profile) types.MatchView {
  view := types.MatchView{
    ID:                 match.ID,
    CompatibilityScore: match.CompatibilityScore,
    MatchReason:        match.MatchReason,
    Status:             match.Status,
    UnmatchedByID:      match.UnmatchedByID,
    CreatedAt:          match.CreatedAt,
  }
  if otherUser != nil {
    view.User = toUserWithProfile(otherUser, otherProfile)
  }
  return view
}
