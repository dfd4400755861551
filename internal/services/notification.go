package services

import (
  "context"
  "encoding/json"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/yungbote/studymatch-backend/internal/logger"
  "github.com/yungbote/studymatch-backend/internal/realtime"
  "github.com/yungbote/studymatch-backend/internal/repos"
  "github.com/yungbote/studymatch-backend/internal/types"
)

// NotificationService persists notification rows and publishes the matching
// events on the realtime bus. Delivery to clients is an external concern.
type NotificationService interface {
  MatchRequest(ctx context.Context, target, requester *types.User, matchID uuid.UUID) error
  MatchAccepted(ctx context.Context, match *types.Match, user1, user2 *types.User) error
  Unmatched(ctx context.Context, otherParty *types.User, actedBy uuid.UUID) error
  ChatRemoveParticipation(ctx context.Context, actingUserID, otherUserID uuid.UUID) error
  ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*types.Notification, error)
}

type notificationService struct {
  db               *gorm.DB
  log              *logger.Logger
  notificationRepo repos.NotificationRepo
  bus              realtime.Bus
}

func NewNotificationService(db *gorm.DB, log *logger.Logger, notificationRepo repos.NotificationRepo, eventBus realtime.Bus) NotificationService {
  serviceLog := log.With("service", "NotificationService")
  return &notificationService{
    db:               db,
    log:              serviceLog,
    notificationRepo: notificationRepo,
    bus:              eventBus,
  }
}

func (ns *notificationService) notify(ctx context.Context, userID uuid.UUID, kind, eventKind string, payload map[string]any) error {
  raw, err := json.Marshal(payload)
  if err != nil {
    return err
  }
  notification := &types.Notification{
    ID:      uuid.New(),
    UserID:  userID,
    Kind:    kind,
    Payload: raw,
  }
  if _, err := ns.notificationRepo.Create(ctx, nil, []*types.Notification{notification}); err != nil {
    return err
  }
  if pErr := ns.bus.Publish(ctx, realtime.Event{
    Channel: userID.String(),
    Kind:    eventKind,
    Data:    payload,
  }); pErr != nil {
    // Persisted row survives; losing the realtime event is tolerable.
    ns.log.Warn("Failed to publish notification event", "kind", eventKind, "error", pErr)
  }
  return nil
}

func (ns *notificationService) MatchRequest(ctx context.Context, target, requester *types.User, matchID uuid.UUID) error {
  return ns.notify(ctx, target.ID, types.NotificationKindMatchRequest, realtime.EventMatchRequest, map[string]any{
    "match_id":               matchID.String(),
    "requester_id":           requester.ID.String(),
    "requester_display_name": requester.DisplayName,
  })
}

func (ns *notificationService) MatchAccepted(ctx context.Context, match *types.Match, user1, user2 *types.User) error {
  // Both parties learn about the new connection.
  if err := ns.notify(ctx, user1.ID, types.NotificationKindMatchAccepted, realtime.EventMatchAccepted, map[string]any{
    "match_id":             match.ID.String(),
    "partner_id":           user2.ID.String(),
    "partner_display_name": user2.DisplayName,
  }); err != nil {
    return err
  }
  return ns.notify(ctx, user2.ID, types.NotificationKindMatchAccepted, realtime.EventMatchAccepted, map[string]any{
    "match_id":             match.ID.String(),
    "partner_id":           user1.ID.String(),
    "partner_display_name": user1.DisplayName,
  })
}

// Unmatched flags the other party's client so it can block further contact
// attempts from its side.
func (ns *notificationService) Unmatched(ctx context.Context, otherParty *types.User, actedBy uuid.UUID) error {
  return ns.notify(ctx, otherParty.ID, types.NotificationKindUnmatched, realtime.EventUnmatched, map[string]any{
    "unmatched_by": actedBy.String(),
    "block_contact": true,
  })
}

func (ns *notificationService) ChatRemoveParticipation(ctx context.Context, actingUserID, otherUserID uuid.UUID) error {
  return ns.bus.Publish(ctx, realtime.Event{
    Channel: actingUserID.String(),
    Kind:    realtime.EventChatRemoveMember,
    Data: map[string]any{
      "acting_user_id": actingUserID.String(),
      "other_user_id":  otherUserID.String(),
    },
  })
}

func (ns *notificationService) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*types.Notification, error) {
  return ns.notificationRepo.ListForUser(ctx, nil, userID, limit)
}
