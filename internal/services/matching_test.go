package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/studymatch-backend/internal/apierr"
	"github.com/yungbote/studymatch-backend/internal/types"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*types.User
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error) {
	for _, u := range users {
		f.users[u.ID] = u
	}
	return users, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error) {
	return f.users[userID], nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	u, _ := f.GetByEmail(ctx, tx, email)
	return u != nil, nil
}

func (f *fakeUserRepo) ListOthers(ctx context.Context, tx *gorm.DB, excludeUserID uuid.UUID) ([]*types.User, error) {
	var out []*types.User
	for _, u := range f.users {
		if u.ID != excludeUserID {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeProfileRepo struct {
	profiles map[uuid.UUID]*types.Profile
}

func (f *fakeProfileRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Profile, error) {
	return f.profiles[userID], nil
}

func (f *fakeProfileRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.Profile, error) {
	var out []*types.Profile
	for _, id := range userIDs {
		if p, ok := f.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProfileRepo) Upsert(ctx context.Context, tx *gorm.DB, profile *types.Profile) (*types.Profile, error) {
	f.profiles[profile.UserID] = profile
	return profile, nil
}

type fakeMatchRepo struct {
	matches map[uuid.UUID]*types.Match
}

func (f *fakeMatchRepo) Create(ctx context.Context, tx *gorm.DB, match *types.Match) (*types.Match, error) {
	if match.ID == uuid.Nil {
		match.ID = uuid.New()
	}
	if match.CreatedAt.IsZero() {
		match.CreatedAt = time.Now()
	}
	f.matches[match.ID] = match
	return match, nil
}

func (f *fakeMatchRepo) GetByID(ctx context.Context, tx *gorm.DB, matchID uuid.UUID) (*types.Match, error) {
	return f.matches[matchID], nil
}

func (f *fakeMatchRepo) FindBetween(ctx context.Context, tx *gorm.DB, userA, userB uuid.UUID) (*types.Match, error) {
	for _, m := range f.matches {
		if (m.User1ID == userA && m.User2ID == userB) || (m.User1ID == userB && m.User2ID == userA) {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMatchRepo) ExistsBetween(ctx context.Context, tx *gorm.DB, userA, userB uuid.UUID) (bool, error) {
	m, _ := f.FindBetween(ctx, tx, userA, userB)
	return m != nil, nil
}

func (f *fakeMatchRepo) FindRecentDeclined(ctx context.Context, tx *gorm.DB, userA, userB uuid.UUID, since time.Time) (*types.Match, error) {
	for _, m := range f.matches {
		if m.Status != types.MatchStatusDeclined || m.DeclinedAt == nil {
			continue
		}
		samePair := (m.User1ID == userA && m.User2ID == userB) || (m.User1ID == userB && m.User2ID == userA)
		if samePair && m.DeclinedAt.After(since) {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMatchRepo) FindMutualForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Match, error) {
	var out []*types.Match
	for _, m := range f.matches {
		if m.Status == types.MatchStatusMutual && m.HasUser(userID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMatchRepo) FindPendingForRecipient(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Match, error) {
	var out []*types.Match
	for _, m := range f.matches {
		if m.Status == types.MatchStatusPending && m.User2ID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMatchRepo) DeletePendingForRequester(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	for id, m := range f.matches {
		if m.Status == types.MatchStatusPending && m.User1ID == userID {
			delete(f.matches, id)
		}
	}
	return nil
}

func (f *fakeMatchRepo) Delete(ctx context.Context, tx *gorm.DB, matchID uuid.UUID) error {
	delete(f.matches, matchID)
	return nil
}

func (f *fakeMatchRepo) UpdateStatusGuarded(ctx context.Context, tx *gorm.DB, matchID uuid.UUID, fromStatus string, updates map[string]any) (bool, error) {
	m, ok := f.matches[matchID]
	if !ok || m.Status != fromStatus {
		return false, nil
	}
	if v, ok := updates["status"].(string); ok {
		m.Status = v
	}
	if v, ok := updates["declined_at"].(time.Time); ok {
		m.DeclinedAt = &v
	}
	if v, ok := updates["unmatched_by_id"].(uuid.UUID); ok {
		m.UnmatchedByID = &v
	}
	return true, nil
}

type fakeSettingsService struct {
	snap types.AppSettingsSnapshot
}

func (f *fakeSettingsService) Snapshot(ctx context.Context) (types.AppSettingsSnapshot, error) {
	return f.snap, nil
}

func (f *fakeSettingsService) Update(ctx context.Context, patch AppSettingsPatch) (types.AppSettingsSnapshot, error) {
	return f.snap, nil
}

type fakeNotificationService struct {
	requests  int
	accepted  int
	unmatched int
	chatDrops int
}

func (f *fakeNotificationService) MatchRequest(ctx context.Context, target, requester *types.User, matchID uuid.UUID) error {
	f.requests++
	return nil
}

func (f *fakeNotificationService) MatchAccepted(ctx context.Context, match *types.Match, user1, user2 *types.User) error {
	f.accepted++
	return nil
}

func (f *fakeNotificationService) Unmatched(ctx context.Context, otherParty *types.User, actedBy uuid.UUID) error {
	f.unmatched++
	return nil
}

func (f *fakeNotificationService) ChatRemoveParticipation(ctx context.Context, actingUserID, otherUserID uuid.UUID) error {
	f.chatDrops++
	return nil
}

func (f *fakeNotificationService) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*types.Notification, error) {
	return nil, nil
}

type matchingFixture struct {
	svc      MatchingService
	users    *fakeUserRepo
	profiles *fakeProfileRepo
	matches  *fakeMatchRepo
	settings *fakeSettingsService
	notify   *fakeNotificationService
	ai       AIMatchingService
}

func newMatchingFixture(t *testing.T, client GroqClient) *matchingFixture {
	t.Helper()
	log := newTestLogger(t)
	users := &fakeUserRepo{users: map[uuid.UUID]*types.User{}}
	profiles := &fakeProfileRepo{profiles: map[uuid.UUID]*types.Profile{}}
	matches := &fakeMatchRepo{matches: map[uuid.UUID]*types.Match{}}
	settings := &fakeSettingsService{snap: types.AppSettingsSnapshot{
		AIEnabled:     true,
		AIMatchLimit:  10,
		ProviderModel: "test-model",
		MaxTokens:     500,
		Temperature:   0.3,
	}}
	notify := &fakeNotificationService{}
	cache := NewMatchAnalysisCache(log, time.Minute, 100)
	ai := NewAIMatchingService(log, client, cache, &fakeTokenUsage{})
	svc := NewMatchingService(nil, log, users, profiles, matches, settings, ai, notify)
	return &matchingFixture{
		svc:      svc,
		users:    users,
		profiles: profiles,
		matches:  matches,
		settings: settings,
		notify:   notify,
		ai:       ai,
	}
}

func (fx *matchingFixture) addUser(t *testing.T, name string, profile *types.Profile) *types.User {
	t.Helper()
	u := &types.User{
		ID:          uuid.New(),
		Email:       name + "@example.com",
		Username:    name,
		DisplayName: name,
		Role:        types.UserRoleUser,
	}
	fx.users.users[u.ID] = u
	if profile != nil {
		profile.ID = uuid.New()
		profile.UserID = u.ID
		fx.profiles.profiles[u.ID] = profile
	}
	return u
}

func assertCode(t *testing.T, err error, wantCode string) *apierr.Error {
	t.Helper()
	apiErr, ok := apierr.As(err)
	if !ok {
		t.Fatalf("expected *apierr.Error with code %q, got %v", wantCode, err)
	}
	if apiErr.Code != wantCode {
		t.Fatalf("error code=%q, want %q", apiErr.Code, wantCode)
	}
	return apiErr
}

func TestSendRequestCreatesPendingMatch(t *testing.T) {
	fx := newMatchingFixture(t, nil)
	alice := fx.addUser(t, "alice", &types.Profile{Subjects: []string{"Math"}})
	bob := fx.addUser(t, "bob", &types.Profile{Subjects: []string{"Math"}})

	view, err := fx.svc.SendRequest(context.Background(), alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if view.Status != types.MatchStatusPending {
		t.Fatalf("Status=%q, want PENDING", view.Status)
	}
	if view.MatchReason != "Friend request from alice" {
		t.Fatalf("MatchReason=%q", view.MatchReason)
	}
	if view.User.ID != bob.ID {
		t.Fatalf("view carries wrong user: %s", view.User.ID)
	}
	if fx.notify.requests != 1 {
		t.Fatalf("requests notified=%d, want 1", fx.notify.requests)
	}

	stored, _ := fx.matches.FindBetween(context.Background(), nil, alice.ID, bob.ID)
	if stored == nil || stored.User1ID != alice.ID || stored.User2ID != bob.ID {
		t.Fatalf("stored match wrong: %+v", stored)
	}
	// Identical single-subject profiles: 0.30 + 0.10 + 0.07 = 0.47.
	if stored.CompatibilityScore != 47 {
		t.Fatalf("CompatibilityScore=%d, want 47", stored.CompatibilityScore)
	}
}

func TestSendRequestWithoutProfilesUsesDefaultScore(t *testing.T) {
	fx := newMatchingFixture(t, nil)
	alice := fx.addUser(t, "alice", nil)
	bob := fx.addUser(t, "bob", nil)

	view, err := fx.svc.SendRequest(context.Background(), alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if view.CompatibilityScore != 50 {
		t.Fatalf("CompatibilityScore=%d, want default 50", view.CompatibilityScore)
	}
}

func TestSendRequestUnknownTarget(t *testing.T) {
	fx := newMatchingFixture(t, nil)
	alice := fx.addUser(t, "alice", nil)

	_, err := fx.svc.SendRequest(context.Background(), alice.ID, uuid.New())
	assertCode(t, err, apierr.CodeUserNotFound)
}

func TestSendRequestCooldown(t *testing.T) {
	fx := newMatchingFixture(t, nil)
	alice := fx.addUser(t, "alice", nil)
	bob := fx.addUser(t, "bob", nil)

	declinedAt := time.Now().Add(-72 * time.Hour)
	fx.matches.matches[uuid.New()] = &types.Match{
		ID:         uuid.New(),
		User1ID:    alice.ID,
		User2ID:    bob.ID,
		Status:     types.MatchStatusDeclined,
		DeclinedAt: &declinedAt,
	}

	_, err := fx.svc.SendRequest(context.Background(), alice.ID, bob.ID)
	apiErr := assertCode(t, err, apierr.CodeMatchCooldown)
	if days, ok := apiErr.Meta["days_remaining"].(int); !ok || days != 4 {
		t.Fatalf("days_remaining=%v, want 4", apiErr.Meta["days_remaining"])
	}
}

func TestSendRequestCooldownAppliesBothDirections(t *testing.T) {
	fx := newMatchingFixture(t, nil)
	alice := fx.addUser(t, "alice", nil)
	bob := fx.addUser(t, "bob", nil)

	declinedAt := time.Now().Add(-time.Hour)
	fx.matches.matches[uuid.New()] = &types.Match{
		ID:         uuid.New(),
		User1ID:    bob.ID,
		User2ID:    alice.ID,
		Status:     types.MatchStatusDeclined,
		DeclinedAt: &declinedAt,
	}

	_, err := fx.svc.SendRequest(context.Background(), alice.ID, bob.ID)
	assertCode(t, err, apierr.CodeMatchCooldown)
}

func TestSendRequestAfterCooldownDeletesStaleRecord(t *testing.T) {
	fx := newMatchingFixture(t, nil)
	alice := fx.addUser(t, "alice", nil)
	bob := fx.addUser(t, "bob", nil)

	declinedAt := time.Now().Add(-8 * 24 * time.Hour)
	staleID := uuid.New()
	fx.matches.matches[staleID] = &types.Match{
		ID:         staleID,
		User1ID:    alice.ID,
		User2ID:    bob.ID,
		Status:     types.MatchStatusDeclined,
		DeclinedAt: &declinedAt,
	}

	view, err := fx.svc.SendRequest(context.Background(), alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("SendRequest after cooldown: %v", err)
	}
	if view.Status != types.MatchStatusPending {
		t.Fatalf("Status=%q, want PENDING", view.Status)
	}
	if _, exists := fx.matches.matches[staleID]; exists {
		t.Fatal("stale declined record should have been deleted")
	}
}

func TestSendRequestDuplicate(t *testing.T) {
	fx := newMatchingFixture(t, nil)
	alice := fx.addUser(t, "alice", nil)
	bob := fx.addUser(t, "bob", nil)

	if _, err := fx.svc.SendRequest(context.Background(), alice.ID, bob.ID); err != nil {
		t.Fatalf("first SendRequest: %v", err)
	}
	_, err := fx.svc.SendRequest(context.Background(), alice.ID, bob.ID)
	assertCode(t, err, apierr.CodeMatchExists)

	// The reverse direction hits the same record.
	_, err = fx.svc.SendRequest(context.Background(), bob.ID, alice.ID)
	assertCode(t, err, apierr.CodeMatchExists)
}

func TestAcceptLifecycle(t *testing.T) {
	fx := newMatchingFixture(t, nil)
	alice := fx.addUser(t, "alice", nil)
	bob := fx.addUser(t, "bob", nil)

	sent, err := fx.svc.SendRequest(context.Background(), alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}

	// Only the recipient may accept.
	_, err = fx.svc.Accept(context.Background(), alice.ID, sent.ID)
	assertCode(t, err, apierr.CodeForbidden)

	view, err := fx.svc.Accept(context.Background(), bob.ID, sent.ID)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if view.Status != types.MatchStatusMutual {
		t.Fatalf("Status=%q, want MUTUAL", view.Status)
	}
	if view.User.ID != alice.ID {
		t.Fatalf("accept view should carry the requester, got %s", view.User.ID)
	}
	if fx.notify.accepted != 1 {
		t.Fatalf("accepted notified=%d, want 1", fx.notify.accepted)
	}

	// Accepting again is an invalid transition.
	_, err = fx.svc.Accept(context.Background(), bob.ID, sent.ID)
	assertCode(t, err, apierr.CodeInvalidState)
}

func TestAcceptUnknownMatch(t *testing.T) {
	fx := newMatchingFixture(t, nil)
	bob := fx.addUser(t, "bob", nil)
	_, err := fx.svc.Accept(context.Background(), bob.ID, uuid.New())
	assertCode(t, err, apierr.CodeMatchNotFound)
}

func TestDeclineLifecycle(t *testing.T) {
	fx := newMatchingFixture(t, nil)
	alice := fx.addUser(t, "alice", nil)
	bob := fx.addUser(t, "bob", nil)

	sent, err := fx.svc.SendRequest(context.Background(), alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}

	if err := fx.svc.Decline(context.Background(), alice.ID, sent.ID); err == nil {
		t.Fatal("requester must not be able to decline")
	}

	if err := fx.svc.Decline(context.Background(), bob.ID, sent.ID); err != nil {
		t.Fatalf("Decline: %v", err)
	}
	stored := fx.matches.matches[sent.ID]
	if stored.Status != types.MatchStatusDeclined || stored.DeclinedAt == nil {
		t.Fatalf("decline not recorded: %+v", stored)
	}

	// Declining a DECLINED record is rejected.
	err = fx.svc.Decline(context.Background(), bob.ID, sent.ID)
	assertCode(t, err, apierr.CodeInvalidState)
}

func TestUnmatchLifecycle(t *testing.T) {
	fx := newMatchingFixture(t, nil)
	alice := fx.addUser(t, "alice", nil)
	bob := fx.addUser(t, "bob", nil)

	sent, err := fx.svc.SendRequest(context.Background(), alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}

	// Unmatching a PENDING pair is an invalid transition.
	err = fx.svc.Unmatch(context.Background(), alice.ID, bob.ID, false)
	assertCode(t, err, apierr.CodeInvalidState)

	if _, err := fx.svc.Accept(context.Background(), bob.ID, sent.ID); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	if err := fx.svc.Unmatch(context.Background(), alice.ID, bob.ID, true); err != nil {
		t.Fatalf("Unmatch: %v", err)
	}
	stored := fx.matches.matches[sent.ID]
	if stored.Status != types.MatchStatusUnmatched {
		t.Fatalf("Status=%q, want UNMATCHED", stored.Status)
	}
	if stored.UnmatchedByID == nil || *stored.UnmatchedByID != alice.ID {
		t.Fatalf("UnmatchedByID=%v, want %s", stored.UnmatchedByID, alice.ID)
	}
	if fx.notify.unmatched != 1 || fx.notify.chatDrops != 1 {
		t.Fatalf("unmatched=%d chatDrops=%d, want 1 and 1", fx.notify.unmatched, fx.notify.chatDrops)
	}
}

func TestUnmatchWithAdminForbidden(t *testing.T) {
	fx := newMatchingFixture(t, nil)
	alice := fx.addUser(t, "alice", nil)
	admin := fx.addUser(t, "admin", nil)
	admin.Role = types.UserRoleAdmin

	err := fx.svc.Unmatch(context.Background(), alice.ID, admin.ID, false)
	assertCode(t, err, apierr.CodeForbidden)
}

func TestClearPendingOnlyRemovesOwnRequests(t *testing.T) {
	fx := newMatchingFixture(t, nil)
	alice := fx.addUser(t, "alice", nil)
	bob := fx.addUser(t, "bob", nil)
	carol := fx.addUser(t, "carol", nil)

	if _, err := fx.svc.SendRequest(context.Background(), alice.ID, bob.ID); err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	incoming, err := fx.svc.SendRequest(context.Background(), carol.ID, alice.ID)
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}

	if err := fx.svc.ClearPending(context.Background(), alice.ID); err != nil {
		t.Fatalf("ClearPending: %v", err)
	}

	if m, _ := fx.matches.FindBetween(context.Background(), nil, alice.ID, bob.ID); m != nil {
		t.Fatal("outgoing pending request should be gone")
	}
	if _, exists := fx.matches.matches[incoming.ID]; !exists {
		t.Fatal("incoming pending request must survive ClearPending")
	}
}

func TestGetPendingRequestsSkipsDeletedRequesters(t *testing.T) {
	fx := newMatchingFixture(t, nil)
	alice := fx.addUser(t, "alice", nil)
	bob := fx.addUser(t, "bob", nil)
	carol := fx.addUser(t, "carol", nil)

	if _, err := fx.svc.SendRequest(context.Background(), bob.ID, alice.ID); err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if _, err := fx.svc.SendRequest(context.Background(), carol.ID, alice.ID); err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	carol.Deleted = true

	views, err := fx.svc.GetPendingRequests(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("GetPendingRequests: %v", err)
	}
	if len(views) != 1 || views[0].User.ID != bob.ID {
		t.Fatalf("expected one pending view from bob, got %+v", views)
	}
}

func TestGetMutualMatchesSkipsDeletedPartners(t *testing.T) {
	fx := newMatchingFixture(t, nil)
	alice := fx.addUser(t, "alice", nil)
	bob := fx.addUser(t, "bob", nil)
	carol := fx.addUser(t, "carol", nil)

	for _, other := range []*types.User{bob, carol} {
		sent, err := fx.svc.SendRequest(context.Background(), alice.ID, other.ID)
		if err != nil {
			t.Fatalf("SendRequest: %v", err)
		}
		if _, err := fx.svc.Accept(context.Background(), other.ID, sent.ID); err != nil {
			t.Fatalf("Accept: %v", err)
		}
	}
	carol.Deleted = true

	views, err := fx.svc.GetMutualMatches(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("GetMutualMatches: %v", err)
	}
	if len(views) != 1 || views[0].User.ID != bob.ID {
		t.Fatalf("expected one mutual view with bob, got %d views", len(views))
	}
}

func TestGetSuggestionsRequiresProfile(t *testing.T) {
	fx := newMatchingFixture(t, nil)
	alice := fx.addUser(t, "alice", nil)

	_, err := fx.svc.GetSuggestions(context.Background(), alice.ID)
	assertCode(t, err, apierr.CodeProfileNotFound)
}

func TestGetSuggestionsFiltersCandidates(t *testing.T) {
	fx := newMatchingFixture(t, nil)
	alice := fx.addUser(t, "alice", &types.Profile{Subjects: []string{"Math"}})
	eligible := fx.addUser(t, "bob", &types.Profile{Subjects: []string{"Math"}})
	deleted := fx.addUser(t, "carol", &types.Profile{Subjects: []string{"Math"}})
	deleted.Deleted = true
	fx.addUser(t, "dave", nil) // no profile
	matched := fx.addUser(t, "erin", &types.Profile{Subjects: []string{"Math"}})
	if _, err := fx.svc.SendRequest(context.Background(), alice.ID, matched.ID); err != nil {
		t.Fatalf("SendRequest: %v", err)
	}

	suggestions, err := fx.svc.GetSuggestions(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("GetSuggestions: %v", err)
	}
	if len(suggestions) != 1 || suggestions[0].UserID != eligible.ID {
		t.Fatalf("expected only bob, got %+v", suggestions)
	}
	if suggestions[0].Status != types.SuggestionStatus {
		t.Fatalf("Status=%q, want SUGGESTION", suggestions[0].Status)
	}
}

func TestGetSuggestionsRankingAndIdempotence(t *testing.T) {
	fx := newMatchingFixture(t, nil)
	fx.settings.snap.AIEnabled = false

	alice := fx.addUser(t, "alice", &types.Profile{
		Subjects:      []string{"Math", "Physics"},
		LearningStyle: strPtr("visual"),
	})
	// Strong overlap.
	strong := fx.addUser(t, "bob", &types.Profile{
		Subjects:      []string{"Math", "Physics"},
		LearningStyle: strPtr("visual"),
	})
	// Weak overlap.
	weak := fx.addUser(t, "carol", &types.Profile{
		Subjects: []string{"History"},
	})

	first, err := fx.svc.GetSuggestions(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("GetSuggestions: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("got %d suggestions, want 2", len(first))
	}
	if first[0].UserID != strong.ID || first[1].UserID != weak.ID {
		t.Fatalf("ranking wrong: %s then %s", first[0].UserID, first[1].UserID)
	}
	if first[0].CompatibilityScore < first[1].CompatibilityScore {
		t.Fatal("scores not descending")
	}
	for _, s := range first {
		if s.AIEnhanced {
			t.Fatal("AI disabled must leave suggestions unenhanced")
		}
	}

	second, err := fx.svc.GetSuggestions(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("GetSuggestions: %v", err)
	}
	for i := range first {
		if first[i].UserID != second[i].UserID || first[i].CompatibilityScore != second[i].CompatibilityScore {
			t.Fatalf("suggestion order changed between calls at index %d", i)
		}
	}
}

func TestGetSuggestionsCapsOutput(t *testing.T) {
	fx := newMatchingFixture(t, nil)
	fx.settings.snap.AIEnabled = false

	alice := fx.addUser(t, "alice", &types.Profile{Subjects: []string{"Math"}})
	for i := 0; i < 25; i++ {
		fx.addUser(t, fmt.Sprintf("user%02d", i), &types.Profile{Subjects: []string{"Math"}})
	}

	suggestions, err := fx.svc.GetSuggestions(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("GetSuggestions: %v", err)
	}
	if len(suggestions) != maxSuggestions {
		t.Fatalf("got %d suggestions, want %d", len(suggestions), maxSuggestions)
	}
}

func TestGetSuggestionsEnrichesTopCandidatesOnly(t *testing.T) {
	client := &fakeGroqClient{
		content: `{"score_adjustment":10,"personalized_reason":"AI analysis","study_recommendations":["Algebra"]}`,
	}
	fx := newMatchingFixture(t, client)
	fx.settings.snap.AIMatchLimit = 2

	alice := fx.addUser(t, "alice", &types.Profile{Subjects: []string{"Math"}})
	for i := 0; i < 5; i++ {
		fx.addUser(t, fmt.Sprintf("user%d", i), &types.Profile{Subjects: []string{"Math"}})
	}

	suggestions, err := fx.svc.GetSuggestions(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("GetSuggestions: %v", err)
	}
	if len(suggestions) != 5 {
		t.Fatalf("got %d suggestions, want 5", len(suggestions))
	}

	enhanced := 0
	for _, s := range suggestions {
		if s.AIEnhanced {
			enhanced++
			if s.MatchReason != "AI analysis" {
				t.Fatalf("enhanced suggestion kept rule-based reason: %q", s.MatchReason)
			}
		}
	}
	if enhanced != 2 {
		t.Fatalf("enhanced=%d, want AIMatchLimit=2", enhanced)
	}
	if got := client.calls.Load(); got != 2 {
		t.Fatalf("provider calls=%d, want 2", got)
	}
	// Enriched candidates sort by their adjusted score, so they lead.
	if !suggestions[0].AIEnhanced || !suggestions[1].AIEnhanced {
		t.Fatal("enhanced suggestions should rank first after the score bump")
	}
}

func TestGetSuggestionsProviderFailureFallsBack(t *testing.T) {
	client := &fakeGroqClient{err: fmt.Errorf("provider down")}
	fx := newMatchingFixture(t, client)

	alice := fx.addUser(t, "alice", &types.Profile{Subjects: []string{"Math"}})
	bob := fx.addUser(t, "bob", &types.Profile{Subjects: []string{"Math"}})

	suggestions, err := fx.svc.GetSuggestions(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("GetSuggestions: %v", err)
	}
	if len(suggestions) != 1 || suggestions[0].UserID != bob.ID {
		t.Fatalf("unexpected suggestions: %+v", suggestions)
	}
	if suggestions[0].AIEnhanced {
		t.Fatal("provider failure must fall back to rule-based suggestion")
	}
	if suggestions[0].CompatibilityScore != 47 {
		t.Fatalf("fallback score=%d, want rule-based 47", suggestions[0].CompatibilityScore)
	}
}

func TestCooldownDaysRemaining(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name       string
		declinedAt time.Time
		want       int
	}{
		{name: "just_declined", declinedAt: now.Add(-time.Minute), want: 7},
		{name: "three_days_ago", declinedAt: now.Add(-72 * time.Hour), want: 4},
		{name: "almost_elapsed", declinedAt: now.Add(-7*24*time.Hour + time.Minute), want: 1},
		{name: "elapsed", declinedAt: now.Add(-8 * 24 * time.Hour), want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := cooldownDaysRemaining(tc.declinedAt, now); got != tc.want {
				t.Fatalf("cooldownDaysRemaining=%d, want %d", got, tc.want)
			}
		})
	}
}
