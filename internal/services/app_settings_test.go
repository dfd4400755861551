package services

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/studymatch-backend/internal/apierr"
	"github.com/yungbote/studymatch-backend/internal/types"
)

type fakeAppSettingRepo struct {
	settings map[string]string
}

func (f *fakeAppSettingRepo) Get(ctx context.Context, tx *gorm.DB, key string) (*types.AppSetting, error) {
	if v, ok := f.settings[key]; ok {
		return &types.AppSetting{Key: key, Value: v}, nil
	}
	return nil, nil
}

func (f *fakeAppSettingRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.AppSetting, error) {
	var out []*types.AppSetting
	for k, v := range f.settings {
		out = append(out, &types.AppSetting{Key: k, Value: v})
	}
	return out, nil
}

func (f *fakeAppSettingRepo) Set(ctx context.Context, tx *gorm.DB, key, value string) error {
	f.settings[key] = value
	return nil
}

func newSettingsService(t *testing.T, stored map[string]string) AppSettingsService {
	t.Helper()
	repo := &fakeAppSettingRepo{settings: stored}
	defaults := DefaultAppSettings("default-model", 500, 0.3)
	return NewAppSettingsService(nil, newTestLogger(t), repo, defaults)
}

func TestSnapshotDefaultsWhenNothingStored(t *testing.T) {
	svc := newSettingsService(t, map[string]string{})
	snap, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if !snap.AIEnabled || snap.AIMatchLimit != 10 || snap.ProviderModel != "default-model" {
		t.Fatalf("unexpected defaults: %+v", snap)
	}
}

func TestSnapshotStoredOverrides(t *testing.T) {
	svc := newSettingsService(t, map[string]string{
		SettingAIEnabled:     "false",
		SettingAIMatchLimit:  "25",
		SettingProviderModel: "other-model",
		SettingTemperature:   "0.7",
	})
	snap, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.AIEnabled {
		t.Fatal("stored override should disable AI")
	}
	if snap.AIMatchLimit != 25 || snap.ProviderModel != "other-model" || snap.Temperature != 0.7 {
		t.Fatalf("overrides not applied: %+v", snap)
	}
	// MaxTokens had no row and keeps the default.
	if snap.MaxTokens != 500 {
		t.Fatalf("MaxTokens=%d, want default 500", snap.MaxTokens)
	}
}

func TestSnapshotIgnoresUnparseableValues(t *testing.T) {
	svc := newSettingsService(t, map[string]string{
		SettingAIEnabled:    "not-a-bool",
		SettingAIMatchLimit: "many",
	})
	snap, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if !snap.AIEnabled || snap.AIMatchLimit != 10 {
		t.Fatalf("garbage rows must fall back to defaults: %+v", snap)
	}
}

func TestSnapshotClampsMatchLimit(t *testing.T) {
	svc := newSettingsService(t, map[string]string{SettingAIMatchLimit: "500"})
	snap, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.AIMatchLimit != 50 {
		t.Fatalf("AIMatchLimit=%d, want clamp to 50", snap.AIMatchLimit)
	}
}

func TestUpdateRejectsOutOfRangeLimit(t *testing.T) {
	svc := newSettingsService(t, map[string]string{})
	bad := 0
	_, err := svc.Update(context.Background(), AppSettingsPatch{AIMatchLimit: &bad})
	apiErr, ok := apierr.As(err)
	if !ok || apiErr.Code != apierr.CodeBadInput {
		t.Fatalf("expected invalid_input error, got %v", err)
	}
}
