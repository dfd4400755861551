package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studymatch-backend/internal/logger"
	"github.com/yungbote/studymatch-backend/internal/types"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestMatchAnalysisCacheOrderedKey(t *testing.T) {
	cache := NewMatchAnalysisCache(newTestLogger(t), time.Minute, 10)
	caller := uuid.New()
	candidate := uuid.New()

	result := &types.AIMatchResult{AdjustedScore: 80, PersonalizedReason: "shared subjects", Enhanced: true}
	cache.Add(cache.Key(caller, candidate), result)

	if got, ok := cache.Get(cache.Key(caller, candidate)); !ok || got.AdjustedScore != 80 {
		t.Fatalf("expected cache hit for ordered key, got ok=%v result=%+v", ok, got)
	}
	// The swapped pair is a different key and must miss.
	if _, ok := cache.Get(cache.Key(candidate, caller)); ok {
		t.Fatal("expected cache miss for swapped key")
	}
}

func TestMatchAnalysisCacheTTLExpiry(t *testing.T) {
	cache := NewMatchAnalysisCache(newTestLogger(t), 20*time.Millisecond, 10)
	key := cache.Key(uuid.New(), uuid.New())
	cache.Add(key, &types.AIMatchResult{AdjustedScore: 55, Enhanced: true})

	if _, ok := cache.Get(key); !ok {
		t.Fatal("expected hit before expiry")
	}
	time.Sleep(50 * time.Millisecond)
	if _, ok := cache.Get(key); ok {
		t.Fatal("expected miss after TTL expiry")
	}
}

func TestMatchAnalysisCacheSizeBound(t *testing.T) {
	cache := NewMatchAnalysisCache(newTestLogger(t), time.Minute, 2)
	for i := 0; i < 5; i++ {
		cache.Add(cache.Key(uuid.New(), uuid.New()), &types.AIMatchResult{AdjustedScore: i, Enhanced: true})
	}
	if got := cache.Len(); got > 2 {
		t.Fatalf("cache exceeded size bound: len=%d", got)
	}
}

func TestMatchAnalysisCacheIgnoresNil(t *testing.T) {
	cache := NewMatchAnalysisCache(newTestLogger(t), time.Minute, 10)
	key := cache.Key(uuid.New(), uuid.New())
	cache.Add(key, nil)
	if _, ok := cache.Get(key); ok {
		t.Fatal("nil result must not be cached")
	}
}
