package services

import (
  "time"

  "github.com/google/uuid"
  lru "github.com/hashicorp/golang-lru/v2/expirable"

  "github.com/yungbote/studymatch-backend/internal/logger"
  "github.com/yungbote/studymatch-backend/internal/types"
)

const (
  DefaultMatchCacheTTL  = 60 * time.Minute
  DefaultMatchCacheSize = 1000
)

// MatchAnalysisCache holds enrichment results keyed by the ordered profile
// pair (caller first). Entries fall out when they expire or when the cache
// is full, least recently used first. Shared across concurrent suggestion
// requests; the underlying LRU is safe for concurrent use.
type MatchAnalysisCache struct {
  log *logger.Logger
  lru *lru.LRU[string, *types.AIMatchResult]
}

func NewMatchAnalysisCache(baseLog *logger.Logger, ttl time.Duration, size int) *MatchAnalysisCache {
  if ttl <= 0 {
    ttl = DefaultMatchCacheTTL
  }
  if size <= 0 {
    size = DefaultMatchCacheSize
  }
  cacheLog := baseLog.With("service", "MatchAnalysisCache")
  return &MatchAnalysisCache{
    log: cacheLog,
    lru: lru.NewLRU[string, *types.AIMatchResult](size, nil, ttl),
  }
}

// Key orders the pair as (caller, candidate). A swapped pair is a distinct
// key and always misses.
func (c *MatchAnalysisCache) Key(callerProfileID, candidateProfileID uuid.UUID) string {
  return callerProfileID.String() + "-" + candidateProfileID.String()
}

func (c *MatchAnalysisCache) Get(key string) (*types.AIMatchResult, bool) {
  return c.lru.Get(key)
}

func (c *MatchAnalysisCache) Add(key string, result *types.AIMatchResult) {
  if result == nil {
    return
  }
  c.lru.Add(key, result)
}

func (c *MatchAnalysisCache) Len() int {
  return c.lru.Len()
}
