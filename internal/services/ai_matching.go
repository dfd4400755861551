package services

import (
  "context"
  "encoding/json"
  "fmt"
  "strings"

  "github.com/google/uuid"
  "golang.org/x/sync/errgroup"

  "github.com/yungbote/studymatch-backend/internal/logger"
  "github.com/yungbote/studymatch-backend/internal/types"
)

// Upper bound on concurrent provider calls per batch. The fan-out joins all
// outcomes before returning; no partial results.
const maxConcurrentEnrichments = 8

const tokenUsageOperation = "match_analysis"

// AIMatchCandidate is one enrichment task within a batch.
type AIMatchCandidate struct {
  UserID      uuid.UUID
  DisplayName string
  Profile     *types.Profile
  BaseScore   int
}

// AIMatchingService enriches rule-based match scores through the external
// scoring provider. Every failure path degrades to the base score; the
// provider is never required for suggestions to work.
type AIMatchingService interface {
  IsAvailable(settings types.AppSettingsSnapshot) bool
  AnalyzeCompatibility(ctx context.Context, settings types.AppSettingsSnapshot, requesterID uuid.UUID, current *types.Profile, candidate AIMatchCandidate) *types.AIMatchResult
  BatchAnalyze(ctx context.Context, settings types.AppSettingsSnapshot, requesterID uuid.UUID, current *types.Profile, candidates []AIMatchCandidate) map[uuid.UUID]*types.AIMatchResult
}

type aiMatchingService struct {
  log          *logger.Logger
  client       GroqClient
  cache        *MatchAnalysisCache
  tokenUsage   TokenUsageService
}

func NewAIMatchingService(log *logger.Logger, client GroqClient, cache *MatchAnalysisCache, tokenUsage TokenUsageService) AIMatchingService {
  serviceLog := log.With("service", "AIMatchingService")
  return &aiMatchingService{
    log:        serviceLog,
    client:     client,
    cache:      cache,
    tokenUsage: tokenUsage,
  }
}

func (s *aiMatchingService) IsAvailable(settings types.AppSettingsSnapshot) bool {
  return settings.AIEnabled && s.client != nil
}

func fallbackResult(baseScore int) *types.AIMatchResult {
  return &types.AIMatchResult{
    AdjustedScore:        baseScore,
    StudyRecommendations: []string{},
    Enhanced:             false,
  }
}

// AnalyzeCompatibility runs one enrichment attempt. It consults the cache
// under the ordered (caller, candidate) profile-pair key first and never
// returns an error: timeouts, transport failures and malformed responses
// all collapse into the base-score fallback.
func (s *aiMatchingService) AnalyzeCompatibility(ctx context.Context, settings types.AppSettingsSnapshot, requesterID uuid.UUID, current *types.Profile, candidate AIMatchCandidate) *types.AIMatchResult {
  if !s.IsAvailable(settings) || current == nil || candidate.Profile == nil {
    return fallbackResult(candidate.BaseScore)
  }

  key := s.cache.Key(current.ID, candidate.Profile.ID)
  if cached, ok := s.cache.Get(key); ok {
    return cached
  }

  prompt := buildAnalysisPrompt(current, candidate.Profile, candidate.DisplayName)
  resp, err := s.client.ChatJSON(ctx, ChatRequest{
    Model:          settings.ProviderModel,
    Messages:       []ChatMessage{{Role: "user", Content: prompt}},
    MaxTokens:      settings.MaxTokens,
    Temperature:    settings.Temperature,
    ResponseFormat: ResponseFormat{Type: "json_object"},
  })
  if err != nil {
    s.log.Warn("AI enhancement failed, falling back to rule-based score",
      "candidate_user_id", candidate.UserID,
      "error", err,
    )
    return fallbackResult(candidate.BaseScore)
  }

  if resp.Usage != nil {
    if uErr := s.tokenUsage.Record(ctx, requesterID, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens, tokenUsageOperation); uErr != nil {
      s.log.Warn("Failed to record token usage", "error", uErr)
    }
  }

  result, pErr := parseAnalysisResponse(resp, candidate.BaseScore)
  if pErr != nil {
    s.log.Warn("Failed to parse AI response, falling back to rule-based score",
      "candidate_user_id", candidate.UserID,
      "error", pErr,
    )
    return fallbackResult(candidate.BaseScore)
  }

  s.cache.Add(key, result)
  return result
}

// BatchAnalyze fans out all candidates concurrently and blocks until every
// outcome resolves. Each goroutine writes its own slice slot; the map is
// built after the join.
func (s *aiMatchingService) BatchAnalyze(ctx context.Context, settings types.AppSettingsSnapshot, requesterID uuid.UUID, current *types.Profile, candidates []AIMatchCandidate) map[uuid.UUID]*types.AIMatchResult {
  results := make([]*types.AIMatchResult, len(candidates))

  g, gctx := errgroup.WithContext(ctx)
  g.SetLimit(maxConcurrentEnrichments)
  for i, cand := range candidates {
    g.Go(func() error {
      results[i] = s.AnalyzeCompatibility(gctx, settings, requesterID, current, cand)
      return nil
    })
  }
  _ = g.Wait()

  out := make(map[uuid.UUID]*types.AIMatchResult, len(candidates))
  for i, cand := range candidates {
    out[cand.UserID] = results[i]
  }
  return out
}

type analysisPayload struct {
  ScoreAdjustment      int      `json:"score_adjustment"`
  SemanticSimilarity   *float64 `json:"semantic_similarity"`
  PersonalizedReason   string   `json:"personalized_reason"`
  StudyRecommendations []string `json:"study_recommendations"`
}

func parseAnalysisResponse(resp *ChatResponse, baseScore int) (*types.AIMatchResult, error) {
  if resp == nil || len(resp.Choices) == 0 {
    return nil, fmt.Errorf("no choices in provider response")
  }
  content := resp.Choices[0].Message.Content
  if strings.TrimSpace(content) == "" {
    return nil, fmt.Errorf("empty message content in provider response")
  }

  var payload analysisPayload
  if err := json.Unmarshal([]byte(content), &payload); err != nil {
    return nil, fmt.Errorf("malformed analysis JSON: %w", err)
  }
  if payload.PersonalizedReason == "" {
    return nil, fmt.Errorf("missing personalized_reason in analysis JSON")
  }

  adjusted := baseScore + payload.ScoreAdjustment
  if adjusted < 0 {
    adjusted = 0
  }
  if adjusted > 100 {
    adjusted = 100
  }

  recommendations := payload.StudyRecommendations
  if recommendations == nil {
    recommendations = []string{}
  }

  return &types.AIMatchResult{
    AdjustedScore:        adjusted,
    PersonalizedReason:   payload.PersonalizedReason,
    StudyRecommendations: recommendations,
    SemanticSimilarity:   payload.SemanticSimilarity,
    Enhanced:             true,
  }, nil
}

// buildAnalysisPrompt keeps the encoding compact to hold token usage down:
// one pipe-separated line per profile plus the expected JSON shape.
func buildAnalysisPrompt(p1, p2 *types.Profile, p2Name string) string {
  var b strings.Builder
  b.WriteString("Rate study partner match. JSON only.\n\n")

  b.WriteString("A: ")
  b.WriteString(formatList(p1.Subjects))
  b.WriteString("|")
  b.WriteString(nullSafe(p1.LearningStyle))
  b.WriteString("|")
  b.WriteString(nullSafe(p1.ExamGoal))
  b.WriteString("|")
  b.WriteString(formatList(p1.PreferredTimes))
  b.WriteString("\n")

  b.WriteString("B(")
  b.WriteString(p2Name)
  b.WriteString("): ")
  b.WriteString(formatList(p2.Subjects))
  b.WriteString("|")
  b.WriteString(nullSafe(p2.LearningStyle))
  b.WriteString("|")
  b.WriteString(nullSafe(p2.ExamGoal))
  b.WriteString("|")
  b.WriteString(formatList(p2.PreferredTimes))
  b.WriteString("\n\n")

  b.WriteString(`{"score_adjustment":<-20 to +20>,"semantic_similarity":<0-1>,`)
  b.WriteString(`"personalized_reason":"<1 sentence>","study_recommendations":["topic1","topic2"]}`)

  return b.String()
}

func formatList(list []string) string {
  if len(list) == 0 {
    return "Not specified"
  }
  return strings.Join(list, ", ")
}

func nullSafe(value *string) string {
  if value == nil || *value == "" {
    return "Not specified"
  }
  return *value
}
