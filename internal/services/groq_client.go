package services

import (
  "bytes"
  "context"
  "encoding/json"
  "fmt"
  "io"
  "net/http"
  "os"
  "strconv"
  "strings"
  "time"

  "github.com/yungbote/studymatch-backend/internal/logger"
)

// GroqClient wraps the external scoring provider's chat-completions
// endpoint. One HTTP attempt per call with a bounded timeout; retries are
// deliberately absent because the matching pipeline falls back to the
// rule-based score on any failure.
type GroqClient interface {
  ChatJSON(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

type ChatRequest struct {
  Model          string        `json:"model"`
  Messages       []ChatMessage `json:"messages"`
  MaxTokens      int           `json:"max_tokens"`
  Temperature    float64       `json:"temperature"`
  ResponseFormat ResponseFormat `json:"response_format"`
}

type ChatMessage struct {
  Role    string `json:"role"`
  Content string `json:"content"`
}

type ResponseFormat struct {
  Type string `json:"type"`
}

type ChatResponse struct {
  Choices []struct {
    Message struct {
      Content string `json:"content"`
    } `json:"message"`
  } `json:"choices"`
  Usage *ChatUsage `json:"usage,omitempty"`
}

type ChatUsage struct {
  PromptTokens     int `json:"prompt_tokens"`
  CompletionTokens int `json:"completion_tokens"`
  TotalTokens      int `json:"total_tokens"`
}

type groqClient struct {
  log        *logger.Logger
  apiURL     string
  apiKey     string
  httpClient *http.Client
}

func NewGroqClient(log *logger.Logger) (GroqClient, error) {
  apiKey := strings.TrimSpace(os.Getenv("GROQ_API_KEY"))
  if apiKey == "" {
    return nil, fmt.Errorf("missing GROQ_API_KEY")
  }

  apiURL := os.Getenv("GROQ_API_URL")
  if apiURL == "" {
    apiURL = "https://api.groq.com/openai/v1/chat/completions"
  }

  timeoutSec := 15
  if v := os.Getenv("GROQ_TIMEOUT_SECONDS"); v != "" {
    if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
      timeoutSec = parsed
    }
  }

  return &groqClient{
    log:        log.With("service", "GroqClient"),
    apiURL:     apiURL,
    apiKey:     apiKey,
    httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
  }, nil
}

type groqHTTPError struct {
  StatusCode int
  Body       string
}

func (e *groqHTTPError) Error() string {
  return fmt.Sprintf("groq http %d: %s", e.StatusCode, e.Body)
}

func (c *groqClient) ChatJSON(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
  var buf bytes.Buffer
  if err := json.NewEncoder(&buf).Encode(req); err != nil {
    return nil, err
  }

  httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, &buf)
  if err != nil {
    return nil, err
  }
  httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
  httpReq.Header.Set("Content-Type", "application/json")

  resp, err := c.httpClient.Do(httpReq)
  if err != nil {
    return nil, err
  }

  raw, readErr := io.ReadAll(resp.Body)
  _ = resp.Body.Close()
  if readErr != nil {
    return nil, readErr
  }

  if resp.StatusCode < 200 || resp.StatusCode >= 300 {
    return nil, &groqHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
  }

  var out ChatResponse
  if err := json.Unmarshal(raw, &out); err != nil {
    return nil, fmt.Errorf("groq decode error: %w; raw=%s", err, string(raw))
  }
  return &out, nil
}
