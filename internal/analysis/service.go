// Package analysis judges whether a student's review is consistent with the
// book it claims to be about.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/readornot/readornot/internal/models"
	"github.com/readornot/readornot/internal/providers"
)

const analysisPrompt = `당신은 독후감 진위를 평가하는 교육 전문가입니다.
학생의 감상문과 책 정보를 바탕으로, 이 학생이 실제로 책을 읽었을 가능성을 판단하세요.

평가 기준:
1. 책 내용과의 일관성 — 감상문에 언급된 인물·사건·주제가 실제 책과 맞는가?
2. 구체성 — 책을 읽지 않으면 쓸 수 없는 구체적인 디테일(장면, 대사, 감정 등)이 있는가?
3. 개인적 감상 — 자신만의 경험이나 느낌과 연결 지었는가?
4. 범용성 — 아무 책에나 붙일 수 있는 뻔한 문장 위주인가?

반드시 아래 JSON 형식으로만 응답하세요. 다른 텍스트는 포함하지 마세요.
{
  "verdict": "high" | "medium" | "low",
  "reasoning": "판단 근거를 2~3문장으로 요약"
}

verdict 기준:
- "high": 읽었을 가능성이 높음 (구체적 디테일, 개인적 감상, 책 내용과 일치)
- "medium": 판단하기 어려움 (일부 구체적이나 불확실)
- "low": 읽었을 가능성이 낮음 (뻔한 문장, 구체성 부족, 내용 불일치)`

const defaultReasoning = "근거 없음"

const (
	maxRetries  = 3
	baseDelay   = 2000 * time.Millisecond
	temperature = 0.2
)

// ErrRateLimited is returned once the retry budget for provider rate limits
// is exhausted. Its message is shown to the user as-is.
var ErrRateLimited = errors.New("API 요청 한도를 초과했습니다. 잠시 후 다시 시도해주세요.")

// ParseError reports an AI response that could not be interpreted
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error { return e.Cause }

var rateLimitMarkers = []string{"429", "RESOURCE_EXHAUSTED", "Resource exhausted"}

// isRateLimit classifies a provider error by its message, since each provider
// SDK surfaces quota errors differently.
func isRateLimit(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range rateLimitMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// Service analyzes reviews with an LLM provider
type Service struct {
	provider providers.Provider
	model    string

	// sleep is replaced in tests to observe backoff delays.
	sleep func(time.Duration)
}

// NewService creates an analysis service backed by the given provider and model
func NewService(provider providers.Provider, model string) *Service {
	return &Service{
		provider: provider,
		model:    model,
		sleep:    time.Sleep,
	}
}

// AnalyzeReview asks the provider whether the review is consistent with the
// book's description and parses the constrained verdict response. Rate-limit
// errors are retried with exponential backoff; all other errors propagate.
func (s *Service) AnalyzeReview(ctx context.Context, bookTitle, author, review, description string) (models.ReviewAnalysis, error) {
	userMessage := fmt.Sprintf(`## 책 정보
- 제목: %s
- 저자: %s
- 책 소개: %s

## 학생의 감상문
%s`, bookTitle, author, description, review)

	config := providers.Config{
		Model:             s.model,
		Temperature:       temperature,
		SystemInstruction: analysisPrompt,
		Prompt:            userMessage,
		JSONResponse:      true,
	}

	text, err := s.generateWithRetry(ctx, config)
	if err != nil {
		return models.ReviewAnalysis{}, err
	}

	return parseAnalysis(text)
}

func (s *Service) generateWithRetry(ctx context.Context, config providers.Config) (string, error) {
	for attempt := 0; ; attempt++ {
		text, err := s.provider.GenerateText(ctx, config)
		if err == nil {
			return text, nil
		}
		if !isRateLimit(err) {
			return "", err
		}
		if attempt >= maxRetries {
			return "", ErrRateLimited
		}

		delay := baseDelay * time.Duration(1<<attempt)
		s.sleep(delay)
	}
}

func parseAnalysis(text string) (models.ReviewAnalysis, error) {
	if strings.TrimSpace(text) == "" {
		return models.ReviewAnalysis{}, &ParseError{Message: "AI 응답이 비어있습니다."}
	}

	var parsed struct {
		Verdict   string `json:"verdict"`
		Reasoning string `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return models.ReviewAnalysis{}, &ParseError{Message: "AI 응답을 파싱할 수 없습니다.", Cause: err}
	}

	verdict := models.Verdict(parsed.Verdict)
	switch verdict {
	case models.VerdictHigh, models.VerdictMedium, models.VerdictLow:
	default:
		return models.ReviewAnalysis{}, &ParseError{Message: fmt.Sprintf("유효하지 않은 판정 결과: %q", parsed.Verdict)}
	}

	reasoning := parsed.Reasoning
	if reasoning == "" {
		reasoning = defaultReasoning
	}

	return models.ReviewAnalysis{Verdict: verdict, Reasoning: reasoning}, nil
}
