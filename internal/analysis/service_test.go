package analysis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/readornot/readornot/internal/models"
	"github.com/readornot/readornot/internal/providers"
)

// stubProvider fails a fixed number of times before succeeding.
type stubProvider struct {
	failures   int
	failureErr error
	response   string

	calls      int
	lastConfig providers.Config
}

func (s *stubProvider) GenerateText(ctx context.Context, config providers.Config) (string, error) {
	s.calls++
	s.lastConfig = config
	if s.calls <= s.failures {
		return "", s.failureErr
	}
	return s.response, nil
}

func newTestService(provider providers.Provider) (*Service, *[]time.Duration) {
	service := NewService(provider, "gemini-2.0-flash")
	var delays []time.Duration
	service.sleep = func(d time.Duration) { delays = append(delays, d) }
	return service, &delays
}

func TestAnalyzeReview(t *testing.T) {
	stub := &stubProvider{response: `{"verdict":"high","reasoning":"장면 묘사가 구체적입니다."}`}
	service, _ := newTestService(stub)

	analysis, err := service.AnalyzeReview(context.Background(), "어린왕자", "생텍쥐페리", "감상문...", "책 소개...")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := models.ReviewAnalysis{Verdict: models.VerdictHigh, Reasoning: "장면 묘사가 구체적입니다."}
	if diff := cmp.Diff(want, analysis); diff != "" {
		t.Errorf("analysis mismatch (-want +got):\n%s", diff)
	}

	config := stub.lastConfig
	if !config.JSONResponse {
		t.Error("analysis must request a JSON-only completion")
	}
	if config.Temperature != 0.2 {
		t.Errorf("expected temperature 0.2, got %v", config.Temperature)
	}
	if config.SystemInstruction == "" {
		t.Error("analysis must set the rubric system instruction")
	}
}

func TestAnalyzeReviewRetriesRateLimit(t *testing.T) {
	stub := &stubProvider{
		failures:   2,
		failureErr: fmt.Errorf("googleapi: Error 429: RESOURCE_EXHAUSTED"),
		response:   `{"verdict":"medium","reasoning":"판단이 어렵습니다."}`,
	}
	service, delays := newTestService(stub)

	analysis, err := service.AnalyzeReview(context.Background(), "어린왕자", "생텍쥐페리", "감상문", "소개")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analysis.Verdict != models.VerdictMedium {
		t.Errorf("unexpected verdict: %v", analysis.Verdict)
	}
	if stub.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", stub.calls)
	}

	wantDelays := []time.Duration{2000 * time.Millisecond, 4000 * time.Millisecond}
	if diff := cmp.Diff(wantDelays, *delays); diff != "" {
		t.Errorf("backoff delays mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeReviewRateLimitExhausted(t *testing.T) {
	stub := &stubProvider{
		failures:   10,
		failureErr: fmt.Errorf("received non-200 status code: 429 - too many requests"),
	}
	service, delays := newTestService(stub)

	_, err := service.AnalyzeReview(context.Background(), "어린왕자", "생텍쥐페리", "감상문", "소개")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if stub.calls != 4 {
		t.Errorf("expected 4 total attempts, got %d", stub.calls)
	}

	wantDelays := []time.Duration{2000 * time.Millisecond, 4000 * time.Millisecond, 8000 * time.Millisecond}
	if diff := cmp.Diff(wantDelays, *delays); diff != "" {
		t.Errorf("backoff delays mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeReviewOtherErrorsPropagate(t *testing.T) {
	providerErr := fmt.Errorf("received non-200 status code: 500 - internal error")
	stub := &stubProvider{failures: 10, failureErr: providerErr}
	service, delays := newTestService(stub)

	_, err := service.AnalyzeReview(context.Background(), "어린왕자", "생텍쥐페리", "감상문", "소개")
	if !errors.Is(err, providerErr) {
		t.Fatalf("expected provider error to propagate, got %v", err)
	}
	if stub.calls != 1 {
		t.Errorf("non-rate-limit errors must not be retried, got %d attempts", stub.calls)
	}
	if len(*delays) != 0 {
		t.Errorf("expected no backoff delays, got %v", *delays)
	}
}

func TestParseAnalysis(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    models.ReviewAnalysis
		wantErr bool
	}{
		{
			name: "valid response",
			text: `{"verdict":"low","reasoning":"내용이 불일치합니다."}`,
			want: models.ReviewAnalysis{Verdict: models.VerdictLow, Reasoning: "내용이 불일치합니다."},
		},
		{
			name: "missing reasoning gets placeholder",
			text: `{"verdict":"high"}`,
			want: models.ReviewAnalysis{Verdict: models.VerdictHigh, Reasoning: "근거 없음"},
		},
		{name: "empty response", text: "", wantErr: true},
		{name: "whitespace response", text: "   \n", wantErr: true},
		{name: "not json", text: "verdict: high", wantErr: true},
		{name: "invalid verdict", text: `{"verdict":"maybe","reasoning":"..."}`, wantErr: true},
		{name: "missing verdict", text: `{"reasoning":"..."}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAnalysis(tt.text)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				var parseErr *ParseError
				if !errors.As(err, &parseErr) {
					t.Errorf("expected *ParseError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("analysis mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
