package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/readornot/readornot/internal/models"
	"github.com/readornot/readornot/internal/spreadsheet"
)

func verifiedResult(id string) models.AnalysisResult {
	return models.AnalysisResult{
		Report: models.BookReport{StudentID: id, BookTitle: "어린왕자", Author: "생텍쥐페리", Review: "..."},
		Verification: models.BookVerification{
			Found:        true,
			MatchedTitle: "어린 왕자",
			Description:  "책 소개",
		},
		Status: models.StatusVerified,
	}
}

func newBatchWithResults(t *testing.T, store *BatchStore, results ...models.AnalysisResult) string {
	t.Helper()
	batch := store.Create("reports.xlsx", &spreadsheet.Table{}, nil, nil)
	if err := store.ResetResults(batch.ID, len(results)); err != nil {
		t.Fatalf("failed to reset results: %v", err)
	}
	for _, r := range results {
		if err := store.AppendResult(batch.ID, r); err != nil {
			t.Fatalf("failed to append result: %v", err)
		}
	}
	return batch.ID
}

func TestAppendAndProgress(t *testing.T) {
	store := New()
	id := newBatchWithResults(t, store, verifiedResult("1"))

	if err := store.SetProgress(id, models.Progress{Completed: 1, Total: 3}); err != nil {
		t.Fatalf("failed to set progress: %v", err)
	}

	batch, ok := store.Get(id)
	if !ok {
		t.Fatal("batch not found")
	}
	if len(batch.Results) != 1 {
		t.Errorf("expected 1 result, got %d", len(batch.Results))
	}
	if batch.Progress.Completed != 1 || batch.Progress.Total != 3 {
		t.Errorf("unexpected progress: %+v", batch.Progress)
	}
}

func TestGetMissingBatch(t *testing.T) {
	store := New()
	if _, ok := store.Get("nope"); ok {
		t.Error("expected missing batch")
	}
	if err := store.AppendResult("nope", verifiedResult("1")); !errors.Is(err, ErrBatchNotFound) {
		t.Errorf("expected ErrBatchNotFound, got %v", err)
	}
}

func TestReserveAnalysisPreconditions(t *testing.T) {
	noDescription := verifiedResult("2")
	noDescription.Verification.Description = ""

	notFound := models.AnalysisResult{
		Report:       models.BookReport{StudentID: "3"},
		Verification: models.BookVerification{Found: false},
		Status:       models.StatusNotFound,
	}

	store := New()
	id := newBatchWithResults(t, store, verifiedResult("1"), noDescription, notFound)

	if _, err := store.ReserveAnalysis(id, 0); err != nil {
		t.Errorf("verified result with description must be reservable: %v", err)
	}
	if _, err := store.ReserveAnalysis(id, 1); !errors.Is(err, ErrNoDescription) {
		t.Errorf("expected ErrNoDescription, got %v", err)
	}
	if _, err := store.ReserveAnalysis(id, 2); !errors.Is(err, ErrNotVerified) {
		t.Errorf("expected ErrNotVerified, got %v", err)
	}
	if _, err := store.ReserveAnalysis(id, 99); !errors.Is(err, ErrResultNotFound) {
		t.Errorf("expected ErrResultNotFound, got %v", err)
	}
}

func TestReserveAnalysisCap(t *testing.T) {
	store := New()

	results := make([]models.AnalysisResult, 0, 6)
	for i := 0; i < 6; i++ {
		results = append(results, verifiedResult(fmt.Sprintf("%d", i)))
	}
	id := newBatchWithResults(t, store, results...)

	for i := 0; i < 5; i++ {
		if _, err := store.ReserveAnalysis(id, i); err != nil {
			t.Fatalf("reservation %d failed: %v", i, err)
		}
	}

	if _, err := store.ReserveAnalysis(id, 5); !errors.Is(err, ErrAnalysisCapped) {
		t.Fatalf("expected ErrAnalysisCapped after 5 reservations, got %v", err)
	}

	// The cap never releases, even though no analysis was stored.
	if _, err := store.ReserveAnalysis(id, 5); !errors.Is(err, ErrAnalysisCapped) {
		t.Errorf("cap must hold for the batch lifetime, got %v", err)
	}
}

func TestSetAnalysisUpdatesInPlace(t *testing.T) {
	store := New()
	id := newBatchWithResults(t, store, verifiedResult("1"), verifiedResult("2"))

	analysis := models.ReviewAnalysis{Verdict: models.VerdictHigh, Reasoning: "근거"}
	if err := store.SetAnalysis(id, 1, analysis); err != nil {
		t.Fatalf("failed to set analysis: %v", err)
	}

	batch, _ := store.Get(id)
	if batch.Results[0].ReviewAnalysis != nil {
		t.Error("analysis attached to wrong result")
	}
	if batch.Results[1].ReviewAnalysis == nil || batch.Results[1].ReviewAnalysis.Verdict != models.VerdictHigh {
		t.Errorf("analysis not attached: %+v", batch.Results[1].ReviewAnalysis)
	}
}

func TestAlreadyAnalyzedRefused(t *testing.T) {
	store := New()
	id := newBatchWithResults(t, store, verifiedResult("1"))

	if _, err := store.ReserveAnalysis(id, 0); err != nil {
		t.Fatalf("first reservation failed: %v", err)
	}
	if err := store.SetAnalysis(id, 0, models.ReviewAnalysis{Verdict: models.VerdictLow, Reasoning: "근거"}); err != nil {
		t.Fatalf("failed to set analysis: %v", err)
	}

	if _, err := store.ReserveAnalysis(id, 0); !errors.Is(err, ErrAlreadyAnalyzed) {
		t.Errorf("expected ErrAlreadyAnalyzed, got %v", err)
	}
}

func TestSetReportsResetsResults(t *testing.T) {
	store := New()
	id := newBatchWithResults(t, store, verifiedResult("1"))

	reports := []models.BookReport{{StudentID: "9", BookTitle: "데미안", Author: "헤세", Review: "..."}}
	if err := store.SetReports(id, reports, nil); err != nil {
		t.Fatalf("failed to set reports: %v", err)
	}

	batch, _ := store.Get(id)
	if len(batch.Results) != 0 {
		t.Error("setting reports must reset previous results")
	}
	if len(batch.Reports) != 1 || batch.Reports[0].StudentID != "9" {
		t.Errorf("unexpected reports: %+v", batch.Reports)
	}
}
