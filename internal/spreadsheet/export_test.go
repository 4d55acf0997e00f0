package spreadsheet

import (
	"bytes"
	"testing"

	"github.com/parquet-go/parquet-go"

	"github.com/readornot/readornot/internal/models"
)

func sampleResults() []models.AnalysisResult {
	return []models.AnalysisResult{
		{
			Report: models.BookReport{StudentID: "20241001", BookTitle: "어린왕자", Author: "생텍쥐페리", Review: "..."},
			Verification: models.BookVerification{
				Found:         true,
				MatchedTitle:  "어린 왕자",
				MatchedAuthor: "앙투안 드 생텍쥐페리",
				Description:   "사막에 불시착한 조종사가 만난 소년의 이야기",
			},
			Status: models.StatusVerified,
		},
		{
			Report:       models.BookReport{StudentID: "20241002", BookTitle: "없는책", Author: "없는작가", Review: "..."},
			Verification: models.BookVerification{Found: false},
			Status:       models.StatusNotFound,
		},
	}
}

func TestWriteResultsRoundTrip(t *testing.T) {
	results := sampleResults()

	data, err := WriteResults(results)
	if err != nil {
		t.Fatalf("failed to write results: %v", err)
	}

	table, err := ReadTable(data, "결과.xlsx")
	if err != nil {
		t.Fatalf("failed to re-read exported file: %v", err)
	}

	if len(table.Rows) != len(results) {
		t.Fatalf("expected %d rows, got %d", len(results), len(table.Rows))
	}

	verified := table.Rows[0]
	if verified["매칭된 책 제목"] != "어린 왕자" {
		t.Errorf("matched title not preserved: %q", verified["매칭된 책 제목"])
	}
	if verified["매칭된 작가"] != "앙투안 드 생텍쥐페리" {
		t.Errorf("matched author not preserved: %q", verified["매칭된 작가"])
	}
	if verified["도서 존재 여부"] != "존재" {
		t.Errorf("existence flag mismatch: %q", verified["도서 존재 여부"])
	}

	notFound := table.Rows[1]
	if notFound["매칭된 책 제목"] != "-" {
		t.Errorf("missing match must render as dash, got %q", notFound["매칭된 책 제목"])
	}
	if notFound["도서 존재 여부"] != "미확인" {
		t.Errorf("existence flag mismatch: %q", notFound["도서 존재 여부"])
	}

	for _, header := range table.Headers {
		if header == "AI 판정" {
			t.Error("AI columns must be omitted when no result has an analysis")
		}
	}
}

func TestWriteResultsAppendsAnalysisColumns(t *testing.T) {
	results := sampleResults()
	results[0].ReviewAnalysis = &models.ReviewAnalysis{
		Verdict:   models.VerdictHigh,
		Reasoning: "구체적인 장면 묘사가 책 내용과 일치합니다.",
	}

	data, err := WriteResults(results)
	if err != nil {
		t.Fatalf("failed to write results: %v", err)
	}

	table, err := ReadTable(data, "결과.xlsx")
	if err != nil {
		t.Fatalf("failed to re-read exported file: %v", err)
	}

	if table.Rows[0]["AI 판정"] != "읽었을 가능성 높음" {
		t.Errorf("verdict label mismatch: %q", table.Rows[0]["AI 판정"])
	}
	if table.Rows[0]["AI 판단 근거"] == "" {
		t.Error("reasoning column must carry the analysis reasoning")
	}
	if got := table.Rows[1]["AI 판정"]; got != "" {
		t.Errorf("results without analysis must leave AI columns empty, got %q", got)
	}
}

func TestWriteResultsParquet(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteResultsParquet(&buf, sampleResults()); err != nil {
		t.Fatalf("failed to write parquet: %v", err)
	}

	rows, err := parquet.Read[exportRecord](bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("failed to read parquet back: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].MatchedTitle != "어린 왕자" || !rows[0].Found {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Status != string(models.StatusNotFound) {
		t.Errorf("unexpected status: %q", rows[1].Status)
	}
}
