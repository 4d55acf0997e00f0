package spreadsheet

import (
	"bytes"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"

	"github.com/readornot/readornot/internal/models"
)

const resultSheetName = "검증결과"

var resultHeaders = []string{"학번", "입력한 책 제목", "입력한 작가", "매칭된 책 제목", "매칭된 작가", "도서 존재 여부"}
var analysisHeaders = []string{"AI 판정", "AI 판단 근거"}

var resultColumnWidths = []float64{10, 25, 15, 30, 15, 12}
var analysisColumnWidths = []float64{18, 50}

var verdictLabels = map[models.Verdict]string{
	models.VerdictHigh:   "읽었을 가능성 높음",
	models.VerdictMedium: "판단 어려움",
	models.VerdictLow:    "읽었을 가능성 낮음",
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func resultRow(r models.AnalysisResult, withAnalysis bool) []interface{} {
	existence := "미확인"
	if r.Verification.Found {
		existence = "존재"
	}

	row := []interface{}{
		r.Report.StudentID,
		r.Report.BookTitle,
		r.Report.Author,
		orDash(r.Verification.MatchedTitle),
		orDash(r.Verification.MatchedAuthor),
		existence,
	}

	if withAnalysis {
		verdict, reasoning := "", ""
		if r.ReviewAnalysis != nil {
			verdict = verdictLabels[r.ReviewAnalysis.Verdict]
			reasoning = r.ReviewAnalysis.Reasoning
		}
		row = append(row, verdict, reasoning)
	}
	return row
}

// WriteResults renders the result set as an xlsx workbook. The AI columns are
// appended only when at least one result carries an analysis.
func WriteResults(results []models.AnalysisResult) ([]byte, error) {
	withAnalysis := false
	for _, r := range results {
		if r.ReviewAnalysis != nil {
			withAnalysis = true
			break
		}
	}

	headers := resultHeaders
	widths := resultColumnWidths
	if withAnalysis {
		headers = append(append([]string{}, resultHeaders...), analysisHeaders...)
		widths = append(append([]float64{}, resultColumnWidths...), analysisColumnWidths...)
	}

	rows := make([][]interface{}, 0, len(results))
	for _, r := range results {
		rows = append(rows, resultRow(r, withAnalysis))
	}

	return writeWorkbook(resultSheetName, headers, widths, rows)
}

// WriteTemplate renders the upload template workbook with sample rows.
func WriteTemplate() ([]byte, error) {
	headers := []string{"학번", "책제목", "작가", "감상문"}
	widths := []float64{12, 25, 15, 50}
	rows := [][]interface{}{
		{"20241001", "어린왕자", "생텍쥐페리", "어린왕자를 읽고 느낀 점..."},
		{"20241002", "해리포터와 마법사의 돌", "J.K. 롤링", "해리포터를 읽고..."},
	}

	return writeWorkbook("독후감", headers, widths, rows)
}

func writeWorkbook(sheet string, headers []string, widths []float64, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to compute column name: %w", err)
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// exportRecord is the flat row shape used for columnar export.
type exportRecord struct {
	StudentID     string `parquet:"student_id"`
	InputTitle    string `parquet:"input_title"`
	InputAuthor   string `parquet:"input_author"`
	MatchedTitle  string `parquet:"matched_title"`
	MatchedAuthor string `parquet:"matched_author"`
	Found         bool   `parquet:"found"`
	Status        string `parquet:"status"`
	Verdict       string `parquet:"verdict"`
	Reasoning     string `parquet:"reasoning"`
}

// WriteResultsParquet writes the result set as a parquet file.
func WriteResultsParquet(w io.Writer, results []models.AnalysisResult) error {
	records := make([]exportRecord, 0, len(results))
	for _, r := range results {
		record := exportRecord{
			StudentID:     r.Report.StudentID,
			InputTitle:    r.Report.BookTitle,
			InputAuthor:   r.Report.Author,
			MatchedTitle:  r.Verification.MatchedTitle,
			MatchedAuthor: r.Verification.MatchedAuthor,
			Found:         r.Verification.Found,
			Status:        string(r.Status),
		}
		if r.ReviewAnalysis != nil {
			record.Verdict = string(r.ReviewAnalysis.Verdict)
			record.Reasoning = r.ReviewAnalysis.Reasoning
		}
		records = append(records, record)
	}

	writer := parquet.NewGenericWriter[exportRecord](w)
	if _, err := writer.Write(records); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
