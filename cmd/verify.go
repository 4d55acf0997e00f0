package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/readornot/readornot/internal/analysis"
	"github.com/readornot/readornot/internal/models"
	"github.com/readornot/readornot/internal/naver"
	"github.com/readornot/readornot/internal/settings"
	"github.com/readornot/readornot/internal/spreadsheet"
	"github.com/readornot/readornot/internal/verify"
)

// maxCLIAnalyses caps how many reviews one run may send to the AI provider,
// matching the per-batch analysis budget of the server.
const maxCLIAnalyses = 5

func newVerifyCmd() *cobra.Command {
	var (
		output  string
		format  string
		analyze bool
	)

	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "Verify a spreadsheet of book reports against the Naver catalog",
		Long: `Reads a csv/xls/xlsx file of student book reports, verifies every
title/author pair against the Naver book search API and writes the
results to a file.

Column headers are mapped automatically from common alias spellings
(학번/번호/id, 책제목/제목/title, 작가/저자/author, 감상문/독후감/review).`,
		Example: `  # Verify reports and write 결과.xlsx
  readornot verify 독후감.xlsx --output 결과.xlsx

  # Include AI review analysis for the first verified reports
  readornot verify 독후감.xlsx --analyze

  # Columnar output for downstream analysis
  readornot verify 독후감.xlsx --output results.parquet --format parquet`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveSettings()
			if err != nil {
				return err
			}
			if err := cfg.ValidateSearch(); err != nil {
				return err
			}

			results, err := runVerification(cmd, args[0], cfg)
			if err != nil {
				return err
			}

			if analyze {
				if err := cfg.ValidateAI(); err != nil {
					return err
				}
				analyzeResults(cmd, results, cfg)
			}

			return writeOutput(results, output, format)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "결과.xlsx", "Output file path")
	cmd.Flags().StringVarP(&format, "format", "f", "xlsx", "Output format (xlsx or parquet)")
	cmd.Flags().BoolVar(&analyze, "analyze", false, "Run AI review analysis on verified reports (max 5)")

	return cmd
}

func runVerification(cmd *cobra.Command, path string, cfg settings.Settings) ([]models.AnalysisResult, error) {
	if !spreadsheet.IsSupported(path) {
		return nil, fmt.Errorf("지원하지 않는 파일 형식입니다: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	parsed := spreadsheet.Parse(data, path)
	if parsed.NeedsMapping {
		return nil, fmt.Errorf("헤더를 자동으로 인식하지 못했습니다 (누락: %v, 감지된 헤더: %v)",
			parsed.MissingFields, parsed.DetectedHeaders)
	}
	if !parsed.Success {
		if len(parsed.Errors) > 0 {
			return nil, errors.New(strings.Join(parsed.Errors, "; "))
		}
		return nil, errors.New("데이터가 없습니다. 파일에 내용이 있는지 확인해주세요.")
	}
	for _, rowErr := range parsed.Errors {
		slog.Warn("Skipping row", "reason", rowErr)
	}

	slog.Info("Verifying book reports", "file", path, "reports", len(parsed.Reports))

	runner := verify.NewRunner(naver.NewClient(cfg.NaverClientID, cfg.NaverClientSecret))

	var results []models.AnalysisResult
	err = runner.Run(cmd.Context(), parsed.Reports,
		func(result models.AnalysisResult) {
			results = append(results, result)
			slog.Info("Verified report",
				"studentId", result.Report.StudentID,
				"title", result.Report.BookTitle,
				"status", result.Status)
		},
		func(progress models.Progress) {
			slog.Info("Progress", "completed", progress.Completed, "total", progress.Total)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("verification interrupted: %w", err)
	}

	return results, nil
}

// analyzeResults runs the AI analysis over verified results until the budget
// is spent. A failed analysis is logged and skipped; it still consumes budget.
func analyzeResults(cmd *cobra.Command, results []models.AnalysisResult, cfg settings.Settings) {
	service, err := analysis.NewServiceFromSettings(cfg)
	if err != nil {
		slog.Error("Failed to configure AI provider", "err", err)
		return
	}

	analyzed := 0
	for i := range results {
		if analyzed >= maxCLIAnalyses {
			slog.Warn("Analysis budget reached", "max", maxCLIAnalyses)
			break
		}
		result := &results[i]
		if result.Status != models.StatusVerified || result.Verification.Description == "" {
			continue
		}

		analyzed++
		reviewAnalysis, err := service.AnalyzeReview(cmd.Context(),
			result.Report.BookTitle,
			result.Report.Author,
			result.Report.Review,
			result.Verification.Description,
		)
		if err != nil {
			slog.Error("Review analysis failed", "studentId", result.Report.StudentID, "err", err)
			continue
		}
		result.ReviewAnalysis = &reviewAnalysis
		slog.Info("Analyzed review",
			"studentId", result.Report.StudentID,
			"verdict", reviewAnalysis.Verdict)
	}
}

func writeOutput(results []models.AnalysisResult, output, format string) error {
	switch strings.ToLower(format) {
	case "xlsx":
		data, err := spreadsheet.WriteResults(results)
		if err != nil {
			return fmt.Errorf("failed to build result file: %w", err)
		}
		if err := os.WriteFile(output, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}
	case "parquet":
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", output, err)
		}
		defer f.Close()
		if err := spreadsheet.WriteResultsParquet(f, results); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}
	default:
		return fmt.Errorf("unsupported output format: %s (supported: xlsx, parquet)", format)
	}

	slog.Info("Results written", "output", output, "results", len(results))
	return nil
}
