// Package verify drives book verification across a batch of reports.
package verify

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/readornot/readornot/internal/models"
)

// requestInterval spaces verification calls so the search API's per-second
// budget is never exceeded.
const requestInterval = 100 * time.Millisecond

// genericErrorMessage is shown for a failed item; the underlying cause is
// logged, not displayed.
const genericErrorMessage = "검증 중 오류 발생"

// Verifier checks a single title/author pair against the book catalog
type Verifier interface {
	Verify(ctx context.Context, title, author string) (models.BookVerification, error)
}

// Runner processes verification batches strictly sequentially
type Runner struct {
	verifier Verifier
	limiter  *rate.Limiter
}

// NewRunner creates a batch runner around the given verifier
func NewRunner(verifier Verifier) *Runner {
	return &Runner{
		verifier: verifier,
		limiter:  rate.NewLimiter(rate.Every(requestInterval), 1),
	}
}

// Run verifies each report in order. Every outcome is handed to sink as soon
// as it is known and progress is reported after every item; a failed item
// becomes an error-status result and the batch continues. Run returns early
// only when the context is canceled.
func (r *Runner) Run(ctx context.Context, reports []models.BookReport, sink func(models.AnalysisResult), progress func(models.Progress)) error {
	total := len(reports)

	for i, report := range reports {
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}

		result := models.AnalysisResult{Report: report}

		verification, err := r.verifier.Verify(ctx, report.BookTitle, report.Author)
		switch {
		case err != nil:
			slog.Error("Book verification failed", "studentId", report.StudentID, "title", report.BookTitle, "err", err)
			result.Verification = models.BookVerification{Found: false}
			result.Status = models.StatusError
			result.ErrorMessage = genericErrorMessage
		case verification.Found:
			result.Verification = verification
			result.Status = models.StatusVerified
		default:
			result.Verification = verification
			result.Status = models.StatusNotFound
		}

		if sink != nil {
			sink(result)
		}
		if progress != nil {
			progress(models.Progress{Completed: i + 1, Total: total})
		}
	}

	return nil
}
