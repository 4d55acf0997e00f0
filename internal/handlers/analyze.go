package handlers

import (
	"errors"
	"net/http"

	"github.com/readornot/readornot/internal/analysis"
	"github.com/readornot/readornot/internal/storage"
)

// handleAnalyze runs the AI review analysis for a single verified result.
// The store reserves an analysis slot first, so the cap and the
// verified/description preconditions are checked before any network call.
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request, batchID string, index int) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	service, err := analysis.NewServiceFromSettings(h.settings)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	result, err := h.batchStore.ReserveAnalysis(batchID, index)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrBatchNotFound), errors.Is(err, storage.ErrResultNotFound):
			h.writeError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, storage.ErrAnalysisCapped):
			h.writeError(w, err.Error(), http.StatusTooManyRequests)
		default:
			h.writeError(w, err.Error(), http.StatusConflict)
		}
		return
	}

	reviewAnalysis, err := service.AnalyzeReview(r.Context(),
		result.Report.BookTitle,
		result.Report.Author,
		result.Report.Review,
		result.Verification.Description,
	)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, analysis.ErrRateLimited) {
			status = http.StatusTooManyRequests
		}
		h.writeError(w, err.Error(), status)
		return
	}

	if err := h.batchStore.SetAnalysis(batchID, index, reviewAnalysis); err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, reviewAnalysis)
}
