package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/readornot/readornot/internal/spreadsheet"
)

// handleExport streams the batch's result set as an xlsx download.
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request, batchID string) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	batch, ok := h.getBatchOrError(w, batchID)
	if !ok {
		return
	}
	if len(batch.Results) == 0 {
		h.writeError(w, "내보낼 결과가 없습니다.", http.StatusConflict)
		return
	}

	data, err := spreadsheet.WriteResults(batch.Results)
	if err != nil {
		h.writeError(w, "Failed to build export file: "+err.Error(), http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("독후감_검증결과_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename*=UTF-8''%s`, url.PathEscape(filename)))
	if _, err := w.Write(data); err != nil {
		h.writeError(w, "Failed to write export file: "+err.Error(), http.StatusInternalServerError)
	}
}
