package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/readornot/readornot/internal/models"
	"github.com/readornot/readornot/internal/spreadsheet"
)

func (h *Handler) HandleBatches(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.writeJSON(w, h.batchStore.List())
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleBatchDetail routes /api/batches/{id} and its subresources:
// mapping, verify, export and results/{index}/analyze.
func (h *Handler) HandleBatchDetail(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/batches/")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	batchID := parts[0]
	if batchID == "" {
		h.writeError(w, "Batch not found", http.StatusNotFound)
		return
	}

	switch {
	case len(parts) == 1:
		h.handleBatchGet(w, r, batchID)
	case len(parts) == 2 && parts[1] == "mapping":
		h.handleMapping(w, r, batchID)
	case len(parts) == 2 && parts[1] == "verify":
		h.handleVerify(w, r, batchID)
	case len(parts) == 2 && parts[1] == "export":
		h.handleExport(w, r, batchID)
	case len(parts) == 4 && parts[1] == "results" && parts[3] == "analyze":
		index, err := strconv.Atoi(parts[2])
		if err != nil {
			h.writeError(w, "Invalid result index", http.StatusBadRequest)
			return
		}
		h.handleAnalyze(w, r, batchID, index)
	default:
		h.writeError(w, "Not found", http.StatusNotFound)
	}
}

func (h *Handler) handleBatchGet(w http.ResponseWriter, r *http.Request, batchID string) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	batch, ok := h.getBatchOrError(w, batchID)
	if !ok {
		return
	}
	h.writeJSON(w, batch)
}

// handleMapping applies a user-confirmed column mapping to the batch's
// stored table.
func (h *Handler) handleMapping(w http.ResponseWriter, r *http.Request, batchID string) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Mapping models.ColumnMapping `json:"mapping"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	for _, field := range models.RequiredFields {
		if request.Mapping[field] == "" {
			h.writeError(w, "Incomplete mapping: missing "+string(field), http.StatusBadRequest)
			return
		}
	}

	batch, ok := h.getBatchOrError(w, batchID)
	if !ok {
		return
	}
	if batch.Table == nil {
		h.writeError(w, "Batch has no uploaded table", http.StatusConflict)
		return
	}

	result := spreadsheet.Extract(batch.Table, request.Mapping)
	if !result.Success {
		h.writeJSON(w, map[string]any{
			"success": false,
			"errors":  result.Errors,
		})
		return
	}

	if err := h.batchStore.SetReports(batchID, result.Reports, result.Errors); err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]any{
		"batch_id": batchID,
		"success":  true,
		"reports":  len(result.Reports),
		"errors":   result.Errors,
	})
}

// handleVerify runs the sequential verification batch. Results are appended
// to the store as they arrive, so a concurrent status poll sees progress.
func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request, batchID string) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.settings.ValidateSearch(); err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	batch, ok := h.getBatchOrError(w, batchID)
	if !ok {
		return
	}
	if len(batch.Reports) == 0 {
		h.writeError(w, "유효한 독후감 데이터가 필요합니다.", http.StatusBadRequest)
		return
	}

	if err := h.batchStore.ResetResults(batchID, len(batch.Reports)); err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	err := h.runner.Run(r.Context(), batch.Reports,
		func(result models.AnalysisResult) {
			if err := h.batchStore.AppendResult(batchID, result); err != nil {
				slog.Error("Failed to append result", "batch_id", batchID, "err", err)
			}
		},
		func(progress models.Progress) {
			if err := h.batchStore.SetProgress(batchID, progress); err != nil {
				slog.Error("Failed to update progress", "batch_id", batchID, "err", err)
			}
		},
	)
	if err != nil {
		h.writeError(w, "요청 처리 중 오류가 발생했습니다.", http.StatusInternalServerError)
		return
	}

	updated, ok := h.getBatchOrError(w, batchID)
	if !ok {
		return
	}
	h.writeJSON(w, map[string]any{
		"results":  updated.Results,
		"progress": updated.Progress,
	})
}
