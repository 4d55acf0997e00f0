package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/readornot/readornot/internal/naver"
	"github.com/readornot/readornot/internal/settings"
	"github.com/readornot/readornot/internal/storage"
	"github.com/readornot/readornot/internal/verify"
)

type Handler struct {
	batchStore *storage.BatchStore
	settings   settings.Settings
	runner     *verify.Runner
}

func New(s settings.Settings) *Handler {
	return &Handler{
		batchStore: storage.New(),
		settings:   s,
		runner:     verify.NewRunner(naver.NewClient(s.NaverClientID, s.NaverClientSecret)),
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// Batch helpers
func (h *Handler) getBatchOrError(w http.ResponseWriter, batchID string) (storage.Batch, bool) {
	batch, exists := h.batchStore.Get(batchID)
	if !exists {
		h.writeError(w, "Batch not found", http.StatusNotFound)
		return storage.Batch{}, false
	}
	return batch, true
}
