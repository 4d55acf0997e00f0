package handlers

import (
	"io"
	"net/http"

	"github.com/readornot/readornot/internal/spreadsheet"
)

// maxUploadSize caps uploaded spreadsheets at 10MB.
const maxUploadSize = 10 * 1024 * 1024

func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	file, header, err := r.FormFile("files")
	if err != nil {
		file, header, err = r.FormFile("file")
		if err != nil {
			h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	defer file.Close()

	if !spreadsheet.IsSupported(header.Filename) {
		h.writeError(w, "지원하지 않는 파일 형식입니다. csv, xls, xlsx 파일만 업로드할 수 있습니다.", http.StatusBadRequest)
		return
	}

	fileData, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if len(fileData) >= maxUploadSize {
		h.writeError(w, "File too large (max 10MB)", http.StatusBadRequest)
		return
	}

	table, err := spreadsheet.ReadTable(fileData, header.Filename)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	mapping, missing := spreadsheet.AutoMap(table.Headers)
	if len(missing) > 0 {
		// Keep the table around so the confirmed mapping can extract
		// without a second upload.
		batch := h.batchStore.Create(header.Filename, table, nil, nil)
		h.writeJSON(w, map[string]any{
			"batch_id":         batch.ID,
			"needs_mapping":    true,
			"detected_headers": table.Headers,
			"missing_fields":   missing,
			"partial_mapping":  mapping,
		})
		return
	}

	result := spreadsheet.Extract(table, mapping)
	if !result.Success {
		h.writeJSON(w, map[string]any{
			"success": false,
			"errors":  result.Errors,
		})
		return
	}

	batch := h.batchStore.Create(header.Filename, table, result.Reports, result.Errors)
	h.writeJSON(w, map[string]any{
		"batch_id": batch.ID,
		"success":  true,
		"reports":  len(result.Reports),
		"errors":   result.Errors,
	})
}
