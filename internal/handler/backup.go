package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pavelanni/neatrack/internal/model"
)

// maxUploadSize bounds restore uploads. Backups are a few megabytes at
// most for a realistic class size.
const maxUploadSize = 32 << 20

// handleDownloadBackup streams a full-namespace snapshot as a
// date-stamped download.
func (h *Handler) handleDownloadBackup(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.backups.Filename()))
	if err := h.backups.Create(w); err != nil {
		slog.Error("backup download failed", "error", err)
		http.Error(w, "backup failed", http.StatusInternalServerError)
	}
}

// handleRestore loads an uploaded backup file of either format.
func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "invalid upload", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("backup")
	if err != nil {
		http.Error(w, "backup file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if err := h.backups.Restore(file); err != nil {
		slog.Warn("restore rejected", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]bool{"restored": true})
}

// handleExport returns the structured app-data document.
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.backups.AppData())
}

// handleImport merges a structured app-data document into the store.
// The appName guard makes a foreign document a hard 400.
func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	var patch model.AppDataPatch
	if !h.decodeJSON(w, r, &patch) {
		return
	}
	if !h.backups.RestoreAppData(patch) {
		http.Error(w, "import rejected", http.StatusBadRequest)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]bool{"imported": true})
}
