package drive

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

// Browser resolves folders and lists their files.
type Browser interface {
	ListFiles(ctx context.Context, folderID string) ([]*File, error)
	FindFolderByPath(ctx context.Context, path string) (string, error)
}

// Ingester loads a Drive file into the observation store.
type Ingester interface {
	IngestFile(ctx context.Context, fileID string) (int, error)
}

type Handler struct {
	browser  Browser
	ingester Ingester
}

func NewHandler(browser Browser, ingester Ingester) *Handler {
	return &Handler{
		browser:  browser,
		ingester: ingester,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/drive/files", h.ListFiles).Methods(http.MethodGet)
	router.HandleFunc("/api/drive/ingest", h.IngestFile).Methods(http.MethodPost)
}

func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	folderID := query.Get("folderId")

	if folderPath := query.Get("path"); folderPath != "" {
		var err error
		folderID, err = h.browser.FindFolderByPath(r.Context(), folderPath)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
	}

	files, err := h.browser.ListFiles(r.Context(), folderID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, files)
}

func (h *Handler) IngestFile(w http.ResponseWriter, r *http.Request) {
	fileID := r.URL.Query().Get("fileId")
	if fileID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "fileId parameter is required"})
		return
	}

	rows, err := h.ingester.IngestFile(r.Context(), fileID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "File ingested successfully",
		"rows":    rows,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMissingField):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": "drive request failed", "details": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
