package blob

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"shelfapi/internal/httpx"
)

type HTTPHandler struct {
	storage Storage
	logger  *slog.Logger
}

func NewHTTPHandler(storage Storage, logger *slog.Logger) *HTTPHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPHandler{storage: storage, logger: logger}
}

// Get handles GET /api/blob/{path...}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	obj, err := h.storage.Get(r.Context(), r.PathValue("path"))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidPath):
			httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Pathname is required", nil)
		case errors.Is(err, ErrNotFound):
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Blob not found", nil)
		default:
			h.logger.Error("blob read failed", "path", r.PathValue("path"), "error", err)
			httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		}
		return
	}

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	w.Header().Set("Cache-Control", "private, no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(obj.Data)
}
