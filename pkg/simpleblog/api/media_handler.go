package api

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tendant/simple-blog/pkg/simpleblog"
)

// MediaHandler streams uploaded avatars and covers.
type MediaHandler struct {
	service simpleblog.Service
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(service simpleblog.Service) *MediaHandler {
	return &MediaHandler{service: service}
}

// Routes returns the media router
func (h *MediaHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/*", h.Download)
	return r
}

// Download handles GET /media/{key...}
func (h *MediaHandler) Download(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")

	reader, meta, err := h.service.DownloadMedia(r.Context(), key)
	if err != nil {
		renderServiceError(w, r, "Failed to download media", err)
		return
	}
	defer reader.Close()

	if meta.ContentType != "" {
		w.Header().Set("Content-Type", meta.ContentType)
	}
	if meta.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(meta.Size, 10))
	}
	if meta.ETag != "" {
		w.Header().Set("ETag", meta.ETag)
	}
	if !meta.UpdatedAt.IsZero() {
		w.Header().Set("Last-Modified", meta.UpdatedAt.UTC().Format(http.TimeFormat))
	}
	w.Header().Set("Cache-Control", "public, max-age=300")

	if _, err := io.Copy(w, reader); err != nil {
		slog.Error("Failed to stream media", "key", key, "error", err)
	}
}
