// Package media streams uploaded image assets kept by the local store.
package media

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/georgemunganga/accessories-admin/internal/platform/docstore"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	assets docstore.AssetReader
	log    *zap.Logger
}

func NewHandler(assets docstore.AssetReader, log *zap.Logger) *Handler {
	return &Handler{assets: assets, log: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/assets/{id}", h.serveAsset)
}

func (h *Handler) serveAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	asset, body, err := h.assets.OpenAsset(r.Context(), id)
	if errors.Is(err, docstore.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.log.Error("open asset", zap.String("id", id), zap.Error(err))
		http.Error(w, "asset unavailable", http.StatusInternalServerError)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", asset.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(asset.Size, 10))
	w.Header().Set("Cache-Control", "private, max-age=86400, immutable")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, err := io.Copy(w, body); err != nil {
		h.log.Warn("stream asset", zap.String("id", id), zap.Error(err))
	}
}
