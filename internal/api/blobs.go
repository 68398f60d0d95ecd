package api

import (
	"bytes"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ncdash/internal/blobs"
)

// BlobHandler serves generated image bytes.
type BlobHandler struct {
	store blobs.Provider
}

// NewBlobHandler creates a handler over the blob store.
func NewBlobHandler(store blobs.Provider) *BlobHandler {
	return &BlobHandler{store: store}
}

// ServeBlob handles GET /blobs/{id}. Blob ids are content digests, so the
// response is immutable.
func (h *BlobHandler) ServeBlob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !blobs.ValidID(id) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid blob id"))
		return
	}
	data, err := h.store.Get(id)
	if err != nil {
		writeError(w, "serve blob", err)
		return
	}
	w.Header().Set("ETag", `"`+id+`"`)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("Content-Type", http.DetectContentType(data))
	http.ServeContent(w, r, id, time.Time{}, bytes.NewReader(data))
}
