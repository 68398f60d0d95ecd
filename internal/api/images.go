package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ncdash/internal/dashboard"
)

// ImageListResponse wraps catalogued images.
type ImageListResponse struct {
	Images []dashboard.ImageRecord `json:"images" validate:"required"`
}

// ImageHistory handles GET /api/datasets/{id}/images.
//
//	@Summary		List images generated for a dataset
//	@Tags			images
//	@Produce		json
//	@Param			id			path		string	true	"Dataset ID"
//	@Param			variable	query		string	false	"Limit to one variable"
//	@Success		200			{object}	ImageListResponse
//	@Security		BearerAuth
//	@Router			/datasets/{id}/images [get]
func (h *Handler) ImageHistory(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.ImageHistory(chi.URLParam(r, "id"), r.URL.Query().Get("variable"))
	if err != nil {
		writeError(w, "image history", err)
		return
	}
	writeJSON(w, http.StatusOK, ImageListResponse{Images: recs})
}

// SearchImages handles GET /api/images/search.
//
//	@Summary		Search generated images
//	@Tags			images
//	@Produce		json
//	@Param			q		query		string	true	"Matches dataset, variable or key"
//	@Param			limit	query		int		false	"Max results (default 20)"
//	@Success		200		{object}	ImageListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/images/search [get]
func (h *Handler) SearchImages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("q is required"))
		return
	}
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid limit"))
			return
		}
		limit = n
	}
	recs, err := h.svc.SearchImages(q, limit)
	if err != nil {
		writeError(w, "search images", err)
		return
	}
	writeJSON(w, http.StatusOK, ImageListResponse{Images: recs})
}
