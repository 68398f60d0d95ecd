package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ncdash/internal/models"
	"github.com/starford/ncdash/internal/store"
)

// Canvas handles GET /api/canvas.
//
//	@Summary		Canvas slice: view, nodes and edges
//	@Tags			canvas
//	@Produce		json
//	@Success		200	{object}	store.CanvasState
//	@Security		BearerAuth
//	@Router			/canvas [get]
func (h *Handler) Canvas(w http.ResponseWriter, r *http.Request) {
	var c store.CanvasState
	h.svc.Store().Read(func(st *store.State) { c = st.Canvas })
	writeJSON(w, http.StatusOK, c)
}

// UpdateCanvas handles PUT /api/canvas.
func (h *Handler) UpdateCanvas(w http.ResponseWriter, r *http.Request) {
	var req CanvasRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Width != 0 || req.Height != 0 {
		if err := h.svc.SetCanvasDimensions(req.Width, req.Height); err != nil {
			writeError(w, "update canvas", err)
			return
		}
	}
	if req.Scale != 0 {
		if err := h.svc.SetCanvasScale(req.Scale); err != nil {
			writeError(w, "update canvas", err)
			return
		}
	}
	if req.IsDragging != nil {
		h.svc.SetCanvasDragging(*req.IsDragging)
	}
	h.Canvas(w, r)
}

// AddNode handles POST /api/canvas/nodes.
//
//	@Summary		Add a variable or render node
//	@Tags			canvas
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.Node	true	"Node"
//	@Success		201		{object}	models.Node
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/canvas/nodes [post]
func (h *Handler) AddNode(w http.ResponseWriter, r *http.Request) {
	var req models.Node
	if !decodeJSON(w, r, &req) {
		return
	}
	n, err := h.graph.AddNode(req)
	if err != nil {
		writeError(w, "add node", err)
		return
	}
	if !h.sync(w) {
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// RemoveNode handles DELETE /api/canvas/nodes/{id}.
func (h *Handler) RemoveNode(w http.ResponseWriter, r *http.Request) {
	if err := h.graph.RemoveNode(chi.URLParam(r, "id")); err != nil {
		writeError(w, "remove node", err)
		return
	}
	if !h.sync(w) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Connect handles POST /api/canvas/edges.
//
//	@Summary		Connect two nodes
//	@Tags			canvas
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ConnectRequest	true	"Edge"
//	@Success		201		{object}	models.Edge
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/canvas/edges [post]
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	var req ConnectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, "connect", err)
		return
	}
	e, err := h.graph.Connect(req.Source, req.Target)
	if err != nil {
		writeError(w, "connect", err)
		return
	}
	if !h.sync(w) {
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// Disconnect handles DELETE /api/canvas/edges/{id}.
func (h *Handler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.graph.Disconnect(chi.URLParam(r, "id")); err != nil {
		writeError(w, "disconnect", err)
		return
	}
	if !h.sync(w) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Evaluate handles POST /api/canvas/evaluate.
//
//	@Summary		Render every render node in topological order
//	@Tags			canvas
//	@Produce		json
//	@Success		200	{object}	EvaluateResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/canvas/evaluate [post]
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	images, err := h.graph.Evaluate(r.Context(), h.svc)
	if images == nil {
		if err != nil {
			writeError(w, "evaluate", err)
			return
		}
		images = map[string]string{}
	}
	resp := EvaluateResponse{Images: images}
	if err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) sync(w http.ResponseWriter) bool {
	if err := h.graph.Sync(h.svc.Store()); err != nil {
		writeError(w, "sync canvas", err)
		return false
	}
	return true
}
