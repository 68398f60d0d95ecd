package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ncdash/internal/apperr"
	"github.com/starford/ncdash/internal/dashboard"
	"github.com/starford/ncdash/internal/mapview"
)

// MapResponse is a plot map together with the last transect drawn on it.
type MapResponse struct {
	mapview.State
	Transect [][2]float64 `json:"transect,omitempty"`
}

// DrawRequest starts transect drawing on a plot map. Dataset defaults to the
// dataset of the plot.
type DrawRequest struct {
	Dataset     string `json:"dataset,omitempty"`
	DepthIndex  int    `json:"depth_index" example:"0"`
	TimeIndex   int    `json:"time_index" example:"0"`
	InvertYAxis bool   `json:"invert_y_axis"`
}

// Validate checks the indices.
func (r DrawRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DepthIndex, validation.Min(0)),
		validation.Field(&r.TimeIndex, validation.Min(0)),
	)
}

// PointRequest is a map click in map order (x = lon, y = lat).
type PointRequest struct {
	X float64 `json:"x" example:"-80"`
	Y float64 `json:"y" example:"10"`
}

// DrawResponse is the map after a point edit and, once the line is complete,
// the transect rendered from it.
type DrawResponse struct {
	Map      MapResponse   `json:"map"`
	Transect *PlotResponse `json:"transect,omitempty"`
}

type mapEntry struct {
	m       *mapview.Map
	dataset string
	draw    DrawRequest
	last    *mapview.Transect
}

// mapRegistry keeps one map per variable so drawn lines outlive a request.
type mapRegistry struct {
	mu   sync.Mutex
	maps map[string]*mapEntry
}

func newMapRegistry() *mapRegistry {
	return &mapRegistry{maps: make(map[string]*mapEntry)}
}

// show returns the map of variable displaying ref. A new image replaces the
// source of the existing map; another dataset starts a new map.
func (reg *mapRegistry) show(variable, dataset, ref string, lat, lon []float64) (*mapEntry, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	e, ok := reg.maps[variable]
	if !ok || e.dataset != dataset {
		m, err := mapview.New(ref, lat, lon)
		if err != nil {
			return nil, err
		}
		e = &mapEntry{m: m, dataset: dataset}
		reg.maps[variable] = e
		return e, nil
	}
	if e.m.Image().URL != ref {
		if err := e.m.SetImage(ref, lat, lon); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (reg *mapRegistry) get(variable string) (*mapEntry, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	e, ok := reg.maps[variable]
	if !ok {
		return nil, fmt.Errorf("map of %s not opened: %w", variable, apperr.ErrNotFound)
	}
	return e, nil
}

func (reg *mapRegistry) response(e *mapEntry) MapResponse {
	resp := MapResponse{State: e.m.State()}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if e.last != nil {
		resp.Transect = e.last.Points()
	}
	return resp
}

// StartDrawing handles POST /api/plots/{variable}/map/drawing.
//
//	@Summary		Start drawing a transect line on the plot map
//	@Tags			plots
//	@Accept			json
//	@Produce		json
//	@Param			variable	path		string		true	"Variable name"
//	@Param			body		body		DrawRequest	true	"Transect indices"
//	@Success		200			{object}	MapResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/plots/{variable}/map/drawing [post]
func (h *Handler) StartDrawing(w http.ResponseWriter, r *http.Request) {
	e, err := h.maps.get(chi.URLParam(r, "variable"))
	if err != nil {
		writeError(w, "start drawing", err)
		return
	}
	var req DrawRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, "start drawing", err)
		return
	}

	h.maps.mu.Lock()
	if req.Dataset == "" {
		req.Dataset = e.dataset
	}
	e.draw = req
	e.last = nil
	h.maps.mu.Unlock()

	e.m.EnableDrawing(func(t mapview.Transect) {
		h.maps.mu.Lock()
		defer h.maps.mu.Unlock()
		e.last = &t
	})
	writeJSON(w, http.StatusOK, h.maps.response(e))
}

// StopDrawing handles DELETE /api/plots/{variable}/map/drawing. Drawn lines
// stay on the map.
//
//	@Summary		Stop drawing on the plot map
//	@Tags			plots
//	@Produce		json
//	@Param			variable	path		string	true	"Variable name"
//	@Success		200			{object}	MapResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/plots/{variable}/map/drawing [delete]
func (h *Handler) StopDrawing(w http.ResponseWriter, r *http.Request) {
	e, err := h.maps.get(chi.URLParam(r, "variable"))
	if err != nil {
		writeError(w, "stop drawing", err)
		return
	}
	e.m.DisableDrawing()
	writeJSON(w, http.StatusOK, h.maps.response(e))
}

// AddMapPoint handles POST /api/plots/{variable}/map/points. The second point
// completes the line and renders its transect.
//
//	@Summary		Add a vertex to the transect line
//	@Tags			plots
//	@Accept			json
//	@Produce		json
//	@Param			variable	path		string			true	"Variable name"
//	@Param			body		body		PointRequest	true	"Map point"
//	@Success		200			{object}	DrawResponse
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		502			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/plots/{variable}/map/points [post]
func (h *Handler) AddMapPoint(w http.ResponseWriter, r *http.Request) {
	variable := chi.URLParam(r, "variable")
	e, err := h.maps.get(variable)
	if err != nil {
		writeError(w, "add map point", err)
		return
	}
	var req PointRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := e.m.AddPoint(req.X, req.Y)
	if err != nil {
		writeError(w, "add map point", err)
		return
	}
	h.writeDrawn(r.Context(), w, variable, e, t)
}

// MoveMapPoint handles PUT /api/plots/{variable}/map/points/{index}.
//
//	@Summary		Move a vertex of the drawn line and re-render its transect
//	@Tags			plots
//	@Accept			json
//	@Produce		json
//	@Param			variable	path		string			true	"Variable name"
//	@Param			index		path		int				true	"Vertex index (0 or 1)"
//	@Param			body		body		PointRequest	true	"Map point"
//	@Success		200			{object}	DrawResponse
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		502			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/plots/{variable}/map/points/{index} [put]
func (h *Handler) MoveMapPoint(w http.ResponseWriter, r *http.Request) {
	variable := chi.URLParam(r, "variable")
	e, err := h.maps.get(variable)
	if err != nil {
		writeError(w, "move map point", err)
		return
	}
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid vertex index"))
		return
	}
	var req PointRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := e.m.ModifyPoint(i, req.X, req.Y)
	if err != nil {
		writeError(w, "move map point", err)
		return
	}
	h.writeDrawn(r.Context(), w, variable, e, t)
}

// ClearMapLines handles DELETE /api/plots/{variable}/map/lines.
//
//	@Summary		Remove the drawn lines from the plot map
//	@Tags			plots
//	@Param			variable	path	string	true	"Variable name"
//	@Success		204			"Cleared"
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/plots/{variable}/map/lines [delete]
func (h *Handler) ClearMapLines(w http.ResponseWriter, r *http.Request) {
	e, err := h.maps.get(chi.URLParam(r, "variable"))
	if err != nil {
		writeError(w, "clear map lines", err)
		return
	}
	e.m.Clear()
	h.maps.mu.Lock()
	e.last = nil
	h.maps.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// writeDrawn renders the transect of a completed line, if any, and writes the
// map.
func (h *Handler) writeDrawn(ctx context.Context, w http.ResponseWriter, variable string, e *mapEntry, t *mapview.Transect) {
	resp := DrawResponse{}
	if t != nil {
		h.maps.mu.Lock()
		draw := e.draw
		h.maps.mu.Unlock()
		res, err := h.svc.GenerateTransect(ctx, dashboard.TransectParams{
			Dataset:     draw.Dataset,
			Variable:    variable,
			Points:      t.Points(),
			DepthIndex:  draw.DepthIndex,
			TimeIndex:   draw.TimeIndex,
			InvertYAxis: draw.InvertYAxis,
		})
		if err != nil {
			writeError(w, "generate transect", err)
			return
		}
		resp.Transect = res
	}
	resp.Map = h.maps.response(e)
	writeJSON(w, http.StatusOK, resp)
}
