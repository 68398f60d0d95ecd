package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ncdash/internal/apperr"
	"github.com/starford/ncdash/internal/dashboard"
	"github.com/starford/ncdash/internal/mapview"
	"github.com/starford/ncdash/internal/pipeline"
	"github.com/starford/ncdash/internal/store"
)

// Handler holds API route handlers.
type Handler struct {
	svc   *dashboard.Service
	graph *pipeline.Graph
	maps  *mapRegistry
}

// NewHandler creates a new Handler. A nil graph starts an empty canvas.
func NewHandler(svc *dashboard.Service, graph *pipeline.Graph) *Handler {
	if graph == nil {
		graph = pipeline.New()
	}
	return &Handler{svc: svc, graph: graph, maps: newMapRegistry()}
}

// State handles GET /api/state.
//
//	@Summary		Full store snapshot
//	@Tags			state
//	@Produce		json
//	@Success		200	{object}	store.State
//	@Security		BearerAuth
//	@Router			/state [get]
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Store().Snapshot())
}

// ListDatasets handles GET /api/datasets.
//
//	@Summary		Dataset list held in state
//	@Tags			datasets
//	@Produce		json
//	@Success		200	{object}	DatasetListResponse
//	@Security		BearerAuth
//	@Router			/datasets [get]
func (h *Handler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, DatasetListResponse{Datasets: h.svc.Datasets()})
}

// RefreshDatasets handles POST /api/datasets/refresh.
//
//	@Summary		Fetch the dataset list from the backend
//	@Tags			datasets
//	@Produce		json
//	@Success		200	{object}	DatasetListResponse
//	@Failure		502	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/datasets/refresh [post]
func (h *Handler) RefreshDatasets(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.FetchDataSets(r.Context())
	if err != nil {
		writeError(w, "fetch datasets", err)
		return
	}
	writeJSON(w, http.StatusOK, DatasetListResponse{Datasets: list})
}

// DatasetInfo handles POST /api/datasets/{id}/info.
//
//	@Summary		Fetch dataset dimensions and variables
//	@Tags			datasets
//	@Produce		json
//	@Param			id	path		string	true	"Dataset id"
//	@Success		200	{object}	models.DatasetInfo
//	@Failure		404	{object}	errResponse
//	@Failure		502	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/datasets/{id}/info [post]
func (h *Handler) DatasetInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.FetchDatasetInfo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "fetch dataset info", err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// LatLon handles POST /api/datasets/{id}/latlon.
//
//	@Summary		Fetch dataset coordinates
//	@Tags			datasets
//	@Produce		json
//	@Param			id	path		string	true	"Dataset id"
//	@Success		200	{object}	models.LatLon
//	@Failure		502	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/datasets/{id}/latlon [post]
func (h *Handler) LatLon(w http.ResponseWriter, r *http.Request) {
	ll, err := h.svc.GetLatLon(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "fetch lat lon", err)
		return
	}
	writeJSON(w, http.StatusOK, ll)
}

// ToggleVariable handles PUT /api/datasets/{id}/variables/{variable}.
//
//	@Summary		Check or uncheck a variable
//	@Tags			datasets
//	@Accept			json
//	@Param			id			path	string					true	"Dataset id"
//	@Param			variable	path	string					true	"Variable name"
//	@Param			body		body	ToggleVariableRequest	true	"Checked flag"
//	@Success		204			"Variable updated"
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/datasets/{id}/variables/{variable} [put]
func (h *Handler) ToggleVariable(w http.ResponseWriter, r *http.Request) {
	var req ToggleVariableRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	err := h.svc.ToggleVariable(chi.URLParam(r, "id"), chi.URLParam(r, "variable"), req.Checked)
	if err != nil {
		writeError(w, "toggle variable", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GeneratePlot handles POST /api/plots.
//
//	@Summary		Generate (or reuse) a plot image
//	@Tags			plots
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PlotRequest	true	"Image selection"
//	@Success		200		{object}	PlotResponse
//	@Failure		400		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/plots [post]
func (h *Handler) GeneratePlot(w http.ResponseWriter, r *http.Request) {
	var req PlotRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.GeneratePlot(r.Context(), req)
	if err != nil {
		writeError(w, "generate plot", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Plot handles GET /api/plots/{variable}.
//
//	@Summary		Plot state of a variable
//	@Tags			plots
//	@Produce		json
//	@Param			variable	path		string	true	"Variable name"
//	@Success		200			{object}	models.Plot
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/plots/{variable} [get]
func (h *Handler) Plot(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Plot(chi.URLParam(r, "variable"))
	if err != nil {
		writeError(w, "get plot", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// PlotMap handles GET /api/plots/{variable}/map?key=...
//
//	@Summary		Map view of one plot image over the dataset extent
//	@Tags			plots
//	@Produce		json
//	@Param			variable	path		string	true	"Variable name"
//	@Param			key			query		string	true	"Image key"
//	@Success		200			{object}	MapResponse
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/plots/{variable}/map [get]
func (h *Handler) PlotMap(w http.ResponseWriter, r *http.Request) {
	variable := chi.URLParam(r, "variable")
	key := r.URL.Query().Get("key")
	if key == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'key' is required"))
		return
	}

	var (
		ref, dataset string
		lat, lon     []float64
	)
	h.svc.Store().Read(func(st *store.State) {
		if p, ok := st.Plots[variable]; ok {
			ref, dataset = p.Images[key], p.Dataset
		}
		lat, lon = st.Data.Lat, st.Data.Lon
	})
	if ref == "" {
		writeError(w, "plot map", fmt.Errorf("image %s/%s: %w", variable, key, apperr.ErrImageNotFound))
		return
	}
	latPair, lonPair, err := mapview.ExtentFromCoords(lat, lon)
	if err != nil {
		writeError(w, "plot map", err)
		return
	}
	e, err := h.maps.show(variable, dataset, ref, latPair, lonPair)
	if err != nil {
		writeError(w, "plot map", err)
		return
	}
	writeJSON(w, http.StatusOK, h.maps.response(e))
}

// GenerateTransect handles POST /api/transects.
//
//	@Summary		Generate a transect image between two points
//	@Tags			plots
//	@Accept			json
//	@Produce		json
//	@Param			body	body		TransectRequest	true	"Transect"
//	@Success		200		{object}	PlotResponse
//	@Failure		400		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/transects [post]
func (h *Handler) GenerateTransect(w http.ResponseWriter, r *http.Request) {
	var req TransectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	points := req.Points
	if len(points) == 0 && len(req.Line) > 0 {
		if len(req.Line) != 2 {
			writeJSON(w, http.StatusBadRequest, errorBody("line needs exactly two points"))
			return
		}
		points = mapview.ToTransect(mapview.FromXY(req.Line)).Points()
	}
	res, err := h.svc.GenerateTransect(r.Context(), dashboard.TransectParams{
		Dataset:     req.Dataset,
		Variable:    req.Variable,
		Points:      points,
		DepthIndex:  req.DepthIndex,
		TimeIndex:   req.TimeIndex,
		InvertYAxis: req.InvertYAxis,
	})
	if err != nil {
		writeError(w, "generate transect", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// OpenToast handles POST /api/toasts.
//
//	@Summary		Show a toast notification
//	@Tags			toast
//	@Accept			json
//	@Param			body	body	ToastRequest	true	"Toast"
//	@Success		202		"Toast shown"
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/toasts [post]
func (h *Handler) OpenToast(w http.ResponseWriter, r *http.Request) {
	var req ToastRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, "open toast", err)
		return
	}
	d := time.Duration(req.DurationMS) * time.Millisecond
	if err := h.svc.OpenToast(req.Message, req.Type, d); err != nil {
		writeError(w, "open toast", err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// ListSessions handles GET /api/sessions.
//
//	@Summary		List backend sessions
//	@Tags			sessions
//	@Produce		json
//	@Success		200	{object}	SessionListResponse
//	@Failure		502	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions [get]
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListSessions(r.Context())
	if err != nil {
		writeError(w, "list sessions", err)
		return
	}
	var active string
	h.svc.Store().Read(func(st *store.State) { active = st.Sessions.ActiveID })
	writeJSON(w, http.StatusOK, SessionListResponse{Sessions: list, ActiveID: active})
}

// CreateSession handles POST /api/sessions.
//
//	@Summary		Create a session on a dataset
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateSessionRequest	true	"Session"
//	@Success		201		{object}	models.Session
//	@Failure		400		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions [post]
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess, err := h.svc.CreateSession(r.Context(), req.DatasetID, req.ParentID)
	if err != nil {
		writeError(w, "create session", err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// SetSession handles PUT /api/sessions/active.
//
//	@Summary		Select the active session
//	@Tags			sessions
//	@Accept			json
//	@Param			body	body	SetSessionRequest	true	"Session id"
//	@Success		204		"Session selected"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/active [put]
func (h *Handler) SetSession(w http.ResponseWriter, r *http.Request) {
	var req SetSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.SetSession(req.ID); err != nil {
		writeError(w, "set session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
