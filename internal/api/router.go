package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/state", h.State)

	// Datasets.
	r.Get("/datasets", h.ListDatasets)
	r.Post("/datasets/refresh", h.RefreshDatasets)
	r.Post("/datasets/{id}/info", h.DatasetInfo)
	r.Post("/datasets/{id}/latlon", h.LatLon)
	r.Put("/datasets/{id}/variables/{variable}", h.ToggleVariable)

	// Plots and transects.
	r.Post("/plots", h.GeneratePlot)
	r.Get("/plots/{variable}", h.Plot)
	r.Get("/plots/{variable}/map", h.PlotMap)
	r.Post("/plots/{variable}/map/drawing", h.StartDrawing)
	r.Delete("/plots/{variable}/map/drawing", h.StopDrawing)
	r.Post("/plots/{variable}/map/points", h.AddMapPoint)
	r.Put("/plots/{variable}/map/points/{index}", h.MoveMapPoint)
	r.Delete("/plots/{variable}/map/lines", h.ClearMapLines)
	r.Post("/transects", h.GenerateTransect)

	// Image catalog.
	r.Get("/datasets/{id}/images", h.ImageHistory)
	r.Get("/images/search", h.SearchImages)

	r.Post("/toasts", h.OpenToast)

	// Sessions.
	r.Get("/sessions", h.ListSessions)
	r.Post("/sessions", h.CreateSession)
	r.Put("/sessions/active", h.SetSession)

	// Pipeline canvas.
	r.Get("/canvas", h.Canvas)
	r.Put("/canvas", h.UpdateCanvas)
	r.Post("/canvas/nodes", h.AddNode)
	r.Delete("/canvas/nodes/{id}", h.RemoveNode)
	r.Post("/canvas/edges", h.Connect)
	r.Delete("/canvas/edges/{id}", h.Disconnect)
	r.Post("/canvas/evaluate", h.Evaluate)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
