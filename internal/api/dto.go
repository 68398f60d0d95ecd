package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ncdash/internal/dashboard"
	"github.com/starford/ncdash/internal/models"
)

// PlotRequest is the request body for generating a plot (aliased from the domain layer).
type PlotRequest = dashboard.PlotParams

// PlotResponse is returned after a plot or transect was generated.
type PlotResponse = dashboard.PlotResult

// TransectRequest is the request body for generating a transect. Points are
// [lat, lon] pairs; Line, when set instead, holds the two drawn map points in
// [lon, lat] order.
type TransectRequest struct {
	Dataset     string       `json:"dataset" example:"ocean_01" validate:"required"`
	Variable    string       `json:"variable" example:"water_temp" validate:"required"`
	Points      [][2]float64 `json:"points,omitempty"`
	Line        [][2]float64 `json:"line,omitempty"`
	DepthIndex  int          `json:"depth_index" example:"0"`
	TimeIndex   int          `json:"time_index" example:"0"`
	InvertYAxis bool         `json:"invert_y_axis"`
}

// ToggleVariableRequest is the request body for checking a variable.
type ToggleVariableRequest struct {
	Checked bool `json:"checked"`
}

// ToastRequest is the request body for showing a toast.
type ToastRequest struct {
	Message    string           `json:"message" example:"Saved" validate:"required"`
	Type       models.ToastType `json:"type,omitempty" example:"info"`
	DurationMS int              `json:"duration_ms,omitempty" example:"3000"`
}

// Validate checks the toast request.
func (r ToastRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Message, validation.Required),
		validation.Field(&r.DurationMS, validation.Min(0)),
	)
}

// CreateSessionRequest is the request body for creating a session.
type CreateSessionRequest struct {
	DatasetID string `json:"dataset_id" example:"ocean_01" validate:"required"`
	ParentID  string `json:"parent_id,omitempty" example:"s1"`
}

// SetSessionRequest selects the active session.
type SetSessionRequest struct {
	ID string `json:"id" example:"s1" validate:"required"`
}

// CanvasRequest updates the canvas view. Zero fields are left unchanged.
type CanvasRequest struct {
	Width      int     `json:"width,omitempty" example:"800"`
	Height     int     `json:"height,omitempty" example:"600"`
	Scale      float64 `json:"scale,omitempty" example:"1"`
	IsDragging *bool   `json:"is_dragging,omitempty"`
}

// ConnectRequest is the request body for adding an edge.
type ConnectRequest struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// Validate checks the edge request.
func (r ConnectRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Source, validation.Required),
		validation.Field(&r.Target, validation.Required),
	)
}

// EvaluateResponse maps render node ids to image references. Error
// describes the nodes that failed.
type EvaluateResponse struct {
	Images map[string]string `json:"images" validate:"required"`
	Error  string            `json:"error,omitempty"`
}

// DatasetListResponse wraps the dataset list.
type DatasetListResponse struct {
	Datasets []models.Dataset `json:"datasets" validate:"required"`
}

// SessionListResponse wraps the session list.
type SessionListResponse struct {
	Sessions []models.Session `json:"sessions" validate:"required"`
	ActiveID string           `json:"active_id,omitempty"`
}
