package backend

import (
	"context"
	"net/url"

	"github.com/starford/ncdash/internal/models"
)

// Image4DRequest is the body of POST /image/generate.
type Image4DRequest struct {
	Dataset    string `json:"dataset"`
	Variable   string `json:"variable"`
	TimeIndex  int    `json:"time_index"`
	DepthIndex int    `json:"depth_index"`
}

// Image3DRequest is the body of POST /image/generate/3d.
type Image3DRequest struct {
	DatasetID string `json:"dataset_id"`
	Variable  string `json:"variable"`
	LatVar    string `json:"lat_var"`
	LonVar    string `json:"lon_var"`
	TimeIndex int    `json:"time_index"`
}

// Image1DRequest is the body of POST /image/generate/1d.
type Image1DRequest struct {
	DatasetID string `json:"dataset_id"`
	Variable  string `json:"variable"`
}

// TransectRequest is the body of POST /image/generate/4d/transect.
type TransectRequest struct {
	DatasetID   string  `json:"dataset_id"`
	Variable    string  `json:"variable"`
	StartLat    float64 `json:"start_lat"`
	StartLon    float64 `json:"start_lon"`
	EndLat      float64 `json:"end_lat"`
	EndLon      float64 `json:"end_lon"`
	TimeIndex   int     `json:"time_index"`
	DepthIndex  int     `json:"depth_index"`
	InvertYAxis bool    `json:"invert_y_axis"`
}

// ListDatasets returns every dataset the service knows, in server order.
func (c *Client) ListDatasets(ctx context.Context) ([]models.Dataset, error) {
	var resp struct {
		Datasets []models.Dataset `json:"datasets"`
	}
	if err := c.getJSON(ctx, "backend: list datasets", "/data/list", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Datasets == nil {
		resp.Datasets = []models.Dataset{}
	}
	return resp.Datasets, nil
}

// DatasetInfo returns the raw metadata of one dataset.
func (c *Client) DatasetInfo(ctx context.Context, datasetID string) (*models.RawDatasetInfo, error) {
	var info models.RawDatasetInfo
	q := url.Values{"dataset_id": {datasetID}}
	if err := c.getJSON(ctx, "backend: dataset info", "/data/info", q, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// LatLon returns the coordinate arrays of one dataset.
func (c *Client) LatLon(ctx context.Context, datasetID string) (*models.LatLon, error) {
	var ll models.LatLon
	q := url.Values{"dataset_id": {datasetID}}
	if err := c.getJSON(ctx, "backend: lat lon", "/data/info/lat_lon", q, &ll); err != nil {
		return nil, err
	}
	return &ll, nil
}

// GenerateImage4D renders one depth/time slice of a 4-D variable.
func (c *Client) GenerateImage4D(ctx context.Context, r Image4DRequest) ([]byte, error) {
	return c.postBinary(ctx, "backend: generate image", "/image/generate", r)
}

// GenerateImage3D renders one time slice of a 3-D variable.
func (c *Client) GenerateImage3D(ctx context.Context, r Image3DRequest) ([]byte, error) {
	if r.LatVar == "" {
		r.LatVar = "lat"
	}
	if r.LonVar == "" {
		r.LonVar = "lon"
	}
	return c.postBinary(ctx, "backend: generate image 3d", "/image/generate/3d", r)
}

// GenerateImage1D renders a 1-D variable as a line plot.
func (c *Client) GenerateImage1D(ctx context.Context, r Image1DRequest) ([]byte, error) {
	return c.postBinary(ctx, "backend: generate image 1d", "/image/generate/1d", r)
}

// GenerateTransect renders a vertical section along a two-point line.
func (c *Client) GenerateTransect(ctx context.Context, r TransectRequest) ([]byte, error) {
	return c.postBinary(ctx, "backend: generate transect", "/image/generate/4d/transect", r)
}

// ListSessions returns every stored session.
func (c *Client) ListSessions(ctx context.Context) ([]models.Session, error) {
	var sessions []models.Session
	if err := c.getJSON(ctx, "backend: list sessions", "/session/list", nil, &sessions); err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	return sessions, nil
}

// CreateSession creates a session on datasetID, optionally branching from
// parentID.
func (c *Client) CreateSession(ctx context.Context, datasetID, parentID string) (*models.Session, error) {
	q := url.Values{"dataset_id": {datasetID}}
	if parentID != "" {
		q.Set("parent_id", parentID)
	}
	var s models.Session
	if err := c.getJSON(ctx, "backend: create session", "/session/create", q, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
