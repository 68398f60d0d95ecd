package models

import "fmt"

// Dimension selects the plot kind and therefore the image endpoint and key.
type Dimension string

const (
	Dim4D Dimension = "4d"
	Dim3D Dimension = "3d"
	Dim1D Dimension = "1d"
)

// ImageKey returns the composite key a plot image is stored under.
func ImageKey(dim Dimension, depthIndex, timeIndex int) string {
	switch dim {
	case Dim3D:
		return fmt.Sprintf("_time_%d", timeIndex)
	case Dim1D:
		return fmt.Sprintf("1d_time_%d", timeIndex)
	default:
		return fmt.Sprintf("depth_%d_time_%d", depthIndex, timeIndex)
	}
}

// Plot is the cached visualization state of one variable.
type Plot struct {
	Dataset      string            `json:"dataset"`
	Variable     string            `json:"variable"`
	Loading      bool              `json:"loading"`
	Error        bool              `json:"error"`
	ErrorMessage string            `json:"error_message,omitempty"`
	Images       map[string]string `json:"images"`
	Pending      map[string]bool   `json:"pending,omitempty"`
	Progress     int               `json:"progress"`
	Transect     string            `json:"transect,omitempty"`
}

// Clone returns a deep copy of p.
func (p Plot) Clone() Plot {
	images := make(map[string]string, len(p.Images))
	for k, v := range p.Images {
		images[k] = v
	}
	p.Images = images
	if p.Pending != nil {
		pending := make(map[string]bool, len(p.Pending))
		for k, v := range p.Pending {
			pending[k] = v
		}
		p.Pending = pending
	}
	return p
}

// Image records one generated image blob.
type Image struct {
	ID        string `json:"id"`
	DatasetID string `json:"dataset_id"`
	Variable  string `json:"variable"`
	FilePath  string `json:"file_path"`
	CreatedAt string `json:"created_at,omitempty"`
	ColorMap  string `json:"color_map,omitempty"`
}

// BlobMetadata is a lightweight representation returned by blob listings.
type BlobMetadata struct {
	ID   string `json:"id"`
	Size int64  `json:"size"`
}
