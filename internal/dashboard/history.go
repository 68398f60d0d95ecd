package dashboard

import (
	"fmt"
	"time"

	"github.com/starford/ncdash/internal/apperr"
	"github.com/starford/ncdash/internal/catalog"
)

// ImageRecord is a previously generated image known to the catalog.
type ImageRecord struct {
	Dataset   string    `json:"dataset"`
	Variable  string    `json:"variable"`
	Key       string    `json:"key"`
	Kind      string    `json:"kind"`
	Ref       string    `json:"ref"`
	CreatedAt time.Time `json:"created_at"`
}

// ImageHistory lists the catalogued images of a dataset, optionally limited
// to one variable. Images whose blob is gone are skipped.
func (s *Service) ImageHistory(datasetID, variable string) ([]ImageRecord, error) {
	if datasetID == "" {
		return nil, fmt.Errorf("dashboard: image history: dataset is required: %w", apperr.ErrInvalidRequest)
	}
	if s.catalog == nil {
		return []ImageRecord{}, nil
	}
	rows, err := s.catalog.List(datasetID, variable)
	if err != nil {
		return nil, err
	}
	return s.records(rows), nil
}

// SearchImages matches query against catalogued dataset ids, variables and
// keys, newest first.
func (s *Service) SearchImages(query string, limit int) ([]ImageRecord, error) {
	if s.catalog == nil {
		return []ImageRecord{}, nil
	}
	rows, err := s.catalog.Search(query, limit)
	if err != nil {
		return nil, err
	}
	return s.records(rows), nil
}

func (s *Service) records(rows []catalog.ImageRow) []ImageRecord {
	out := make([]ImageRecord, 0, len(rows))
	for _, r := range rows {
		if !s.blobs.Has(r.BlobID) {
			continue
		}
		out = append(out, ImageRecord{
			Dataset:   r.DatasetID,
			Variable:  r.Variable,
			Key:       r.Key,
			Kind:      r.Kind,
			Ref:       s.urlPrefix + r.BlobID,
			CreatedAt: r.CreatedAt,
		})
	}
	return out
}
