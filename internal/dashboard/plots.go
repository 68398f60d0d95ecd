package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ncdash/internal/apperr"
	"github.com/starford/ncdash/internal/backend"
	"github.com/starford/ncdash/internal/catalog"
	"github.com/starford/ncdash/internal/models"
	"github.com/starford/ncdash/internal/store"
)

// PlotParams selects one image of a variable.
type PlotParams struct {
	Dataset    string           `json:"dataset"`
	Variable   string           `json:"variable"`
	Dimension  models.Dimension `json:"dimension,omitempty"`
	DepthIndex int              `json:"depth_index"`
	TimeIndex  int              `json:"time_index"`
}

// Validate checks the parameters.
func (p PlotParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Dataset, validation.Required),
		validation.Field(&p.Variable, validation.Required),
		validation.Field(&p.Dimension, validation.In(models.Dim4D, models.Dim3D, models.Dim1D)),
		validation.Field(&p.DepthIndex, validation.Min(0)),
		validation.Field(&p.TimeIndex, validation.Min(0)),
	)
}

// Key returns the image key the plot is stored under.
func (p PlotParams) Key() string {
	return models.ImageKey(p.dimension(), p.DepthIndex, p.TimeIndex)
}

func (p PlotParams) dimension() models.Dimension {
	if p.Dimension == "" {
		return models.Dim4D
	}
	return p.Dimension
}

// PlotResult is the outcome of GeneratePlot.
type PlotResult struct {
	Key    string `json:"key"`
	Ref    string `json:"ref"`
	BlobID string `json:"blob_id"`
	Cached bool   `json:"cached"`
}

// GeneratePlot returns the image reference for p, rendering it through the
// backend only when neither the state nor the catalog already holds it.
// Concurrent calls for the same image share one backend request.
func (s *Service) GeneratePlot(ctx context.Context, p PlotParams) (*PlotResult, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("dashboard: generate plot: %w: %w", apperr.ErrInvalidRequest, err)
	}
	dim := p.dimension()
	key := p.Key()
	ck := cacheKey{Dataset: p.Dataset, Variable: p.Variable, Key: key}

	var (
		checkErr error
		ref      string
	)
	s.store.Read(func(st *store.State) {
		if dim == models.Dim4D {
			checkErr = checkDepth(st, p)
			if checkErr != nil {
				return
			}
		}
		if plot, ok := st.Plots[p.Variable]; ok && plot.Dataset == p.Dataset {
			ref = plot.Images[key]
		}
	})
	if checkErr != nil {
		return nil, checkErr
	}
	if ref != "" {
		if s.cache != nil {
			s.cache.touch(ck)
		}
		return &PlotResult{Key: key, Ref: ref, BlobID: s.blobID(ref), Cached: true}, nil
	}

	flight := strings.Join([]string{"plot", p.Dataset, p.Variable, key}, "\x00")
	res, err := s.shared(ctx, flight, func(ctx context.Context) (*PlotResult, error) {
		return s.renderPlot(ctx, p, dim, key)
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		for _, old := range s.cache.add(ck, res.Ref) {
			s.dispatch(store.PlotEvicted{Dataset: old.Dataset, Variable: old.Variable, Key: old.Key})
		}
	}
	return res, nil
}

// shared runs fn once for every concurrent caller of flight. fn gets a
// context that keeps the first caller's values but not its cancellation, so
// one caller leaving does not fail the others; each caller still returns
// as soon as its own ctx is done.
func (s *Service) shared(ctx context.Context, flight string, fn func(context.Context) (*PlotResult, error)) (*PlotResult, error) {
	ch := s.flights.DoChan(flight, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		res := *r.Val.(*PlotResult)
		return &res, nil
	}
}

func checkDepth(st *store.State, p PlotParams) error {
	d, ok := st.FindDataset(p.Dataset)
	if !ok || d.Info == nil {
		return fmt.Errorf("dashboard: generate plot: info of %s not loaded: %w", p.Dataset, apperr.ErrInvalidDataset)
	}
	depth, ok := d.Info.Dims["depth"]
	if !ok {
		return fmt.Errorf("dashboard: generate plot: %s has no depth dimension: %w", p.Dataset, apperr.ErrInvalidDataset)
	}
	if p.DepthIndex >= depth {
		return fmt.Errorf("dashboard: generate plot: depth index %d out of range [0,%d): %w", p.DepthIndex, depth, apperr.ErrInvalidRequest)
	}
	return nil
}

func (s *Service) renderPlot(ctx context.Context, p PlotParams, dim models.Dimension, key string) (*PlotResult, error) {
	s.dispatch(store.PlotPending{Dataset: p.Dataset, Variable: p.Variable, Key: key})

	res, err := s.catalogued(p.Dataset, p.Variable, key)
	if err == nil && res == nil {
		var data []byte
		data, err = s.fetchImage(ctx, p, dim)
		if err == nil {
			res, err = s.storeImage(p.Dataset, p.Variable, key, catalog.KindPlot, data)
		}
	}
	if err != nil {
		s.dispatch(store.PlotRejected{Dataset: p.Dataset, Variable: p.Variable, Key: key, Message: apperr.MsgGenerateImage})
		s.logFailure("generate image", err)
		return nil, fmt.Errorf("dashboard: generate plot %s/%s %s: %w", p.Dataset, p.Variable, key, err)
	}
	s.dispatch(store.PlotFulfilled{Dataset: p.Dataset, Variable: p.Variable, Key: key, Ref: res.Ref})
	return res, nil
}

func (s *Service) fetchImage(ctx context.Context, p PlotParams, dim models.Dimension) ([]byte, error) {
	switch dim {
	case models.Dim3D:
		return s.api.GenerateImage3D(ctx, backend.Image3DRequest{DatasetID: p.Dataset, Variable: p.Variable, TimeIndex: p.TimeIndex})
	case models.Dim1D:
		return s.api.GenerateImage1D(ctx, backend.Image1DRequest{DatasetID: p.Dataset, Variable: p.Variable})
	default:
		return s.api.GenerateImage4D(ctx, backend.Image4DRequest{
			Dataset:    p.Dataset,
			Variable:   p.Variable,
			TimeIndex:  p.TimeIndex,
			DepthIndex: p.DepthIndex,
		})
	}
}

// catalogued returns a previously generated image whose blob still exists.
func (s *Service) catalogued(dataset, variable, key string) (*PlotResult, error) {
	if s.catalog == nil {
		return nil, nil
	}
	row, err := s.catalog.Lookup(dataset, variable, key)
	if err != nil || row == nil {
		return nil, err
	}
	if !s.blobs.Has(row.BlobID) {
		return nil, nil
	}
	return &PlotResult{Key: key, Ref: s.urlPrefix + row.BlobID, BlobID: row.BlobID, Cached: true}, nil
}

func (s *Service) storeImage(dataset, variable, key, kind string, data []byte) (*PlotResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image: %w", apperr.ErrImageNotFound)
	}
	id, err := s.blobs.Put(data)
	if err != nil {
		return nil, err
	}
	if s.catalog != nil {
		row := catalog.ImageRow{DatasetID: dataset, Variable: variable, Key: key, Kind: kind, BlobID: id, CreatedAt: time.Now().UTC()}
		if err := s.catalog.Upsert(row); err != nil {
			return nil, err
		}
	}
	return &PlotResult{Key: key, Ref: s.urlPrefix + id, BlobID: id}, nil
}

func (s *Service) blobID(ref string) string {
	return strings.TrimPrefix(ref, s.urlPrefix)
}

// ImageBytes returns the bytes behind an image reference.
func (s *Service) ImageBytes(ref string) ([]byte, error) {
	return s.blobs.Get(s.blobID(ref))
}

// Plot returns the plot state of variable.
func (s *Service) Plot(variable string) (models.Plot, error) {
	p, ok := s.store.Snapshot().Plots[variable]
	if !ok {
		return models.Plot{}, fmt.Errorf("dashboard: plot %s: %w", variable, apperr.ErrNotFound)
	}
	return p, nil
}

// TransectParams selects a vertical section between two [lat, lon] points.
type TransectParams struct {
	Dataset     string       `json:"dataset"`
	Variable    string       `json:"variable"`
	Points      [][2]float64 `json:"points"`
	DepthIndex  int          `json:"depth_index"`
	TimeIndex   int          `json:"time_index"`
	InvertYAxis bool         `json:"invert_y_axis"`
}

// Validate checks the parameters.
func (p TransectParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Dataset, validation.Required),
		validation.Field(&p.Variable, validation.Required),
		validation.Field(&p.Points, validation.Required, validation.Length(2, 2)),
		validation.Field(&p.DepthIndex, validation.Min(0)),
		validation.Field(&p.TimeIndex, validation.Min(0)),
	)
}

// Key returns the catalog key of the transect image.
func (p TransectParams) Key() string {
	return fmt.Sprintf("transect_%g_%g_%g_%g_depth_%d_time_%d_inv_%t",
		p.Points[0][0], p.Points[0][1], p.Points[1][0], p.Points[1][1],
		p.DepthIndex, p.TimeIndex, p.InvertYAxis)
}

// GenerateTransect renders the transect and stores it as the variable's
// current transect image.
func (s *Service) GenerateTransect(ctx context.Context, p TransectParams) (*PlotResult, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("dashboard: generate transect: %w: %w", apperr.ErrInvalidRequest, err)
	}
	key := p.Key()

	flight := strings.Join([]string{"transect", p.Dataset, p.Variable, key}, "\x00")
	return s.shared(ctx, flight, func(ctx context.Context) (*PlotResult, error) {
		s.dispatch(store.PlotPending{Dataset: p.Dataset, Variable: p.Variable, Key: key})

		res, err := s.catalogued(p.Dataset, p.Variable, key)
		if err == nil && res == nil {
			var data []byte
			data, err = s.api.GenerateTransect(ctx, backend.TransectRequest{
				DatasetID:   p.Dataset,
				Variable:    p.Variable,
				StartLat:    p.Points[0][0],
				StartLon:    p.Points[0][1],
				EndLat:      p.Points[1][0],
				EndLon:      p.Points[1][1],
				TimeIndex:   p.TimeIndex,
				DepthIndex:  p.DepthIndex,
				InvertYAxis: p.InvertYAxis,
			})
			if err == nil {
				res, err = s.storeImage(p.Dataset, p.Variable, key, catalog.KindTransect, data)
			}
		}
		if err != nil {
			s.dispatch(store.PlotRejected{Dataset: p.Dataset, Variable: p.Variable, Key: key, Message: apperr.MsgGenerateTransect})
			s.logFailure("generate transect", err)
			return nil, fmt.Errorf("dashboard: generate transect %s/%s: %w", p.Dataset, p.Variable, err)
		}
		s.dispatch(store.TransectFulfilled{Dataset: p.Dataset, Variable: p.Variable, Key: key, Ref: res.Ref})
		return res, nil
	})
}
