package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/starford/ncdash/internal/apperr"
	"github.com/starford/ncdash/internal/models"
	"github.com/starford/ncdash/internal/store"
)

// FetchDataSets replaces the dataset list with the backend's.
func (s *Service) FetchDataSets(ctx context.Context) ([]models.Dataset, error) {
	s.dispatch(store.DatasetsPending{})
	list, err := s.api.ListDatasets(ctx)
	if err != nil {
		s.dispatch(store.DatasetsRejected{Message: apperr.MsgFetchDataSets})
		s.logFailure("fetch datasets", err)
		return nil, fmt.Errorf("dashboard: fetch datasets: %w", err)
	}
	s.dispatch(store.DatasetsFulfilled{Datasets: list})
	return list, nil
}

// FetchDatasetInfo loads the metadata of datasetID, attaches it to the
// dataset and makes the dataset active. Every variable starts unchecked.
// A response overtaken by a newer FetchDatasetInfo still attaches its info
// but does not change the active dataset.
func (s *Service) FetchDatasetInfo(ctx context.Context, datasetID string) (*models.DatasetInfo, error) {
	seq := s.infoSeq.Add(1)
	s.dispatch(store.DatasetInfoPending{})

	raw, err := s.api.DatasetInfo(ctx, datasetID)
	if err != nil {
		s.dispatch(store.DatasetInfoRejected{Message: apperr.MsgFetchDatasetInfo})
		s.logFailure("fetch dataset info", err)
		return nil, fmt.Errorf("dashboard: fetch dataset info %s: %w", datasetID, err)
	}
	info := raw.Convert()

	var known bool
	s.store.Read(func(st *store.State) { _, known = st.FindDataset(datasetID) })
	if !known {
		s.logger.Warn("dashboard: info for dataset missing from list", slog.String("dataset", datasetID))
	}

	s.dispatch(store.DatasetInfoFulfilled{
		DatasetID: datasetID,
		Info:      info,
		Activate:  s.infoSeq.Load() == seq,
	})
	return info, nil
}

// GetLatLon loads the coordinate arrays of datasetID.
func (s *Service) GetLatLon(ctx context.Context, datasetID string) (*models.LatLon, error) {
	s.dispatch(store.LatLonPending{})
	ll, err := s.api.LatLon(ctx, datasetID)
	if err != nil {
		s.dispatch(store.LatLonRejected{Message: apperr.MsgFetchLatLon})
		s.logFailure("fetch lat lon", err)
		return nil, fmt.Errorf("dashboard: lat lon %s: %w", datasetID, err)
	}
	s.dispatch(store.LatLonFulfilled{LatLon: *ll})
	return ll, nil
}

// SetActiveDataset selects a dataset from the list.
func (s *Service) SetActiveDataset(datasetID string) error {
	return s.store.Dispatch(store.SetActiveDataset{DatasetID: datasetID})
}

// ToggleVariable sets the checked flag of a variable.
func (s *Service) ToggleVariable(datasetID, variable string, checked bool) error {
	return s.store.Dispatch(store.ToggleVariable{DatasetID: datasetID, Variable: variable, Checked: checked})
}

// Datasets returns the current dataset list.
func (s *Service) Datasets() []models.Dataset {
	return s.store.Snapshot().Data.Datasets
}

// Dataset returns the first listed dataset with datasetID.
func (s *Service) Dataset(datasetID string) (models.Dataset, error) {
	var (
		d  models.Dataset
		ok bool
	)
	s.store.Read(func(st *store.State) {
		d, ok = st.FindDataset(datasetID)
		d = d.Clone()
	})
	if !ok {
		return models.Dataset{}, fmt.Errorf("dashboard: dataset %s: %w", datasetID, apperr.ErrDatasetNotFound)
	}
	return d, nil
}

// CheckedVariables returns the checked variables of datasetID, sorted by name.
func (s *Service) CheckedVariables(datasetID string) ([]string, error) {
	d, err := s.Dataset(datasetID)
	if err != nil {
		return nil, err
	}
	if d.Info == nil {
		return []string{}, nil
	}
	out := []string{}
	for name, v := range d.Info.VariablesInfo {
		if v.Checked {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

// EnsureInfo returns datasetID with its info loaded, fetching the list and
// the info only when the state lacks them.
func (s *Service) EnsureInfo(ctx context.Context, datasetID string) (models.Dataset, error) {
	d, err := s.Dataset(datasetID)
	if errors.Is(err, apperr.ErrDatasetNotFound) {
		if _, err := s.FetchDataSets(ctx); err != nil {
			return models.Dataset{}, err
		}
		d, err = s.Dataset(datasetID)
	}
	if err != nil {
		return models.Dataset{}, err
	}
	if d.Info != nil {
		return d, nil
	}
	info, err := s.FetchDatasetInfo(ctx, datasetID)
	if err != nil {
		return models.Dataset{}, err
	}
	d.Info = info
	return d, nil
}
