package store

import (
	"fmt"

	"github.com/starford/ncdash/internal/apperr"
	"github.com/starford/ncdash/internal/models"
)

// Action is a state transition. Actions are applied by Store.Dispatch.
type Action interface {
	Name() string
	apply(*State) (Slice, error)
}

// ---------------------------------------------------------------------------
// Data slice
// ---------------------------------------------------------------------------

type DatasetsPending struct{}

func (DatasetsPending) Name() string { return "data/fetchDataSets/pending" }
func (DatasetsPending) apply(s *State) (Slice, error) {
	s.Data.Loading = true
	s.Data.Error = false
	s.Data.ErrorMessage = ""
	return SliceData, nil
}

// DatasetsFulfilled replaces the list verbatim.
type DatasetsFulfilled struct{ Datasets []models.Dataset }

func (DatasetsFulfilled) Name() string { return "data/fetchDataSets/fulfilled" }
func (a DatasetsFulfilled) apply(s *State) (Slice, error) {
	list := make([]models.Dataset, len(a.Datasets))
	for i, d := range a.Datasets {
		list[i] = d.Clone()
	}
	s.Data.Datasets = list
	s.Data.Loading = false
	return SliceData, nil
}

type DatasetsRejected struct{ Message string }

func (DatasetsRejected) Name() string { return "data/fetchDataSets/rejected" }
func (a DatasetsRejected) apply(s *State) (Slice, error) {
	s.Data.Loading = false
	s.Data.Error = true
	s.Data.ErrorMessage = a.Message
	return SliceData, nil
}

type DatasetInfoPending struct{}

func (DatasetInfoPending) Name() string { return "data/fetchDatasetInfo/pending" }
func (DatasetInfoPending) apply(s *State) (Slice, error) {
	s.Data.Loading = true
	s.Data.Error = false
	s.Data.ErrorMessage = ""
	return SliceData, nil
}

// DatasetInfoFulfilled attaches Info to the first dataset with DatasetID.
// When Activate is set the dataset also becomes active; an id missing from
// the list yields an active entry with no dataset.
type DatasetInfoFulfilled struct {
	DatasetID string
	Info      *models.DatasetInfo
	Activate  bool
}

func (DatasetInfoFulfilled) Name() string { return "data/fetchDatasetInfo/fulfilled" }
func (a DatasetInfoFulfilled) apply(s *State) (Slice, error) {
	s.Data.Loading = false
	var target *models.Dataset
	for i := range s.Data.Datasets {
		if s.Data.Datasets[i].ID == a.DatasetID {
			target = &s.Data.Datasets[i]
			break
		}
	}
	if target != nil {
		target.Info = a.Info.Clone()
	}
	if !a.Activate {
		return SliceData, nil
	}
	active := &ActiveDataset{Info: a.Info.Clone()}
	if target != nil {
		d := target.Clone()
		active.Dataset = &d
	}
	s.Data.Active = active
	return SliceData, nil
}

type DatasetInfoRejected struct{ Message string }

func (DatasetInfoRejected) Name() string { return "data/fetchDatasetInfo/rejected" }
func (a DatasetInfoRejected) apply(s *State) (Slice, error) {
	s.Data.Loading = false
	s.Data.Error = true
	s.Data.ErrorMessage = a.Message
	return SliceData, nil
}

type LatLonPending struct{}

func (LatLonPending) Name() string { return "data/getLatLon/pending" }
func (LatLonPending) apply(s *State) (Slice, error) {
	s.Data.Loading = true
	s.Data.Error = false
	s.Data.ErrorMessage = ""
	return SliceData, nil
}

type LatLonFulfilled struct{ LatLon models.LatLon }

func (LatLonFulfilled) Name() string { return "data/getLatLon/fulfilled" }
func (a LatLonFulfilled) apply(s *State) (Slice, error) {
	s.Data.Loading = false
	s.Data.Lat = append([]float64(nil), a.LatLon.Lat...)
	s.Data.Lon = append([]float64(nil), a.LatLon.Lon...)
	return SliceData, nil
}

type LatLonRejected struct{ Message string }

func (LatLonRejected) Name() string { return "data/getLatLon/rejected" }
func (a LatLonRejected) apply(s *State) (Slice, error) {
	s.Data.Loading = false
	s.Data.Error = true
	s.Data.ErrorMessage = a.Message
	return SliceData, nil
}

// SetActiveDataset selects a dataset from the list, carrying its info if
// already loaded.
type SetActiveDataset struct{ DatasetID string }

func (SetActiveDataset) Name() string { return "data/setActiveDataset" }
func (a SetActiveDataset) apply(s *State) (Slice, error) {
	d, ok := s.FindDataset(a.DatasetID)
	if !ok {
		return "", fmt.Errorf("store: dataset %q: %w", a.DatasetID, apperr.ErrDatasetNotFound)
	}
	d = d.Clone()
	s.Data.Active = &ActiveDataset{Dataset: &d, Info: d.Info.Clone()}
	return SliceData, nil
}

// ToggleVariable sets the checked flag of one variable in place.
type ToggleVariable struct {
	DatasetID string
	Variable  string
	Checked   bool
}

func (ToggleVariable) Name() string { return "data/toggleVariable" }
func (a ToggleVariable) apply(s *State) (Slice, error) {
	found := false
	for i := range s.Data.Datasets {
		d := &s.Data.Datasets[i]
		if d.ID != a.DatasetID {
			continue
		}
		if setChecked(d.Info, a.Variable, a.Checked) {
			found = true
		}
		break
	}
	if act := s.Data.Active; act != nil && act.Dataset != nil && act.Dataset.ID == a.DatasetID {
		if setChecked(act.Info, a.Variable, a.Checked) {
			found = true
		}
		setChecked(act.Dataset.Info, a.Variable, a.Checked)
	}
	if !found {
		return "", fmt.Errorf("store: variable %q of %q: %w", a.Variable, a.DatasetID, apperr.ErrNotFound)
	}
	return SliceData, nil
}

func setChecked(info *models.DatasetInfo, variable string, checked bool) bool {
	if info == nil {
		return false
	}
	v, ok := info.VariablesInfo[variable]
	if !ok {
		return false
	}
	v.Checked = checked
	info.VariablesInfo[variable] = v
	return true
}

// ---------------------------------------------------------------------------
// Plots slice
// ---------------------------------------------------------------------------

// plotFor returns the plot of variable. Plots are keyed by variable only, so
// a request for another dataset starts the plot over.
func plotFor(s *State, dataset, variable string) models.Plot {
	p, ok := s.Plots[variable]
	if !ok || (dataset != "" && p.Dataset != dataset) {
		p = models.Plot{Dataset: dataset, Variable: variable, Images: map[string]string{}}
	}
	if p.Images == nil {
		p.Images = map[string]string{}
	}
	if p.Pending == nil {
		p.Pending = map[string]bool{}
	}
	if dataset != "" {
		p.Dataset = dataset
	}
	return p
}

// PlotPending marks Key of Variable in flight.
type PlotPending struct {
	Dataset  string
	Variable string
	Key      string
}

func (PlotPending) Name() string { return "data/generatePlot/pending" }
func (a PlotPending) apply(s *State) (Slice, error) {
	p := plotFor(s, a.Dataset, a.Variable)
	p.Pending[a.Key] = true
	p.Loading = true
	p.Error = false
	p.ErrorMessage = ""
	s.Plots[a.Variable] = p
	return SlicePlots, nil
}

// PlotFulfilled merges Ref into the images of Variable under Key.
type PlotFulfilled struct {
	Dataset  string
	Variable string
	Key      string
	Ref      string
}

func (PlotFulfilled) Name() string { return "data/generatePlot/fulfilled" }
func (a PlotFulfilled) apply(s *State) (Slice, error) {
	p := plotFor(s, a.Dataset, a.Variable)
	p.Images[a.Key] = a.Ref
	delete(p.Pending, a.Key)
	p.Loading = len(p.Pending) > 0
	p.Progress = 100
	p.Error = false
	p.ErrorMessage = ""
	s.Plots[a.Variable] = p
	return SlicePlots, nil
}

type PlotRejected struct {
	Dataset  string
	Variable string
	Key      string
	Message  string
}

func (PlotRejected) Name() string { return "data/generatePlot/rejected" }
func (a PlotRejected) apply(s *State) (Slice, error) {
	p := plotFor(s, a.Dataset, a.Variable)
	delete(p.Pending, a.Key)
	p.Loading = len(p.Pending) > 0
	p.Error = true
	p.ErrorMessage = a.Message
	s.Plots[a.Variable] = p
	return SlicePlots, nil
}

// PlotEvicted drops one image reference from the cache.
type PlotEvicted struct {
	Dataset  string
	Variable string
	Key      string
}

func (PlotEvicted) Name() string { return "data/evictImage" }
func (a PlotEvicted) apply(s *State) (Slice, error) {
	p, ok := s.Plots[a.Variable]
	if !ok || p.Dataset != a.Dataset {
		return "", errStale
	}
	if _, ok := p.Images[a.Key]; !ok {
		return "", errStale
	}
	p = p.Clone()
	delete(p.Images, a.Key)
	s.Plots[a.Variable] = p
	return SlicePlots, nil
}

// TransectFulfilled stores the latest transect image of Variable.
type TransectFulfilled struct {
	Dataset  string
	Variable string
	Key      string
	Ref      string
}

func (TransectFulfilled) Name() string { return "data/generateTransect/fulfilled" }
func (a TransectFulfilled) apply(s *State) (Slice, error) {
	p := plotFor(s, a.Dataset, a.Variable)
	p.Transect = a.Ref
	delete(p.Pending, a.Key)
	p.Loading = len(p.Pending) > 0
	p.Error = false
	p.ErrorMessage = ""
	s.Plots[a.Variable] = p
	return SlicePlots, nil
}

// ---------------------------------------------------------------------------
// Toast slice
// ---------------------------------------------------------------------------

// ToastShown shows a toast. Generation identifies this opening for the
// matching ToastHidden.
type ToastShown struct {
	Message    string
	Type       models.ToastType
	Generation uint64
}

func (ToastShown) Name() string { return "toast/openToast/pending" }
func (a ToastShown) apply(s *State) (Slice, error) {
	s.Toast = models.ToastNotification{Show: true, Message: a.Message, Type: a.Type}
	s.toastGen = a.Generation
	return SliceToast, nil
}

// ToastHidden hides the toast. A non-zero Generation only hides the toast
// opened with that generation; newer toasts stay visible.
type ToastHidden struct{ Generation uint64 }

func (ToastHidden) Name() string { return "toast/openToast/fulfilled" }
func (a ToastHidden) apply(s *State) (Slice, error) {
	if a.Generation != 0 && a.Generation != s.toastGen {
		return "", errStale
	}
	s.Toast.Show = false
	return SliceToast, nil
}

// ---------------------------------------------------------------------------
// Sessions slice
// ---------------------------------------------------------------------------

type SessionsPending struct{}

func (SessionsPending) Name() string { return "sessions/listSessions/pending" }
func (SessionsPending) apply(s *State) (Slice, error) {
	s.Sessions.Sessions = []models.Session{}
	s.Sessions.Loading = true
	s.Sessions.Error = false
	s.Sessions.ErrorMessage = ""
	return SliceSessions, nil
}

type SessionsFulfilled struct{ Sessions []models.Session }

func (SessionsFulfilled) Name() string { return "sessions/listSessions/fulfilled" }
func (a SessionsFulfilled) apply(s *State) (Slice, error) {
	list := make([]models.Session, len(a.Sessions))
	for i, sess := range a.Sessions {
		list[i] = sess.Clone()
	}
	s.Sessions.Sessions = list
	s.Sessions.Loading = false
	return SliceSessions, nil
}

type SessionsRejected struct{ Message string }

func (SessionsRejected) Name() string { return "sessions/listSessions/rejected" }
func (a SessionsRejected) apply(s *State) (Slice, error) {
	s.Sessions.Sessions = []models.Session{}
	s.Sessions.Loading = false
	s.Sessions.Error = true
	s.Sessions.ErrorMessage = a.Message
	return SliceSessions, nil
}

type SessionCreatePending struct{}

func (SessionCreatePending) Name() string { return "sessions/createSession/pending" }
func (SessionCreatePending) apply(s *State) (Slice, error) {
	s.Sessions.Loading = true
	s.Sessions.Error = false
	s.Sessions.ErrorMessage = ""
	return SliceSessions, nil
}

// SessionCreated appends the session and selects it.
type SessionCreated struct{ Session models.Session }

func (SessionCreated) Name() string { return "sessions/createSession/fulfilled" }
func (a SessionCreated) apply(s *State) (Slice, error) {
	s.Sessions.Sessions = append(s.Sessions.Sessions, a.Session.Clone())
	s.Sessions.ActiveID = a.Session.ID
	s.Sessions.Loading = false
	return SliceSessions, nil
}

type SessionCreateRejected struct{ Message string }

func (SessionCreateRejected) Name() string { return "sessions/createSession/rejected" }
func (a SessionCreateRejected) apply(s *State) (Slice, error) {
	s.Sessions.Loading = false
	s.Sessions.Error = true
	s.Sessions.ErrorMessage = a.Message
	return SliceSessions, nil
}

// SetSession selects a listed session.
type SetSession struct{ ID string }

func (SetSession) Name() string { return "sessions/setSession" }
func (a SetSession) apply(s *State) (Slice, error) {
	for _, sess := range s.Sessions.Sessions {
		if sess.ID == a.ID {
			s.Sessions.ActiveID = a.ID
			return SliceSessions, nil
		}
	}
	return "", fmt.Errorf("store: session %q: %w", a.ID, apperr.ErrSessionNotFound)
}

// ---------------------------------------------------------------------------
// Canvas slice
// ---------------------------------------------------------------------------

type SetCanvasDimensions struct{ Width, Height int }

func (SetCanvasDimensions) Name() string { return "canvas/setDimensions" }
func (a SetCanvasDimensions) apply(s *State) (Slice, error) {
	if a.Width <= 0 || a.Height <= 0 {
		return "", fmt.Errorf("store: canvas %dx%d: %w", a.Width, a.Height, apperr.ErrInvalidRequest)
	}
	s.Canvas.Width = a.Width
	s.Canvas.Height = a.Height
	return SliceCanvas, nil
}

type SetCanvasScale struct{ Scale float64 }

func (SetCanvasScale) Name() string { return "canvas/setScale" }
func (a SetCanvasScale) apply(s *State) (Slice, error) {
	if a.Scale <= 0 {
		return "", fmt.Errorf("store: canvas scale %v: %w", a.Scale, apperr.ErrInvalidRequest)
	}
	s.Canvas.Scale = a.Scale
	return SliceCanvas, nil
}

type SetCanvasDragging struct{ Dragging bool }

func (SetCanvasDragging) Name() string { return "canvas/setIsDragging" }
func (a SetCanvasDragging) apply(s *State) (Slice, error) {
	s.Canvas.IsDragging = a.Dragging
	return SliceCanvas, nil
}

type SetCanvasNodes struct{ Nodes []models.Node }

func (SetCanvasNodes) Name() string { return "canvas/setNodes" }
func (a SetCanvasNodes) apply(s *State) (Slice, error) {
	nodes := make([]models.Node, len(a.Nodes))
	for i, n := range a.Nodes {
		nodes[i] = n.Clone()
	}
	s.Canvas.Nodes = nodes
	return SliceCanvas, nil
}

type SetCanvasEdges struct{ Edges []models.Edge }

func (SetCanvasEdges) Name() string { return "canvas/setEdges" }
func (a SetCanvasEdges) apply(s *State) (Slice, error) {
	s.Canvas.Edges = append([]models.Edge{}, a.Edges...)
	return SliceCanvas, nil
}
