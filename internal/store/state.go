package store

import "github.com/starford/ncdash/internal/models"

// Slice names a partition of the state.
type Slice string

const (
	SliceData     Slice = "datasets"
	SlicePlots    Slice = "plots"
	SliceToast    Slice = "toast"
	SliceSessions Slice = "sessions"
	SliceCanvas   Slice = "canvas"
)

// Canvas defaults.
const (
	DefaultCanvasWidth  = 800
	DefaultCanvasHeight = 600
)

// ActiveDataset is the dataset whose detail view is open. Dataset is nil when
// the info was fetched for an id missing from the list.
type ActiveDataset struct {
	Dataset *models.Dataset     `json:"dataset"`
	Info    *models.DatasetInfo `json:"info"`
}

// DataState is the dataset & metadata slice.
type DataState struct {
	Datasets     []models.Dataset `json:"available_datasets"`
	Loading      bool             `json:"loading"`
	Error        bool             `json:"error"`
	ErrorMessage string           `json:"error_message"`
	Active       *ActiveDataset   `json:"active_dataset"`
	Lat          []float64        `json:"lat"`
	Lon          []float64        `json:"lon"`
}

// SessionsState is the sessions slice.
type SessionsState struct {
	Sessions     []models.Session `json:"sessions"`
	ActiveID     string           `json:"active_session,omitempty"`
	Loading      bool             `json:"loading"`
	Error        bool             `json:"error"`
	ErrorMessage string           `json:"error_message"`
}

// CanvasState is the pipeline canvas slice.
type CanvasState struct {
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	Scale      float64       `json:"scale"`
	IsDragging bool          `json:"is_dragging"`
	Nodes      []models.Node `json:"nodes"`
	Edges      []models.Edge `json:"edges"`
}

// State is the whole client state.
type State struct {
	Data     DataState                `json:"data"`
	Plots    map[string]models.Plot   `json:"plots"`
	Toast    models.ToastNotification `json:"toast"`
	Sessions SessionsState            `json:"sessions"`
	Canvas   CanvasState              `json:"canvas"`

	toastGen uint64
}

func initialState() State {
	return State{
		Data:     DataState{Datasets: []models.Dataset{}},
		Plots:    map[string]models.Plot{},
		Toast:    models.ToastNotification{Type: models.ToastInfo},
		Sessions: SessionsState{Sessions: []models.Session{}},
		Canvas: CanvasState{
			Width:  DefaultCanvasWidth,
			Height: DefaultCanvasHeight,
			Scale:  1,
			Nodes:  []models.Node{},
			Edges:  []models.Edge{},
		},
	}
}

// clone returns a deep copy of s.
func (s *State) clone() State {
	out := *s

	out.Data.Datasets = make([]models.Dataset, len(s.Data.Datasets))
	for i, d := range s.Data.Datasets {
		out.Data.Datasets[i] = d.Clone()
	}
	if s.Data.Active != nil {
		a := ActiveDataset{Info: s.Data.Active.Info.Clone()}
		if s.Data.Active.Dataset != nil {
			d := s.Data.Active.Dataset.Clone()
			a.Dataset = &d
		}
		out.Data.Active = &a
	}
	out.Data.Lat = append([]float64(nil), s.Data.Lat...)
	out.Data.Lon = append([]float64(nil), s.Data.Lon...)

	out.Plots = make(map[string]models.Plot, len(s.Plots))
	for k, p := range s.Plots {
		out.Plots[k] = p.Clone()
	}

	out.Sessions.Sessions = make([]models.Session, len(s.Sessions.Sessions))
	for i, sess := range s.Sessions.Sessions {
		out.Sessions.Sessions[i] = sess.Clone()
	}

	out.Canvas.Nodes = make([]models.Node, len(s.Canvas.Nodes))
	for i, n := range s.Canvas.Nodes {
		out.Canvas.Nodes[i] = n.Clone()
	}
	out.Canvas.Edges = append([]models.Edge{}, s.Canvas.Edges...)
	return out
}

// FindDataset returns the first dataset with id.
func (s *State) FindDataset(id string) (models.Dataset, bool) {
	for _, d := range s.Data.Datasets {
		if d.ID == id {
			return d, true
		}
	}
	return models.Dataset{}, false
}

// ActiveSession returns the selected session.
func (s *State) ActiveSession() (models.Session, bool) {
	if s.Sessions.ActiveID == "" {
		return models.Session{}, false
	}
	for _, sess := range s.Sessions.Sessions {
		if sess.ID == s.Sessions.ActiveID {
			return sess, true
		}
	}
	return models.Session{}, false
}
