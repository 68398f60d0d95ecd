package store

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/ncdash/internal/apperr"
	"github.com/starford/ncdash/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

func mustDispatch(t *testing.T, s *Store, a Action) {
	t.Helper()
	if err := s.Dispatch(a); err != nil {
		t.Fatalf("Dispatch(%s): %v", a.Name(), err)
	}
}

func oceanInfo() *models.DatasetInfo {
	return models.RawDatasetInfo{
		Dims:          map[string]int{"depth": 40, "time": 12},
		VariablesInfo: map[string][]string{"water_temp": {"time", "depth", "lat", "lon"}},
	}.Convert()
}

func TestInitialState(t *testing.T) {
	st := newTestStore(t).Snapshot()
	if st.Canvas.Width != 800 || st.Canvas.Height != 600 || st.Canvas.Scale != 1 {
		t.Errorf("canvas = %+v, want 800x600 scale 1", st.Canvas)
	}
	if st.Toast.Show {
		t.Error("toast visible initially")
	}
	if len(st.Data.Datasets) != 0 || st.Data.Loading {
		t.Errorf("data = %+v", st.Data)
	}
}

func TestDatasetsLifecycle(t *testing.T) {
	s := newTestStore(t)
	mustDispatch(t, s, DatasetsRejected{Message: apperr.MsgFetchDataSets})
	mustDispatch(t, s, DatasetsPending{})

	st := s.Snapshot()
	if !st.Data.Loading || st.Data.Error || st.Data.ErrorMessage != "" {
		t.Errorf("pending = %+v", st.Data)
	}

	list := []models.Dataset{{ID: "a"}, {ID: "b"}, {ID: "a", Name: "dup"}}
	mustDispatch(t, s, DatasetsFulfilled{Datasets: list})
	st = s.Snapshot()
	if st.Data.Loading {
		t.Error("loading after fulfilled")
	}
	if len(st.Data.Datasets) != 3 || st.Data.Datasets[2].Name != "dup" {
		t.Errorf("datasets = %+v, want verbatim list", st.Data.Datasets)
	}
	if d, _ := st.FindDataset("a"); d.Name != "" {
		t.Errorf("FindDataset returned %q, want first match", d.Name)
	}
}

func TestDatasetInfoStaleID(t *testing.T) {
	s := newTestStore(t)
	mustDispatch(t, s, DatasetsFulfilled{Datasets: []models.Dataset{{ID: "ocean_01"}}})
	mustDispatch(t, s, DatasetInfoFulfilled{DatasetID: "gone", Info: oceanInfo(), Activate: true})

	st := s.Snapshot()
	if st.Data.Datasets[0].Info != nil {
		t.Error("info attached to unrelated dataset")
	}
	if st.Data.Active == nil || st.Data.Active.Dataset != nil {
		t.Errorf("active = %+v, want info with no dataset", st.Data.Active)
	}
}

func TestToggleVariable(t *testing.T) {
	s := newTestStore(t)
	mustDispatch(t, s, DatasetsFulfilled{Datasets: []models.Dataset{{ID: "ocean_01"}}})
	mustDispatch(t, s, DatasetInfoFulfilled{DatasetID: "ocean_01", Info: oceanInfo(), Activate: true})
	mustDispatch(t, s, ToggleVariable{DatasetID: "ocean_01", Variable: "water_temp", Checked: true})

	st := s.Snapshot()
	if !st.Data.Datasets[0].Info.VariablesInfo["water_temp"].Checked {
		t.Error("list entry not checked")
	}
	if !st.Data.Active.Info.VariablesInfo["water_temp"].Checked {
		t.Error("active info not checked")
	}

	err := s.Dispatch(ToggleVariable{DatasetID: "ocean_01", Variable: "nope", Checked: true})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestPlotPendingSet(t *testing.T) {
	s := newTestStore(t)
	mustDispatch(t, s, PlotPending{Dataset: "d", Variable: "v", Key: "k1"})
	mustDispatch(t, s, PlotPending{Dataset: "d", Variable: "v", Key: "k2"})
	mustDispatch(t, s, PlotFulfilled{Dataset: "d", Variable: "v", Key: "k1", Ref: "/blobs/1"})

	p := s.Snapshot().Plots["v"]
	if !p.Loading {
		t.Error("loading cleared while k2 in flight")
	}
	if p.Images["k1"] != "/blobs/1" || p.Progress != 100 {
		t.Errorf("plot = %+v", p)
	}

	mustDispatch(t, s, PlotRejected{Dataset: "d", Variable: "v", Key: "k2", Message: apperr.MsgGenerateImage})
	p = s.Snapshot().Plots["v"]
	if p.Loading {
		t.Error("loading with empty pending set")
	}
	if !p.Error || p.ErrorMessage != apperr.MsgGenerateImage {
		t.Errorf("error = %v %q", p.Error, p.ErrorMessage)
	}
	if p.Images["k1"] != "/blobs/1" {
		t.Error("rejection dropped existing image")
	}
}

func TestToastGenerationGuard(t *testing.T) {
	s := newTestStore(t)
	mustDispatch(t, s, ToastShown{Message: "first", Type: models.ToastInfo, Generation: 1})
	mustDispatch(t, s, ToastShown{Message: "second", Type: models.ToastError, Generation: 2})
	mustDispatch(t, s, ToastHidden{Generation: 1})

	st := s.Snapshot()
	if !st.Toast.Show || st.Toast.Message != "second" {
		t.Errorf("toast = %+v, want second visible", st.Toast)
	}

	mustDispatch(t, s, ToastHidden{Generation: 2})
	if s.Snapshot().Toast.Show {
		t.Error("toast still visible")
	}
}

func TestSessions(t *testing.T) {
	s := newTestStore(t)
	mustDispatch(t, s, SessionsFulfilled{Sessions: []models.Session{{ID: "s1"}}})
	mustDispatch(t, s, SessionCreated{Session: models.Session{ID: "s2", ParentID: "s1"}})

	st := s.Snapshot()
	if len(st.Sessions.Sessions) != 2 || st.Sessions.ActiveID != "s2" {
		t.Errorf("sessions = %+v", st.Sessions)
	}

	if err := s.Dispatch(SetSession{ID: "missing"}); !errors.Is(err, apperr.ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
	mustDispatch(t, s, SetSession{ID: "s1"})
	snap := s.Snapshot()
	if got, _ := snap.ActiveSession(); got.ID != "s1" {
		t.Errorf("active = %q, want s1", got.ID)
	}

	mustDispatch(t, s, SessionsPending{})
	if n := len(s.Snapshot().Sessions.Sessions); n != 0 {
		t.Errorf("pending kept %d sessions", n)
	}
}

func TestCanvasReducers(t *testing.T) {
	s := newTestStore(t)
	mustDispatch(t, s, SetCanvasDimensions{Width: 1024, Height: 768})
	mustDispatch(t, s, SetCanvasScale{Scale: 1.5})
	mustDispatch(t, s, SetCanvasDragging{Dragging: true})

	c := s.Snapshot().Canvas
	if c.Width != 1024 || c.Height != 768 || c.Scale != 1.5 || !c.IsDragging {
		t.Errorf("canvas = %+v", c)
	}
	if err := s.Dispatch(SetCanvasScale{Scale: 0}); !errors.Is(err, apperr.ErrInvalidRequest) {
		t.Errorf("err = %v, want ErrInvalidRequest", err)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := newTestStore(t)
	mustDispatch(t, s, DatasetsFulfilled{Datasets: []models.Dataset{{ID: "ocean_01"}}})
	mustDispatch(t, s, DatasetInfoFulfilled{DatasetID: "ocean_01", Info: oceanInfo(), Activate: true})
	mustDispatch(t, s, PlotFulfilled{Variable: "v", Key: "k", Ref: "r"})

	snap := s.Snapshot()
	snap.Data.Datasets[0].Info.Dims["depth"] = 1
	snap.Plots["v"].Images["k"] = "changed"

	st := s.Snapshot()
	if st.Data.Datasets[0].Info.Dims["depth"] != 40 {
		t.Error("snapshot aliases dataset info")
	}
	if st.Plots["v"].Images["k"] != "r" {
		t.Error("snapshot aliases plot images")
	}
}

func TestSubscribe(t *testing.T) {
	s := newTestStore(t)
	ch, cancel := s.Subscribe(4)
	defer cancel()

	mustDispatch(t, s, ToastShown{Message: "hi", Type: models.ToastInfo, Generation: 1})
	c := <-ch
	if c.Slice != SliceToast || c.Action != "toast/openToast/pending" {
		t.Errorf("change = %+v", c)
	}

	// Rejected and stale actions publish nothing.
	_ = s.Dispatch(SetSession{ID: "missing"})
	mustDispatch(t, s, ToastHidden{Generation: 99})
	select {
	case c := <-ch:
		t.Errorf("unexpected change %+v", c)
	default:
	}

	cancel()
	if _, ok := <-ch; ok {
		t.Error("channel open after cancel")
	}
}

func TestPlotResetsOnDatasetChange(t *testing.T) {
	s := newTestStore(t)
	mustDispatch(t, s, PlotFulfilled{Dataset: "a", Variable: "temp", Key: "k", Ref: "r1"})
	mustDispatch(t, s, PlotPending{Dataset: "b", Variable: "temp", Key: "k"})

	p := s.Snapshot().Plots["temp"]
	if p.Dataset != "b" {
		t.Errorf("dataset = %q, want b", p.Dataset)
	}
	if _, ok := p.Images["k"]; ok {
		t.Error("image of previous dataset survived")
	}

	// Evicting an entry of the old dataset is a no-op.
	mustDispatch(t, s, PlotFulfilled{Dataset: "b", Variable: "temp", Key: "k", Ref: "r2"})
	mustDispatch(t, s, PlotEvicted{Dataset: "a", Variable: "temp", Key: "k"})
	if got := s.Snapshot().Plots["temp"].Images["k"]; got != "r2" {
		t.Errorf("image = %q, want r2", got)
	}
}
