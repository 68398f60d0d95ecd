package mapview

import (
	"errors"
	"math"
	"testing"

	"github.com/starford/ncdash/internal/apperr"
)

func TestNewExtentAndCenter(t *testing.T) {
	m, err := New("/blobs/abc", []float64{10, 20}, []float64{-80, -60})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ext := m.Image().ExtentArray()
	want := [4]float64{-80, 10, -60, 20}
	if ext != want {
		t.Errorf("extent = %v, want %v", ext, want)
	}
	v := m.View()
	if v.Center.X != -70 || v.Center.Y != 15 {
		t.Errorf("center = %v, want (-70, 15)", v.Center)
	}
	if v.Zoom != 5 || v.Projection != "EPSG:4326" {
		t.Errorf("view = %+v", v)
	}
	if m.Image().Projection != "EPSG:4326" {
		t.Errorf("image projection = %q", m.Image().Projection)
	}
}

func TestNewRejectsShortCoords(t *testing.T) {
	if _, err := New("x", []float64{1}, []float64{1, 2}); !errors.Is(err, apperr.ErrInvalidRequest) {
		t.Errorf("err = %v, want ErrInvalidRequest", err)
	}
}

func TestSetImageRecreatesSource(t *testing.T) {
	m, _ := New("/blobs/a", []float64{0, 1}, []float64{0, 1})
	first := m.Image()
	if err := m.SetImage("/blobs/b", []float64{5, 6}, []float64{7, 8}); err != nil {
		t.Fatal(err)
	}
	second := m.Image()
	if second.URL != "/blobs/b" || second.Revision == first.Revision {
		t.Errorf("image = %+v, want new source", second)
	}
	if second.ExtentArray() != [4]float64{7, 5, 8, 6} {
		t.Errorf("extent = %v", second.ExtentArray())
	}
	if c := m.View().Center; c.X != 0.5 || c.Y != 0.5 {
		t.Errorf("center moved to %v", c)
	}
}

func TestExtentFromCoords(t *testing.T) {
	lat, lon, err := ExtentFromCoords([]float64{1, 2, 3}, []float64{9, 8, 7, 6})
	if err != nil {
		t.Fatal(err)
	}
	if lat[0] != 1 || lat[1] != 3 || lon[0] != 9 || lon[1] != 6 {
		t.Errorf("lat = %v, lon = %v", lat, lon)
	}
	if _, _, err := ExtentFromCoords(nil, []float64{1}); err == nil {
		t.Error("expected error for empty lat")
	}
}

func TestDrawTwoPointTransect(t *testing.T) {
	m, _ := New("x", []float64{0, 1}, []float64{0, 1})
	var got []Transect
	m.EnableDrawing(func(tr Transect) { got = append(got, tr) })

	tr, err := m.AddPoint(-80, 10)
	if err != nil || tr != nil {
		t.Fatalf("first point = %v, %v", tr, err)
	}
	tr, err = m.AddPoint(-60, 20)
	if err != nil || tr == nil {
		t.Fatalf("second point = %v, %v", tr, err)
	}
	want := Transect{{10, -80}, {20, -60}}
	if *tr != want {
		t.Errorf("transect = %v, want %v", *tr, want)
	}
	if len(got) != 1 || got[0] != want {
		t.Errorf("callback = %v", got)
	}
	if len(m.Lines()) != 1 {
		t.Errorf("lines = %d, want 1", len(m.Lines()))
	}
}

func TestModifyReportsAgain(t *testing.T) {
	m, _ := New("x", []float64{0, 1}, []float64{0, 1})
	var got []Transect
	m.EnableDrawing(func(tr Transect) { got = append(got, tr) })
	_, _ = m.AddPoint(0, 0)
	_, _ = m.AddPoint(3, 4)

	tr, err := m.ModifyPoint(1, 6, 8)
	if err != nil {
		t.Fatal(err)
	}
	if tr[1] != [2]float64{8, 6} {
		t.Errorf("modified = %v", tr)
	}
	if len(got) != 2 {
		t.Errorf("callbacks = %d, want 2", len(got))
	}
	if math.Abs(tr.Length()-10) > 1e-9 {
		t.Errorf("length = %v, want 10", tr.Length())
	}
}

func TestEnableDrawingClearsAndClear(t *testing.T) {
	m, _ := New("x", []float64{0, 1}, []float64{0, 1})
	m.EnableDrawing(nil)
	_, _ = m.AddPoint(0, 0)
	_, _ = m.AddPoint(1, 1)

	m.EnableDrawing(nil)
	if len(m.Lines()) != 0 {
		t.Error("EnableDrawing kept old lines")
	}
	_, _ = m.AddPoint(0, 0)
	_, _ = m.AddPoint(1, 1)
	m.Clear()
	if len(m.Lines()) != 0 {
		t.Error("Clear kept lines")
	}

	m.DisableDrawing()
	if _, err := m.AddPoint(0, 0); !errors.Is(err, apperr.ErrInvalidRequest) {
		t.Errorf("err = %v, want ErrInvalidRequest", err)
	}
}

func TestStateSnapshot(t *testing.T) {
	m, _ := New("/blobs/a", []float64{10, 20}, []float64{-80, -60})
	st := m.State()
	if st.Base.Source != "osm" || st.Image.URL != "/blobs/a" {
		t.Errorf("state = %+v", st)
	}
	if st.View.Center != [2]float64{-70, 15} {
		t.Errorf("center = %v", st.View.Center)
	}
}
