// Package testutil provides shared test helpers: temporary catalogs, blob
// stores and a fake image/metadata backend.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/starford/ncdash/internal/blobs"
	"github.com/starford/ncdash/internal/catalog"
	"github.com/starford/ncdash/internal/models"
)

// TestDB creates a temporary SQLite catalog that is automatically cleaned up.
func TestDB(t *testing.T) *catalog.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "ncdash-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := catalog.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestBlobs creates a blob store in a temporary directory.
func TestBlobs(t *testing.T) *blobs.FS {
	t.Helper()
	store, err := blobs.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

// FakeBackend is an httptest server speaking the backend protocol. It serves
// one 4-D dataset, ocean_01, and counts requests per path.
type FakeBackend struct {
	*httptest.Server

	mu       sync.Mutex
	calls    map[string]int
	bodies   map[string][]map[string]any
	failures map[string]string

	// Block, when set, is received from before every image is returned.
	Block chan struct{}

	Datasets []models.Dataset
	Info     map[string]models.RawDatasetInfo
	LatLon   models.LatLon
	Sessions []models.Session
}

// NewFakeBackend starts a FakeBackend closed at test cleanup.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	f := &FakeBackend{
		calls:    map[string]int{},
		bodies:   map[string][]map[string]any{},
		failures: map[string]string{},
		Datasets: []models.Dataset{
			{ID: "ocean_01", Name: "Ocean model", Path: "/data/ocean_01.nc"},
			{ID: "atmos_02", Name: "Atmosphere", Path: "/data/atmos_02.nc"},
		},
		Info: map[string]models.RawDatasetInfo{
			"ocean_01": {
				Attrs: map[string]any{"title": "HYCOM"},
				Dims:  map[string]int{"depth": 40, "time": 12, "lat": 2, "lon": 2},
				VariablesInfo: map[string][]string{
					"water_temp": {"time", "depth", "lat", "lon"},
					"surf_el":    {"time", "lat", "lon"},
				},
			},
		},
		LatLon: models.LatLon{Lat: []float64{10, 20}, Lon: []float64{-80, -60}},
		Sessions: []models.Session{
			{ID: "s1", DatasetID: "ocean_01", CreatedAt: "2024-05-01 10:00:00", Params: []models.SessionParams{}},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /data/list", f.handle(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"datasets": f.Datasets})
	}))
	mux.HandleFunc("GET /data/info", f.handle(func(w http.ResponseWriter, r *http.Request) {
		info, ok := f.Info[r.URL.Query().Get("dataset_id")]
		if !ok {
			detail(w, http.StatusNotFound, "DATASET_NOT_FOUND")
			return
		}
		writeJSON(w, info)
	}))
	mux.HandleFunc("GET /data/info/lat_lon", f.handle(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, f.LatLon)
	}))
	for _, p := range []string{"/image/generate", "/image/generate/3d", "/image/generate/1d", "/image/generate/4d/transect"} {
		mux.HandleFunc("POST "+p, f.handle(f.image))
	}
	mux.HandleFunc("GET /session/list", f.handle(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, f.Sessions)
	}))
	mux.HandleFunc("GET /session/create", f.handle(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		s := models.Session{
			ID:        "s-new",
			ParentID:  q.Get("parent_id"),
			DatasetID: q.Get("dataset_id"),
			CreatedAt: "2024-05-02 09:30:00",
			Params:    []models.SessionParams{},
		}
		writeJSON(w, s)
	}))

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

// Fail makes every request to path answer with status 500 and code.
func (f *FakeBackend) Fail(path, code string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[path] = code
}

// Calls returns the number of requests received for path.
func (f *FakeBackend) Calls(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

// Bodies returns the decoded JSON bodies posted to path.
func (f *FakeBackend) Bodies(path string) []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.bodies[path]...)
}

func (f *FakeBackend) handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls[r.URL.Path]++
		if r.Method == http.MethodPost {
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			f.bodies[r.URL.Path] = append(f.bodies[r.URL.Path], body)
		}
		code, fail := f.failures[r.URL.Path]
		f.mu.Unlock()

		if fail {
			detail(w, http.StatusInternalServerError, code)
			return
		}
		next(w, r)
	}
}

// image answers with a PNG-like payload unique to the request.
func (f *FakeBackend) image(w http.ResponseWriter, r *http.Request) {
	if f.Block != nil {
		<-f.Block
	}
	f.mu.Lock()
	n := f.calls[r.URL.Path]
	bodies := f.bodies[r.URL.Path]
	f.mu.Unlock()

	payload, _ := json.Marshal(bodies[len(bodies)-1])
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write([]byte("\x89PNG\r\n\x1a\n"))
	_, _ = w.Write(payload)
	_, _ = w.Write([]byte{byte(n)})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func detail(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": code})
}
