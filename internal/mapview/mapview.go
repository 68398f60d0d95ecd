// Package mapview is the view-model of the plot map: an OSM base layer, the
// rendered image as a static EPSG:4326 layer and a vector layer holding a
// drawn transect.
package mapview

import (
	"fmt"
	"sync"

	"github.com/ctessum/geom"

	"github.com/starford/ncdash/internal/apperr"
)

const (
	// Projection of the image layer and the view.
	Projection = "EPSG:4326"
	// DefaultZoom is the initial view zoom.
	DefaultZoom = 5
	// OSMTileURL is the base layer tile template.
	OSMTileURL = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"
)

// TileLayer is the base map.
type TileLayer struct {
	Source string `json:"source"`
	URL    string `json:"url"`
}

// ImageLayer places a rendered image on its geographic extent.
type ImageLayer struct {
	URL        string      `json:"url"`
	Projection string      `json:"projection"`
	Extent     geom.Bounds `json:"-"`
	Revision   int         `json:"revision"`
}

// ExtentArray returns the extent as [minX, minY, maxX, maxY].
func (l ImageLayer) ExtentArray() [4]float64 {
	return [4]float64{l.Extent.Min.X, l.Extent.Min.Y, l.Extent.Max.X, l.Extent.Max.Y}
}

// View is the map camera.
type View struct {
	Center     geom.Point `json:"-"`
	Zoom       float64    `json:"zoom"`
	Projection string     `json:"projection"`
}

// Transect is a drawn line as two [lat, lon] pairs.
type Transect [2][2]float64

// DrawFunc receives a completed or modified transect.
type DrawFunc func(Transect)

// Map is the map view-model. It is safe for concurrent use.
type Map struct {
	mu       sync.Mutex
	base     TileLayer
	image    ImageLayer
	view     View
	lines    []geom.LineString
	drawing  bool
	draft    geom.LineString
	onDraw   DrawFunc
	revision int
}

// New builds a map showing imageRef over the box spanned by lat and lon,
// each a [first, last] pair. The view is centred on the box at DefaultZoom.
func New(imageRef string, lat, lon []float64) (*Map, error) {
	m := &Map{base: TileLayer{Source: "osm", URL: OSMTileURL}}
	if err := m.SetImage(imageRef, lat, lon); err != nil {
		return nil, err
	}
	b := m.image.Extent
	m.view = View{
		Center:     geom.Point{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2},
		Zoom:       DefaultZoom,
		Projection: Projection,
	}
	return m, nil
}

// ExtentFromCoords reduces full coordinate arrays to their [first, last]
// pairs.
func ExtentFromCoords(lat, lon []float64) (latPair, lonPair []float64, err error) {
	if len(lat) == 0 || len(lon) == 0 {
		return nil, nil, fmt.Errorf("mapview: empty coordinates: %w", apperr.ErrInvalidRequest)
	}
	return []float64{lat[0], lat[len(lat)-1]}, []float64{lon[0], lon[len(lon)-1]}, nil
}

// SetImage replaces the image layer source. The previous source is discarded,
// never updated in place; the view is left alone.
func (m *Map) SetImage(imageRef string, lat, lon []float64) error {
	if len(lat) < 2 || len(lon) < 2 {
		return fmt.Errorf("mapview: need [first, last] lat and lon, got %d/%d: %w", len(lat), len(lon), apperr.ErrInvalidRequest)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revision++
	m.image = ImageLayer{
		URL:        imageRef,
		Projection: Projection,
		Extent: geom.Bounds{
			Min: geom.Point{X: lon[0], Y: lat[0]},
			Max: geom.Point{X: lon[1], Y: lat[1]},
		},
		Revision: m.revision,
	}
	return nil
}

// Image returns the current image layer.
func (m *Map) Image() ImageLayer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.image
}

// View returns the map camera.
func (m *Map) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view
}

// Base returns the base tile layer.
func (m *Map) Base() TileLayer {
	return m.base
}
