package mapview

import (
	"fmt"

	"github.com/ctessum/geom"

	"github.com/starford/ncdash/internal/apperr"
)

// maxPoints is the number of vertices of a transect line.
const maxPoints = 2

// EnableDrawing clears drawn geometry and starts a two-point line draw.
// cb receives the line when it is completed and whenever it is modified.
func (m *Map) EnableDrawing(cb DrawFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = nil
	m.draft = nil
	m.drawing = true
	m.onDraw = cb
}

// DisableDrawing stops drawing. Completed lines stay on the vector layer.
func (m *Map) DisableDrawing() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drawing = false
	m.draft = nil
	m.onDraw = nil
}

// Drawing reports whether drawing is enabled.
func (m *Map) Drawing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.drawing
}

// AddPoint adds a vertex in map order (x = lon, y = lat). The second point
// completes the line; its transect is returned and reported to the callback.
func (m *Map) AddPoint(x, y float64) (*Transect, error) {
	m.mu.Lock()
	if !m.drawing {
		m.mu.Unlock()
		return nil, fmt.Errorf("mapview: drawing disabled: %w", apperr.ErrInvalidRequest)
	}
	m.draft = append(m.draft, geom.Point{X: x, Y: y})
	if len(m.draft) < maxPoints {
		m.mu.Unlock()
		return nil, nil
	}
	line := m.draft
	m.draft = nil
	m.lines = append(m.lines, line)
	cb := m.onDraw
	m.mu.Unlock()

	t := ToTransect(line)
	if cb != nil {
		cb(t)
	}
	return &t, nil
}

// ModifyPoint moves vertex i of the last drawn line and reports the result.
func (m *Map) ModifyPoint(i int, x, y float64) (*Transect, error) {
	m.mu.Lock()
	if len(m.lines) == 0 {
		m.mu.Unlock()
		return nil, fmt.Errorf("mapview: no line drawn: %w", apperr.ErrNotFound)
	}
	line := m.lines[len(m.lines)-1]
	if i < 0 || i >= len(line) {
		m.mu.Unlock()
		return nil, fmt.Errorf("mapview: vertex %d out of range: %w", i, apperr.ErrInvalidRequest)
	}
	moved := append(geom.LineString(nil), line...)
	moved[i] = geom.Point{X: x, Y: y}
	m.lines[len(m.lines)-1] = moved
	cb := m.onDraw
	m.mu.Unlock()

	t := ToTransect(moved)
	if cb != nil {
		cb(t)
	}
	return &t, nil
}

// Clear removes all drawn geometry.
func (m *Map) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = nil
	m.draft = nil
}

// Lines returns the drawn lines in map order.
func (m *Map) Lines() []geom.LineString {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]geom.LineString, len(m.lines))
	for i, l := range m.lines {
		out[i] = append(geom.LineString(nil), l...)
	}
	return out
}

// ToTransect converts the first two vertices of a map-order line to
// [lat, lon] pairs.
func ToTransect(line geom.LineString) Transect {
	var t Transect
	for i := 0; i < maxPoints && i < len(line); i++ {
		t[i] = [2]float64{line[i].Y, line[i].X}
	}
	return t
}

// FromXY builds a map-order line from [x, y] pairs.
func FromXY(points [][2]float64) geom.LineString {
	line := make(geom.LineString, len(points))
	for i, p := range points {
		line[i] = geom.Point{X: p[0], Y: p[1]}
	}
	return line
}

// Length returns the planar length of the transect in degrees.
func (t Transect) Length() float64 {
	return geom.LineString{
		{X: t[0][1], Y: t[0][0]},
		{X: t[1][1], Y: t[1][0]},
	}.Length()
}

// Points returns the transect as a slice of [lat, lon] pairs.
func (t Transect) Points() [][2]float64 {
	return [][2]float64{t[0], t[1]}
}
