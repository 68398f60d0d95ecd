package mapview

// State is the JSON form of a Map.
type State struct {
	Base    TileLayer    `json:"base"`
	Image   ImageState   `json:"image"`
	View    ViewState    `json:"view"`
	Drawing bool         `json:"drawing"`
	Lines   [][2]float64 `json:"lines,omitempty"`
}

// ImageState is the JSON form of the image layer.
type ImageState struct {
	URL        string     `json:"url"`
	Projection string     `json:"projection"`
	Extent     [4]float64 `json:"extent"`
	Revision   int        `json:"revision"`
}

// ViewState is the JSON form of the view.
type ViewState struct {
	Center     [2]float64 `json:"center"`
	Zoom       float64    `json:"zoom"`
	Projection string     `json:"projection"`
}

// State returns a serializable snapshot of m. Lines are flattened to their
// vertices in map order.
func (m *Map) State() State {
	img := m.Image()
	v := m.View()
	st := State{
		Base: m.Base(),
		Image: ImageState{
			URL:        img.URL,
			Projection: img.Projection,
			Extent:     img.ExtentArray(),
			Revision:   img.Revision,
		},
		View: ViewState{
			Center:     [2]float64{v.Center.X, v.Center.Y},
			Zoom:       v.Zoom,
			Projection: v.Projection,
		},
		Drawing: m.Drawing(),
	}
	for _, l := range m.Lines() {
		for _, p := range l {
			st.Lines = append(st.Lines, [2]float64{p.X, p.Y})
		}
	}
	return st
}
