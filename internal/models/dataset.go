// Package models defines the domain types for ncdash.
package models

// Dataset is a named, addressable source of gridded data known to the backend.
type Dataset struct {
	ID   string       `json:"id"`
	Name string       `json:"name"`
	Path string       `json:"path"`
	Info *DatasetInfo `json:"info,omitempty"`
}

// VariableState is a dataset variable augmented with UI selection state.
type VariableState struct {
	Checked    bool     `json:"checked"`
	Dimensions []string `json:"dimensions"`
}

// DatasetInfo holds dimensional and attribute metadata for a dataset.
type DatasetInfo struct {
	Attrs         map[string]any           `json:"attrs,omitempty"`
	Dims          map[string]int           `json:"dims"`
	VariablesInfo map[string]VariableState `json:"variables_info"`
	Lat           []float64                `json:"lat"`
	Lon           []float64                `json:"lon"`
}

// RawDatasetInfo is DatasetInfo as the backend sends it: variables map to
// bare dimension-name arrays.
type RawDatasetInfo struct {
	Attrs         map[string]any      `json:"attrs,omitempty"`
	Dims          map[string]int      `json:"dims"`
	VariablesInfo map[string][]string `json:"variables_info"`
	Lat           []float64           `json:"lat"`
	Lon           []float64           `json:"lon"`
}

// Convert wraps every variable in an unchecked VariableState. The result
// shares no slices with r.
func (r RawDatasetInfo) Convert() *DatasetInfo {
	info := &DatasetInfo{
		Attrs:         make(map[string]any, len(r.Attrs)),
		Dims:          make(map[string]int, len(r.Dims)),
		VariablesInfo: make(map[string]VariableState, len(r.VariablesInfo)),
		Lat:           append([]float64(nil), r.Lat...),
		Lon:           append([]float64(nil), r.Lon...),
	}
	for k, v := range r.Attrs {
		info.Attrs[k] = v
	}
	for k, v := range r.Dims {
		info.Dims[k] = v
	}
	for name, dims := range r.VariablesInfo {
		info.VariablesInfo[name] = VariableState{
			Checked:    false,
			Dimensions: append([]string{}, dims...),
		}
	}
	return info
}

// Clone returns a deep copy of i.
func (i *DatasetInfo) Clone() *DatasetInfo {
	if i == nil {
		return nil
	}
	out := &DatasetInfo{
		Attrs:         make(map[string]any, len(i.Attrs)),
		Dims:          make(map[string]int, len(i.Dims)),
		VariablesInfo: make(map[string]VariableState, len(i.VariablesInfo)),
		Lat:           append([]float64(nil), i.Lat...),
		Lon:           append([]float64(nil), i.Lon...),
	}
	for k, v := range i.Attrs {
		out.Attrs[k] = v
	}
	for k, v := range i.Dims {
		out.Dims[k] = v
	}
	for k, v := range i.VariablesInfo {
		v.Dimensions = append([]string{}, v.Dimensions...)
		out.VariablesInfo[k] = v
	}
	return out
}

// Clone returns a deep copy of d.
func (d Dataset) Clone() Dataset {
	d.Info = d.Info.Clone()
	return d
}

// LatLon is the coordinate payload of /data/info/lat_lon.
type LatLon struct {
	Lat []float64 `json:"lat"`
	Lon []float64 `json:"lon"`
}
