package models

import "testing"

func TestImageKey(t *testing.T) {
	cases := []struct {
		dim   Dimension
		depth int
		time  int
		want  string
	}{
		{Dim4D, 0, 0, "depth_0_time_0"},
		{Dim4D, 3, 11, "depth_3_time_11"},
		{"", 1, 2, "depth_1_time_2"},
		{Dim3D, 9, 4, "_time_4"},
		{Dim1D, 9, 7, "1d_time_7"},
	}
	for _, c := range cases {
		if got := ImageKey(c.dim, c.depth, c.time); got != c.want {
			t.Errorf("ImageKey(%q, %d, %d) = %q, want %q", c.dim, c.depth, c.time, got, c.want)
		}
	}
}

func TestConvertWrapsVariablesUnchecked(t *testing.T) {
	raw := RawDatasetInfo{
		Dims: map[string]int{"depth": 40, "time": 12},
		VariablesInfo: map[string][]string{
			"water_temp": {"time", "depth", "lat", "lon"},
			"surf_el":    {"time", "lat", "lon"},
		},
	}
	info := raw.Convert()
	if len(info.VariablesInfo) != 2 {
		t.Fatalf("variables = %d, want 2", len(info.VariablesInfo))
	}
	for name, v := range info.VariablesInfo {
		if v.Checked {
			t.Errorf("%s checked, want false", name)
		}
		if len(v.Dimensions) != len(raw.VariablesInfo[name]) {
			t.Errorf("%s dims = %v, want %v", name, v.Dimensions, raw.VariablesInfo[name])
		}
	}

	// The converted info must not alias the raw arrays.
	raw.VariablesInfo["water_temp"][0] = "changed"
	if info.VariablesInfo["water_temp"].Dimensions[0] != "time" {
		t.Error("converted dimensions alias the raw slice")
	}
}

func TestConvertEmptyDimensions(t *testing.T) {
	raw := RawDatasetInfo{VariablesInfo: map[string][]string{"scalar": nil}}
	info := raw.Convert()
	v := info.VariablesInfo["scalar"]
	if v.Dimensions == nil || len(v.Dimensions) != 0 {
		t.Errorf("dimensions = %#v, want empty non-nil slice", v.Dimensions)
	}
}

func TestPlotCloneIsDeep(t *testing.T) {
	p := Plot{Images: map[string]string{"a": "1"}, Pending: map[string]bool{"b": true}}
	c := p.Clone()
	c.Images["a"] = "2"
	c.Pending["c"] = true
	if p.Images["a"] != "1" || len(p.Pending) != 1 {
		t.Error("clone shares maps with original")
	}
}
