package internal

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/starford/ncdash/internal/dashboard"
	"github.com/starford/ncdash/internal/testutil"
)

func TestBuildWiresService(t *testing.T) {
	fake := testutil.NewFakeBackend(t)
	dir := t.TempDir()

	cfg := NewDefaultConfig()
	cfg.Backend.BaseURL = fake.URL
	cfg.Blobs.Path = filepath.Join(dir, "blobs")
	cfg.SQLite.Path = filepath.Join(dir, "db", "ncdash.db")
	cfg.Blobs.URLPrefix = "/images/"
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	comps, err := Build(cfg, NewLogger(cfg, io.Discard))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(func() { _ = comps.Close() })

	ctx := context.Background()
	if _, err := comps.Service.EnsureInfo(ctx, "ocean_01"); err != nil {
		t.Fatalf("EnsureInfo: %v", err)
	}
	res, err := comps.Service.GeneratePlot(ctx, dashboard.PlotParams{Dataset: "ocean_01", Variable: "water_temp"})
	if err != nil {
		t.Fatalf("GeneratePlot: %v", err)
	}
	if res.Ref != "/images/"+res.BlobID {
		t.Errorf("ref = %q, want prefix /images/", res.Ref)
	}
	if !comps.Blobs.Has(res.BlobID) {
		t.Error("blob not stored")
	}
	row, err := comps.Catalog.Lookup("ocean_01", "water_temp", res.Key)
	if err != nil || row == nil || row.BlobID != res.BlobID {
		t.Errorf("catalog row = %+v, %v", row, err)
	}
}
