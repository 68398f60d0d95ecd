package catalog

import (
	"os"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "ncdash-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM images`).Scan(&count); err != nil {
		t.Fatalf("images table missing: %v", err)
	}
}

func TestUpsertAndLookup(t *testing.T) {
	db := testDB(t)
	row := ImageRow{DatasetID: "ocean_01", Variable: "water_temp", Key: "depth_0_time_0", BlobID: "abc"}
	if err := db.Upsert(row); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	got, err := db.Lookup("ocean_01", "water_temp", "depth_0_time_0")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got == nil {
		t.Fatal("Lookup returned nil")
	}
	if got.BlobID != "abc" {
		t.Errorf("blob = %q, want %q", got.BlobID, "abc")
	}
	if got.Kind != KindPlot {
		t.Errorf("kind = %q, want %q", got.Kind, KindPlot)
	}
}

func TestUpsertReplaces(t *testing.T) {
	db := testDB(t)
	_ = db.Upsert(ImageRow{DatasetID: "d", Variable: "v", Key: "k", BlobID: "one"})
	_ = db.Upsert(ImageRow{DatasetID: "d", Variable: "v", Key: "k", BlobID: "two"})

	rows, err := db.List("d", "v")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].BlobID != "two" {
		t.Errorf("blob = %q, want %q", rows[0].BlobID, "two")
	}
}

func TestLookupMissing(t *testing.T) {
	db := testDB(t)
	got, err := db.Lookup("d", "v", "nope")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}

func TestListByDataset(t *testing.T) {
	db := testDB(t)
	now := time.Now().UTC()
	_ = db.Upsert(ImageRow{DatasetID: "d", Variable: "a", Key: "k1", BlobID: "1", CreatedAt: now})
	_ = db.Upsert(ImageRow{DatasetID: "d", Variable: "b", Key: "k2", BlobID: "2", CreatedAt: now.Add(time.Second)})
	_ = db.Upsert(ImageRow{DatasetID: "other", Variable: "a", Key: "k1", BlobID: "3", CreatedAt: now})

	all, err := db.List("d", "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("rows = %d, want 2", len(all))
	}
	if all[0].Variable != "a" || all[1].Variable != "b" {
		t.Errorf("order = %s,%s, want a,b", all[0].Variable, all[1].Variable)
	}

	only, _ := db.List("d", "b")
	if len(only) != 1 || only[0].Key != "k2" {
		t.Errorf("List(d, b) = %+v", only)
	}
}

func TestSearch(t *testing.T) {
	db := testDB(t)
	_ = db.Upsert(ImageRow{DatasetID: "ocean_01", Variable: "water_temp", Key: "depth_0_time_0", BlobID: "1"})
	_ = db.Upsert(ImageRow{DatasetID: "atmos_02", Variable: "air_temp", Key: "_time_3", BlobID: "2"})

	rows, err := db.Search("water", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(rows) != 1 || rows[0].DatasetID != "ocean_01" {
		t.Errorf("Search(water) = %+v", rows)
	}

	rows, _ = db.Search("temp", 10)
	if len(rows) != 2 {
		t.Errorf("Search(temp) = %d rows, want 2", len(rows))
	}
}

func TestDeleteByBlob(t *testing.T) {
	db := testDB(t)
	_ = db.Upsert(ImageRow{DatasetID: "d", Variable: "v", Key: "k1", BlobID: "shared"})
	_ = db.Upsert(ImageRow{DatasetID: "d", Variable: "w", Key: "k1", BlobID: "shared"})
	_ = db.Upsert(ImageRow{DatasetID: "d", Variable: "v", Key: "k2", BlobID: "other"})

	n, err := db.DeleteByBlob("shared")
	if err != nil {
		t.Fatalf("DeleteByBlob: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}
	ids, _ := db.AllBlobIDs()
	if _, ok := ids["shared"]; ok {
		t.Error("shared still referenced")
	}
	if _, ok := ids["other"]; !ok {
		t.Error("other missing")
	}
}
