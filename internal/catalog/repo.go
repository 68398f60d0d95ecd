package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Image kinds.
const (
	KindPlot     = "plot"
	KindTransect = "transect"
)

// ImageRow represents a row in the images table.
type ImageRow struct {
	DatasetID string
	Variable  string
	Key       string
	Kind      string
	BlobID    string
	CreatedAt time.Time
}

// Upsert inserts or replaces the image recorded for (dataset, variable, key).
func (db *DB) Upsert(r ImageRow) error {
	if r.Kind == "" {
		r.Kind = KindPlot
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := db.conn.Exec(`
		INSERT INTO images (dataset_id, variable, image_key, kind, blob_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(dataset_id, variable, image_key) DO UPDATE SET
			kind       = excluded.kind,
			blob_id    = excluded.blob_id,
			created_at = excluded.created_at
	`, r.DatasetID, r.Variable, r.Key, r.Kind, r.BlobID, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("catalog: upsert image: %w", err)
	}
	return nil
}

// Lookup returns the row for (dataset, variable, key), or nil when absent.
func (db *DB) Lookup(datasetID, variable, key string) (*ImageRow, error) {
	r := ImageRow{DatasetID: datasetID, Variable: variable, Key: key}
	err := db.conn.QueryRow(`
		SELECT kind, blob_id, created_at FROM images
		WHERE dataset_id = ? AND variable = ? AND image_key = ?
	`, datasetID, variable, key).Scan(&r.Kind, &r.BlobID, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: lookup: %w", err)
	}
	return &r, nil
}

// List returns every image of one variable, oldest first. An empty variable
// lists the whole dataset.
func (db *DB) List(datasetID, variable string) ([]ImageRow, error) {
	query := `SELECT dataset_id, variable, image_key, kind, blob_id, created_at FROM images WHERE dataset_id = ?`
	args := []any{datasetID}
	if variable != "" {
		query += ` AND variable = ?`
		args = append(args, variable)
	}
	query += ` ORDER BY created_at, image_key`
	return db.query(query, args...)
}

// Search matches query against dataset ids, variables and keys.
func (db *DB) Search(query string, limit int) ([]ImageRow, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	return db.query(`
		SELECT dataset_id, variable, image_key, kind, blob_id, created_at
		FROM images
		WHERE dataset_id LIKE ? OR variable LIKE ? OR image_key LIKE ?
		ORDER BY created_at DESC
		LIMIT ?
	`, like, like, like, limit)
}

// DeleteByBlob removes every row referencing blobID and reports how many.
func (db *DB) DeleteByBlob(blobID string) (int64, error) {
	res, err := db.conn.Exec(`DELETE FROM images WHERE blob_id = ?`, blobID)
	if err != nil {
		return 0, fmt.Errorf("catalog: delete by blob: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// AllBlobIDs returns every blob id referenced by the catalog.
func (db *DB) AllBlobIDs() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT DISTINCT blob_id FROM images`)
	if err != nil {
		return nil, fmt.Errorf("catalog: all blob ids: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}

func (db *DB) query(q string, args ...any) ([]ImageRow, error) {
	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: query: %w", err)
	}
	defer rows.Close()

	var out []ImageRow
	for rows.Next() {
		var r ImageRow
		if err := rows.Scan(&r.DatasetID, &r.Variable, &r.Key, &r.Kind, &r.BlobID, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
