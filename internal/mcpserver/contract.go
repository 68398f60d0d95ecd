package mcpserver

// PlotKeysContract documents how generated images are keyed and which error
// codes the backend reports.
const PlotKeysContract = `# ncdash Plot Keys

Every generated image is stored per variable under an image key derived from
its dimension and indices.

## Image keys

| Dimension | Key | Example |
|---|---|---|
| 4d (default) | ` + "`" + `depth_{depth_index}_time_{time_index}` + "`" + ` | ` + "`" + `depth_0_time_3` + "`" + ` |
| 3d | ` + "`" + `_time_{time_index}` + "`" + ` | ` + "`" + `_time_3` + "`" + ` |
| 1d | ` + "`" + `1d_time_{time_index}` + "`" + ` | ` + "`" + `1d_time_3` + "`" + ` |

Rules:

1. **Call dataset_info first.** 4d plots check ` + "`" + `depth_index` + "`" + ` against
   ` + "`" + `dims.depth` + "`" + `; an index out of range is rejected without contacting
   the backend.
2. **Requests are idempotent.** Asking twice for the same dataset, variable
   and key returns the stored image (` + "`" + `cached: true` + "`" + `).
3. **One dataset per variable.** Plotting a variable of another dataset
   replaces its images.
4. **Transects** take two [lat, lon] points and are stored as the variable's
   current transect, not under an image key.

## Image references

A reference has the form ` + "`" + `/blobs/{sha256}` + "`" + `. The digest is the
SHA-256 of the image bytes, so identical images share one blob.

## Error codes

| Code | Meaning |
|---|---|
| ` + "`" + `INVALID_REQUEST` + "`" + ` | malformed parameters |
| ` + "`" + `INVALID_ROUTE` + "`" + ` | unknown backend route |
| ` + "`" + `INTERNAL_ERROR` + "`" + ` | backend failure |
| ` + "`" + `INVALID_DATASET` + "`" + ` | dataset cannot be read |
| ` + "`" + `EMPTY_DATASET_DIR` + "`" + ` | backend has no datasets |
| ` + "`" + `DATASET_NOT_FOUND` + "`" + ` | unknown dataset id |
| ` + "`" + `CACHE_NOT_FOUND` + "`" + ` | backend cache missing |
| ` + "`" + `CACHE_INDEX_ERROR` + "`" + ` | backend cache index broken |
| ` + "`" + `IMAGE_NOT_FOUND` + "`" + ` | image reference unknown |
| ` + "`" + `SESSION_NOT_FOUND` + "`" + ` | unknown session id |
`
