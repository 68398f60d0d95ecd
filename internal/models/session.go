package models

// SessionParams are the visualization settings of a session.
type SessionParams struct {
	Colorspace string `json:"colorspace"`
	Variable   string `json:"variable"`
}

// CachedDataset is a pre-rendered set of images for a dataset.
type CachedDataset struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	CreatedAt   string  `json:"created_at"`
	Images      []Image `json:"images"`
}

// Session is a user's visualization session on one dataset.
type Session struct {
	ID        string          `json:"id"`
	ParentID  string          `json:"parent_id,omitempty"`
	CreatedAt string          `json:"created_at"`
	DatasetID string          `json:"dataset_id"`
	Params    []SessionParams `json:"params"`
	Cache     *CachedDataset  `json:"cache,omitempty"`
}

// Clone returns a deep copy of s.
func (s Session) Clone() Session {
	s.Params = append([]SessionParams(nil), s.Params...)
	if s.Cache != nil {
		c := *s.Cache
		c.Images = append([]Image(nil), c.Images...)
		s.Cache = &c
	}
	return s
}
