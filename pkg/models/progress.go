package models

// MediaProgress is one user's listening or reading position in a library
// item. Progress is a 0..1 fraction.
type MediaProgress struct {
	LibraryItemID string  `json:"libraryItemId"`
	Progress      float64 `json:"progress"`
	IsFinished    bool    `json:"isFinished"`
	FinishedAt    int64   `json:"finishedAt"`
	LastUpdate    int64   `json:"lastUpdate"`
}

// ProgressLookup resolves the progress record for an item, or nil when the
// item has never been opened. Catalog projections take one of these so they
// stay decoupled from wherever progress is stored.
type ProgressLookup func(libraryItemID string) *MediaProgress
