package models

// FileMetadata describes the on-disk location and stat attributes of one
// physical file. Path is always folder path + RelPath.
type FileMetadata struct {
	Filename    string `json:"filename"`
	Ext         string `json:"ext"`
	Path        string `json:"path"`
	RelPath     string `json:"relPath"`
	MtimeMs     int64  `json:"mtimeMs"`
	CtimeMs     int64  `json:"ctimeMs"`
	BirthtimeMs int64  `json:"birthtimeMs"`
	Size        int64  `json:"size"`

	// WasModified is set during reconciliation when mtimeMs changed on a file
	// that already had a recorded mtime. Downstream it triggers re-extraction
	// of embedded metadata. Transient, never persisted.
	WasModified bool `json:"-"`
}

func (md *FileMetadata) Clone() *FileMetadata {
	clone := *md
	return &clone
}
