package models

// File types derived from a file's extension during scanning.
const (
	FileTypeAudio    = "audio"
	FileTypeEbook    = "ebook"
	FileTypeImage    = "image"
	FileTypeMetadata = "metadata"
	FileTypeText     = "text"
	FileTypeUnknown  = "unknown"
)

// LibraryFile is one physical file tracked by a LibraryItem. Ino is the
// filesystem inode and is the stable identity across renames within the same
// filesystem; it is never zero once set from a real scan.
type LibraryFile struct {
	Ino       uint64        `json:"ino"`
	FileType  string        `json:"fileType"`
	Metadata  *FileMetadata `json:"metadata"`
	AddedAt   int64         `json:"addedAt"`
	UpdatedAt int64         `json:"updatedAt"`
}

func (lf *LibraryFile) Clone() *LibraryFile {
	clone := *lf
	clone.Metadata = lf.Metadata.Clone()
	return &clone
}

// IsMediaFile reports whether the file is playable or readable media.
func (lf *LibraryFile) IsMediaFile() bool {
	return lf.FileType == FileTypeAudio || lf.FileType == FileTypeEbook
}

// IsMetadataFile reports whether the file carries sidecar or plain-text
// metadata that SyncItemFiles should parse.
func (lf *LibraryFile) IsMetadataFile() bool {
	return lf.FileType == FileTypeMetadata || lf.FileType == FileTypeText
}
