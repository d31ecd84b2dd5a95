package models

// MediaFile is the view a media entity keeps over one of its item's library
// files. Every media file's inode must correspond to one tracked LibraryFile;
// reconciliation keeps the two in lockstep.
type MediaFile interface {
	Inode() uint64
	SetInode(ino uint64)
	FileMetadata() *FileMetadata
}

// Media is the capability surface shared by the Book and Podcast payloads of
// a LibraryItem. Dispatch is static per the item's media type tag.
type Media interface {
	MediaType() string

	// HasMediaFiles reports whether any playable or readable file remains.
	HasMediaFiles() bool

	// FindFileWithInode returns the media-file view for the given inode, or
	// nil when the inode is not represented.
	FindFileWithInode(ino uint64) MediaFile

	// RemoveFileWithInode drops any view referencing the inode and reports
	// whether one was removed.
	RemoveFileWithInode(ino uint64) bool

	// Cover and UpdateCover manage the cover image path. An empty path clears
	// the cover.
	Cover() string
	UpdateCover(path string)

	// RepairTrackList recomputes missing-track bookkeeping after files were
	// removed from the item.
	RepairTrackList()

	// SearchQuery reports whether the media matches a lowercased query.
	SearchQuery(query string) bool

	// ToSummary projects the facet-bearing fields used by the read side.
	ToSummary() *MediaSummary
}

// SeriesSequence names a series membership with its position in the series.
// Sequence stays a string; numeric coercion is a caller concern.
type SeriesSequence struct {
	Name     string `json:"name"`
	Sequence string `json:"sequence"`
}

// MediaSummary is the flattened, read-only projection of a media entity used
// by catalog filtering and sorting.
type MediaSummary struct {
	Title         string           `json:"title"`
	Subtitle      string           `json:"subtitle"`
	Authors       []string         `json:"authors"`
	Narrators     []string         `json:"narrators"`
	Series        []SeriesSequence `json:"series"`
	Genres        []string         `json:"genres"`
	Tags          []string         `json:"tags"`
	Language      string           `json:"language"`
	PublishedYear string           `json:"publishedYear"`
	CoverPath     string           `json:"coverPath"`
	NumMediaFiles int              `json:"numMediaFiles"`
}
