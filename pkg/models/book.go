package models

import (
	"sort"
	"strings"
)

// BookMetadata carries the descriptive metadata of a book. Sequence and
// PublishedYear stay strings as parsed from directory names.
type BookMetadata struct {
	Title         string           `json:"title"`
	Subtitle      string           `json:"subtitle"`
	Authors       []string         `json:"authors"`
	Narrators     []string         `json:"narrators"`
	Series        []SeriesSequence `json:"series"`
	Genres        []string         `json:"genres"`
	Language      string           `json:"language"`
	PublishedYear string           `json:"publishedYear"`
	Description   string           `json:"description"`
	Publisher     string           `json:"publisher"`
}

func (md *BookMetadata) HasAuthor(name string) bool {
	for _, a := range md.Authors {
		if a == name {
			return true
		}
	}
	return false
}

func (md *BookMetadata) HasNarrator(name string) bool {
	for _, n := range md.Narrators {
		if n == name {
			return true
		}
	}
	return false
}

func (md *BookMetadata) HasSeries(name string) bool {
	for _, s := range md.Series {
		if s.Name == name {
			return true
		}
	}
	return false
}

// SeriesSequenceFor returns the sequence string for the named series, or ""
// when the book is not part of it.
func (md *BookMetadata) SeriesSequenceFor(name string) string {
	for _, s := range md.Series {
		if s.Name == name {
			return s.Sequence
		}
	}
	return ""
}

// Book is the media payload of a book library item. AudioFiles and
// EbookFiles are views over a subset of the item's library files, keyed back
// by inode.
type Book struct {
	Metadata     *BookMetadata `json:"metadata"`
	CoverPath    string        `json:"coverPath"`
	Tags         []string      `json:"tags"`
	AudioFiles   []*AudioFile  `json:"audioFiles"`
	EbookFiles   []*EbookFile  `json:"ebookFiles"`
	MissingParts []int         `json:"missingParts"`
}

func NewBook() *Book {
	return &Book{Metadata: &BookMetadata{}}
}

func (b *Book) MediaType() string { return MediaTypeBook }

// SetScanMetadata seeds the book metadata from a directory-name parse. Only
// used when the item is first created; rescans never overwrite edits here.
func (b *Book) SetScanMetadata(meta *ScanMediaMetadata) {
	if meta == nil {
		return
	}
	b.Metadata.Title = meta.Title
	b.Metadata.Subtitle = meta.Subtitle
	b.Metadata.PublishedYear = meta.PublishedYear
	if meta.Author != "" {
		b.Metadata.Authors = []string{meta.Author}
	}
	if meta.Series != "" {
		b.Metadata.Series = []SeriesSequence{{Name: meta.Series, Sequence: meta.Sequence}}
	}
}

// Tracks returns the playable audio files ordered by track placement,
// excluding files marked invalid or excluded.
func (b *Book) Tracks() []*AudioFile {
	tracks := make([]*AudioFile, 0, len(b.AudioFiles))
	for _, af := range b.AudioFiles {
		if af.Invalid || af.Exclude {
			continue
		}
		tracks = append(tracks, af)
	}
	sort.SliceStable(tracks, func(i, j int) bool {
		if tracks[i].DiscNum() != tracks[j].DiscNum() {
			return tracks[i].DiscNum() < tracks[j].DiscNum()
		}
		return tracks[i].TrackNum() < tracks[j].TrackNum()
	})
	return tracks
}

func (b *Book) HasMediaFiles() bool {
	return len(b.Tracks()) > 0 || len(b.EbookFiles) > 0
}

func (b *Book) FindFileWithInode(ino uint64) MediaFile {
	for _, af := range b.AudioFiles {
		if af.Ino == ino {
			return af
		}
	}
	for _, ef := range b.EbookFiles {
		if ef.Ino == ino {
			return ef
		}
	}
	return nil
}

func (b *Book) RemoveFileWithInode(ino uint64) bool {
	for i, af := range b.AudioFiles {
		if af.Ino == ino {
			b.AudioFiles = append(b.AudioFiles[:i], b.AudioFiles[i+1:]...)
			return true
		}
	}
	for i, ef := range b.EbookFiles {
		if ef.Ino == ino {
			b.EbookFiles = append(b.EbookFiles[:i], b.EbookFiles[i+1:]...)
			return true
		}
	}
	return false
}

func (b *Book) Cover() string { return b.CoverPath }

func (b *Book) UpdateCover(path string) { b.CoverPath = path }

func (b *Book) AddAudioFile(af *AudioFile) {
	if af.Index == 0 {
		af.Index = len(b.AudioFiles) + 1
	}
	b.AudioFiles = append(b.AudioFiles, af)
}

func (b *Book) AddEbookFile(lf *LibraryFile) {
	b.EbookFiles = append(b.EbookFiles, NewEbookFileFromLibraryFile(lf))
}

// RepairTrackList recomputes the missing part indexes from the gaps in the
// remaining tracks' numbering. Tracks without a known number are ignored.
func (b *Book) RepairTrackList() {
	present := map[int]bool{}
	maxNum := 0
	for _, t := range b.Tracks() {
		num := t.TrackNum()
		if num <= 0 {
			continue
		}
		present[num] = true
		if num > maxNum {
			maxNum = num
		}
	}

	b.MissingParts = nil
	for i := 1; i <= maxNum; i++ {
		if !present[i] {
			b.MissingParts = append(b.MissingParts, i)
		}
	}
}

func (b *Book) SearchQuery(query string) bool {
	if strings.Contains(strings.ToLower(b.Metadata.Title), query) ||
		strings.Contains(strings.ToLower(b.Metadata.Subtitle), query) {
		return true
	}
	for _, a := range b.Metadata.Authors {
		if strings.Contains(strings.ToLower(a), query) {
			return true
		}
	}
	for _, n := range b.Metadata.Narrators {
		if strings.Contains(strings.ToLower(n), query) {
			return true
		}
	}
	for _, s := range b.Metadata.Series {
		if strings.Contains(strings.ToLower(s.Name), query) {
			return true
		}
	}
	return false
}

func (b *Book) ToSummary() *MediaSummary {
	return &MediaSummary{
		Title:         b.Metadata.Title,
		Subtitle:      b.Metadata.Subtitle,
		Authors:       b.Metadata.Authors,
		Narrators:     b.Metadata.Narrators,
		Series:        b.Metadata.Series,
		Genres:        b.Metadata.Genres,
		Tags:          b.Tags,
		Language:      b.Metadata.Language,
		PublishedYear: b.Metadata.PublishedYear,
		CoverPath:     b.CoverPath,
		NumMediaFiles: len(b.AudioFiles) + len(b.EbookFiles),
	}
}
