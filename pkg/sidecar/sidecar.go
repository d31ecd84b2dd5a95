package sidecar

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"

	"github.com/hearthbooks/hearth/pkg/models"
)

const (
	SidecarSuffix  = ".metadata.json"
	CurrentVersion = 1
)

// SeriesMetadata is one series membership in a sidecar.
type SeriesMetadata struct {
	Name     string `json:"name"`
	Sequence string `json:"sequence,omitempty"`
}

// BookSidecar is the user-editable metadata file stored next to a book's
// media files. Empty fields leave the corresponding book metadata untouched.
type BookSidecar struct {
	Version       int              `json:"version"`
	Title         string           `json:"title,omitempty"`
	Subtitle      string           `json:"subtitle,omitempty"`
	Authors       []string         `json:"authors,omitempty"`
	Narrators     []string         `json:"narrators,omitempty"`
	Series        []SeriesMetadata `json:"series,omitempty"`
	Genres        []string         `json:"genres,omitempty"`
	Tags          []string         `json:"tags,omitempty"`
	Language      string           `json:"language,omitempty"`
	PublishedYear string           `json:"publishedYear,omitempty"`
	Description   string           `json:"description,omitempty"`
	Publisher     string           `json:"publisher,omitempty"`
}

// BookSidecarPath returns the sidecar path for a book directory:
// {bookdir}/{dirname}.metadata.json.
func BookSidecarPath(bookDir string) string {
	return filepath.Join(bookDir, filepath.Base(bookDir)+SidecarSuffix)
}

// IsSidecarPath reports whether the path names a sidecar file.
func IsSidecarPath(path string) bool {
	base := filepath.Base(path)
	return len(base) > len(SidecarSuffix) && base[len(base)-len(SidecarSuffix):] == SidecarSuffix
}

// ReadBookSidecar reads and parses a book sidecar file.
// Returns nil, nil if the sidecar doesn't exist.
func ReadBookSidecar(bookDir string) (*BookSidecar, error) {
	return readSidecarFile(BookSidecarPath(bookDir))
}

// ReadSidecar reads a sidecar file at an explicit path, for callers that
// already know where the file is.
func ReadSidecar(path string) (*BookSidecar, error) {
	return readSidecarFile(path)
}

func readSidecarFile(path string) (*BookSidecar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WithStack(err)
	}

	var s BookSidecar
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.WithStack(err)
	}
	return &s, nil
}

// WriteBookSidecar writes a book sidecar file.
func WriteBookSidecar(bookDir string, s *BookSidecar) error {
	if s.Version == 0 {
		s.Version = CurrentVersion
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}

	// Sidecar files should be readable by users and other applications
	return errors.WithStack(os.WriteFile(BookSidecarPath(bookDir), data, 0644)) //nolint:gosec
}

// BookSidecarFromMetadata snapshots a book's metadata into sidecar form.
func BookSidecarFromMetadata(md *models.BookMetadata, tags []string) *BookSidecar {
	s := &BookSidecar{
		Version:       CurrentVersion,
		Title:         md.Title,
		Subtitle:      md.Subtitle,
		Authors:       md.Authors,
		Narrators:     md.Narrators,
		Genres:        md.Genres,
		Tags:          tags,
		Language:      md.Language,
		PublishedYear: md.PublishedYear,
		Description:   md.Description,
		Publisher:     md.Publisher,
	}
	for _, ss := range md.Series {
		s.Series = append(s.Series, SeriesMetadata{Name: ss.Name, Sequence: ss.Sequence})
	}
	return s
}

// ApplyToBook copies the sidecar's non-empty fields onto the book. Returns
// true when anything changed.
func (s *BookSidecar) ApplyToBook(book *models.Book) bool {
	md := book.Metadata
	updated := false

	setStr := func(dst *string, v string) {
		if v != "" && *dst != v {
			*dst = v
			updated = true
		}
	}
	setStr(&md.Title, s.Title)
	setStr(&md.Subtitle, s.Subtitle)
	setStr(&md.Language, s.Language)
	setStr(&md.PublishedYear, s.PublishedYear)
	setStr(&md.Description, s.Description)
	setStr(&md.Publisher, s.Publisher)

	for _, a := range s.Authors {
		if !md.HasAuthor(a) {
			md.Authors = append(md.Authors, a)
			updated = true
		}
	}
	for _, n := range s.Narrators {
		if !md.HasNarrator(n) {
			md.Narrators = append(md.Narrators, n)
			updated = true
		}
	}
	for _, ss := range s.Series {
		if !md.HasSeries(ss.Name) {
			md.Series = append(md.Series, models.SeriesSequence{Name: ss.Name, Sequence: ss.Sequence})
			updated = true
		}
	}
	if len(s.Genres) > 0 && !equalStrings(md.Genres, s.Genres) {
		md.Genres = s.Genres
		updated = true
	}
	if len(s.Tags) > 0 && !equalStrings(book.Tags, s.Tags) {
		book.Tags = s.Tags
		updated = true
	}

	return updated
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
