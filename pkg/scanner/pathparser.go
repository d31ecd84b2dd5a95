package scanner

import (
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/hearthbooks/hearth/pkg/models"
)

// ParsedMediaDir is what a candidate item directory's path yields before any
// file contents are read.
type ParsedMediaDir struct {
	Metadata *models.ScanMediaMetadata
	Path     string
	RelPath  string
}

var (
	// "2 - Title", "0.5 - Title"; only meaningful inside a series directory.
	leadingSequenceRe = regexp.MustCompile(`^(\d{1,3}(?:\.\d{1,2})?) - .`)
	// "Book 2", "Vol. 3", "Volume 12.5" anywhere in the title, with optional
	// separators on either side.
	volumeTokenRe = regexp.MustCompile(`(?i)(-? ?)\b((?:Book|Vol\.?|Volume) (\d{0,3}(?:\.\d{1,2})?))\b( ?-?)`)
	// "1999 - Title" or "(1999) - Title".
	publishedYearRe = regexp.MustCompile(`^(\(?[0-9]{4}\)?) - (.+)`)
)

// ParseMediaDir derives author, series, sequence, published year, title, and
// optionally subtitle from an item directory's relative path. The innermost
// directory is the title; with two or more remaining segments the next-outer
// is the series and the one beyond it the author; with exactly one remaining
// segment it is the author.
//
// The title is then stripped in order: volume token (only inside a series
// directory), published-year prefix, and subtitle split on " - " when
// enabled. Absent fields stay empty strings.
func ParseMediaDir(folderPath, relPath string, parseSubtitles bool) *ParsedMediaDir {
	relPath = strings.ReplaceAll(relPath, "\\", "/")
	segments := strings.Split(relPath, "/")

	title := segments[len(segments)-1]
	segments = segments[:len(segments)-1]

	series := ""
	author := ""
	if len(segments) > 1 {
		series = segments[len(segments)-1]
		segments = segments[:len(segments)-1]
	}
	if len(segments) > 0 {
		author = segments[len(segments)-1]
	}

	sequence := ""
	if series != "" {
		if m := leadingSequenceRe.FindStringSubmatch(title); m != nil {
			sequence = m[1]
			title = strings.Replace(title, sequence+" - ", "", 1)
		} else if m := volumeTokenRe.FindStringSubmatch(title); m != nil && m[2] != "" && m[3] != "" {
			sequence = m[3]
			replaceChunk := m[2]
			// A leading separator wins over a trailing one, so
			// "1980 - Book 2-Title" keeps its inner dash intact.
			if m[1] != "" {
				replaceChunk = m[1] + replaceChunk
			} else if m[4] != "" {
				replaceChunk += m[4]
			}
			title = strings.TrimSpace(strings.Replace(title, replaceChunk, "", 1))
		}
	}

	publishedYear := ""
	if m := publishedYearRe.FindStringSubmatch(title); m != nil {
		year := m[1]
		if strings.HasPrefix(year, "(") && strings.HasSuffix(year, ")") {
			year = year[1 : len(year)-1]
		}
		if _, err := strconv.Atoi(year); err == nil {
			publishedYear = year
			title = m[2]
		}
	}

	subtitle := ""
	if parseSubtitles && strings.Contains(title, " - ") {
		parts := strings.Split(title, " - ")
		title = parts[0]
		subtitle = strings.Join(parts[1:], " - ")
	}

	return &ParsedMediaDir{
		Metadata: &models.ScanMediaMetadata{
			Author:        author,
			Title:         title,
			Subtitle:      subtitle,
			Series:        series,
			Sequence:      sequence,
			PublishedYear: publishedYear,
		},
		RelPath: relPath,
		Path:    path.Join(folderPath, relPath),
	}
}
