package sidecar

import (
	"encoding/xml"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// opfPackage covers the subset of the OPF package document that standalone
// metadata.opf files carry.
type opfPackage struct {
	XMLName  xml.Name `xml:"package"`
	Metadata struct {
		Title   []string `xml:"title"`
		Creator []struct {
			Text   string `xml:",chardata"`
			Role   string `xml:"role,attr"`
			FileAs string `xml:"file-as,attr"`
		} `xml:"creator"`
		Description string   `xml:"description"`
		Publisher   string   `xml:"publisher"`
		Date        string   `xml:"date"`
		Language    string   `xml:"language"`
		Subject     []string `xml:"subject"`
		Meta        []struct {
			Name    string `xml:"name,attr"`
			Content string `xml:"content,attr"`
		} `xml:"meta"`
	} `xml:"metadata"`
}

// ParseOPF reads a standalone OPF metadata file into sidecar form. Calibre
// series tags are honored.
func ParseOPF(path string) (*BookSidecar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var pkg opfPackage
	if err := xml.Unmarshal(data, &pkg); err != nil {
		return nil, errors.WithStack(err)
	}

	s := &BookSidecar{Version: CurrentVersion}
	if len(pkg.Metadata.Title) > 0 {
		s.Title = strings.TrimSpace(pkg.Metadata.Title[0])
	}
	for _, c := range pkg.Metadata.Creator {
		// Untagged creators count as authors; most OPF writers omit the role.
		if c.Role == "" || c.Role == "aut" {
			if name := strings.TrimSpace(c.Text); name != "" {
				s.Authors = append(s.Authors, name)
			}
		}
	}
	s.Description = strings.TrimSpace(pkg.Metadata.Description)
	s.Publisher = strings.TrimSpace(pkg.Metadata.Publisher)
	s.Language = strings.TrimSpace(pkg.Metadata.Language)
	for _, subj := range pkg.Metadata.Subject {
		if subj = strings.TrimSpace(subj); subj != "" {
			s.Genres = append(s.Genres, subj)
		}
	}
	if len(pkg.Metadata.Date) >= 4 {
		year := pkg.Metadata.Date[:4]
		if isDigits(year) {
			s.PublishedYear = year
		}
	}

	seriesName := ""
	seriesSequence := ""
	for _, m := range pkg.Metadata.Meta {
		switch m.Name {
		case "calibre:series":
			seriesName = strings.TrimSpace(m.Content)
		case "calibre:series_index":
			seriesSequence = strings.TrimSpace(m.Content)
		}
	}
	if seriesName != "" {
		s.Series = append(s.Series, SeriesMetadata{Name: seriesName, Sequence: seriesSequence})
	}

	return s, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
