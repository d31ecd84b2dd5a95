package scanner

import (
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/hearthbooks/hearth/pkg/models"
)

var (
	audioExts    = []string{"m4b", "mp3", "m4a", "flac", "opus", "ogg", "oga", "mp4", "aac", "wma", "aiff"}
	ebookExts    = []string{"epub", "pdf", "mobi", "azw3", "cbr", "cbz"}
	imageExts    = []string{"png", "jpg", "jpeg", "webp", "gif", "bmp"}
	metadataExts = []string{"opf", "abs", "xml", "json"}
	textExts     = []string{"txt", "nfo"}
)

// Classifier maps files to library file types, by extension first and by
// content sniffing when the extension gives nothing away.
type Classifier struct {
	byExt map[string]string
}

func NewClassifier() *Classifier {
	c := &Classifier{byExt: map[string]string{}}
	for _, e := range audioExts {
		c.byExt[e] = models.FileTypeAudio
	}
	for _, e := range ebookExts {
		c.byExt[e] = models.FileTypeEbook
	}
	for _, e := range imageExts {
		c.byExt[e] = models.FileTypeImage
	}
	for _, e := range metadataExts {
		c.byExt[e] = models.FileTypeMetadata
	}
	for _, e := range textExts {
		c.byExt[e] = models.FileTypeText
	}
	return c
}

func extOf(p string) string {
	ext := path.Ext(p)
	if ext == "" {
		return ""
	}
	return strings.ToLower(ext[1:])
}

// FileTypeForPath classifies by extension alone.
func (c *Classifier) FileTypeForPath(p string) string {
	if ft, ok := c.byExt[extOf(p)]; ok {
		return ft
	}
	return models.FileTypeUnknown
}

// FileTypeForFile classifies by extension, falling back to content detection
// for files the extension table does not cover. Sniff failures leave the file
// unknown rather than erroring the scan.
func (c *Classifier) FileTypeForFile(fullPath string) string {
	if ft := c.FileTypeForPath(fullPath); ft != models.FileTypeUnknown {
		return ft
	}

	mtype, err := mimetype.DetectFile(fullPath)
	if err != nil {
		return models.FileTypeUnknown
	}
	switch {
	case strings.HasPrefix(mtype.String(), "audio/"):
		return models.FileTypeAudio
	case strings.HasPrefix(mtype.String(), "image/"):
		return models.FileTypeImage
	case mtype.Is("application/epub+zip"), mtype.Is("application/pdf"):
		return models.FileTypeEbook
	case strings.HasPrefix(mtype.String(), "text/"):
		return models.FileTypeText
	}
	return models.FileTypeUnknown
}

// IsMediaFile reports whether the path names a playable or readable media
// file. Extensionless files are never media files for grouping purposes.
func (c *Classifier) IsMediaFile(p string) bool {
	ft := c.FileTypeForPath(p)
	return ft == models.FileTypeAudio || ft == models.FileTypeEbook
}
