package models

import (
	"strings"
	"time"
)

// EbookFile is the media view over one ebook LibraryFile. EbookFormat is the
// lowercased extension without the dot (epub, pdf, mobi, ...).
type EbookFile struct {
	Ino         uint64        `json:"ino"`
	Metadata    *FileMetadata `json:"metadata"`
	EbookFormat string        `json:"ebookFormat"`
	AddedAt     int64         `json:"addedAt"`
	UpdatedAt   int64         `json:"updatedAt"`
}

func NewEbookFileFromLibraryFile(lf *LibraryFile) *EbookFile {
	now := time.Now().UnixMilli()
	return &EbookFile{
		Ino:         lf.Ino,
		Metadata:    lf.Metadata.Clone(),
		EbookFormat: ebookFormatForExt(lf.Metadata.Ext),
		AddedAt:     now,
		UpdatedAt:   now,
	}
}

func ebookFormatForExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

func (ef *EbookFile) Inode() uint64 { return ef.Ino }

func (ef *EbookFile) SetInode(ino uint64) { ef.Ino = ino }

func (ef *EbookFile) FileMetadata() *FileMetadata { return ef.Metadata }

// UpdateFromLibraryFile re-derives the format-specific fields from the
// underlying file record. Only applies when the format marker is present.
func (ef *EbookFile) UpdateFromLibraryFile(lf *LibraryFile) bool {
	if ef.EbookFormat == "" {
		return false
	}

	updated := false
	if format := ebookFormatForExt(lf.Metadata.Ext); format != ef.EbookFormat {
		ef.EbookFormat = format
		updated = true
	}
	if ef.Metadata.Path != lf.Metadata.Path {
		ef.Metadata.Path = lf.Metadata.Path
		ef.Metadata.RelPath = lf.Metadata.RelPath
		updated = true
	}
	if ef.Metadata.Size != lf.Metadata.Size {
		ef.Metadata.Size = lf.Metadata.Size
		updated = true
	}
	if updated {
		ef.UpdatedAt = time.Now().UnixMilli()
	}
	return updated
}
