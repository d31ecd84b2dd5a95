package models

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
)

const (
	MediaTypeBook    = "book"
	MediaTypePodcast = "podcast"
)

// ScanMediaMetadata is what a directory-name parse yields. Empty string means
// the field was absent; Sequence and PublishedYear stay strings.
type ScanMediaMetadata struct {
	Author        string `json:"author"`
	Title         string `json:"title"`
	Subtitle      string `json:"subtitle"`
	Series        string `json:"series"`
	Sequence      string `json:"sequence"`
	PublishedYear string `json:"publishedYear"`
}

// ItemScanData is the raw descriptor a folder scan produces for one candidate
// item directory, before any reconciliation against persisted state.
type ItemScanData struct {
	LibraryID     string             `json:"libraryId"`
	FolderID      string             `json:"folderId"`
	Ino           uint64             `json:"ino"`
	Path          string             `json:"path"`
	RelPath       string             `json:"relPath"`
	MtimeMs       int64              `json:"mtimeMs"`
	CtimeMs       int64              `json:"ctimeMs"`
	BirthtimeMs   int64              `json:"birthtimeMs"`
	MediaMetadata *ScanMediaMetadata `json:"mediaMetadata"`
	LibraryFiles  []*LibraryFile     `json:"libraryFiles"`
}

// FileFoundResult is the tri-state outcome of matching a scanned file against
// an item's tracked files.
type FileFoundResult int

const (
	// FileNotFound means no tracked file matched; the caller treats the file
	// as new.
	FileNotFound FileFoundResult = iota
	// FileUnchanged means a tracked file matched and nothing differed.
	FileUnchanged
	// FileUpdated means a tracked file matched and at least one attribute was
	// copied over.
	FileUpdated
)

// ScanResult is returned by CheckScanData unconditionally, with empty lists
// and Updated=false when nothing changed, so callers can apply uniform
// persist-only-if-updated logic.
type ScanResult struct {
	Updated              bool
	NewLibraryFiles      []*LibraryFile
	FilesRemoved         []*LibraryFile
	ExistingLibraryFiles []*LibraryFile
}

// LibraryItem is one logical book or podcast, backed by one directory.
// Exactly one media entity matching MediaType is owned per item; LibraryFiles
// contains no duplicate inode.
type LibraryItem struct {
	ID          string `json:"id"`
	Ino         uint64 `json:"ino"`
	LibraryID   string `json:"libraryId"`
	FolderID    string `json:"folderId"`
	Path        string `json:"path"`
	RelPath     string `json:"relPath"`
	MtimeMs     int64  `json:"mtimeMs"`
	CtimeMs     int64  `json:"ctimeMs"`
	BirthtimeMs int64  `json:"birthtimeMs"`
	AddedAt     int64  `json:"addedAt"`
	UpdatedAt   int64  `json:"updatedAt"`
	LastScan    int64  `json:"lastScan"`
	ScanVersion string `json:"scanVersion"`

	// IsMissing means the directory was not found by the latest scan. The
	// record is preserved for restoration; deletion is an explicit external
	// action, never the scanner's.
	IsMissing bool `json:"isMissing"`
	// IsInvalid means no playable or readable media file remains. Recomputed
	// after every file-set mutation.
	IsInvalid bool `json:"isInvalid"`

	MediaType string `json:"mediaType"`
	Media     Media  `json:"media"`

	LibraryFiles []*LibraryFile `json:"libraryFiles"`
}

// NewLibraryItem builds an item from a folder-scan descriptor. The first
// image library file becomes the cover.
func NewLibraryItem(mediaType string, data *ItemScanData) *LibraryItem {
	now := time.Now().UnixMilli()

	li := &LibraryItem{
		ID:          "li_" + uuid.NewString(),
		Ino:         data.Ino,
		LibraryID:   data.LibraryID,
		FolderID:    data.FolderID,
		Path:        data.Path,
		RelPath:     data.RelPath,
		MtimeMs:     data.MtimeMs,
		CtimeMs:     data.CtimeMs,
		BirthtimeMs: data.BirthtimeMs,
		AddedAt:     now,
		UpdatedAt:   now,
	}

	switch mediaType {
	case MediaTypePodcast:
		li.MediaType = MediaTypePodcast
		podcast := NewPodcast()
		podcast.SetScanMetadata(data.MediaMetadata)
		li.Media = podcast
	default:
		li.MediaType = MediaTypeBook
		book := NewBook()
		book.SetScanMetadata(data.MediaMetadata)
		li.Media = book
	}

	for _, lf := range data.LibraryFiles {
		li.LibraryFiles = append(li.LibraryFiles, lf.Clone())
	}
	for _, lf := range li.LibraryFiles {
		if lf.FileType == FileTypeImage {
			li.Media.UpdateCover(lf.Metadata.Path)
			break
		}
	}

	return li
}

func (li *LibraryItem) FindLibraryFileWithIno(ino uint64) *LibraryFile {
	for _, lf := range li.LibraryFiles {
		if lf.Ino == ino {
			return lf
		}
	}
	return nil
}

func (li *LibraryItem) findLibraryFileWithPath(path string) *LibraryFile {
	for _, lf := range li.LibraryFiles {
		if lf.Metadata.Path == path {
			return lf
		}
	}
	return nil
}

// Size is the total byte size of all tracked files.
func (li *LibraryItem) Size() int64 {
	var total int64
	for _, lf := range li.LibraryFiles {
		total += lf.Metadata.Size
	}
	return total
}

func (li *LibraryItem) HasAudioFiles() bool {
	for _, lf := range li.LibraryFiles {
		if lf.FileType == FileTypeAudio {
			return true
		}
	}
	return false
}

func (li *LibraryItem) SetMissing() {
	li.IsMissing = true
	li.UpdatedAt = time.Now().UnixMilli()
}

func (li *LibraryItem) setLastScan(scanVersion string) {
	li.LastScan = time.Now().UnixMilli()
	li.ScanVersion = scanVersion
}

// CheckFileFound matches a freshly scanned file against the tracked files,
// by inode first and exact path second. On a path-only match the stale inode
// is replaced on both the file record and any referencing media-file view.
// For matched files every tracked attribute is compared field by field and
// copied from the candidate when different; an mtime change over a previous
// value marks the candidate WasModified so embedded metadata gets
// re-extracted downstream.
func (li *LibraryItem) CheckFileFound(found *LibraryFile) FileFoundResult {
	updated := false

	var mediaFile MediaFile
	existing := li.FindLibraryFileWithIno(found.Ino)
	if existing == nil {
		existing = li.findLibraryFileWithPath(found.Metadata.Path)
		if existing == nil {
			return FileNotFound
		}
		// Same path, new inode (remount or inode reuse). Re-key the media
		// view before anything else so it stays reachable by inode.
		if mf := li.Media.FindFileWithInode(existing.Ino); mf != nil {
			mf.SetInode(found.Ino)
			mediaFile = mf
		}
		existing.Ino = found.Ino
		updated = true
	} else {
		mediaFile = li.Media.FindFileWithInode(existing.Ino)
	}

	if existing.Metadata.Path != found.Metadata.Path {
		existing.Metadata.Path = found.Metadata.Path
		existing.Metadata.RelPath = found.Metadata.RelPath
		updated = true
	}
	if existing.Metadata.Filename != found.Metadata.Filename {
		existing.Metadata.Filename = found.Metadata.Filename
		updated = true
	}
	if existing.Metadata.Ext != found.Metadata.Ext {
		existing.Metadata.Ext = found.Metadata.Ext
		updated = true
	}
	if existing.Metadata.MtimeMs != found.Metadata.MtimeMs {
		if existing.Metadata.MtimeMs != 0 {
			found.Metadata.WasModified = true
		}
		existing.Metadata.MtimeMs = found.Metadata.MtimeMs
		updated = true
	}
	if existing.Metadata.CtimeMs != found.Metadata.CtimeMs {
		existing.Metadata.CtimeMs = found.Metadata.CtimeMs
		updated = true
	}
	if existing.Metadata.BirthtimeMs != found.Metadata.BirthtimeMs {
		existing.Metadata.BirthtimeMs = found.Metadata.BirthtimeMs
		updated = true
	}
	if existing.Metadata.Size != found.Metadata.Size {
		existing.Metadata.Size = found.Metadata.Size
		updated = true
	}

	if updated {
		existing.UpdatedAt = time.Now().UnixMilli()
		if mediaFile != nil {
			md := mediaFile.FileMetadata()
			md.Path = existing.Metadata.Path
			md.RelPath = existing.Metadata.RelPath
			md.Filename = existing.Metadata.Filename
			md.Ext = existing.Metadata.Ext
			md.MtimeMs = existing.Metadata.MtimeMs
			md.CtimeMs = existing.Metadata.CtimeMs
			md.BirthtimeMs = existing.Metadata.BirthtimeMs
			md.Size = existing.Metadata.Size
			if found.Metadata.WasModified {
				md.WasModified = true
			}
		}
		return FileUpdated
	}
	return FileUnchanged
}

// CheckScanData merges a folder-scan descriptor into the item. Directory
// moves are allowed (logged as warnings); files vanished from the descriptor
// are removed from tracking but the item itself is never deleted here.
func (li *LibraryItem) CheckScanData(ctx context.Context, data *ItemScanData, scanVersion string) *ScanResult {
	log := logger.FromContext(ctx)
	updated := false

	if li.IsMissing {
		// Directory reappeared.
		li.IsMissing = false
		updated = true
	}

	if data.Ino != li.Ino {
		li.Ino = data.Ino
		updated = true
	}

	if data.FolderID != li.FolderID {
		log.Warn("library item changed folder", logger.Data{"item_id": li.ID, "old_folder_id": li.FolderID, "new_folder_id": data.FolderID})
		li.FolderID = data.FolderID
		updated = true
	}

	if data.Path != li.Path {
		log.Warn("library item changed path", logger.Data{"item_id": li.ID, "old_path": li.Path, "new_path": data.Path})
		li.Path = data.Path
		li.RelPath = data.RelPath
		updated = true
	}

	if data.MtimeMs != li.MtimeMs {
		li.MtimeMs = data.MtimeMs
		updated = true
	}
	if data.CtimeMs != li.CtimeMs {
		li.CtimeMs = data.CtimeMs
		updated = true
	}
	if data.BirthtimeMs != li.BirthtimeMs {
		li.BirthtimeMs = data.BirthtimeMs
		updated = true
	}

	newLibraryFiles := []*LibraryFile{}
	existingLibraryFiles := []*LibraryFile{}
	for _, lf := range data.LibraryFiles {
		switch li.CheckFileFound(lf) {
		case FileNotFound:
			newLibraryFiles = append(newLibraryFiles, lf)
		case FileUpdated:
			updated = true
			existingLibraryFiles = append(existingLibraryFiles, lf)
		case FileUnchanged:
			existingLibraryFiles = append(existingLibraryFiles, lf)
		}
	}

	// Remove files no longer on disk. Inodes are all up to date at this
	// point, so absence from the descriptor means the file is gone.
	filesRemoved := []*LibraryFile{}
	kept := make([]*LibraryFile, 0, len(li.LibraryFiles))
	for _, lf := range li.LibraryFiles {
		found := false
		for _, dlf := range data.LibraryFiles {
			if dlf.Ino == lf.Ino {
				found = true
				break
			}
		}
		if found {
			kept = append(kept, lf)
			continue
		}
		if lf.Metadata.Path == li.Media.Cover() {
			log.Debug("cover file removed during scan", logger.Data{"item_id": li.ID, "path": lf.Metadata.Path})
			li.Media.UpdateCover("")
		}
		filesRemoved = append(filesRemoved, lf)
		li.Media.RemoveFileWithInode(lf.Ino)
	}
	li.LibraryFiles = kept
	if len(filesRemoved) > 0 {
		li.Media.RepairTrackList()
		updated = true
	}

	for _, lf := range newLibraryFiles {
		li.LibraryFiles = append(li.LibraryFiles, lf.Clone())
	}
	if len(newLibraryFiles) > 0 {
		updated = true
	}

	li.IsInvalid = !li.Media.HasMediaFiles()

	// If the cover points inside this item's directory, a tracked file must
	// back it; otherwise clear the stale reference.
	if cover := li.Media.Cover(); cover != "" && strings.HasPrefix(cover, li.Path) {
		if li.findLibraryFileWithPath(cover) == nil {
			log.Warn("cover path has no backing library file", logger.Data{"item_id": li.ID, "cover_path": cover})
			li.Media.UpdateCover("")
			updated = true
		}
	}

	if updated {
		li.setLastScan(scanVersion)
	}

	return &ScanResult{
		Updated:              updated,
		NewLibraryFiles:      newLibraryFiles,
		FilesRemoved:         filesRemoved,
		ExistingLibraryFiles: existingLibraryFiles,
	}
}

func (li *LibraryItem) SearchQuery(query string) bool {
	return li.Media.SearchQuery(strings.ToLower(query))
}

// ItemSummary is the minified projection returned by catalog views.
type ItemSummary struct {
	ID        string        `json:"id"`
	LibraryID string        `json:"libraryId"`
	FolderID  string        `json:"folderId"`
	Path      string        `json:"path"`
	RelPath   string        `json:"relPath"`
	AddedAt   int64         `json:"addedAt"`
	UpdatedAt int64         `json:"updatedAt"`
	IsMissing bool          `json:"isMissing"`
	IsInvalid bool          `json:"isInvalid"`
	MediaType string        `json:"mediaType"`
	Media     *MediaSummary `json:"media"`
	NumFiles  int           `json:"numFiles"`
	Size      int64         `json:"size"`
}

func (li *LibraryItem) ToSummary() *ItemSummary {
	return &ItemSummary{
		ID:        li.ID,
		LibraryID: li.LibraryID,
		FolderID:  li.FolderID,
		Path:      li.Path,
		RelPath:   li.RelPath,
		AddedAt:   li.AddedAt,
		UpdatedAt: li.UpdatedAt,
		IsMissing: li.IsMissing,
		IsInvalid: li.IsInvalid,
		MediaType: li.MediaType,
		Media:     li.Media.ToSummary(),
		NumFiles:  len(li.LibraryFiles),
		Size:      li.Size(),
	}
}

// libraryItemJSON mirrors LibraryItem with the media payload kept raw so the
// tagged variant can be decoded per MediaType.
type libraryItemJSON struct {
	ID           string          `json:"id"`
	Ino          uint64          `json:"ino"`
	LibraryID    string          `json:"libraryId"`
	FolderID     string          `json:"folderId"`
	Path         string          `json:"path"`
	RelPath      string          `json:"relPath"`
	MtimeMs      int64           `json:"mtimeMs"`
	CtimeMs      int64           `json:"ctimeMs"`
	BirthtimeMs  int64           `json:"birthtimeMs"`
	AddedAt      int64           `json:"addedAt"`
	UpdatedAt    int64           `json:"updatedAt"`
	LastScan     int64           `json:"lastScan"`
	ScanVersion  string          `json:"scanVersion"`
	IsMissing    bool            `json:"isMissing"`
	IsInvalid    bool            `json:"isInvalid"`
	MediaType    string          `json:"mediaType"`
	Media        json.RawMessage `json:"media"`
	LibraryFiles []*LibraryFile  `json:"libraryFiles"`
}

func (li *LibraryItem) MarshalJSON() ([]byte, error) {
	media, err := json.Marshal(li.Media)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&libraryItemJSON{
		ID:           li.ID,
		Ino:          li.Ino,
		LibraryID:    li.LibraryID,
		FolderID:     li.FolderID,
		Path:         li.Path,
		RelPath:      li.RelPath,
		MtimeMs:      li.MtimeMs,
		CtimeMs:      li.CtimeMs,
		BirthtimeMs:  li.BirthtimeMs,
		AddedAt:      li.AddedAt,
		UpdatedAt:    li.UpdatedAt,
		LastScan:     li.LastScan,
		ScanVersion:  li.ScanVersion,
		IsMissing:    li.IsMissing,
		IsInvalid:    li.IsInvalid,
		MediaType:    li.MediaType,
		Media:        media,
		LibraryFiles: li.LibraryFiles,
	})
}

func (li *LibraryItem) UnmarshalJSON(data []byte) error {
	var raw libraryItemJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	li.ID = raw.ID
	li.Ino = raw.Ino
	li.LibraryID = raw.LibraryID
	li.FolderID = raw.FolderID
	li.Path = raw.Path
	li.RelPath = raw.RelPath
	li.MtimeMs = raw.MtimeMs
	li.CtimeMs = raw.CtimeMs
	li.BirthtimeMs = raw.BirthtimeMs
	li.AddedAt = raw.AddedAt
	li.UpdatedAt = raw.UpdatedAt
	li.LastScan = raw.LastScan
	li.ScanVersion = raw.ScanVersion
	li.IsMissing = raw.IsMissing
	li.IsInvalid = raw.IsInvalid
	li.MediaType = raw.MediaType
	li.LibraryFiles = raw.LibraryFiles

	switch raw.MediaType {
	case MediaTypePodcast:
		podcast := NewPodcast()
		if len(raw.Media) > 0 {
			if err := json.Unmarshal(raw.Media, podcast); err != nil {
				return err
			}
		}
		li.Media = podcast
	default:
		book := NewBook()
		if len(raw.Media) > 0 {
			if err := json.Unmarshal(raw.Media, book); err != nil {
				return err
			}
		}
		li.Media = book
	}

	return nil
}
