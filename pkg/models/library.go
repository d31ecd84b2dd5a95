package models

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LibrarySettings tunes how a library's directories are interpreted during
// scans.
type LibrarySettings struct {
	ParseSubtitles     bool `json:"parseSubtitles"`
	SkipMatchingByIno  bool `json:"skipMatchingByIno"`
	PreferMetadataFile bool `json:"preferMetadataFile"`
}

// Folder is one watched root directory of a library.
type Folder struct {
	ID        string `json:"id"`
	FullPath  string `json:"fullPath"`
	LibraryID string `json:"libraryId"`
	AddedAt   int64  `json:"addedAt"`
}

func NewFolder(libraryID, fullPath string) *Folder {
	return &Folder{
		ID:        "fol_" + uuid.NewString(),
		FullPath:  filepath.Clean(fullPath),
		LibraryID: libraryID,
		AddedAt:   time.Now().UnixMilli(),
	}
}

// Library groups folders that are scanned together into one catalog.
type Library struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	MediaType    string           `json:"mediaType"`
	Folders      []*Folder        `json:"folders"`
	Settings     *LibrarySettings `json:"settings"`
	DisplayOrder int              `json:"displayOrder"`
	CreatedAt    int64            `json:"createdAt"`
	LastUpdate   int64            `json:"lastUpdate"`
	LastScan     int64            `json:"lastScan"`
}

func NewLibrary(name, mediaType string, folderPaths []string) *Library {
	now := time.Now().UnixMilli()
	lib := &Library{
		ID:         "lib_" + uuid.NewString(),
		Name:       name,
		MediaType:  mediaType,
		Settings:   &LibrarySettings{ParseSubtitles: false},
		CreatedAt:  now,
		LastUpdate: now,
	}
	for _, p := range folderPaths {
		lib.Folders = append(lib.Folders, NewFolder(lib.ID, p))
	}
	return lib
}

// LibraryUpdate is the change set applied by Update. Nil fields are left as
// they are.
type LibraryUpdate struct {
	Name        *string
	FolderPaths []string
	Settings    *LibrarySettings
}

// Update applies the change set. Folder paths are reconciled by value: paths
// already watched keep their folder and ID, new paths get new folders, and
// folders for absent paths are dropped.
func (l *Library) Update(update *LibraryUpdate) bool {
	updated := false

	if update.Name != nil && *update.Name != l.Name {
		l.Name = *update.Name
		updated = true
	}

	if update.Settings != nil && *update.Settings != *l.Settings {
		l.Settings = update.Settings
		updated = true
	}

	if update.FolderPaths != nil {
		kept := make([]*Folder, 0, len(update.FolderPaths))
		for _, p := range update.FolderPaths {
			p = filepath.Clean(p)
			if f := l.FolderForPath(p); f != nil {
				kept = append(kept, f)
			} else {
				kept = append(kept, NewFolder(l.ID, p))
				updated = true
			}
		}
		if len(kept) != len(l.Folders) {
			updated = true
		}
		l.Folders = kept
	}

	if updated {
		l.LastUpdate = time.Now().UnixMilli()
	}
	return updated
}

func (l *Library) GetFolderByID(id string) *Folder {
	for _, f := range l.Folders {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// FolderForPath returns the folder watching exactly this path, or nil.
func (l *Library) FolderForPath(path string) *Folder {
	path = filepath.Clean(path)
	for _, f := range l.Folders {
		if f.FullPath == path {
			return f
		}
	}
	return nil
}

// FolderContainingPath returns the folder whose tree contains the given path,
// or nil when no watched root covers it.
func (l *Library) FolderContainingPath(path string) *Folder {
	path = filepath.Clean(path)
	for _, f := range l.Folders {
		if path == f.FullPath || strings.HasPrefix(path, f.FullPath+string(filepath.Separator)) {
			return f
		}
	}
	return nil
}
