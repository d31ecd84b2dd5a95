package scanner

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"

	"github.com/hearthbooks/hearth/pkg/models"
)

// Service turns folder trees into item scan descriptors. It reads the
// filesystem only; reconciliation against stored items happens elsewhere.
type Service struct {
	lister Lister
	types  *Classifier
}

// Options tunes a single scan pass.
type Options struct {
	ParseSubtitles bool
}

func New() *Service {
	return &Service{lister: DirWalker{}, types: NewClassifier()}
}

// NewWithLister substitutes the file lister, for tests.
func NewWithLister(l Lister) *Service {
	return &Service{lister: l, types: NewClassifier()}
}

func (s *Service) Classifier() *Classifier { return s.types }

// ScanFolder walks one watched folder and returns a descriptor per candidate
// item directory, ordered by relative path. A missing folder is logged and
// yields no descriptors rather than an error, since watched mounts come and
// go. Files whose stat fails are skipped with a warning.
func (s *Service) ScanFolder(ctx context.Context, folder *models.Folder, opts Options) ([]*models.ItemScanData, error) {
	log := logger.FromContext(ctx)
	folderPath := filepath.ToSlash(filepath.Clean(folder.FullPath))

	if _, err := os.Stat(folderPath); err != nil {
		if os.IsNotExist(err) {
			log.Warn("folder path does not exist", logger.Data{"folder_id": folder.ID, "path": folderPath})
			return nil, nil
		}
		return nil, errors.WithStack(err)
	}

	fileItems, err := s.lister.ListFiles(ctx, folderPath)
	if err != nil {
		return nil, err
	}

	grouping := GroupFileItemsIntoLibraryItemDirs(s.types, fileItems)
	if len(grouping) == 0 {
		log.Warn("folder has no media directories", logger.Data{"folder_id": folder.ID, "path": folderPath, "num_files": len(fileItems)})
		return []*models.ItemScanData{}, nil
	}

	itemDirs := make([]string, 0, len(grouping))
	for dir := range grouping {
		itemDirs = append(itemDirs, dir)
	}
	sort.Strings(itemDirs)

	items := make([]*models.ItemScanData, 0, len(itemDirs))
	for _, itemDir := range itemDirs {
		parsed := ParseMediaDir(folderPath, itemDir, opts.ParseSubtitles)

		dirStat, err := Stat(parsed.Path)
		if err != nil {
			log.Err(err).Warn("failed to stat item directory", logger.Data{"path": parsed.Path})
			continue
		}

		libraryFiles := make([]*models.LibraryFile, 0, len(grouping[itemDir]))
		for _, relFile := range grouping[itemDir] {
			lf, err := s.buildLibraryFile(path.Join(parsed.Path, relFile), folderPath)
			if err != nil {
				log.Err(err).Warn("failed to stat file", logger.Data{"path": path.Join(parsed.Path, relFile)})
				continue
			}
			libraryFiles = append(libraryFiles, lf)
		}

		items = append(items, &models.ItemScanData{
			LibraryID:     folder.LibraryID,
			FolderID:      folder.ID,
			Ino:           dirStat.Ino,
			Path:          parsed.Path,
			RelPath:       parsed.RelPath,
			MtimeMs:       dirStat.MtimeMs,
			CtimeMs:       dirStat.CtimeMs,
			BirthtimeMs:   dirStat.BirthtimeMs,
			MediaMetadata: parsed.Metadata,
			LibraryFiles:  libraryFiles,
		})
	}
	return items, nil
}

// ScanLibraryItemDir builds a descriptor for a single known item directory,
// used for targeted rescans. Returns nil when the directory is gone.
func (s *Service) ScanLibraryItemDir(ctx context.Context, folder *models.Folder, itemPath string, opts Options) (*models.ItemScanData, error) {
	log := logger.FromContext(ctx)
	folderPath := filepath.ToSlash(filepath.Clean(folder.FullPath))
	itemPath = filepath.ToSlash(filepath.Clean(itemPath))

	dirStat, err := Stat(itemPath)
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			return nil, nil
		}
		return nil, err
	}

	fileItems, err := s.lister.ListFiles(ctx, itemPath)
	if err != nil {
		return nil, err
	}

	relPath := strings.TrimPrefix(strings.TrimPrefix(itemPath, folderPath), "/")
	parsed := ParseMediaDir(folderPath, relPath, opts.ParseSubtitles)

	libraryFiles := make([]*models.LibraryFile, 0, len(fileItems))
	for _, fi := range fileItems {
		lf, err := s.buildLibraryFile(fi.FullPath, folderPath)
		if err != nil {
			log.Err(err).Warn("failed to stat file", logger.Data{"path": fi.FullPath})
			continue
		}
		libraryFiles = append(libraryFiles, lf)
	}

	return &models.ItemScanData{
		LibraryID:     folder.LibraryID,
		FolderID:      folder.ID,
		Ino:           dirStat.Ino,
		Path:          parsed.Path,
		RelPath:       parsed.RelPath,
		MtimeMs:       dirStat.MtimeMs,
		CtimeMs:       dirStat.CtimeMs,
		BirthtimeMs:   dirStat.BirthtimeMs,
		MediaMetadata: parsed.Metadata,
		LibraryFiles:  libraryFiles,
	}, nil
}

func (s *Service) buildLibraryFile(fullPath, folderPath string) (*models.LibraryFile, error) {
	st, err := Stat(fullPath)
	if err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	return &models.LibraryFile{
		Ino:      st.Ino,
		FileType: s.types.FileTypeForFile(fullPath),
		Metadata: &models.FileMetadata{
			Filename:    path.Base(fullPath),
			Ext:         path.Ext(fullPath),
			Path:        fullPath,
			RelPath:     strings.TrimPrefix(fullPath, folderPath),
			MtimeMs:     st.MtimeMs,
			CtimeMs:     st.CtimeMs,
			BirthtimeMs: st.BirthtimeMs,
			Size:        st.Size,
		},
		AddedAt:   now,
		UpdatedAt: now,
	}, nil
}
