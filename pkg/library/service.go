package library

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"

	"github.com/hearthbooks/hearth/pkg/errcodes"
	"github.com/hearthbooks/hearth/pkg/itemstore"
	"github.com/hearthbooks/hearth/pkg/models"
	"github.com/hearthbooks/hearth/pkg/scanner"
	"github.com/hearthbooks/hearth/pkg/settings"
	"github.com/hearthbooks/hearth/pkg/version"
)

// Service reconciles libraries against the filesystem. At most one scan runs
// per library at a time; a second request while one is in flight gets a
// conflict error.
type Service struct {
	store    *itemstore.Service
	scans    *scanner.Service
	settings *settings.Service
	prober   AudioProber

	mu     sync.Mutex
	active map[string]context.CancelFunc
}

func New(store *itemstore.Service, scans *scanner.Service, settings *settings.Service, prober AudioProber) *Service {
	return &Service{
		store:    store,
		scans:    scans,
		settings: settings,
		prober:   prober,
		active:   map[string]context.CancelFunc{},
	}
}

// ScanSummary reports what one library scan changed.
type ScanSummary struct {
	LibraryID      string        `json:"libraryId"`
	ItemsAdded     int           `json:"itemsAdded"`
	ItemsUpdated   int           `json:"itemsUpdated"`
	ItemsMissing   int           `json:"itemsMissing"`
	ItemsUnchanged int           `json:"itemsUnchanged"`
	Canceled       bool          `json:"canceled"`
	Duration       time.Duration `json:"duration"`
}

// IsScanning reports whether a scan is in flight for the library.
func (s *Service) IsScanning(libraryID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[libraryID]
	return ok
}

// CancelScan cancels an in-flight scan. The scan still returns a summary
// covering the folders it completed.
func (s *Service) CancelScan(libraryID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cancel, ok := s.active[libraryID]
	if ok {
		cancel()
	}
	return ok
}

// ScanLibrary walks every folder of the library, reconciles each candidate
// item directory against stored items, and persists what changed. Items in
// folders that finished scanning without their directory turning up are
// marked missing, never deleted. Cancellation keeps all work already
// persisted.
func (s *Service) ScanLibrary(ctx context.Context, library *models.Library) (*ScanSummary, error) {
	s.mu.Lock()
	if _, ok := s.active[library.ID]; ok {
		s.mu.Unlock()
		return nil, errors.WithStack(errcodes.Conflict("Library is already being scanned."))
	}
	scanCtx, cancel := context.WithCancel(ctx)
	s.active[library.ID] = cancel
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.active, library.ID)
		s.mu.Unlock()
		cancel()
	}()

	log := logger.FromContext(ctx).Data(logger.Data{"library_id": library.ID})
	ctx = log.WithContext(ctx)
	start := time.Now()
	log.Info("library scan started")

	existing, err := s.store.ListItemsByLibrary(ctx, library.ID)
	if err != nil {
		return nil, err
	}
	inoIndex := make(map[uint64]*models.LibraryItem, len(existing))
	pathIndex := make(map[string]*models.LibraryItem, len(existing))
	for _, item := range existing {
		inoIndex[item.Ino] = item
		pathIndex[item.Path] = item
	}

	srv := s.settings.Get()
	scanOpts := scanner.Options{
		ParseSubtitles: srv.ScannerParseSubtitles || library.Settings.ParseSubtitles,
	}
	syncOpts := SyncOptions{
		PreferSidecarMetadata: srv.ScannerPreferSidecarMetadata,
		Prober:                s.prober,
	}

	summary := &ScanSummary{LibraryID: library.ID}
	seen := map[string]bool{}
	fullyScanned := map[string]bool{}

	for _, folder := range library.Folders {
		if scanCtx.Err() != nil {
			summary.Canceled = true
			break
		}

		scanData, err := s.scans.ScanFolder(scanCtx, folder, scanOpts)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				summary.Canceled = true
				break
			}
			log.Err(err).Error("folder scan failed", logger.Data{"folder_id": folder.ID})
			continue
		}

		folderDone := true
		for _, data := range scanData {
			if scanCtx.Err() != nil {
				summary.Canceled = true
				folderDone = false
				break
			}
			if err := s.reconcileItem(scanCtx, library, data, inoIndex, pathIndex, seen, syncOpts, summary); err != nil {
				log.Err(err).Error("failed to reconcile item", logger.Data{"path": data.Path})
				folderDone = false
			}
		}
		if folderDone {
			fullyScanned[folder.ID] = true
		}
	}

	// Items whose folder finished scanning but whose directory never turned
	// up are missing. Folders the scan did not finish prove nothing.
	for _, item := range existing {
		if seen[item.ID] || !fullyScanned[item.FolderID] || item.IsMissing {
			continue
		}
		item.SetMissing()
		if err := s.store.UpdateItem(ctx, item); err != nil {
			log.Err(err).Error("failed to mark item missing", logger.Data{"item_id": item.ID})
			continue
		}
		summary.ItemsMissing++
	}

	library.LastScan = time.Now().UnixMilli()
	if err := s.store.SaveLibrary(ctx, library); err != nil {
		log.Err(err).Error("failed to stamp library scan time")
	}

	summary.Duration = time.Since(start)
	log.Info("library scan finished", logger.Data{
		"items_added":     summary.ItemsAdded,
		"items_updated":   summary.ItemsUpdated,
		"items_missing":   summary.ItemsMissing,
		"items_unchanged": summary.ItemsUnchanged,
		"canceled":        summary.Canceled,
		"duration":        summary.Duration.String(),
	})
	return summary, nil
}

func (s *Service) reconcileItem(
	ctx context.Context,
	library *models.Library,
	data *models.ItemScanData,
	inoIndex map[uint64]*models.LibraryItem,
	pathIndex map[string]*models.LibraryItem,
	seen map[string]bool,
	syncOpts SyncOptions,
	summary *ScanSummary,
) error {
	var item *models.LibraryItem
	if !library.Settings.SkipMatchingByIno {
		item = inoIndex[data.Ino]
	}
	if item == nil {
		item = pathIndex[data.Path]
	}

	if item == nil {
		item = models.NewLibraryItem(library.MediaType, data)
		SyncItemFiles(ctx, item, syncOpts)
		if err := s.store.InsertItem(ctx, item); err != nil {
			return err
		}
		seen[item.ID] = true
		summary.ItemsAdded++
		return nil
	}

	seen[item.ID] = true
	result := item.CheckScanData(ctx, data, version.Version)
	syncUpdated := SyncItemFiles(ctx, item, syncOpts)
	if !result.Updated && !syncUpdated {
		summary.ItemsUnchanged++
		return nil
	}
	if err := s.store.UpdateItem(ctx, item); err != nil {
		return err
	}
	summary.ItemsUpdated++
	return nil
}

// RescanItem re-reads a single item's directory. A vanished directory marks
// the item missing.
func (s *Service) RescanItem(ctx context.Context, library *models.Library, item *models.LibraryItem) (*models.LibraryItem, error) {
	folder := library.GetFolderByID(item.FolderID)
	if folder == nil {
		return nil, errors.WithStack(errcodes.NotFound("Folder"))
	}

	srv := s.settings.Get()
	data, err := s.scans.ScanLibraryItemDir(ctx, folder, item.Path, scanner.Options{
		ParseSubtitles: srv.ScannerParseSubtitles || library.Settings.ParseSubtitles,
	})
	if err != nil {
		return nil, err
	}

	if data == nil {
		if !item.IsMissing {
			item.SetMissing()
			if err := s.store.UpdateItem(ctx, item); err != nil {
				return nil, err
			}
		}
		return item, nil
	}

	result := item.CheckScanData(ctx, data, version.Version)
	syncUpdated := SyncItemFiles(ctx, item, SyncOptions{
		PreferSidecarMetadata: srv.ScannerPreferSidecarMetadata,
		Prober:                s.prober,
	})
	if result.Updated || syncUpdated {
		if err := s.store.UpdateItem(ctx, item); err != nil {
			return nil, err
		}
	}
	return item, nil
}
