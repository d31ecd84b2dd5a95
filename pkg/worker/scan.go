package worker

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"

	"github.com/hearthbooks/hearth/pkg/errcodes"
	"github.com/hearthbooks/hearth/pkg/jobs"
)

func errcodeConflict() error {
	return errors.WithStack(errcodes.Conflict("Library is already being scanned."))
}

// ProcessScanJob runs a full library scan for the library named in the job
// payload.
func (w *Worker) ProcessScanJob(ctx context.Context, job *jobs.Job) error {
	log := logger.FromContext(ctx)

	if job.DataParsed == nil || job.DataParsed.LibraryID == "" {
		return errors.New("scan job has no library id")
	}

	lib, err := w.storeService.RetrieveLibrary(ctx, job.DataParsed.LibraryID)
	if err != nil {
		return err
	}

	summary, err := w.libraryService.ScanLibrary(ctx, lib)
	if err != nil {
		return err
	}

	log.Info("scan job finished", logger.Data{
		"library_id":    summary.LibraryID,
		"items_added":   summary.ItemsAdded,
		"items_updated": summary.ItemsUpdated,
		"items_missing": summary.ItemsMissing,
		"canceled":      summary.Canceled,
	})
	return nil
}
