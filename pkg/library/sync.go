package library

import (
	"context"
	"strings"

	"github.com/robinjoseph08/golib/logger"

	"github.com/hearthbooks/hearth/pkg/models"
	"github.com/hearthbooks/hearth/pkg/scanner"
	"github.com/hearthbooks/hearth/pkg/sidecar"
)

// AudioProbeData is what an audio prober extracts from one file.
type AudioProbeData struct {
	Format           string
	Duration         float64
	BitRate          int
	Codec            string
	Channels         int
	ChannelLayout    string
	Language         string
	EmbeddedCoverArt string
	TrackNum         *int
	DiscNum          *int
}

// AudioProber extracts stream and tag data from audio files. It is optional;
// without one, track placement comes from filenames alone.
type AudioProber interface {
	Probe(ctx context.Context, path string) (*AudioProbeData, error)
}

// SyncOptions tunes SyncItemFiles.
type SyncOptions struct {
	// PreferSidecarMetadata makes the JSON sidecar win over an OPF file when
	// both are present.
	PreferSidecarMetadata bool
	Prober                AudioProber
}

// SyncItemFiles brings the item's media views in line with its tracked
// files: new media files get views, modified ones are re-read, the first
// image becomes the cover when none is set, and metadata files are applied
// to the book. Returns true when anything changed.
func SyncItemFiles(ctx context.Context, item *models.LibraryItem, opts SyncOptions) bool {
	updated := false

	switch media := item.Media.(type) {
	case *models.Book:
		updated = syncBookFiles(ctx, item, media, opts)
	case *models.Podcast:
		updated = syncPodcastFiles(item, media)
	}

	if cover := item.Media.Cover(); cover == "" {
		for _, lf := range item.LibraryFiles {
			if lf.FileType == models.FileTypeImage {
				item.Media.UpdateCover(lf.Metadata.Path)
				updated = true
				break
			}
		}
	}

	if updated {
		item.Media.RepairTrackList()
	}
	item.IsInvalid = !item.Media.HasMediaFiles()
	return updated
}

func syncBookFiles(ctx context.Context, item *models.LibraryItem, book *models.Book, opts SyncOptions) bool {
	log := logger.FromContext(ctx)
	updated := false

	for _, lf := range item.LibraryFiles {
		switch lf.FileType {
		case models.FileTypeAudio:
			existing, _ := book.FindFileWithInode(lf.Ino).(*models.AudioFile)
			if existing == nil {
				af := models.NewAudioFileFromLibraryFile(lf)
				af.TrackNumFromFilename, af.DiscNumFromFilename = trackAndDisc(lf)
				probeAudioFile(ctx, opts.Prober, af)
				book.AddAudioFile(af)
				updated = true
			} else if lf.Metadata.WasModified {
				existing.TrackNumFromFilename, existing.DiscNumFromFilename = trackAndDisc(lf)
				probeAudioFile(ctx, opts.Prober, existing)
				updated = true
			}
		case models.FileTypeEbook:
			existing, _ := book.FindFileWithInode(lf.Ino).(*models.EbookFile)
			if existing == nil {
				book.AddEbookFile(lf)
				updated = true
			} else if lf.Metadata.WasModified && existing.UpdateFromLibraryFile(lf) {
				updated = true
			}
		}
	}

	// Apply metadata files least-preferred first so the preferred source's
	// fields land last.
	var sidecarFile, opfFile *models.LibraryFile
	for _, lf := range item.LibraryFiles {
		if !lf.IsMetadataFile() {
			continue
		}
		switch {
		case sidecar.IsSidecarPath(lf.Metadata.Path):
			sidecarFile = lf
		case strings.HasSuffix(strings.ToLower(lf.Metadata.Path), ".opf"):
			opfFile = lf
		}
	}
	ordered := []*models.LibraryFile{sidecarFile, opfFile}
	if opts.PreferSidecarMetadata {
		ordered = []*models.LibraryFile{opfFile, sidecarFile}
	}
	for _, lf := range ordered {
		if lf == nil {
			continue
		}
		var (
			sc  *sidecar.BookSidecar
			err error
		)
		if sidecar.IsSidecarPath(lf.Metadata.Path) {
			sc, err = sidecar.ReadSidecar(lf.Metadata.Path)
		} else {
			sc, err = sidecar.ParseOPF(lf.Metadata.Path)
		}
		if err != nil {
			log.Err(err).Warn("failed to read metadata file", logger.Data{"path": lf.Metadata.Path})
			continue
		}
		if sc != nil && sc.ApplyToBook(book) {
			updated = true
		}
	}

	return updated
}

func syncPodcastFiles(item *models.LibraryItem, podcast *models.Podcast) bool {
	updated := false
	for _, lf := range item.LibraryFiles {
		if lf.FileType != models.FileTypeAudio {
			continue
		}
		if podcast.FindFileWithInode(lf.Ino) == nil {
			podcast.AddEpisodeForLibraryFile(lf)
			updated = true
		}
	}
	return updated
}

func trackAndDisc(lf *models.LibraryFile) (*int, *int) {
	return scanner.TrackAndDiscFromFilename(lf.Metadata.Filename)
}

func probeAudioFile(ctx context.Context, prober AudioProber, af *models.AudioFile) {
	if prober == nil {
		return
	}

	probe, err := prober.Probe(ctx, af.Metadata.Path)
	if err != nil {
		af.Invalid = true
		af.Error = err.Error()
		return
	}
	af.Invalid = false
	af.Error = ""
	af.Format = probe.Format
	af.Duration = probe.Duration
	af.BitRate = probe.BitRate
	af.Codec = probe.Codec
	af.Channels = probe.Channels
	af.ChannelLayout = probe.ChannelLayout
	af.Language = probe.Language
	af.EmbeddedCoverArt = probe.EmbeddedCoverArt
	af.TrackNumFromMeta = probe.TrackNum
	af.DiscNumFromMeta = probe.DiscNum
}
