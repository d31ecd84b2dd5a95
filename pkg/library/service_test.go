package library

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/robinjoseph08/golib/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/hearthbooks/hearth/pkg/itemstore"
	"github.com/hearthbooks/hearth/pkg/models"
	"github.com/hearthbooks/hearth/pkg/scanner"
	"github.com/hearthbooks/hearth/pkg/settings"
	"github.com/hearthbooks/hearth/pkg/sidecar"
)

type fixture struct {
	root    string
	store   *itemstore.Service
	service *Service
	library *models.Library
}

func newFixture(t *testing.T, prober AudioProber) *fixture {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	store := itemstore.New(db)
	require.NoError(t, store.Init(context.Background()))

	settingsService, err := settings.Load("")
	require.NoError(t, err)

	root := t.TempDir()
	library := models.NewLibrary("Audiobooks", models.MediaTypeBook, []string{root})
	require.NoError(t, store.SaveLibrary(context.Background(), library))

	return &fixture{
		root:    root,
		store:   store,
		service: New(store, scanner.New(), settingsService, prober),
		library: library,
	}
}

func (f *fixture) writeFile(t *testing.T, rel, content string) {
	t.Helper()
	full := filepath.Join(f.root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func (f *fixture) items(t *testing.T) map[string]*models.LibraryItem {
	t.Helper()
	items, err := f.store.ListItemsByLibrary(context.Background(), f.library.ID)
	require.NoError(t, err)
	byRelPath := map[string]*models.LibraryItem{}
	for _, item := range items {
		byRelPath[item.RelPath] = item
	}
	return byRelPath
}

func scanContext() context.Context {
	return logger.New().WithContext(context.Background())
}

type stubProber struct {
	err error
}

func (p *stubProber) Probe(ctx context.Context, path string) (*AudioProbeData, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &AudioProbeData{
		Format:   "MP2/3 (MPEG audio layer 2/3)",
		Duration: 1843.2,
		BitRate:  128000,
		Codec:    "mp3",
		Channels: 2,
	}, nil
}

func TestScanLibrary(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &stubProber{})
	f.writeFile(t, "Terry Goodkind/Sword of Truth/1 - Wizards First Rule/01 - chapter.mp3", "audio")
	f.writeFile(t, "Terry Goodkind/Sword of Truth/1 - Wizards First Rule/cover.jpg", "image")
	f.writeFile(t, "Jane Austen/Pride and Prejudice/book.epub", "ebook")

	summary, err := f.service.ScanLibrary(scanContext(), f.library)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.ItemsAdded)
	assert.Zero(t, summary.ItemsUpdated)
	assert.Zero(t, summary.ItemsMissing)
	assert.False(t, summary.Canceled)
	assert.NotZero(t, f.library.LastScan)
	assert.False(t, f.service.IsScanning(f.library.ID))

	items := f.items(t)
	require.Len(t, items, 2)

	goodkind := items["Terry Goodkind/Sword of Truth/1 - Wizards First Rule"]
	require.NotNil(t, goodkind)
	book := goodkind.Media.(*models.Book)
	assert.Equal(t, "Wizards First Rule", book.Metadata.Title)
	assert.Equal(t, []string{"Terry Goodkind"}, book.Metadata.Authors)
	assert.Equal(t, "1", book.Metadata.SeriesSequenceFor("Sword of Truth"))
	require.Len(t, book.AudioFiles, 1)
	assert.Equal(t, "mp3", book.AudioFiles[0].Codec)
	assert.NotEmpty(t, book.CoverPath)
	assert.False(t, goodkind.IsInvalid)

	austen := items["Jane Austen/Pride and Prejudice"]
	require.NotNil(t, austen)
	assert.Len(t, austen.Media.(*models.Book).EbookFiles, 1)
}

func TestScanLibraryUnchangedOnRescan(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.writeFile(t, "Author/Book/01.mp3", "audio")

	_, err := f.service.ScanLibrary(scanContext(), f.library)
	require.NoError(t, err)

	summary, err := f.service.ScanLibrary(scanContext(), f.library)
	require.NoError(t, err)
	assert.Zero(t, summary.ItemsAdded)
	assert.Zero(t, summary.ItemsUpdated)
	assert.Equal(t, 1, summary.ItemsUnchanged)
}

func TestScanLibraryMarksMissing(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.writeFile(t, "Author/Book One/01.mp3", "audio")
	f.writeFile(t, "Author/Book Two/01.mp3", "audio")

	_, err := f.service.ScanLibrary(scanContext(), f.library)
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(filepath.Join(f.root, "Author", "Book Two")))

	summary, err := f.service.ScanLibrary(scanContext(), f.library)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ItemsMissing)
	assert.Equal(t, 1, summary.ItemsUnchanged)

	items := f.items(t)
	assert.True(t, items["Author/Book Two"].IsMissing)
	assert.False(t, items["Author/Book One"].IsMissing)
}

func TestScanLibraryRestoresMissing(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.writeFile(t, "Author/Book/01.mp3", "audio")

	_, err := f.service.ScanLibrary(scanContext(), f.library)
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(filepath.Join(f.root, "Author", "Book")))
	_, err = f.service.ScanLibrary(scanContext(), f.library)
	require.NoError(t, err)

	f.writeFile(t, "Author/Book/01.mp3", "audio")
	summary, err := f.service.ScanLibrary(scanContext(), f.library)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ItemsUpdated)

	items := f.items(t)
	assert.False(t, items["Author/Book"].IsMissing)
}

func TestScanLibraryAppliesSidecarMetadata(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.writeFile(t, "Author/Book/01.mp3", "audio")

	bookDir := filepath.Join(f.root, "Author", "Book")
	require.NoError(t, sidecar.WriteBookSidecar(bookDir, &sidecar.BookSidecar{
		Title:     "Corrected Title",
		Narrators: []string{"Nora Narrator"},
		Tags:      []string{"favorites"},
	}))

	_, err := f.service.ScanLibrary(scanContext(), f.library)
	require.NoError(t, err)

	items := f.items(t)
	book := items["Author/Book"].Media.(*models.Book)
	assert.Equal(t, "Corrected Title", book.Metadata.Title)
	assert.Equal(t, []string{"Nora Narrator"}, book.Metadata.Narrators)
	assert.Equal(t, []string{"favorites"}, book.Tags)
}

func TestScanLibraryProbeFailureMarksFileInvalid(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &stubProber{err: assert.AnError})
	f.writeFile(t, "Author/Book/01.mp3", "audio")

	_, err := f.service.ScanLibrary(scanContext(), f.library)
	require.NoError(t, err)

	items := f.items(t)
	item := items["Author/Book"]
	book := item.Media.(*models.Book)
	require.Len(t, book.AudioFiles, 1)
	assert.True(t, book.AudioFiles[0].Invalid)
	assert.True(t, item.IsInvalid)
}

func TestRescanItem(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.writeFile(t, "Author/Book/01.mp3", "audio")

	_, err := f.service.ScanLibrary(scanContext(), f.library)
	require.NoError(t, err)

	items := f.items(t)
	item := items["Author/Book"]

	f.writeFile(t, "Author/Book/02.mp3", "audio")
	rescanned, err := f.service.RescanItem(scanContext(), f.library, item)
	require.NoError(t, err)
	assert.Len(t, rescanned.LibraryFiles, 2)

	require.NoError(t, os.RemoveAll(filepath.Join(f.root, "Author", "Book")))
	rescanned, err = f.service.RescanItem(scanContext(), f.library, item)
	require.NoError(t, err)
	assert.True(t, rescanned.IsMissing)
}
