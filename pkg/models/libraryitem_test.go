package models

import (
	"context"
	"testing"

	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCtx() context.Context {
	return logger.New().WithContext(context.Background())
}

func audioLibraryFile(ino uint64, relPath string) *LibraryFile {
	return testLibraryFile(ino, relPath, FileTypeAudio)
}

func testLibraryFile(ino uint64, relPath string, fileType string) *LibraryFile {
	return &LibraryFile{
		Ino:      ino,
		FileType: fileType,
		Metadata: &FileMetadata{
			Filename:    relPath[lastSlash(relPath)+1:],
			Ext:         ".mp3",
			Path:        "/library" + relPath,
			RelPath:     relPath,
			MtimeMs:     1000,
			CtimeMs:     1000,
			BirthtimeMs: 1000,
			Size:        64,
		},
	}
}

func lastSlash(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			return i
		}
	}
	return -1
}

func bookScanData(files ...*LibraryFile) *ItemScanData {
	return &ItemScanData{
		LibraryID:   "lib_1",
		FolderID:    "fol_1",
		Ino:         99,
		Path:        "/library/Author/Book",
		RelPath:     "Author/Book",
		MtimeMs:     5000,
		CtimeMs:     5000,
		BirthtimeMs: 5000,
		MediaMetadata: &ScanMediaMetadata{
			Author: "Author",
			Title:  "Book",
		},
		LibraryFiles: files,
	}
}

// newBookItem builds an item with synced audio views, the state an item is in
// after a scan plus file sync.
func newBookItem(files ...*LibraryFile) *LibraryItem {
	item := NewLibraryItem(MediaTypeBook, bookScanData(files...))
	book := item.Media.(*Book)
	for _, lf := range item.LibraryFiles {
		if lf.FileType == FileTypeAudio {
			book.AddAudioFile(NewAudioFileFromLibraryFile(lf))
		}
	}
	item.IsInvalid = !book.HasMediaFiles()
	return item
}

func cloneFiles(files ...*LibraryFile) []*LibraryFile {
	out := make([]*LibraryFile, 0, len(files))
	for _, lf := range files {
		out = append(out, lf.Clone())
	}
	return out
}

func TestNewLibraryItem(t *testing.T) {
	t.Parallel()

	audio := audioLibraryFile(1, "/Author/Book/01.mp3")
	image := testLibraryFile(2, "/Author/Book/cover.jpg", FileTypeImage)
	item := NewLibraryItem(MediaTypeBook, bookScanData(audio, image))

	assert.Contains(t, item.ID, "li_")
	assert.Equal(t, "book", item.MediaType)
	assert.Equal(t, uint64(99), item.Ino)
	assert.Equal(t, "Book", item.Media.(*Book).Metadata.Title)
	assert.Equal(t, []string{"Author"}, item.Media.(*Book).Metadata.Authors)
	assert.Equal(t, "/library/Author/Book/cover.jpg", item.Media.Cover())

	// Input files are cloned, not aliased.
	audio.Metadata.Filename = "changed.mp3"
	assert.Equal(t, "01.mp3", item.LibraryFiles[0].Metadata.Filename)
}

func TestCheckScanDataUnchanged(t *testing.T) {
	t.Parallel()

	audio := audioLibraryFile(1, "/Author/Book/01.mp3")
	item := newBookItem(audio)

	result := item.CheckScanData(testCtx(), bookScanData(cloneFiles(audio)...), "1.0.0")
	assert.False(t, result.Updated)
	assert.Empty(t, result.NewLibraryFiles)
	assert.Empty(t, result.FilesRemoved)
	assert.Len(t, result.ExistingLibraryFiles, 1)
	assert.Empty(t, item.ScanVersion)
	assert.Zero(t, item.LastScan)
}

func TestCheckScanDataRenameKeepsInode(t *testing.T) {
	t.Parallel()

	audio := audioLibraryFile(1, "/Author/Book/01.mp3")
	item := newBookItem(audio)

	renamed := audio.Clone()
	renamed.Metadata.Filename = "01 - renamed.mp3"
	renamed.Metadata.Path = "/library/Author/Book/01 - renamed.mp3"
	renamed.Metadata.RelPath = "/Author/Book/01 - renamed.mp3"

	result := item.CheckScanData(testCtx(), bookScanData(renamed), "1.0.0")
	require.True(t, result.Updated)
	assert.Empty(t, result.NewLibraryFiles)
	assert.Empty(t, result.FilesRemoved)

	lf := item.FindLibraryFileWithIno(1)
	require.NotNil(t, lf)
	assert.Equal(t, "01 - renamed.mp3", lf.Metadata.Filename)

	// The media view follows along.
	view := item.Media.FindFileWithInode(1)
	require.NotNil(t, view)
	assert.Equal(t, "/library/Author/Book/01 - renamed.mp3", view.FileMetadata().Path)
	assert.Equal(t, "1.0.0", item.ScanVersion)
	assert.NotZero(t, item.LastScan)
}

func TestCheckScanDataInodeChangeMatchesByPath(t *testing.T) {
	t.Parallel()

	audio := audioLibraryFile(1, "/Author/Book/01.mp3")
	item := newBookItem(audio)

	rekeyed := audio.Clone()
	rekeyed.Ino = 42

	result := item.CheckScanData(testCtx(), bookScanData(rekeyed), "1.0.0")
	require.True(t, result.Updated)
	assert.Empty(t, result.NewLibraryFiles)

	assert.Nil(t, item.FindLibraryFileWithIno(1))
	require.NotNil(t, item.FindLibraryFileWithIno(42))
	require.NotNil(t, item.Media.FindFileWithInode(42))
	assert.Nil(t, item.Media.FindFileWithInode(1))
}

func TestCheckScanDataModifiedFile(t *testing.T) {
	t.Parallel()

	audio := audioLibraryFile(1, "/Author/Book/01.mp3")
	item := newBookItem(audio)

	touched := audio.Clone()
	touched.Metadata.MtimeMs = 2000
	touched.Metadata.Size = 128

	result := item.CheckScanData(testCtx(), bookScanData(touched), "1.0.0")
	require.True(t, result.Updated)
	require.Len(t, result.ExistingLibraryFiles, 1)
	assert.True(t, result.ExistingLibraryFiles[0].Metadata.WasModified)

	lf := item.FindLibraryFileWithIno(1)
	assert.Equal(t, int64(2000), lf.Metadata.MtimeMs)
	assert.Equal(t, int64(128), lf.Metadata.Size)
	assert.True(t, item.Media.FindFileWithInode(1).FileMetadata().WasModified)
}

func TestCheckScanDataNewAndRemovedFiles(t *testing.T) {
	t.Parallel()

	first := audioLibraryFile(1, "/Author/Book/01.mp3")
	second := audioLibraryFile(2, "/Author/Book/02.mp3")
	item := newBookItem(first, second)

	third := audioLibraryFile(3, "/Author/Book/03.mp3")
	result := item.CheckScanData(testCtx(), bookScanData(cloneFiles(first, third)...), "1.0.0")
	require.True(t, result.Updated)
	require.Len(t, result.NewLibraryFiles, 1)
	assert.Equal(t, uint64(3), result.NewLibraryFiles[0].Ino)
	require.Len(t, result.FilesRemoved, 1)
	assert.Equal(t, uint64(2), result.FilesRemoved[0].Ino)

	assert.Nil(t, item.FindLibraryFileWithIno(2))
	assert.NotNil(t, item.FindLibraryFileWithIno(3))
	assert.Nil(t, item.Media.FindFileWithInode(2))
}

func TestCheckScanDataAllMediaRemovedMarksInvalid(t *testing.T) {
	t.Parallel()

	audio := audioLibraryFile(1, "/Author/Book/01.mp3")
	image := testLibraryFile(2, "/Author/Book/cover.jpg", FileTypeImage)
	item := newBookItem(audio, image)
	item.Media.UpdateCover(image.Metadata.Path)

	result := item.CheckScanData(testCtx(), bookScanData(cloneFiles(image)...), "1.0.0")
	require.True(t, result.Updated)
	assert.True(t, item.IsInvalid)
	assert.Equal(t, image.Metadata.Path, item.Media.Cover())
}

func TestCheckScanDataCoverFileRemoved(t *testing.T) {
	t.Parallel()

	audio := audioLibraryFile(1, "/Author/Book/01.mp3")
	image := testLibraryFile(2, "/Author/Book/cover.jpg", FileTypeImage)
	item := newBookItem(audio, image)
	item.Media.UpdateCover(image.Metadata.Path)

	result := item.CheckScanData(testCtx(), bookScanData(cloneFiles(audio)...), "1.0.0")
	require.True(t, result.Updated)
	assert.Empty(t, item.Media.Cover())
	assert.False(t, item.IsInvalid)
}

func TestCheckScanDataMissingItemRestored(t *testing.T) {
	t.Parallel()

	audio := audioLibraryFile(1, "/Author/Book/01.mp3")
	item := newBookItem(audio)
	item.SetMissing()
	require.True(t, item.IsMissing)

	result := item.CheckScanData(testCtx(), bookScanData(cloneFiles(audio)...), "1.0.0")
	assert.True(t, result.Updated)
	assert.False(t, item.IsMissing)
}

func TestCheckScanDataFolderAndPathDrift(t *testing.T) {
	t.Parallel()

	audio := audioLibraryFile(1, "/Author/Book/01.mp3")
	item := newBookItem(audio)

	moved := bookScanData(cloneFiles(audio)...)
	moved.FolderID = "fol_2"
	moved.Path = "/library2/Author/Book"
	moved.RelPath = "Author/Book"

	result := item.CheckScanData(testCtx(), moved, "1.0.0")
	require.True(t, result.Updated)
	assert.Equal(t, "fol_2", item.FolderID)
	assert.Equal(t, "/library2/Author/Book", item.Path)
}

func TestLibraryItemJSONRoundTrip(t *testing.T) {
	t.Parallel()

	audio := audioLibraryFile(1, "/Author/Book/01.mp3")
	item := newBookItem(audio)
	item.Media.(*Book).Metadata.Series = []SeriesSequence{{Name: "Series", Sequence: "2"}}

	data, err := json.Marshal(item)
	require.NoError(t, err)

	decoded := &LibraryItem{}
	require.NoError(t, json.Unmarshal(data, decoded))

	assert.Equal(t, item.ID, decoded.ID)
	assert.Equal(t, item.Ino, decoded.Ino)
	assert.Equal(t, MediaTypeBook, decoded.MediaType)
	book, ok := decoded.Media.(*Book)
	require.True(t, ok)
	assert.Equal(t, "Book", book.Metadata.Title)
	assert.Equal(t, []SeriesSequence{{Name: "Series", Sequence: "2"}}, book.Metadata.Series)
	require.Len(t, book.AudioFiles, 1)
	assert.Equal(t, uint64(1), book.AudioFiles[0].Ino)
	require.Len(t, decoded.LibraryFiles, 1)
	assert.Equal(t, "01.mp3", decoded.LibraryFiles[0].Metadata.Filename)
}

func TestPodcastItemJSONRoundTrip(t *testing.T) {
	t.Parallel()

	audio := audioLibraryFile(7, "/Casts/Show/ep1.mp3")
	data := bookScanData(audio)
	item := NewLibraryItem(MediaTypePodcast, data)
	item.Media.(*Podcast).AddEpisodeForLibraryFile(item.LibraryFiles[0])

	raw, err := json.Marshal(item)
	require.NoError(t, err)

	decoded := &LibraryItem{}
	require.NoError(t, json.Unmarshal(raw, decoded))

	podcast, ok := decoded.Media.(*Podcast)
	require.True(t, ok)
	require.Len(t, podcast.Episodes, 1)
	assert.Equal(t, uint64(7), podcast.Episodes[0].AudioFile.Ino)
}
