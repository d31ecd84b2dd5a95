package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/robinjoseph08/golib/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthbooks/hearth/pkg/models"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func testFolder(root string) *models.Folder {
	return &models.Folder{ID: "fol_test", LibraryID: "lib_test", FullPath: root}
}

func testContext() context.Context {
	return logger.New().WithContext(context.Background())
}

func TestScanFolder(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"Terry Goodkind/Sword of Truth/1 - Wizards First Rule/01 - chapter.mp3": "audio",
		"Terry Goodkind/Sword of Truth/1 - Wizards First Rule/cover.jpg":        "image",
		"Jane Austen/Pride and Prejudice/book.epub":                             "ebook",
		"loose-root-file.mp3":                                                   "ignored",
		".hidden/secret.mp3":                                                    "ignored",
	})

	svc := New()
	items, err := svc.ScanFolder(testContext(), testFolder(root), Options{})
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Items come back ordered by relative path.
	austen := items[0]
	assert.Equal(t, "Jane Austen/Pride and Prejudice", austen.RelPath)
	assert.Equal(t, "lib_test", austen.LibraryID)
	assert.Equal(t, "fol_test", austen.FolderID)
	assert.Equal(t, "Pride and Prejudice", austen.MediaMetadata.Title)
	assert.Equal(t, "Jane Austen", austen.MediaMetadata.Author)
	require.Len(t, austen.LibraryFiles, 1)
	assert.Equal(t, models.FileTypeEbook, austen.LibraryFiles[0].FileType)
	assert.NotZero(t, austen.Ino)

	goodkind := items[1]
	assert.Equal(t, "Terry Goodkind", goodkind.MediaMetadata.Author)
	assert.Equal(t, "Sword of Truth", goodkind.MediaMetadata.Series)
	assert.Equal(t, "1", goodkind.MediaMetadata.Sequence)
	assert.Equal(t, "Wizards First Rule", goodkind.MediaMetadata.Title)
	require.Len(t, goodkind.LibraryFiles, 2)

	types := map[string]string{}
	for _, lf := range goodkind.LibraryFiles {
		types[lf.Metadata.Filename] = lf.FileType
		assert.NotZero(t, lf.Ino)
		assert.NotZero(t, lf.Metadata.MtimeMs)
		assert.Positive(t, lf.Metadata.Size)
	}
	assert.Equal(t, map[string]string{
		"01 - chapter.mp3": models.FileTypeAudio,
		"cover.jpg":        models.FileTypeImage,
	}, types)
}

func TestScanFolderMissingPath(t *testing.T) {
	t.Parallel()

	svc := New()
	items, err := svc.ScanFolder(testContext(), testFolder(filepath.Join(t.TempDir(), "gone")), Options{})
	require.NoError(t, err)
	assert.Nil(t, items)
}

func TestScanFolderNoMediaDirs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"docs/readme.txt": "text",
	})

	svc := New()
	items, err := svc.ScanFolder(testContext(), testFolder(root), Options{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestScanLibraryItemDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"Author/Book/01.mp3":    "audio",
		"Author/Book/cover.jpg": "image",
	})

	svc := New()
	data, err := svc.ScanLibraryItemDir(testContext(), testFolder(root), filepath.Join(root, "Author", "Book"), Options{})
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, "Author/Book", data.RelPath)
	assert.Equal(t, "Book", data.MediaMetadata.Title)
	assert.Equal(t, "Author", data.MediaMetadata.Author)
	assert.Len(t, data.LibraryFiles, 2)

	gone, err := svc.ScanLibraryItemDir(testContext(), testFolder(root), filepath.Join(root, "Author", "Missing"), Options{})
	require.NoError(t, err)
	assert.Nil(t, gone)
}
