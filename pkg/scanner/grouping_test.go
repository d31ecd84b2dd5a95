package scanner

import (
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fileItem(rel string) FileItem {
	relDir := path.Dir(rel)
	depth := 0
	if relDir == "." {
		relDir = ""
	} else {
		depth = len(strings.Split(relDir, "/"))
	}
	return FileItem{
		FullPath:   "/library/" + rel,
		RelPath:    rel,
		RelDirPath: relDir,
		Name:       path.Base(rel),
		Depth:      depth,
	}
}

func fileItems(rels ...string) []FileItem {
	items := make([]FileItem, 0, len(rels))
	for _, rel := range rels {
		items = append(items, fileItem(rel))
	}
	return items
}

func TestGroupFileItemsIntoLibraryItemDirs(t *testing.T) {
	t.Parallel()

	classifier := NewClassifier()

	testCases := []struct {
		name     string
		items    []FileItem
		expected map[string][]string
	}{
		{
			name:     "files in the root are discarded",
			items:    fileItems("loose.mp3", "cover.jpg"),
			expected: map[string][]string{},
		},
		{
			name:  "single book directory",
			items: fileItems("Author/Book/01.mp3", "Author/Book/02.mp3"),
			expected: map[string][]string{
				"Author/Book": {"01.mp3", "02.mp3"},
			},
		},
		{
			name:  "media file directly in author directory claims it",
			items: fileItems("Author/book.m4b"),
			expected: map[string][]string{
				"Author": {"book.m4b"},
			},
		},
		{
			name:  "cd directories fold into their parent",
			items: fileItems("Book/CD1/01.mp3", "Book/CD2/01.mp3"),
			expected: map[string][]string{
				"Book": {"CD1/01.mp3", "CD2/01.mp3"},
			},
		},
		{
			name:  "top level cd directory is its own item",
			items: fileItems("CD1/01.mp3"),
			expected: map[string][]string{
				"CD1": {"01.mp3"},
			},
		},
		{
			name:  "other files attach to established groups only",
			items: fileItems("Author/Book/01.mp3", "Author/Book/cover.jpg", "Empty/notes.txt"),
			expected: map[string][]string{
				"Author/Book": {"01.mp3", "cover.jpg"},
			},
		},
		{
			name:  "deep book keeps full directory as key",
			items: fileItems("Author/Series/Book/01.mp3", "Author/Series/Book/book.epub"),
			expected: map[string][]string{
				"Author/Series/Book": {"01.mp3", "book.epub"},
			},
		},
		{
			name:  "shallow group swallows deeper files on its path",
			items: fileItems("Author/loose.mp3", "Author/Book/01.mp3"),
			expected: map[string][]string{
				"Author": {"loose.mp3", "Book/01.mp3"},
			},
		},
		{
			name:  "sibling other file lands in the group with its subpath",
			items: fileItems("Book/01.mp3", "Book/extras/artwork.png"),
			expected: map[string][]string{
				"Book": {"01.mp3", "extras/artwork.png"},
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.expected, GroupFileItemsIntoLibraryItemDirs(classifier, tc.items))
		})
	}
}

func TestGroupFileItemsIntoLibraryItemDirsOrderIndependent(t *testing.T) {
	t.Parallel()

	classifier := NewClassifier()
	forward := fileItems("Author/loose.mp3", "Author/Book/01.mp3", "Author/Book/cover.jpg")
	backward := fileItems("Author/Book/cover.jpg", "Author/Book/01.mp3", "Author/loose.mp3")

	assert.Equal(t,
		GroupFileItemsIntoLibraryItemDirs(classifier, forward),
		GroupFileItemsIntoLibraryItemDirs(classifier, backward),
	)
}

func TestGroupFilePathsIntoLibraryItemDirs(t *testing.T) {
	t.Parallel()

	classifier := NewClassifier()

	group := GroupFilePathsIntoLibraryItemDirs(classifier, []string{
		"/Author/Book/01.mp3",
		"Author/Book/cover.jpg",
		"root.mp3",
		"Other/CD2/05.mp3",
	})

	assert.Equal(t, map[string][]string{
		"Author/Book": {"01.mp3", "cover.jpg"},
		"Other":       {"CD2/05.mp3"},
	}, group)
}
