package scanner

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// FileItem is one regular file found under a walk root. All relative paths
// use forward slashes regardless of platform.
type FileItem struct {
	FullPath   string
	RelPath    string
	RelDirPath string
	Name       string
	// Depth is the number of directories between the root and the file. A
	// file directly in the root has depth 0.
	Depth int
}

// Lister enumerates the regular files under a root directory. The production
// implementation walks the real filesystem; tests substitute fixed listings.
type Lister interface {
	ListFiles(ctx context.Context, root string) ([]FileItem, error)
}

// DirWalker lists files via the OS. Dotfiles and dot-directories are skipped
// entirely.
type DirWalker struct{}

func (DirWalker) ListFiles(ctx context.Context, root string) ([]FileItem, error) {
	root = filepath.Clean(root)

	var items []FileItem
	err := filepath.WalkDir(root, func(fullPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.WithStack(err)
		}
		if err := ctx.Err(); err != nil {
			return errors.WithStack(err)
		}

		if strings.HasPrefix(d.Name(), ".") && fullPath != root {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, fullPath)
		if err != nil {
			return errors.WithStack(err)
		}
		rel = filepath.ToSlash(rel)

		relDir := path.Dir(rel)
		depth := 0
		if relDir != "." {
			depth = len(strings.Split(relDir, "/"))
		} else {
			relDir = ""
		}

		items = append(items, FileItem{
			FullPath:   filepath.ToSlash(fullPath),
			RelPath:    rel,
			RelDirPath: relDir,
			Name:       d.Name(),
			Depth:      depth,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}
