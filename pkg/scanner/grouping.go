package scanner

import (
	"path"
	"regexp"
	"sort"
	"strings"
)

var cdDirRe = regexp.MustCompile(`(?i)^cd\d{1,3}$`)

// GroupFileItemsIntoLibraryItemDirs groups scanned files into candidate item
// directories. Media files establish groups; other files only attach to a
// group that already exists on their path. Files at the root are discarded.
//
// A group is established at the shallowest directory on a media file's path
// that is not already a group, except that a trailing cdNN directory folds
// into its parent with the disc segment kept in the member path. Items are
// considered shallowest first so the outcome does not depend on listing
// order.
func GroupFileItemsIntoLibraryItemDirs(classifier *Classifier, items []FileItem) map[string][]string {
	filtered := make([]FileItem, 0, len(items))
	for _, it := range items {
		if it.Depth > 0 {
			filtered = append(filtered, it)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Depth != filtered[j].Depth {
			return filtered[i].Depth < filtered[j].Depth
		}
		return filtered[i].RelPath < filtered[j].RelPath
	})

	var mediaItems, otherItems []FileItem
	for _, it := range filtered {
		if classifier.IsMediaFile(it.FullPath) {
			mediaItems = append(mediaItems, it)
		} else {
			otherItems = append(otherItems, it)
		}
	}

	group := map[string][]string{}
	for _, it := range mediaItems {
		dirparts := strings.Split(it.RelDirPath, "/")
		current := ""

		for len(dirparts) > 0 {
			current = path.Join(current, dirparts[0])
			dirparts = dirparts[1:]

			if _, ok := group[current]; ok {
				group[current] = append(group[current], path.Join(strings.Join(dirparts, "/"), it.Name))
				break
			}
			if len(dirparts) == 0 {
				group[current] = []string{it.Name}
				break
			}
			if len(dirparts) == 1 && cdDirRe.MatchString(dirparts[0]) {
				group[current] = []string{path.Join(dirparts[0], it.Name)}
				break
			}
		}
	}

	for _, it := range otherItems {
		dirparts := strings.Split(it.RelDirPath, "/")
		current := ""

		for len(dirparts) > 0 {
			current = path.Join(current, dirparts[0])
			dirparts = dirparts[1:]

			if _, ok := group[current]; ok {
				group[current] = append(group[current], path.Join(strings.Join(dirparts, "/"), it.Name))
				break
			}
		}
	}

	return group
}

// GroupFilePathsIntoLibraryItemDirs is the path-only variant used when the
// caller has relative file paths but no stat data, such as when reconciling a
// burst of watcher events. Grouping rules match the file-item variant.
func GroupFilePathsIntoLibraryItemDirs(classifier *Classifier, paths []string) map[string][]string {
	filtered := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimPrefix(p, "/")
		if path.Dir(p) != "." {
			filtered = append(filtered, p)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		di := strings.Count(path.Dir(filtered[i]), "/")
		dj := strings.Count(path.Dir(filtered[j]), "/")
		if di != dj {
			return di < dj
		}
		return filtered[i] < filtered[j]
	})

	var mediaPaths, otherPaths []string
	for _, p := range filtered {
		if classifier.IsMediaFile(p) {
			mediaPaths = append(mediaPaths, p)
		} else {
			otherPaths = append(otherPaths, p)
		}
	}

	group := map[string][]string{}
	add := func(p string, establish bool) {
		dirparts := strings.Split(path.Dir(p), "/")
		name := path.Base(p)
		current := ""

		for len(dirparts) > 0 {
			current = path.Join(current, dirparts[0])
			dirparts = dirparts[1:]

			if _, ok := group[current]; ok {
				group[current] = append(group[current], path.Join(strings.Join(dirparts, "/"), name))
				return
			}
			if !establish {
				continue
			}
			if len(dirparts) == 0 {
				group[current] = []string{name}
				return
			}
			if len(dirparts) == 1 && cdDirRe.MatchString(dirparts[0]) {
				group[current] = []string{path.Join(dirparts[0], name)}
				return
			}
		}
	}
	for _, p := range mediaPaths {
		add(p, true)
	}
	for _, p := range otherPaths {
		add(p, false)
	}

	return group
}
