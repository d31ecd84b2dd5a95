package catalog

import (
	"sort"
	"strconv"

	"github.com/hearthbooks/hearth/pkg/models"
)

// MostRecentlyAdded returns up to limit items, newest first.
func MostRecentlyAdded(items []*models.LibraryItem, limit int) []*models.LibraryItem {
	out := append([]*models.LibraryItem{}, items...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AddedAt > out[j].AddedAt
	})
	return truncate(out, limit)
}

// InProgress returns started but unfinished items, most recently listened or
// read first.
func InProgress(items []*models.LibraryItem, progress models.ProgressLookup, limit int) []*models.LibraryItem {
	if progress == nil {
		return nil
	}

	type entry struct {
		item       *models.LibraryItem
		lastUpdate int64
	}
	var entries []entry
	for _, item := range items {
		p := progress(item.ID)
		if p != nil && p.Progress > 0 && !p.IsFinished {
			entries = append(entries, entry{item, p.LastUpdate})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].lastUpdate > entries[j].lastUpdate
	})

	out := make([]*models.LibraryItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.item)
	}
	return truncate(out, limit)
}

// MostRecentlyFinished returns finished items, latest finish first.
func MostRecentlyFinished(items []*models.LibraryItem, progress models.ProgressLookup, limit int) []*models.LibraryItem {
	if progress == nil {
		return nil
	}

	type entry struct {
		item       *models.LibraryItem
		finishedAt int64
	}
	var entries []entry
	for _, item := range items {
		p := progress(item.ID)
		if p != nil && p.IsFinished {
			entries = append(entries, entry{item, p.FinishedAt})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].finishedAt > entries[j].finishedAt
	})

	out := make([]*models.LibraryItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.item)
	}
	return truncate(out, limit)
}

// NextInSeries suggests the next unread book of each series the user has
// started but not completed. A series qualifies when at least one of its
// books is finished and at least one is unstarted; the earliest unstarted
// book in sequence order is suggested. Series the user touched most recently
// come first.
func NextInSeries(items []*models.LibraryItem, progress models.ProgressLookup, limit int) []*models.LibraryItem {
	if progress == nil {
		return nil
	}

	bySeries := map[string][]*models.LibraryItem{}
	for _, item := range items {
		if item.MediaType != models.MediaTypeBook {
			continue
		}
		for _, s := range item.Media.ToSummary().Series {
			if s.Name != "" {
				bySeries[s.Name] = append(bySeries[s.Name], item)
			}
		}
	}

	type suggestion struct {
		item           *models.LibraryItem
		lastFinishedAt int64
	}
	var suggestions []suggestion
	for name, books := range bySeries {
		SortSeriesBooks(books, name)

		var lastFinishedAt int64
		var next *models.LibraryItem
		anyFinished := false
		for _, book := range books {
			p := progress(book.ID)
			if p != nil && p.IsFinished {
				anyFinished = true
				if p.FinishedAt > lastFinishedAt {
					lastFinishedAt = p.FinishedAt
				}
				continue
			}
			if (p == nil || (p.Progress == 0 && !p.IsFinished)) && next == nil {
				next = book
			}
		}
		if anyFinished && next != nil {
			suggestions = append(suggestions, suggestion{next, lastFinishedAt})
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].lastFinishedAt > suggestions[j].lastFinishedAt
	})

	out := make([]*models.LibraryItem, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, s.item)
	}
	return truncate(out, limit)
}

// SortSeriesBooks orders books of one series by sequence, with books lacking
// a sequence after numbered ones and title as the tiebreak.
func SortSeriesBooks(books []*models.LibraryItem, seriesName string) {
	cl := newCollator()
	sort.SliceStable(books, func(i, j int) bool {
		si, oki := seriesSequence(books[i], seriesName)
		sj, okj := seriesSequence(books[j], seriesName)
		if oki != okj {
			return oki
		}
		if oki && okj && si != sj {
			return si < sj
		}
		return cl.CompareString(books[i].Media.ToSummary().Title, books[j].Media.ToSummary().Title) < 0
	})
}

func seriesSequence(item *models.LibraryItem, seriesName string) (float64, bool) {
	for _, s := range item.Media.ToSummary().Series {
		if s.Name == seriesName && s.Sequence != "" {
			if f, err := strconv.ParseFloat(s.Sequence, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func truncate(items []*models.LibraryItem, limit int) []*models.LibraryItem {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
