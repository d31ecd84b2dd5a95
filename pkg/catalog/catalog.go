package catalog

import (
	"encoding/base64"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/hearthbooks/hearth/pkg/models"
)

// NoSeriesName is the pseudo-series holding books that belong to no series.
const NoSeriesName = "No Series"

// Filter groups.
const (
	FilterGenres    = "genres"
	FilterTags      = "tags"
	FilterSeries    = "series"
	FilterAuthors   = "authors"
	FilterNarrators = "narrators"
	FilterLanguages = "languages"
	FilterProgress  = "progress"
	FilterIssues    = "issues"
	FilterMissing   = "missing"
	FilterInvalid   = "invalid"
)

// Progress filter values.
const (
	ProgressFinished   = "finished"
	ProgressInProgress = "in-progress"
	ProgressNotStarted = "not-started"
)

func newCollator() *collate.Collator {
	// collate.Collator is not safe for concurrent use, so build one per call.
	return collate.New(language.Und, collate.Numeric, collate.IgnoreCase)
}

// NaturalSort sorts strings the way humans read them, with digit runs
// compared numerically and case ignored.
func NaturalSort(values []string) {
	cl := newCollator()
	sort.SliceStable(values, func(i, j int) bool {
		return cl.CompareString(values[i], values[j]) < 0
	})
}

// FilterItems returns the items matching a filter expression of the form
// "group.value", with the value base64 encoded. The bare groups "issues",
// "missing", and "invalid" take no value. Unknown groups match nothing.
func FilterItems(items []*models.LibraryItem, filterBy string, progress models.ProgressLookup) []*models.LibraryItem {
	group := filterBy
	value := ""
	if i := strings.Index(filterBy, "."); i >= 0 {
		group = filterBy[:i]
		if decoded, err := base64.StdEncoding.DecodeString(filterBy[i+1:]); err == nil {
			value = string(decoded)
		} else {
			return nil
		}
	}

	filtered := []*models.LibraryItem{}
	for _, item := range items {
		if itemMatchesFilter(item, group, value, progress) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

func itemMatchesFilter(item *models.LibraryItem, group, value string, progress models.ProgressLookup) bool {
	summary := item.Media.ToSummary()

	switch group {
	case FilterGenres:
		return containsString(summary.Genres, value)
	case FilterTags:
		return containsString(summary.Tags, value)
	case FilterLanguages:
		return summary.Language == value
	case FilterSeries:
		if value == NoSeriesName {
			return item.MediaType == models.MediaTypeBook && len(summary.Series) == 0
		}
		for _, s := range summary.Series {
			if s.Name == value {
				return true
			}
		}
		return false
	case FilterAuthors:
		return containsString(summary.Authors, value)
	case FilterNarrators:
		return containsString(summary.Narrators, value)
	case FilterProgress:
		if progress == nil {
			return value == ProgressNotStarted
		}
		p := progress(item.ID)
		switch value {
		case ProgressFinished:
			return p != nil && p.IsFinished
		case ProgressInProgress:
			return p != nil && p.Progress > 0 && !p.IsFinished
		case ProgressNotStarted:
			return p == nil || (p.Progress == 0 && !p.IsFinished)
		}
		return false
	case FilterIssues:
		return item.IsMissing || item.IsInvalid
	case FilterMissing:
		return item.IsMissing
	case FilterInvalid:
		return item.IsInvalid
	}
	return false
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

// FilterData is the distinct metadata values across a set of items, each list
// naturally sorted. It backs the filter dropdowns.
type FilterData struct {
	Genres    []string `json:"genres"`
	Tags      []string `json:"tags"`
	Series    []string `json:"series"`
	Authors   []string `json:"authors"`
	Narrators []string `json:"narrators"`
	Languages []string `json:"languages"`
	NumIssues int      `json:"numIssues"`
}

// DistinctFilterData collects the distinct filterable values of the items.
func DistinctFilterData(items []*models.LibraryItem) *FilterData {
	genres := map[string]bool{}
	tags := map[string]bool{}
	series := map[string]bool{}
	authors := map[string]bool{}
	narrators := map[string]bool{}
	languages := map[string]bool{}
	numIssues := 0

	for _, item := range items {
		if item.IsMissing || item.IsInvalid {
			numIssues++
		}
		summary := item.Media.ToSummary()
		addAll(genres, summary.Genres)
		addAll(tags, summary.Tags)
		addAll(authors, summary.Authors)
		addAll(narrators, summary.Narrators)
		if summary.Language != "" {
			languages[summary.Language] = true
		}
		for _, s := range summary.Series {
			if s.Name != "" {
				series[s.Name] = true
			}
		}
	}

	return &FilterData{
		Genres:    sortedKeys(genres),
		Tags:      sortedKeys(tags),
		Series:    sortedKeys(series),
		Authors:   sortedKeys(authors),
		Narrators: sortedKeys(narrators),
		Languages: sortedKeys(languages),
		NumIssues: numIssues,
	}
}

func addAll(set map[string]bool, values []string) {
	for _, v := range values {
		if v != "" {
			set[v] = true
		}
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	NaturalSort(keys)
	return keys
}

// SearchItems returns items whose metadata matches the query,
// case-insensitively.
func SearchItems(items []*models.LibraryItem, query string) []*models.LibraryItem {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	matched := []*models.LibraryItem{}
	for _, item := range items {
		if item.SearchQuery(query) {
			matched = append(matched, item)
		}
	}
	return matched
}

// NumIssues counts items that are missing or have no usable media files.
func NumIssues(items []*models.LibraryItem) int {
	n := 0
	for _, item := range items {
		if item.IsMissing || item.IsInvalid {
			n++
		}
	}
	return n
}
