// Package feed derives ordered, filtered views of analyzed content.
// Every function is pure: inputs are never modified and each call returns
// a fresh slice.
package feed

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/briefdeck/briefdeck/internal/model"
)

// AllCategories is the category filter that keeps every item.
const AllCategories = "all"

// SortKey selects the ordering applied by Project.
type SortKey int

const (
	SortImportance SortKey = iota // Descending importance
	SortRecent                    // Input order
	SortReading                   // Ascending reading time
)

// SortKeys lists the supported keys in cycling order.
var SortKeys = []SortKey{SortImportance, SortRecent, SortReading}

func (k SortKey) String() string {
	switch k {
	case SortImportance:
		return "importance"
	case SortRecent:
		return "recent"
	case SortReading:
		return "reading"
	default:
		return fmt.Sprintf("sort(%d)", int(k))
	}
}

// Label is the human-readable name shown in the UI.
func (k SortKey) Label() string {
	switch k {
	case SortImportance:
		return "Importance"
	case SortRecent:
		return "Most Recent"
	case SortReading:
		return "Reading Time"
	default:
		return k.String()
	}
}

// Next returns the key after k in SortKeys, wrapping around.
func (k SortKey) Next() SortKey {
	i := slices.Index(SortKeys, k)
	return SortKeys[(i+1)%len(SortKeys)]
}

// ParseSortKey parses the wire name of a sort key.
func ParseSortKey(s string) (SortKey, error) {
	for _, k := range SortKeys {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown sort key %q (want importance, recent or reading)", s)
}

// Project filters items by category, then orders them by key. An unknown
// key leaves the filtered items in input order.
func Project(items []model.ContentItem, key SortKey, category string) []model.ContentItem {
	return sortInPlace(Filter(items, category), key)
}

// Filter returns the items whose category equals category exactly.
// AllCategories keeps everything.
func Filter(items []model.ContentItem, category string) []model.ContentItem {
	out := make([]model.ContentItem, 0, len(items))
	for _, it := range items {
		if category == AllCategories || it.Category == category {
			out = append(out, it)
		}
	}
	return out
}

// Sort returns a copy of items ordered by key.
func Sort(items []model.ContentItem, key SortKey) []model.ContentItem {
	return sortInPlace(slices.Clone(items), key)
}

func sortInPlace(items []model.ContentItem, key SortKey) []model.ContentItem {
	switch key {
	case SortImportance:
		slices.SortStableFunc(items, func(a, b model.ContentItem) int {
			return cmp.Compare(rank(b.Importance), rank(a.Importance))
		})
	case SortReading:
		slices.SortStableFunc(items, func(a, b model.ContentItem) int {
			return cmp.Compare(a.ReadingTime, b.ReadingTime)
		})
	case SortRecent:
		// Recency ordering is not defined by the backend; keep input order.
	}
	return items
}

// rank maps non-finite importance below every finite score.
func rank(importance float64) float64 {
	if math.IsNaN(importance) || math.IsInf(importance, 0) {
		return math.Inf(-1)
	}
	return importance
}

// Categories returns the filter choices for items: AllCategories followed
// by each distinct category in first-seen order. Items without a category
// contribute nothing.
func Categories(items []model.ContentItem) []string {
	out := []string{AllCategories}
	seen := make(map[string]bool)
	for _, it := range items {
		if it.Category == "" || seen[it.Category] {
			continue
		}
		seen[it.Category] = true
		out = append(out, it.Category)
	}
	return out
}

// Headlines returns up to n items with the highest importance, ties in
// input order.
func Headlines(items []model.ContentItem, n int) []model.ContentItem {
	sorted := Sort(items, SortImportance)
	if n < 0 {
		n = 0
	}
	if n < len(sorted) {
		sorted = sorted[:n:n]
	}
	return sorted
}

// Group is the items of one category.
type Group struct {
	Category string
	Items    []model.ContentItem
}

// GroupByCategory splits items into per-category groups. Groups appear in
// first-seen order and items keep their relative order.
func GroupByCategory(items []model.ContentItem) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, it := range items {
		i, ok := index[it.Category]
		if !ok {
			i = len(groups)
			index[it.Category] = i
			groups = append(groups, Group{Category: it.Category})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}
