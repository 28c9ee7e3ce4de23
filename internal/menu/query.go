// Package menu filters and groups menu items for the public menu page and the
// admin panel.  Everything here is pure: items come in already ordered by the
// store and nothing is fetched or written.
package menu

import (
	"strings"

	"github.com/iliyamo/wine-dine/internal/model"
)

// Group is one section of the grouped menu.
type Group struct {
	Category string           `json:"category"`
	Items    []model.MenuItem `json:"items"`
}

// Grouped is the filtered menu partitioned by category.  Groups appear in the
// order their category first occurs among the filtered items, and items keep
// the order they were received in.  Empty groups are never present.
type Grouped []Group

// Keys returns the category of each group in output order.
func (g Grouped) Keys() []string {
	keys := make([]string, 0, len(g))
	for _, grp := range g {
		keys = append(keys, grp.Category)
	}
	return keys
}

// Items returns the items grouped under category and whether the group exists.
func (g Grouped) Items(category string) ([]model.MenuItem, bool) {
	for _, grp := range g {
		if grp.Category == category {
			return grp.Items, true
		}
	}
	return nil, false
}

// Count returns the number of items across all groups.
func (g Grouped) Count() int {
	n := 0
	for _, grp := range g {
		n += len(grp.Items)
	}
	return n
}

// Query holds the visitor's search text and selected category filters.
type Query struct {
	Search     string
	Categories []string
}

// Matches reports whether the search text occurs, ignoring case, in the
// item's name or description.  An empty search matches every item.  The
// search is not trimmed.
func Matches(item model.MenuItem, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(item.Name), needle) ||
		strings.Contains(strings.ToLower(item.Description), needle)
}

// Select returns the items that satisfy both the search and the category
// filter, in input order.  An empty category set lets every category pass.
func Select(items []model.MenuItem, q Query) []model.MenuItem {
	selected := categorySet(q.Categories)
	out := make([]model.MenuItem, 0, len(items))
	for _, it := range items {
		if len(selected) > 0 && !selected[it.Category] {
			continue
		}
		if !Matches(it, q.Search) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// GroupByCategory partitions items by category keeping first-occurrence order
// of categories and input order within each group.
func GroupByCategory(items []model.MenuItem) Grouped {
	out := make(Grouped, 0)
	index := make(map[string]int)
	for _, it := range items {
		i, ok := index[it.Category]
		if !ok {
			i = len(out)
			index[it.Category] = i
			out = append(out, Group{Category: it.Category})
		}
		out[i].Items = append(out[i].Items, it)
	}
	return out
}

// Filter applies q to items and groups what survives.
func Filter(items []model.MenuItem, q Query) Grouped {
	return GroupByCategory(Select(items, q))
}

func categorySet(categories []string) map[string]bool {
	if len(categories) == 0 {
		return nil
	}
	set := make(map[string]bool, len(categories))
	for _, c := range categories {
		set[c] = true
	}
	return set
}
