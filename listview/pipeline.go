package listview

import (
	"net/url"
	"strings"
)

// Row is one derived result: the item plus any computed display fields.
type Row[T any] struct {
	Item     T              `json:"item"`
	Computed map[string]any `json:"computed,omitempty"`
}

// Query is the user-controlled part of a list page: search text, filter
// values and sort order.
type Query struct {
	Text    string
	Filters FilterState
	Sorts   SortState
}

// Pipeline derives results from source items: text search, then filter
// predicates, then computed fields, then sort.
type Pipeline[T any] struct {
	// Search reports whether item matches query. Nil matches everything.
	Search func(item T, query string) bool
	// Filters is the ordered filter panel configuration.
	Filters []FilterSection[T]
	// Value reads a sortable column from an item.
	Value ValueFunc[T]
	// Numeric marks columns compared as numbers.
	Numeric map[string]bool
	// Computed returns derived fields; they are sortable by name.
	Computed func(item T) map[string]any
}

// Run derives the rows for q.
func (p Pipeline[T]) Run(items []T, q Query) []Row[T] {
	matched := items
	if p.Search != nil && strings.TrimSpace(q.Text) != "" {
		matched = make([]T, 0, len(items))
		for _, item := range items {
			if p.Search(item, q.Text) {
				matched = append(matched, item)
			}
		}
	}

	matched = ApplyFilters(matched, p.Filters, q.Filters)

	rows := make([]Row[T], len(matched))
	for i, item := range matched {
		rows[i] = Row[T]{Item: item}
		if p.Computed != nil {
			rows[i].Computed = p.Computed(item)
		}
	}

	return ApplySort(rows, q.Sorts, p.Cell, p.Numeric)
}

// ActiveFilterCount counts the non-default sections of state.
func (p Pipeline[T]) ActiveFilterCount(state FilterState) int {
	return ActiveFilterCount(p.Filters, state)
}

// ParseQuery reads q, filter[key] and sort from URL query values.
func (p Pipeline[T]) ParseQuery(values url.Values) Query {
	return Query{
		Text:    values.Get(SearchParam),
		Filters: FiltersFromQuery(values, p.Filters),
		Sorts:   SortFromQuery(values),
	}
}

// WriteQuery stores q into values. Empty parts are omitted.
func WriteQuery(values url.Values, q Query) {
	if text := strings.TrimSpace(q.Text); text != "" {
		values.Set(SearchParam, q.Text)
	} else {
		values.Del(SearchParam)
	}
	WriteFilters(values, q.Filters)
	WriteSort(values, q.Sorts)
}

// Cell reads column from a row, preferring computed fields.
func (p Pipeline[T]) Cell(row Row[T], column string) any {
	if v, ok := row.Computed[column]; ok {
		return v
	}
	if p.Value == nil {
		return nil
	}
	return p.Value(row.Item, column)
}
