package listview

import (
	"fmt"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// SortParam is the query parameter holding the sort order.
const SortParam = "sort"

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortSpec is one column of a multi-column sort.
type SortSpec struct {
	Column    string    `json:"column"`
	Direction Direction `json:"direction"`
}

// SortState is an ordered list of sort specs. Index 0 has the highest
// priority. A column keeps its position once added; only its direction or
// presence changes.
type SortState []SortSpec

// Index returns the position of column in s, or -1.
func (s SortState) Index(column string) int {
	for i, spec := range s {
		if spec.Column == column {
			return i
		}
	}
	return -1
}

// ParseSort reads a "col1:asc,col2:desc" parameter value. Tokens with an
// invalid direction are dropped. Unknown columns are kept.
func ParseSort(value string) SortState {
	if strings.TrimSpace(value) == "" {
		return SortState{}
	}

	parts := strings.Split(value, ",")
	state := make(SortState, 0, len(parts))
	for _, part := range parts {
		column, dir, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			continue
		}
		column = strings.TrimSpace(column)
		direction := Direction(strings.TrimSpace(dir))
		if column == "" || (direction != Asc && direction != Desc) {
			continue
		}
		// first occurrence wins
		if state.Index(column) >= 0 {
			continue
		}
		state = append(state, SortSpec{Column: column, Direction: direction})
	}

	return state
}

// SerializeSort is the inverse of ParseSort. An empty state serializes to "".
func SerializeSort(state SortState) string {
	if len(state) == 0 {
		return ""
	}
	tokens := make([]string, len(state))
	for i, spec := range state {
		tokens[i] = spec.Column + ":" + string(spec.Direction)
	}
	return strings.Join(tokens, ",")
}

// SortFromQuery reads the sort parameter from query values.
func SortFromQuery(values url.Values) SortState {
	return ParseSort(values.Get(SortParam))
}

// WriteSort stores state in values, omitting the parameter when empty.
func WriteSort(values url.Values, state SortState) {
	if encoded := SerializeSort(state); encoded != "" {
		values.Set(SortParam, encoded)
		return
	}
	values.Del(SortParam)
}

// Click returns the sort state after a header click on column.
//
// Without shift the table is in single-column mode: an absent column replaces
// every other sort with asc, asc flips to desc, desc clears the sort.
// With shift the column is appended, flipped in place or removed, leaving
// the other entries where they are.
func Click(column string, current SortState, shift bool) SortState {
	idx := current.Index(column)

	if !shift {
		switch {
		case idx < 0:
			return SortState{{Column: column, Direction: Asc}}
		case current[idx].Direction == Asc:
			next := slices.Clone(current)
			next[idx].Direction = Desc
			return next
		default:
			return SortState{}
		}
	}

	switch {
	case idx < 0:
		next := slices.Clone(current)
		return append(next, SortSpec{Column: column, Direction: Asc})
	case current[idx].Direction == Asc:
		next := slices.Clone(current)
		next[idx].Direction = Desc
		return next
	default:
		return slices.Delete(slices.Clone(current), idx, idx+1)
	}
}

// ValueFunc returns the value of column for item. Missing values are nil.
type ValueFunc[T any] func(item T, column string) any

// ApplySort returns a sorted copy of items. The sort is stable: items that
// compare equal under every spec keep their original relative order.
func ApplySort[T any](items []T, state SortState, value ValueFunc[T], numeric map[string]bool) []T {
	sorted := slices.Clone(items)
	if len(state) == 0 || len(sorted) < 2 {
		return sorted
	}

	slices.SortStableFunc(sorted, func(a, b T) int {
		for _, spec := range state {
			var c int
			if numeric[spec.Column] {
				c = compareNumbers(toNumber(value(a, spec.Column)), toNumber(value(b, spec.Column)))
			} else {
				c = strings.Compare(toSortString(value(a, spec.Column)), toSortString(value(b, spec.Column)))
			}
			if c == 0 {
				continue
			}
			if spec.Direction == Desc {
				return -c
			}
			return c
		}
		return 0
	})

	return sorted
}

func compareNumbers(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// toNumber coerces v to a float; anything non-numeric becomes 0.
func toNumber(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		if math.IsNaN(n) {
			return 0
		}
		return n
	case bool:
		if n {
			return 1
		}
		return 0
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) {
			return 0
		}
		return f
	case *string:
		if n == nil {
			return 0
		}
		return toNumber(*n)
	default:
		return 0
	}
}

func toSortString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.ToLower(s)
	case *string:
		if s == nil {
			return ""
		}
		return strings.ToLower(*s)
	default:
		return strings.ToLower(fmt.Sprint(s))
	}
}
