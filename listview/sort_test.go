package listview

import (
	"net/url"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	Name string
	Age  any
	Seq  int
}

func personValue(p person, column string) any {
	switch column {
	case "name":
		return p.Name
	case "age":
		return p.Age
	case "seq":
		return p.Seq
	default:
		return nil
	}
}

var personNumeric = map[string]bool{"age": true, "seq": true}

func TestParseSort(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  SortState
	}{
		{
			name:  "empty",
			value: "",
			want:  SortState{},
		},
		{
			name:  "single column",
			value: "name:asc",
			want:  SortState{{Column: "name", Direction: Asc}},
		},
		{
			name:  "multiple columns keep order",
			value: "type:desc,name:asc",
			want:  SortState{{Column: "type", Direction: Desc}, {Column: "name", Direction: Asc}},
		},
		{
			name:  "invalid direction dropped",
			value: "name:up,age:desc",
			want:  SortState{{Column: "age", Direction: Desc}},
		},
		{
			name:  "missing separator dropped",
			value: "name,age:asc",
			want:  SortState{{Column: "age", Direction: Asc}},
		},
		{
			name:  "unknown columns kept",
			value: "doesNotExist:asc",
			want:  SortState{{Column: "doesNotExist", Direction: Asc}},
		},
		{
			name:  "duplicate column keeps first",
			value: "name:asc,name:desc",
			want:  SortState{{Column: "name", Direction: Asc}},
		},
		{
			name:  "whitespace trimmed",
			value: " name : desc , age:asc ",
			want:  SortState{{Column: "name", Direction: Desc}, {Column: "age", Direction: Asc}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSort(tt.value))
		})
	}
}

func TestSerializeSort(t *testing.T) {
	assert.Equal(t, "", SerializeSort(nil))
	assert.Equal(t, "", SerializeSort(SortState{}))
	assert.Equal(t, "name:asc,age:desc", SerializeSort(SortState{
		{Column: "name", Direction: Asc},
		{Column: "age", Direction: Desc},
	}))
}

func TestWriteSort(t *testing.T) {
	values := url.Values{"q": {"email"}}

	WriteSort(values, SortState{{Column: "name", Direction: Desc}})
	assert.Equal(t, "name:desc", values.Get(SortParam))

	WriteSort(values, SortState{})
	_, present := values[SortParam]
	assert.False(t, present, "empty sort must omit the parameter")
	assert.Equal(t, "email", values.Get("q"))
}

func TestClick_SingleColumnCycle(t *testing.T) {
	state := SortState{}

	state = Click("name", state, false)
	assert.Equal(t, SortState{{Column: "name", Direction: Asc}}, state)

	state = Click("name", state, false)
	assert.Equal(t, SortState{{Column: "name", Direction: Desc}}, state)

	state = Click("name", state, false)
	assert.Empty(t, state)
}

func TestClick_PlainClickReplacesOtherSorts(t *testing.T) {
	state := SortState{{Column: "name", Direction: Asc}, {Column: "age", Direction: Desc}}

	next := Click("type", state, false)

	assert.Equal(t, SortState{{Column: "type", Direction: Asc}}, next)
	assert.Len(t, state, 2, "input state must not be modified")
}

func TestClick_ShiftCycle(t *testing.T) {
	state := Click("name", SortState{}, false)

	state = Click("age", state, true)
	assert.Equal(t, SortState{{Column: "name", Direction: Asc}, {Column: "age", Direction: Asc}}, state)

	state = Click("age", state, true)
	assert.Equal(t, SortState{{Column: "name", Direction: Asc}, {Column: "age", Direction: Desc}}, state)

	state = Click("age", state, true)
	assert.Equal(t, SortState{{Column: "name", Direction: Asc}}, state)
}

func TestClick_ShiftRemoveKeepsPositions(t *testing.T) {
	state := SortState{
		{Column: "a", Direction: Asc},
		{Column: "b", Direction: Desc},
		{Column: "c", Direction: Asc},
	}

	state = Click("a", state, true)
	assert.Equal(t, SortState{
		{Column: "a", Direction: Desc},
		{Column: "b", Direction: Desc},
		{Column: "c", Direction: Asc},
	}, state)

	state = Click("b", state, true)
	assert.Equal(t, SortState{
		{Column: "a", Direction: Desc},
		{Column: "c", Direction: Asc},
	}, state)
}

func TestApplySort_NameThenAge(t *testing.T) {
	items := []person{
		{Name: "Bob", Age: 30},
		{Name: "Alice", Age: 25},
		{Name: "Alice", Age: 35},
	}

	state := Click("name", SortState{}, false)
	state = Click("age", state, true)

	sorted := ApplySort(items, state, personValue, personNumeric)

	require.Len(t, sorted, 3)
	assert.Equal(t, person{Name: "Alice", Age: 25}, sorted[0])
	assert.Equal(t, person{Name: "Alice", Age: 35}, sorted[1])
	assert.Equal(t, person{Name: "Bob", Age: 30}, sorted[2])
	assert.Equal(t, "Bob", items[0].Name, "input must not be reordered")
}

func TestApplySort_CaseInsensitive(t *testing.T) {
	items := []person{{Name: "bob"}, {Name: "Alice"}, {Name: "carol"}}

	sorted := ApplySort(items, SortState{{Column: "name", Direction: Asc}}, personValue, nil)

	assert.Equal(t, []string{"Alice", "bob", "carol"}, names(sorted))
}

func TestApplySort_NumericCoercion(t *testing.T) {
	items := []person{
		{Name: "ten", Age: "10"},
		{Name: "nil", Age: nil},
		{Name: "two", Age: 2},
		{Name: "junk", Age: "abc"},
		{Name: "float", Age: 2.5},
	}

	sorted := ApplySort(items, SortState{{Column: "age", Direction: Asc}}, personValue, personNumeric)

	// nil and junk both coerce to 0 and keep their relative order
	assert.Equal(t, []string{"nil", "junk", "two", "float", "ten"}, names(sorted))

	sorted = ApplySort(items, SortState{{Column: "age", Direction: Desc}}, personValue, personNumeric)
	assert.Equal(t, []string{"ten", "float", "two", "nil", "junk"}, names(sorted))
}

func TestApplySort_NullStringsSortFirst(t *testing.T) {
	items := []person{{Name: "b"}, {Name: ""}, {Name: "a"}}

	sorted := ApplySort(items, SortState{{Column: "name", Direction: Asc}}, personValue, nil)

	assert.Equal(t, []string{"", "a", "b"}, names(sorted))
}

func TestApplySort_EmptyStateKeepsOrder(t *testing.T) {
	items := []person{{Name: "b"}, {Name: "a"}}
	assert.Equal(t, items, ApplySort(items, SortState{}, personValue, nil))
}

func names(people []person) []string {
	out := make([]string, len(people))
	for i, p := range people {
		out[i] = p.Name
	}
	return out
}

func TestSort_PropertyRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("parse(serialize(s)) == s", prop.ForAll(
		func(columns []string, descending []bool) bool {
			state := SortState{}
			for i, column := range columns {
				if state.Index(column) >= 0 {
					continue
				}
				direction := Asc
				if i < len(descending) && descending[i] {
					direction = Desc
				}
				state = append(state, SortSpec{Column: column, Direction: direction})
			}
			if len(state) == 0 {
				return SerializeSort(state) == ""
			}
			parsed := ParseSort(SerializeSort(state))
			if len(parsed) != len(state) {
				return false
			}
			for i := range state {
				if parsed[i] != state[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Identifier()),
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}

func TestSort_PropertyStable(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("equal keys keep input order", prop.ForAll(
		func(keys []int, desc bool) bool {
			items := make([]person, len(keys))
			for i, k := range keys {
				items[i] = person{Name: strings.Repeat("x", k%3), Age: k % 4, Seq: i}
			}
			direction := Asc
			if desc {
				direction = Desc
			}
			state := SortState{{Column: "age", Direction: direction}, {Column: "name", Direction: Asc}}

			sorted := ApplySort(items, state, personValue, personNumeric)
			for i := 1; i < len(sorted); i++ {
				prev, cur := sorted[i-1], sorted[i]
				if prev.Age == cur.Age && prev.Name == cur.Name && prev.Seq > cur.Seq {
					return false
				}
			}
			return len(sorted) == len(items)
		},
		gen.SliceOf(gen.IntRange(0, 20)),
		gen.Bool(),
	))

	properties.Property("three plain clicks cycle asc, desc, none", prop.ForAll(
		func(column string) bool {
			first := Click(column, SortState{}, false)
			second := Click(column, first, false)
			third := Click(column, second, false)
			return len(first) == 1 && first[0].Direction == Asc &&
				len(second) == 1 && second[0].Direction == Desc &&
				len(third) == 0
		},
		gen.Identifier(),
	))

	properties.Property("shift cycles leave the primary column alone", prop.ForAll(
		func(c, d string) bool {
			if c == d {
				return true
			}
			state := Click(c, SortState{}, false)
			primary := state[0]
			for i := 0; i < 3; i++ {
				state = Click(d, state, true)
				if len(state) == 0 || state[0] != primary {
					return false
				}
			}
			return len(state) == 1
		},
		gen.Identifier(),
		gen.Identifier(),
	))

	properties.TestingRun(t)
}
