package listview

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

type item struct {
	Name     string
	Kind     string
	Tags     []string
	Required bool
}

func itemSections() []FilterSection[item] {
	return []FilterSection[item]{
		{
			Key:       "kind",
			Label:     "Kind",
			Type:      CheckboxGroup,
			Options:   []FilterOption{{Value: "str", Label: "String"}, {Value: "int", Label: "Integer"}},
			Predicate: AnyOf(func(i item) string { return i.Kind }),
		},
		{
			Key:       "tags",
			Type:      CheckboxGroup,
			Predicate: AnyOfMany(func(i item) []string { return i.Tags }),
		},
		{
			Key:       "required",
			Type:      Toggle,
			Predicate: WhenEnabled(func(i item) bool { return i.Required }),
		},
	}
}

func sampleItems() []item {
	return []item{
		{Name: "email", Kind: "str", Tags: []string{"user"}, Required: true},
		{Name: "age", Kind: "int", Tags: []string{"user", "stats"}},
		{Name: "total", Kind: "float", Tags: []string{"billing"}, Required: true},
	}
}

func itemNames(items []item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestApplyFilters(t *testing.T) {
	tests := []struct {
		name  string
		state FilterState
		want  []string
	}{
		{
			name:  "empty state is a no-op",
			state: FilterState{},
			want:  []string{"email", "age", "total"},
		},
		{
			name:  "explicit default values are a no-op",
			state: FilterState{"kind": {Selected: []string{}}, "required": {Enabled: false}},
			want:  []string{"email", "age", "total"},
		},
		{
			name:  "or within a checkbox group",
			state: FilterState{"kind": {Selected: []string{"str", "int"}}},
			want:  []string{"email", "age"},
		},
		{
			name:  "and across sections",
			state: FilterState{"kind": {Selected: []string{"str", "int"}}, "required": {Enabled: true}},
			want:  []string{"email"},
		},
		{
			name:  "multi-valued keys match any",
			state: FilterState{"tags": {Selected: []string{"stats", "billing"}}},
			want:  []string{"age", "total"},
		},
		{
			name:  "no matches",
			state: FilterState{"kind": {Selected: []string{"bool"}}},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyFilters(sampleItems(), itemSections(), tt.state)
			assert.Equal(t, tt.want, itemNames(got))
		})
	}
}

func TestActiveFilterCount(t *testing.T) {
	sections := itemSections()

	assert.Equal(t, 0, ActiveFilterCount(sections, FilterState{}))
	assert.Equal(t, 1, ActiveFilterCount(sections, FilterState{"kind": {Selected: []string{"str"}}}))
	assert.Equal(t, 2, ActiveFilterCount(sections, FilterState{
		"kind":     {Selected: []string{"str"}},
		"required": {Enabled: true},
		"tags":     {},
	}))
}

func TestFiltersFromQuery(t *testing.T) {
	values := url.Values{
		"filter[kind]":     {"str, int"},
		"filter[required]": {"true"},
		"filter[unknown]":  {"x"},
		"sort":             {"name:asc"},
	}

	state := FiltersFromQuery(values, itemSections())

	assert.Equal(t, FilterState{
		"kind":     {Selected: []string{"str", "int"}},
		"required": {Enabled: true},
	}, state)
}

func TestFiltersFromQuery_MalformedToggleIgnored(t *testing.T) {
	values := url.Values{"filter[required]": {"maybe"}}
	assert.Empty(t, FiltersFromQuery(values, itemSections()))
}

func TestWriteFilters(t *testing.T) {
	values := url.Values{"filter[stale]": {"x"}, "q": {"email"}}

	WriteFilters(values, FilterState{
		"kind":     {Selected: []string{"str", "int"}},
		"required": {Enabled: true},
		"tags":     {},
	})

	assert.Equal(t, url.Values{
		"q":                {"email"},
		"filter[kind]":     {"str,int"},
		"filter[required]": {"true"},
	}, values)
}

func TestFilterState_Clone(t *testing.T) {
	state := FilterState{"kind": {Selected: []string{"str"}}}
	clone := state.Clone()

	clone["kind"].Selected[0] = "int"

	assert.Equal(t, "str", state["kind"].Selected[0])
}

func TestPanel_ResolvesOptionsOnEveryCall(t *testing.T) {
	kinds := []string{"str"}
	sections := []FilterSection[item]{
		{
			Key:  "kind",
			Type: CheckboxGroup,
			OptionsFunc: func() []FilterOption {
				options := []FilterOption{}
				for _, k := range kinds {
					options = append(options, FilterOption{Value: k, Label: k})
				}
				return options
			},
		},
		{Key: "required", Type: Toggle},
	}

	panel := Panel(sections, FilterState{"required": {Enabled: true}})
	assert.Equal(t, []FilterOption{{Value: "str", Label: "str"}}, panel[0].Options)
	assert.True(t, panel[1].Value.Enabled)

	kinds = append(kinds, "int")
	assert.Len(t, Panel(sections, FilterState{})[0].Options, 2)
	assert.Equal(t, itemSections()[0].Options, itemSections()[0].Choices(), "static options are used as is")
}
