package listview

import (
	"net/url"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// FilterType selects how a filter section is rendered and stored.
type FilterType string

const (
	CheckboxGroup FilterType = "checkbox-group"
	Toggle        FilterType = "toggle"
)

// filterPattern matches query parameters like filter[key]
var filterPattern = regexp.MustCompile(`^filter\[([^\]]+)\]$`)

// FilterOption is one choice of a checkbox group.
type FilterOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FilterValue is the current value of one section. Checkbox groups use
// Selected, toggles use Enabled.
type FilterValue struct {
	Selected []string `json:"selected,omitempty"`
	Enabled  bool     `json:"enabled,omitempty"`
}

// IsDefault reports whether v leaves its section inactive.
func (v FilterValue) IsDefault() bool {
	return len(v.Selected) == 0 && !v.Enabled
}

// FilterState maps a section key to its current value. Missing keys hold the
// default value.
type FilterState map[string]FilterValue

// Clone returns a deep copy of s.
func (s FilterState) Clone() FilterState {
	out := make(FilterState, len(s))
	for k, v := range s {
		out[k] = FilterValue{Selected: slices.Clone(v.Selected), Enabled: v.Enabled}
	}
	return out
}

// FilterSection configures one filter in a page's filter panel.
type FilterSection[T any] struct {
	Key     string
	Label   string
	Type    FilterType
	Options []FilterOption
	// OptionsFunc, when set, replaces Options and is called on every read,
	// for choices drawn from data that changes.
	OptionsFunc func() []FilterOption
	Predicate   func(item T, value FilterValue) bool
}

// Choices returns the section's current options.
func (s FilterSection[T]) Choices() []FilterOption {
	if s.OptionsFunc != nil {
		return s.OptionsFunc()
	}
	return s.Options
}

// PanelSection is the wire form of a filter section with its current
// value.
type PanelSection struct {
	Key     string         `json:"key"`
	Label   string         `json:"label"`
	Type    FilterType     `json:"type"`
	Options []FilterOption `json:"options,omitempty"`
	Value   FilterValue    `json:"value"`
}

// Panel describes sections for rendering, with their options resolved and
// the values held in state.
func Panel[T any](sections []FilterSection[T], state FilterState) []PanelSection {
	out := make([]PanelSection, len(sections))
	for i, section := range sections {
		out[i] = PanelSection{
			Key:     section.Key,
			Label:   section.Label,
			Type:    section.Type,
			Options: section.Choices(),
			Value:   state[section.Key],
		}
	}
	return out
}

// ApplyFilters keeps the items passing every active section. Sections at
// their default value are skipped, so an empty state never excludes anything.
func ApplyFilters[T any](items []T, sections []FilterSection[T], state FilterState) []T {
	active := make([]FilterSection[T], 0, len(sections))
	for _, section := range sections {
		if !state[section.Key].IsDefault() && section.Predicate != nil {
			active = append(active, section)
		}
	}
	if len(active) == 0 {
		return slices.Clone(items)
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		keep := true
		for _, section := range active {
			if !section.Predicate(item, state[section.Key]) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, item)
		}
	}
	return out
}

// ActiveFilterCount is the number of sections whose value differs from the
// default.
func ActiveFilterCount[T any](sections []FilterSection[T], state FilterState) int {
	count := 0
	for _, section := range sections {
		if !state[section.Key].IsDefault() {
			count++
		}
	}
	return count
}

// AnyOf builds a checkbox-group predicate: the item passes when its key is
// one of the selected options.
func AnyOf[T any](key func(T) string) func(T, FilterValue) bool {
	return func(item T, value FilterValue) bool {
		return slices.Contains(value.Selected, key(item))
	}
}

// AnyOfMany is AnyOf for items carrying several keys; one match is enough.
func AnyOfMany[T any](keys func(T) []string) func(T, FilterValue) bool {
	return func(item T, value FilterValue) bool {
		for _, k := range keys(item) {
			if slices.Contains(value.Selected, k) {
				return true
			}
		}
		return false
	}
}

// WhenEnabled builds a toggle predicate: with the toggle on, only items
// satisfying pred pass.
func WhenEnabled[T any](pred func(T) bool) func(T, FilterValue) bool {
	return func(item T, value FilterValue) bool {
		if !value.Enabled {
			return true
		}
		return pred(item)
	}
}

// FiltersFromQuery reads filter[key] parameters for the given sections.
// Checkbox groups take a comma-separated list, toggles a boolean. Unknown
// keys and malformed toggles are ignored.
func FiltersFromQuery[T any](values url.Values, sections []FilterSection[T]) FilterState {
	raw := make(map[string]string)
	for key, vals := range values {
		matches := filterPattern.FindStringSubmatch(key)
		if len(matches) != 2 || len(vals) == 0 {
			continue
		}
		raw[matches[1]] = vals[0]
	}

	state := make(FilterState)
	for _, section := range sections {
		value, ok := raw[section.Key]
		if !ok {
			continue
		}
		switch section.Type {
		case Toggle:
			enabled, err := strconv.ParseBool(strings.TrimSpace(value))
			if err == nil && enabled {
				state[section.Key] = FilterValue{Enabled: true}
			}
		default:
			selected := splitList(value)
			if len(selected) > 0 {
				state[section.Key] = FilterValue{Selected: selected}
			}
		}
	}
	return state
}

// WriteFilters stores every non-default value of state as filter[key]
// parameters and removes the rest.
func WriteFilters(values url.Values, state FilterState) {
	for key := range values {
		if filterPattern.MatchString(key) {
			values.Del(key)
		}
	}

	keys := make([]string, 0, len(state))
	for key := range state {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := state[key]
		switch {
		case len(value.Selected) > 0:
			values.Set("filter["+key+"]", strings.Join(value.Selected, ","))
		case value.Enabled:
			values.Set("filter["+key+"]", "true")
		}
	}
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
