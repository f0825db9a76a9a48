package views

import (
	"median/listview"
	"median/models"
	"median/store"
)

// Fields is the fields page.
func Fields(s *store.Store) Page[models.Field] {
	typeOptions := func() []listview.FilterOption {
		names := []string{}
		for _, t := range s.ListTypes() {
			names = append(names, t.Name)
		}
		return optionsOf(names)
	}
	validatorOptions := func() []listview.FilterOption {
		names := []string{}
		for _, v := range s.ListValidators() {
			names = append(names, v.Name)
		}
		return optionsOf(names)
	}

	return Page[models.Field]{
		Entity:     "fields",
		Kind:       store.KindField,
		Namespaced: true,
		Columns: []Column{
			{Key: "name", Label: "Name"},
			{Key: "type", Label: "Type"},
			{Key: "namespace", Label: "Namespace"},
			{Key: "validators", Label: "Validators"},
			{Key: "usage", Label: "Used in APIs"},
		},
		DefaultSort: listview.SortState{{Column: "name", Direction: listview.Asc}},
		Pipeline: listview.Pipeline[models.Field]{
			Search: listview.TextSearch(func(f models.Field) []string {
				haystack := []string{f.Name, f.Type, f.Description}
				for _, v := range f.Validators {
					haystack = append(haystack, v.Name)
				}
				return haystack
			}),
			Filters: []listview.FilterSection[models.Field]{
				{
					Key:         "type",
					Label:       "Type",
					Type:        listview.CheckboxGroup,
					OptionsFunc: typeOptions,
					Predicate:   listview.AnyOf(func(f models.Field) string { return f.Type }),
				},
				{
					Key:         "validators",
					Label:       "Validators",
					Type:        listview.CheckboxGroup,
					OptionsFunc: validatorOptions,
					Predicate: listview.AnyOfMany(func(f models.Field) []string {
						names := make([]string, len(f.Validators))
						for i, v := range f.Validators {
							names[i] = v.Name
						}
						return names
					}),
				},
				{
					Key:       "unused",
					Label:     "Not used in any API",
					Type:      listview.Toggle,
					Predicate: listview.WhenEnabled(func(f models.Field) bool { return len(f.UsedInApis) == 0 }),
				},
				{
					Key:       "broken",
					Label:     "Has missing validators",
					Type:      listview.Toggle,
					Predicate: listview.WhenEnabled(func(f models.Field) bool { return len(s.MissingValidators(f)) > 0 }),
				},
				{
					Key:       "has_default",
					Label:     "Has default value",
					Type:      listview.Toggle,
					Predicate: listview.WhenEnabled(func(f models.Field) bool { return f.DefaultValue != nil }),
				},
			},
			Value: func(f models.Field, column string) any {
				switch column {
				case "id":
					return f.ID
				case "name":
					return f.Name
				case "type":
					return f.Type
				case "namespace":
					return f.NamespaceID
				case "description":
					return f.Description
				}
				return nil
			},
			Numeric: map[string]bool{"validators": true, "missing": true, "usage": true},
			Computed: func(f models.Field) map[string]any {
				return map[string]any{
					"validators": len(f.Validators),
					"missing":    len(s.MissingValidators(f)),
					"usage":      len(f.UsedInApis),
				}
			},
		},
		ID:     func(f models.Field) string { return f.ID },
		Label:  func(f models.Field) string { return f.Name },
		Clone:  models.Field.Clone,
		Blank:  func() models.Field { return models.Field{Type: "str", Validators: []models.FieldValidator{}} },
		Owned:  func(f models.Field) models.Ownership { return f.Ownership },
		Stamp:  func(f models.Field, o models.Ownership) models.Field { f.Ownership = o; return f },
		List:   s.ListFields,
		Get:    s.GetField,
		Create: s.CreateField,
		Update: func(id string, f models.Field) (models.Field, error) {
			f.ID = id
			return s.UpdateField(f)
		},
		Delete:     s.DeleteField,
		References: s.FieldReferences,
	}
}
