package views

import (
	"median/listview"
	"median/models"
	"median/store"
)

// Validators is the validators page. Validators are keyed by name.
func Validators(s *store.Store) Page[models.Validator] {
	return Page[models.Validator]{
		Entity: "validators",
		Kind:   store.KindValidator,
		Columns: []Column{
			{Key: "name", Label: "Name"},
			{Key: "category", Label: "Category"},
			{Key: "type", Label: "Type"},
			{Key: "parameter_type", Label: "Parameter"},
			{Key: "usage", Label: "Used in fields"},
		},
		DefaultSort: listview.SortState{{Column: "name", Direction: listview.Asc}},
		Pipeline: listview.Pipeline[models.Validator]{
			Search: listview.TextSearch(func(v models.Validator) []string {
				return []string{v.Name, v.Description, string(v.Category), v.ParameterType}
			}),
			Filters: []listview.FilterSection[models.Validator]{
				{
					Key:   "category",
					Label: "Category",
					Type:  listview.CheckboxGroup,
					Options: []listview.FilterOption{
						{Value: string(models.CategoryString), Label: "String"},
						{Value: string(models.CategoryNumeric), Label: "Numeric"},
						{Value: string(models.CategoryCollection), Label: "Collection"},
					},
					Predicate: listview.AnyOf(func(v models.Validator) string { return string(v.Category) }),
				},
				{
					Key:   "type",
					Label: "Type",
					Type:  listview.CheckboxGroup,
					Options: []listview.FilterOption{
						{Value: string(models.ValidatorInline), Label: "Inline"},
						{Value: string(models.ValidatorCustom), Label: "Custom"},
					},
					Predicate: listview.AnyOf(func(v models.Validator) string { return string(v.Type) }),
				},
				{
					Key:       "unused",
					Label:     "Not used by any field",
					Type:      listview.Toggle,
					Predicate: listview.WhenEnabled(func(v models.Validator) bool { return v.UsedInFields == 0 }),
				},
			},
			Value: func(v models.Validator, column string) any {
				switch column {
				case "name":
					return v.Name
				case "category":
					return string(v.Category)
				case "type":
					return string(v.Type)
				case "parameter_type":
					return v.ParameterType
				case "usage":
					return v.UsedInFields
				}
				return nil
			},
			Numeric: map[string]bool{"usage": true},
		},
		ID:         func(v models.Validator) string { return v.Name },
		Label:      func(v models.Validator) string { return v.Name },
		Clone:      models.Validator.Clone,
		Blank:      func() models.Validator { return models.Validator{Category: models.CategoryString, Type: models.ValidatorCustom} },
		Owned:      func(v models.Validator) models.Ownership { return v.Ownership },
		Stamp:      func(v models.Validator, o models.Ownership) models.Validator { v.Ownership = o; return v },
		List:       func(string) []models.Validator { return s.ListValidators() },
		Get:        s.GetValidator,
		Create:     s.CreateValidator,
		Update:     s.UpdateValidator,
		Delete:     s.DeleteValidator,
		References: s.ValidatorReferences,
	}
}

// Types is the read-only types page.
func Types(s *store.Store) Page[models.TypeDef] {
	return Page[models.TypeDef]{
		Entity: "types",
		Kind:   store.KindType,
		Columns: []Column{
			{Key: "name", Label: "Name"},
			{Key: "python_type", Label: "Python"},
			{Key: "category", Label: "Category"},
			{Key: "usage", Label: "Used in fields"},
		},
		DefaultSort: listview.SortState{{Column: "name", Direction: listview.Asc}},
		Pipeline: listview.Pipeline[models.TypeDef]{
			Search: listview.TextSearch(func(t models.TypeDef) []string {
				return []string{t.Name, t.PythonType, t.Description}
			}),
			Filters: []listview.FilterSection[models.TypeDef]{
				{
					Key:   "category",
					Label: "Category",
					Type:  listview.CheckboxGroup,
					Options: []listview.FilterOption{
						{Value: string(models.CategoryString), Label: "String"},
						{Value: string(models.CategoryNumeric), Label: "Numeric"},
						{Value: string(models.CategoryCollection), Label: "Collection"},
					},
					Predicate: listview.AnyOf(func(t models.TypeDef) string { return string(t.Category) }),
				},
			},
			Value: func(t models.TypeDef, column string) any {
				switch column {
				case "name":
					return t.Name
				case "python_type":
					return t.PythonType
				case "category":
					return string(t.Category)
				case "usage":
					return t.UsedInFields
				}
				return nil
			},
			Numeric: map[string]bool{"usage": true},
		},
		ID:    func(t models.TypeDef) string { return t.Name },
		Label: func(t models.TypeDef) string { return t.Name },
		Clone: models.TypeDef.Clone,
		Blank: func() models.TypeDef { return models.TypeDef{} },
		List:  func(string) []models.TypeDef { return s.ListTypes() },
		Get:   s.GetType,
	}
}
