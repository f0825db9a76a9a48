package views

import (
	"median/listview"
	"median/models"
	"median/store"
)

// Objects is the objects page. Dangling field references show up in the
// "missing" column and the "broken" filter.
func Objects(s *store.Store) Page[models.ObjectDefinition] {
	return Page[models.ObjectDefinition]{
		Entity:     "objects",
		Kind:       store.KindObject,
		Namespaced: true,
		Columns: []Column{
			{Key: "name", Label: "Name"},
			{Key: "namespace", Label: "Namespace"},
			{Key: "fields", Label: "Fields"},
			{Key: "missing", Label: "Missing"},
			{Key: "usage", Label: "Used in APIs"},
		},
		DefaultSort: listview.SortState{{Column: "name", Direction: listview.Asc}},
		Pipeline: listview.Pipeline[models.ObjectDefinition]{
			Search: listview.TextSearch(func(o models.ObjectDefinition) []string {
				return []string{o.Name, o.Description}
			}),
			Filters: []listview.FilterSection[models.ObjectDefinition]{
				{
					Key:       "unused",
					Label:     "Not used in any API",
					Type:      listview.Toggle,
					Predicate: listview.WhenEnabled(func(o models.ObjectDefinition) bool { return len(o.UsedInApis) == 0 }),
				},
				{
					Key:       "broken",
					Label:     "Has missing fields",
					Type:      listview.Toggle,
					Predicate: listview.WhenEnabled(func(o models.ObjectDefinition) bool { return len(s.MissingFields(o)) > 0 }),
				},
			},
			Value: func(o models.ObjectDefinition, column string) any {
				switch column {
				case "id":
					return o.ID
				case "name":
					return o.Name
				case "namespace":
					return o.NamespaceID
				case "description":
					return o.Description
				}
				return nil
			},
			Numeric: map[string]bool{"fields": true, "missing": true, "usage": true},
			Computed: func(o models.ObjectDefinition) map[string]any {
				return map[string]any{
					"fields":  len(o.Fields),
					"missing": len(s.MissingFields(o)),
					"usage":   len(o.UsedInApis),
				}
			},
		},
		ID:     func(o models.ObjectDefinition) string { return o.ID },
		Label:  func(o models.ObjectDefinition) string { return o.Name },
		Clone:  models.ObjectDefinition.Clone,
		Blank:  func() models.ObjectDefinition { return models.ObjectDefinition{Fields: []models.ObjectField{}} },
		Owned:  func(o models.ObjectDefinition) models.Ownership { return o.Ownership },
		Stamp:  func(o models.ObjectDefinition, owner models.Ownership) models.ObjectDefinition { o.Ownership = owner; return o },
		List:   s.ListObjects,
		Get:    s.GetObject,
		Create: s.CreateObject,
		Update: func(id string, o models.ObjectDefinition) (models.ObjectDefinition, error) {
			o.ID = id
			return s.UpdateObject(o)
		},
		Delete:     s.DeleteObject,
		References: s.ObjectReferences,
	}
}
