package views

import (
	"median/listview"
	"median/models"
	"median/refcheck"
	"median/store"
)

// Namespaces is the namespaces page.
func Namespaces(s *store.Store) Page[models.Namespace] {
	return Page[models.Namespace]{
		Entity: "namespaces",
		Kind:   store.KindNamespace,
		Columns: []Column{
			{Key: "name", Label: "Name"},
			{Key: "description", Label: "Description"},
			{Key: "locked", Label: "Locked"},
			{Key: "contents", Label: "Contents"},
		},
		Pipeline: listview.Pipeline[models.Namespace]{
			Search: listview.TextSearch(func(ns models.Namespace) []string {
				return []string{ns.Name, ns.Description}
			}),
			Filters: []listview.FilterSection[models.Namespace]{
				{
					Key:       "locked",
					Label:     "Locked",
					Type:      listview.Toggle,
					Predicate: listview.WhenEnabled(func(ns models.Namespace) bool { return ns.Locked }),
				},
			},
			Value: func(ns models.Namespace, column string) any {
				switch column {
				case "id":
					return ns.ID
				case "name":
					return ns.Name
				case "description":
					return ns.Description
				case "locked":
					return ns.Locked
				}
				return nil
			},
			Numeric: map[string]bool{"locked": true, "contents": true},
			Computed: func(ns models.Namespace) map[string]any {
				_, refs, _ := s.NamespaceReferences(ns.ID)
				return map[string]any{"contents": len(refs)}
			},
		},
		ID:     func(ns models.Namespace) string { return ns.ID },
		Label:  func(ns models.Namespace) string { return ns.Name },
		Clone:  models.Namespace.Clone,
		Blank:  func() models.Namespace { return models.Namespace{} },
		List:   func(string) []models.Namespace { return s.ListNamespaces() },
		Get:    s.GetNamespace,
		Create: s.CreateNamespace,
		Update: func(id string, ns models.Namespace) (models.Namespace, error) {
			ns.ID = id
			return s.UpdateNamespace(ns)
		},
		Delete: func(id, _ string) (refcheck.Result, error) {
			return s.DeleteNamespace(id)
		},
		References: s.NamespaceReferences,
	}
}
