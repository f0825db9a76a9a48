package views

import (
	"median/listview"
	"median/models"
	"median/refcheck"
	"median/store"
)

// Tags is the endpoint tags page.
func Tags(s *store.Store) Page[models.EndpointTag] {
	countEndpoints := func(tagID string) int {
		n := 0
		for _, e := range s.ListEndpoints("") {
			if e.TagID == tagID {
				n++
			}
		}
		return n
	}

	return Page[models.EndpointTag]{
		Entity: "tags",
		Kind:   store.KindTag,
		Columns: []Column{
			{Key: "name", Label: "Name"},
			{Key: "description", Label: "Description"},
			{Key: "endpoints", Label: "Endpoints"},
		},
		DefaultSort: listview.SortState{{Column: "name", Direction: listview.Asc}},
		Pipeline: listview.Pipeline[models.EndpointTag]{
			Search: listview.TextSearch(func(t models.EndpointTag) []string {
				return []string{t.Name, t.Description}
			}),
			Value: func(t models.EndpointTag, column string) any {
				switch column {
				case "id":
					return t.ID
				case "name":
					return t.Name
				case "description":
					return t.Description
				}
				return nil
			},
			Numeric: map[string]bool{"endpoints": true},
			Computed: func(t models.EndpointTag) map[string]any {
				return map[string]any{"endpoints": countEndpoints(t.ID)}
			},
		},
		ID:     func(t models.EndpointTag) string { return t.ID },
		Label:  func(t models.EndpointTag) string { return t.Name },
		Clone:  models.EndpointTag.Clone,
		Blank:  func() models.EndpointTag { return models.EndpointTag{} },
		List:   func(string) []models.EndpointTag { return s.ListTags() },
		Get:    s.GetTag,
		Create: s.CreateTag,
		Update: func(id string, t models.EndpointTag) (models.EndpointTag, error) {
			t.ID = id
			return s.UpdateTag(t)
		},
		Delete: func(id, _ string) (refcheck.Result, error) {
			return s.DeleteTag(id)
		},
		References: func(id string) (refcheck.Target, []refcheck.Reference, error) {
			t, err := s.GetTag(id)
			if err != nil {
				return refcheck.Target{}, nil, err
			}
			return refcheck.Target{Kind: store.KindTag, Name: t.Name}, nil, nil
		},
	}
}
