package views

import (
	"median/listview"
	"median/models"
	"median/refcheck"
	"median/store"
)

// Endpoints is the endpoints page.
func Endpoints(s *store.Store) Page[models.Endpoint] {
	tagName := func(id string) string {
		if id == "" {
			return ""
		}
		t, err := s.GetTag(id)
		if err != nil {
			return ""
		}
		return t.Name
	}
	tagOptions := func() []listview.FilterOption {
		options := []listview.FilterOption{}
		for _, t := range s.ListTags() {
			options = append(options, listview.FilterOption{Value: t.ID, Label: t.Name})
		}
		return options
	}

	return Page[models.Endpoint]{
		Entity:     "endpoints",
		Kind:       store.KindEndpoint,
		Namespaced: true,
		Columns: []Column{
			{Key: "method", Label: "Method"},
			{Key: "path", Label: "Path"},
			{Key: "tag", Label: "Tag"},
			{Key: "shape", Label: "Shape"},
			{Key: "params", Label: "Params"},
		},
		DefaultSort: listview.SortState{
			{Column: "path", Direction: listview.Asc},
			{Column: "method", Direction: listview.Asc},
		},
		Pipeline: listview.Pipeline[models.Endpoint]{
			Search: listview.TextSearch(func(e models.Endpoint) []string {
				return []string{e.Method, e.Path, e.Description, tagName(e.TagID)}
			}),
			Filters: []listview.FilterSection[models.Endpoint]{
				{
					Key:       "method",
					Label:     "Method",
					Type:      listview.CheckboxGroup,
					Options:   optionsOf(models.HTTPMethods),
					Predicate: listview.AnyOf(func(e models.Endpoint) string { return e.Method }),
				},
				{
					Key:         "tag",
					Label:       "Tag",
					Type:        listview.CheckboxGroup,
					OptionsFunc: tagOptions,
					Predicate:   listview.AnyOf(func(e models.Endpoint) string { return e.TagID }),
				},
				{
					Key:   "shape",
					Label: "Response shape",
					Type:  listview.CheckboxGroup,
					Options: []listview.FilterOption{
						{Value: string(models.ShapeObject), Label: "Object"},
						{Value: string(models.ShapeList), Label: "List"},
					},
					Predicate: listview.AnyOf(func(e models.Endpoint) string { return string(e.ResponseShape) }),
				},
				{
					Key:       "envelope",
					Label:     "Uses envelope",
					Type:      listview.Toggle,
					Predicate: listview.WhenEnabled(func(e models.Endpoint) bool { return e.UseEnvelope }),
				},
			},
			Value: func(e models.Endpoint, column string) any {
				switch column {
				case "id":
					return e.ID
				case "method":
					return e.Method
				case "path":
					return e.Path
				case "namespace":
					return e.NamespaceID
				case "shape":
					return string(e.ResponseShape)
				}
				return nil
			},
			Numeric: map[string]bool{"params": true},
			Computed: func(e models.Endpoint) map[string]any {
				return map[string]any{
					"tag":    tagName(e.TagID),
					"params": len(e.PathParams),
				}
			},
		},
		ID:     func(e models.Endpoint) string { return e.ID },
		Label:  models.Endpoint.Label,
		Clone:  models.Endpoint.Clone,
		Blank:  func() models.Endpoint { return models.Endpoint{Method: "GET", ResponseShape: models.ShapeObject} },
		Owned:  func(e models.Endpoint) models.Ownership { return e.Ownership },
		Stamp:  func(e models.Endpoint, o models.Ownership) models.Endpoint { e.Ownership = o; return e },
		List:   s.ListEndpoints,
		Get:    s.GetEndpoint,
		Create: s.CreateEndpoint,
		Update: func(id string, e models.Endpoint) (models.Endpoint, error) {
			e.ID = id
			return s.UpdateEndpoint(e)
		},
		Delete: func(id, _ string) (refcheck.Result, error) {
			return s.DeleteEndpoint(id)
		},
		References: func(id string) (refcheck.Target, []refcheck.Reference, error) {
			e, err := s.GetEndpoint(id)
			if err != nil {
				return refcheck.Target{}, nil, err
			}
			return refcheck.Target{Kind: store.KindEndpoint, Name: e.Label(), NamespaceID: e.NamespaceID}, nil, nil
		},
	}
}
