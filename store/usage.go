package store

import (
	"slices"

	"median/models"
	"median/refcheck"
)

// Derived data. Every helper here expects s.mu to be held.

func (s *Store) objectsUsingField(fieldID string) []models.ObjectDefinition {
	var out []models.ObjectDefinition
	for _, o := range s.objects {
		if slices.Contains(o.FieldIDs(), fieldID) {
			out = append(out, o)
		}
	}
	return out
}

func (s *Store) endpointsUsingObject(objectID string) []models.Endpoint {
	var out []models.Endpoint
	for _, e := range s.endpoints {
		if slices.Contains(e.ObjectIDs(), objectID) {
			out = append(out, e)
		}
	}
	return out
}

// apiLabels lists the endpoints that reach any of objectIDs, in endpoint
// order and without repeats.
func (s *Store) apiLabels(objectIDs []string) []string {
	labels := []string{}
	for _, e := range s.endpoints {
		for _, id := range e.ObjectIDs() {
			if slices.Contains(objectIDs, id) {
				labels = append(labels, e.Label())
				break
			}
		}
	}
	return labels
}

func (s *Store) annotateField(f models.Field) models.Field {
	f = f.Clone()
	objects := s.objectsUsingField(f.ID)
	ids := make([]string, len(objects))
	for i, o := range objects {
		ids[i] = o.ID
	}
	f.UsedInApis = s.apiLabels(ids)
	if f.Validators == nil {
		f.Validators = []models.FieldValidator{}
	}
	return f
}

func (s *Store) annotateObject(o models.ObjectDefinition) models.ObjectDefinition {
	o = o.Clone()
	o.UsedInApis = s.apiLabels([]string{o.ID})
	if o.Fields == nil {
		o.Fields = []models.ObjectField{}
	}
	return o
}

func (s *Store) annotateValidator(v models.Validator) models.Validator {
	v = v.Clone()
	v.FieldsUsingValidator = []models.FieldUsage{}
	for _, f := range s.fields {
		if fieldUsesValidator(f, v.Name) {
			v.FieldsUsingValidator = append(v.FieldsUsingValidator, models.FieldUsage{
				FieldID:     f.ID,
				FieldName:   f.Name,
				NamespaceID: f.NamespaceID,
			})
		}
	}
	v.UsedInFields = len(v.FieldsUsingValidator)
	return v
}

func (s *Store) annotateType(t models.TypeDef) models.TypeDef {
	t.UsedInFields = 0
	for _, f := range s.fields {
		if f.Type == t.Name {
			t.UsedInFields++
		}
	}
	return t
}

func (s *Store) annotateEndpoint(e models.Endpoint) models.Endpoint {
	e = e.Clone()
	if e.PathParams == nil {
		e.PathParams = []models.PathParam{}
	}
	return e
}

func fieldUsesValidator(f models.Field, name string) bool {
	for _, fv := range f.Validators {
		if fv.Name == name {
			return true
		}
	}
	return false
}

// check runs refcheck, scoping to namespaceFilter when one is given.
func check(target refcheck.Target, refs []refcheck.Reference, namespaceFilter string) refcheck.Result {
	if namespaceFilter == "" {
		return refcheck.Check(target, refs)
	}
	return refcheck.Check(target, refs, refcheck.WithNamespace(namespaceFilter))
}
