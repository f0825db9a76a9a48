package store

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"median/models"
	"median/refcheck"
)

// ListObjects returns objects, optionally restricted to one namespace.
func (s *Store) ListObjects(namespaceID string) []models.ObjectDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ObjectDefinition, 0, len(s.objects))
	for _, o := range s.objects {
		if namespaceID != "" && o.NamespaceID != namespaceID {
			continue
		}
		out = append(out, s.annotateObject(o))
	}
	return out
}

// GetObject returns one object.
func (s *Store) GetObject(id string) (models.ObjectDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.objectIndex(id)
	if i < 0 {
		return models.ObjectDefinition{}, notFound(KindObject, id)
	}
	return s.annotateObject(s.objects[i]), nil
}

// MissingFields lists the field ids of o that resolve to no field.
func (s *Store) MissingFields(o models.ObjectDefinition) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var missing []string
	for _, id := range o.FieldIDs() {
		if s.fieldIndex(id) < 0 {
			missing = append(missing, id)
		}
	}
	return missing
}

// CreateObject adds an object. Field ids are not required to resolve.
func (s *Store) CreateObject(o models.ObjectDefinition) (models.ObjectDefinition, error) {
	o = normalizeObject(o)

	s.mu.Lock()
	if err := s.validateObject(o, ""); err != nil {
		s.mu.Unlock()
		return models.ObjectDefinition{}, err
	}
	o.ID = s.ids.Next(prefixObject)
	s.objects = append(s.objects, o)
	out := s.annotateObject(o)
	s.mu.Unlock()

	s.logger.Info("object created",
		zap.String("id", o.ID), zap.String("name", o.Name), zap.Int("fields", len(o.Fields)))
	s.publish(KindObject, OpCreated, o.ID, o.NamespaceID)
	return out, nil
}

// UpdateObject replaces the object with the same id.
func (s *Store) UpdateObject(o models.ObjectDefinition) (models.ObjectDefinition, error) {
	o = normalizeObject(o)

	s.mu.Lock()
	i := s.objectIndex(o.ID)
	if i < 0 {
		s.mu.Unlock()
		return models.ObjectDefinition{}, notFound(KindObject, o.ID)
	}
	if err := s.validateObject(o, o.ID); err != nil {
		s.mu.Unlock()
		return models.ObjectDefinition{}, err
	}
	s.objects[i] = o
	out := s.annotateObject(o)
	s.mu.Unlock()

	s.logger.Info("object updated", zap.String("id", o.ID), zap.String("name", o.Name))
	s.publish(KindObject, OpUpdated, o.ID, o.NamespaceID)
	return out, nil
}

// ObjectReferences lists the endpoints using an object.
func (s *Store) ObjectReferences(id string) (refcheck.Target, []refcheck.Reference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.objectIndex(id)
	if i < 0 {
		return refcheck.Target{}, nil, notFound(KindObject, id)
	}
	target, refs := s.objectRefsLocked(s.objects[i])
	return target, refs, nil
}

func (s *Store) objectRefsLocked(o models.ObjectDefinition) (refcheck.Target, []refcheck.Reference) {
	target := refcheck.Target{Kind: KindObject, Name: o.Name, NamespaceID: o.NamespaceID}
	var refs []refcheck.Reference
	for _, e := range s.endpointsUsingObject(o.ID) {
		refs = append(refs, refcheck.Reference{ID: e.ID, Name: e.Label(), Kind: KindEndpoint, NamespaceID: e.NamespaceID})
	}
	return target, refs
}

// DeleteObject removes an object no endpoint uses. With a non-empty
// namespaceFilter only endpoints in that namespace block the deletion.
func (s *Store) DeleteObject(id, namespaceFilter string) (refcheck.Result, error) {
	s.mu.Lock()
	i := s.objectIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return refcheck.Failed(fmt.Sprintf("Object %q not found", id)), notFound(KindObject, id)
	}
	o := s.objects[i]
	target, refs := s.objectRefsLocked(o)
	result := check(target, refs, namespaceFilter)
	if !result.Success {
		s.mu.Unlock()
		return result, nil
	}
	s.objects = append(s.objects[:i], s.objects[i+1:]...)
	s.mu.Unlock()

	s.logger.Info("object deleted", zap.String("id", id), zap.String("name", o.Name))
	s.publish(KindObject, OpDeleted, id, o.NamespaceID)
	return result, nil
}

func normalizeObject(o models.ObjectDefinition) models.ObjectDefinition {
	o = o.Clone()
	o.Name = strings.TrimSpace(o.Name)
	o.UsedInApis = nil
	if o.NamespaceID == "" {
		o.NamespaceID = models.GlobalNamespaceID
	}
	if o.Fields == nil {
		o.Fields = []models.ObjectField{}
	}
	return o
}

func (s *Store) validateObject(o models.ObjectDefinition, selfID string) error {
	verr := &ValidationError{}

	if o.Name == "" {
		verr.add("name", "Name is required")
	}
	s.requireNamespace(verr, o.NamespaceID)
	for _, other := range s.objects {
		if other.ID != selfID && other.NamespaceID == o.NamespaceID && strings.EqualFold(other.Name, o.Name) {
			verr.add("name", fmt.Sprintf("An object named %q already exists in this namespace", other.Name))
		}
	}

	seen := map[string]bool{}
	for _, of := range o.Fields {
		if of.FieldID == "" {
			verr.add("fields", "Field id is required")
			continue
		}
		if seen[of.FieldID] {
			verr.add("fields", fmt.Sprintf("Field %q is listed twice", of.FieldID))
		}
		seen[of.FieldID] = true
	}

	return verr.err()
}
