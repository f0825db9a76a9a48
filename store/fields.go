package store

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"median/models"
	"median/refcheck"
)

// ListFields returns fields, optionally restricted to one namespace.
func (s *Store) ListFields(namespaceID string) []models.Field {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Field, 0, len(s.fields))
	for _, f := range s.fields {
		if namespaceID != "" && f.NamespaceID != namespaceID {
			continue
		}
		out = append(out, s.annotateField(f))
	}
	return out
}

// GetField returns one field.
func (s *Store) GetField(id string) (models.Field, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.fieldIndex(id)
	if i < 0 {
		return models.Field{}, notFound(KindField, id)
	}
	return s.annotateField(s.fields[i]), nil
}

// MissingValidators lists the validator names f applies that no longer
// exist.
func (s *Store) MissingValidators(f models.Field) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var missing []string
	for _, fv := range f.Validators {
		if s.validatorIndex(fv.Name) < 0 {
			missing = append(missing, fv.Name)
		}
	}
	return missing
}

// CreateField adds a field. The id is assigned here; an empty namespace
// means the global one.
func (s *Store) CreateField(f models.Field) (models.Field, error) {
	f = normalizeField(f)

	s.mu.Lock()
	if err := s.validateField(f, nil); err != nil {
		s.mu.Unlock()
		return models.Field{}, err
	}
	f.ID = s.ids.Next(prefixField)
	s.fields = append(s.fields, f)
	out := s.annotateField(f)
	s.mu.Unlock()

	s.logger.Info("field created",
		zap.String("id", f.ID), zap.String("name", f.Name), zap.String("namespace", f.NamespaceID))
	s.publish(KindField, OpCreated, f.ID, f.NamespaceID)
	return out, nil
}

// UpdateField replaces the field with the same id.
func (s *Store) UpdateField(f models.Field) (models.Field, error) {
	f = normalizeField(f)

	s.mu.Lock()
	i := s.fieldIndex(f.ID)
	if i < 0 {
		s.mu.Unlock()
		return models.Field{}, notFound(KindField, f.ID)
	}
	if err := s.validateField(f, &s.fields[i]); err != nil {
		s.mu.Unlock()
		return models.Field{}, err
	}
	s.fields[i] = f
	out := s.annotateField(f)
	s.mu.Unlock()

	s.logger.Info("field updated", zap.String("id", f.ID), zap.String("name", f.Name))
	s.publish(KindField, OpUpdated, f.ID, f.NamespaceID)
	return out, nil
}

// FieldReferences lists the objects that include a field.
func (s *Store) FieldReferences(id string) (refcheck.Target, []refcheck.Reference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.fieldIndex(id)
	if i < 0 {
		return refcheck.Target{}, nil, notFound(KindField, id)
	}
	target, refs := s.fieldRefsLocked(s.fields[i])
	return target, refs, nil
}

func (s *Store) fieldRefsLocked(f models.Field) (refcheck.Target, []refcheck.Reference) {
	target := refcheck.Target{Kind: KindField, Name: f.Name, NamespaceID: f.NamespaceID}
	var refs []refcheck.Reference
	for _, o := range s.objectsUsingField(f.ID) {
		refs = append(refs, refcheck.Reference{ID: o.ID, Name: o.Name, Kind: KindObject, NamespaceID: o.NamespaceID})
	}
	return target, refs
}

// DeleteField removes a field no object includes. With a non-empty
// namespaceFilter only objects in that namespace block the deletion.
func (s *Store) DeleteField(id, namespaceFilter string) (refcheck.Result, error) {
	s.mu.Lock()
	i := s.fieldIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return refcheck.Failed(fmt.Sprintf("Field %q not found", id)), notFound(KindField, id)
	}
	f := s.fields[i]
	target, refs := s.fieldRefsLocked(f)
	result := check(target, refs, namespaceFilter)
	if !result.Success {
		s.mu.Unlock()
		s.logger.Debug("field deletion blocked", zap.String("id", id), zap.Int("references", len(result.References)))
		return result, nil
	}
	s.fields = append(s.fields[:i], s.fields[i+1:]...)
	s.mu.Unlock()

	s.logger.Info("field deleted", zap.String("id", id), zap.String("name", f.Name))
	s.publish(KindField, OpDeleted, id, f.NamespaceID)
	return result, nil
}

func normalizeField(f models.Field) models.Field {
	f = f.Clone()
	f.Name = strings.TrimSpace(f.Name)
	f.UsedInApis = nil
	if f.NamespaceID == "" {
		f.NamespaceID = models.GlobalNamespaceID
	}
	if f.Validators == nil {
		f.Validators = []models.FieldValidator{}
	}
	return f
}

// validateField checks f before it is stored. stored is the current
// version on update, nil on create; validator names it already carries may
// dangle, only newly applied ones must resolve.
func (s *Store) validateField(f models.Field, stored *models.Field) error {
	verr := &ValidationError{}
	selfID := ""
	if stored != nil {
		selfID = stored.ID
	}

	if f.Name == "" {
		verr.add("name", "Name is required")
	}
	s.requireNamespace(verr, f.NamespaceID)
	for _, other := range s.fields {
		if other.ID != selfID && other.NamespaceID == f.NamespaceID && strings.EqualFold(other.Name, f.Name) {
			verr.add("name", fmt.Sprintf("A field named %q already exists in this namespace", other.Name))
		}
	}

	if f.Type == "" {
		verr.add("type", "Type is required")
	} else if s.typeIndex(f.Type) < 0 {
		verr.add("type", fmt.Sprintf("Unknown type %q", f.Type))
	}

	seen := map[string]bool{}
	for _, fv := range f.Validators {
		vi := s.validatorIndex(fv.Name)
		switch {
		case seen[fv.Name]:
			verr.add("validators", fmt.Sprintf("Validator %q is applied twice", fv.Name))
		case vi < 0 && stored != nil && fieldUsesValidator(*stored, fv.Name):
			// left behind by a namespace-scoped validator delete
		case vi < 0:
			verr.add("validators", fmt.Sprintf("Unknown validator %q", fv.Name))
		case s.typeIndex(f.Type) >= 0 && !s.compatibleLocked(s.validators[vi].Category, f.Type):
			verr.add("validators", fmt.Sprintf("Validator %q (%s) cannot be used with type %s",
				fv.Name, s.validators[vi].Category, f.Type))
		}
		seen[fv.Name] = true
	}

	return verr.err()
}
