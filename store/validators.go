package store

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"median/models"
	"median/refcheck"
)

// ListTypes returns the builtin field types with usage counts.
func (s *Store) ListTypes() []models.TypeDef {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.TypeDef, len(s.types))
	for i, t := range s.types {
		out[i] = s.annotateType(t)
	}
	return out
}

// GetType returns one builtin type by name.
func (s *Store) GetType(name string) (models.TypeDef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.typeIndex(name)
	if i < 0 {
		return models.TypeDef{}, notFound(KindType, name)
	}
	return s.annotateType(s.types[i]), nil
}

// Compatible reports whether a validator of category c may be applied to a
// field of type typeName.
func (s *Store) Compatible(c models.Category, typeName string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.compatibleLocked(c, typeName)
}

func (s *Store) compatibleLocked(c models.Category, typeName string) bool {
	i := s.typeIndex(typeName)
	if i < 0 {
		return false
	}
	return s.types[i].Category != "" && s.types[i].Category == c
}

// ListValidators returns all validators with their usage.
func (s *Store) ListValidators() []models.Validator {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Validator, len(s.validators))
	for i, v := range s.validators {
		out[i] = s.annotateValidator(v)
	}
	return out
}

// GetValidator returns one validator by name.
func (s *Store) GetValidator(name string) (models.Validator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.validatorIndex(name)
	if i < 0 {
		return models.Validator{}, notFound(KindValidator, name)
	}
	return s.annotateValidator(s.validators[i]), nil
}

// CreateValidator adds a validator. Names are globally unique.
func (s *Store) CreateValidator(v models.Validator) (models.Validator, error) {
	v = normalizeValidator(v)

	s.mu.Lock()
	if err := s.validateValidator(v, ""); err != nil {
		s.mu.Unlock()
		return models.Validator{}, err
	}
	s.validators = append(s.validators, v)
	out := s.annotateValidator(v)
	s.mu.Unlock()

	s.logger.Info("validator created", zap.String("name", v.Name))
	s.publish(KindValidator, OpCreated, v.Name, "")
	return out, nil
}

// UpdateValidator replaces the validator called name. A rename is carried
// into every field that uses it; a category change must stay compatible
// with those fields.
func (s *Store) UpdateValidator(name string, v models.Validator) (models.Validator, error) {
	v = normalizeValidator(v)

	s.mu.Lock()
	i := s.validatorIndex(name)
	if i < 0 {
		s.mu.Unlock()
		return models.Validator{}, notFound(KindValidator, name)
	}
	if err := s.validateValidator(v, name); err != nil {
		s.mu.Unlock()
		return models.Validator{}, err
	}

	verr := &ValidationError{}
	for _, f := range s.fields {
		if fieldUsesValidator(f, name) && !s.compatibleLocked(v.Category, f.Type) {
			verr.add("category", fmt.Sprintf("Field %q has type %s, which does not accept %s validators", f.Name, f.Type, v.Category))
		}
	}
	if err := verr.err(); err != nil {
		s.mu.Unlock()
		return models.Validator{}, err
	}

	if v.Name != name {
		for fi := range s.fields {
			for vi := range s.fields[fi].Validators {
				if s.fields[fi].Validators[vi].Name == name {
					s.fields[fi].Validators[vi].Name = v.Name
				}
			}
		}
	}
	s.validators[i] = v
	out := s.annotateValidator(v)
	s.mu.Unlock()

	s.logger.Info("validator updated", zap.String("name", name), zap.String("new_name", v.Name))
	s.publish(KindValidator, OpUpdated, v.Name, "")
	return out, nil
}

// ValidatorReferences lists the fields using a validator.
func (s *Store) ValidatorReferences(name string) (refcheck.Target, []refcheck.Reference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.validatorIndex(name) < 0 {
		return refcheck.Target{}, nil, notFound(KindValidator, name)
	}
	return s.validatorTarget(name), s.fieldRefsForValidator(name), nil
}

func (s *Store) validatorTarget(name string) refcheck.Target {
	return refcheck.Target{Kind: KindValidator, Name: name}
}

func (s *Store) fieldRefsForValidator(name string) []refcheck.Reference {
	var refs []refcheck.Reference
	for _, f := range s.fields {
		if fieldUsesValidator(f, name) {
			refs = append(refs, refcheck.Reference{ID: f.ID, Name: f.Name, Kind: KindField, NamespaceID: f.NamespaceID})
		}
	}
	return refs
}

// DeleteValidator removes a validator no field uses. With a non-empty
// namespaceFilter only fields in that namespace block the deletion.
func (s *Store) DeleteValidator(name, namespaceFilter string) (refcheck.Result, error) {
	s.mu.Lock()
	i := s.validatorIndex(name)
	if i < 0 {
		s.mu.Unlock()
		return refcheck.Failed(fmt.Sprintf("Validator %q not found", name)), notFound(KindValidator, name)
	}
	result := check(s.validatorTarget(name), s.fieldRefsForValidator(name), namespaceFilter)
	if !result.Success {
		s.mu.Unlock()
		return result, nil
	}
	s.validators = append(s.validators[:i], s.validators[i+1:]...)
	s.mu.Unlock()

	s.logger.Info("validator deleted", zap.String("name", name))
	s.publish(KindValidator, OpDeleted, name, "")
	return result, nil
}

func normalizeValidator(v models.Validator) models.Validator {
	v = v.Clone()
	v.Name = strings.TrimSpace(v.Name)
	v.UsedInFields = 0
	v.FieldsUsingValidator = nil
	if v.Type == "" {
		v.Type = models.ValidatorCustom
	}
	return v
}

func (s *Store) validateValidator(v models.Validator, selfName string) error {
	verr := &ValidationError{}
	if v.Name == "" {
		verr.add("name", "Name is required")
	}
	for _, other := range s.validators {
		if other.Name != selfName && strings.EqualFold(other.Name, v.Name) {
			verr.add("name", fmt.Sprintf("A validator named %q already exists", other.Name))
		}
	}
	if !v.Category.Valid() {
		verr.add("category", "Category must be string, numeric or collection")
	}
	if v.Type != models.ValidatorInline && v.Type != models.ValidatorCustom {
		verr.add("type", "Type must be inline or custom")
	}
	return verr.err()
}
