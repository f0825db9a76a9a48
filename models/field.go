package models

import "slices"

// FieldValidator applies a validator to a field, with its parameter value
// (e.g. "3" for min_length).
type FieldValidator struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value,omitempty" yaml:"value"`
}

// Field is a named, typed attribute reusable across objects.
// Names are unique per namespace, ignoring case.
type Field struct {
	ID           string           `json:"id" yaml:"id"`
	NamespaceID  string           `json:"namespace_id" yaml:"namespace_id"`
	Name         string           `json:"name" yaml:"name" binding:"required,min=1,max=255"`
	Type         string           `json:"type" yaml:"type" binding:"required"`
	Description  string           `json:"description,omitempty" yaml:"description"`
	DefaultValue *string          `json:"default_value,omitempty" yaml:"default_value"`
	Validators   []FieldValidator `json:"validators" yaml:"validators"`

	Ownership `yaml:",inline"`

	// Derived on read: endpoints whose objects include this field.
	UsedInApis []string `json:"used_in_apis" yaml:"-"`
}

// Clone returns a deep copy of f.
func (f Field) Clone() Field {
	if f.DefaultValue != nil {
		v := *f.DefaultValue
		f.DefaultValue = &v
	}
	f.Validators = slices.Clone(f.Validators)
	f.UsedInApis = slices.Clone(f.UsedInApis)
	return f
}
